package payload

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/CyresSmith/projects-tracker-backend/internal/model"
)

// RegisterRequest is the multipart registration form. Validation limits
// mirror the client schema: name 6-20, password 8-16 with mixed case and a
// digit, brief texts 30-300, budget 200-5000 inclusive, at most 10 links,
// dates no earlier than today.
type RegisterRequest struct {
	FullName  string    `form:"fullName"  json:"fullName"  validate:"required,min=6,max=20"`
	Password  string    `form:"password"  json:"-"         validate:"required,min=8,max=16,password"`
	Email     string    `form:"email"     json:"email"     validate:"required,email"`
	Phone     string    `form:"phone"     json:"phone"     validate:"required,e164"`
	Services  []string  `form:"services"  json:"services"  validate:"required,min=1,dive,required"`
	Desc      string    `form:"desc"      json:"desc"      validate:"required,min=30,max=300"`
	Mission   string    `form:"mission"   json:"mission"   validate:"required,min=30,max=300"`
	Values    string    `form:"values"    json:"values"    validate:"required,min=30,max=300"`
	Goals     string    `form:"goals"     json:"goals"     validate:"required,min=30,max=300"`
	Links     []string  `form:"links"     json:"links"     validate:"max=10,dive,required"`
	Budget    int       `form:"budget"    json:"budget"    validate:"required,gte=200,lte=5000"`
	DateStart time.Time `form:"dateStart" json:"dateStart" validate:"required,futuredate"`
	Deadline  time.Time `form:"deadline"  json:"deadline"  validate:"required,futuredate"`
	AvatarURL string    `form:"avatarUrl" json:"avatarUrl" validate:"omitempty,url"`
}

// LoginRequest is the credentials payload for POST /clients/login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=16"`
}

// EmailRequest is the payload for POST /clients/reverify.
type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// UpdateProfileRequest is the partial profile update payload. At least one
// field must be present; the handler enforces that.
type UpdateProfileRequest struct {
	FullName *string `json:"fullName" validate:"omitempty,min=6,max=20"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Phone    *string `json:"phone"    validate:"omitempty,e164"`
	Password *string `json:"password" validate:"omitempty,min=8,max=16,password"`
}

// SafeClient is the minimal projection of a client that may leave the
// service. It deliberately excludes the brief, password hash, tokens and
// timestamps.
type SafeClient struct {
	ID        string `json:"id"`
	FullName  string `json:"fullName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	AvatarURL string `json:"avatarUrl"`
	Verified  bool   `json:"verified"`
}

// NewSafeClient projects a client document onto its safe representation.
func NewSafeClient(client *model.Client) SafeClient {
	return SafeClient{
		ID:        client.ID.Hex(),
		FullName:  client.FullName,
		Email:     client.Email,
		Phone:     client.Phone,
		AvatarURL: client.AvatarURL,
		Verified:  client.Verified,
	}
}

// SessionClaims is the JWT payload issued on login.
type SessionClaims struct {
	Client SafeClient `json:"client"`
	jwt.RegisteredClaims
}

// MessageResponse is the generic message envelope.
type MessageResponse struct {
	Message string `json:"message"`
}

// LoginResponse carries the session token together with the safe profile.
type LoginResponse struct {
	Token  string     `json:"token"`
	Client SafeClient `json:"client"`
}
