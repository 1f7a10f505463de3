package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/CyresSmith/projects-tracker-backend/internal/config"
	"github.com/CyresSmith/projects-tracker-backend/internal/payload"
	"github.com/CyresSmith/projects-tracker-backend/internal/repository"
	"github.com/CyresSmith/projects-tracker-backend/shared/auth"
	"github.com/CyresSmith/projects-tracker-backend/shared/security"
)

// sessionTokenTTL is the fixed expiry window for session tokens.
const sessionTokenTTL = 23 * time.Hour

// AuthUsecase validates credentials and manages the session token
// lifecycle.
type AuthUsecase interface {
	Login(ctx context.Context, params LoginParams) (*payload.LoginResponse, error)
	Logout(ctx context.Context, clientID string) error
}

// LoginParams defines the parameters for client login.
type LoginParams struct {
	Email    string
	Password string
}

type authUsecase struct {
	clientRepo repository.ClientRepository
	jwtAuth    auth.JWTAuthenticator
	cfg        *config.Config
}

// NewAuthUsecase creates a new instance of AuthUsecase.
func NewAuthUsecase(
	clientRepo repository.ClientRepository,
	jwtAuth auth.JWTAuthenticator,
	cfg *config.Config,
) AuthUsecase {
	return &authUsecase{
		clientRepo: clientRepo,
		jwtAuth:    jwtAuth,
		cfg:        cfg,
	}
}

func (u *authUsecase) Login(ctx context.Context, params LoginParams) (*payload.LoginResponse, error) {
	client, err := u.clientRepo.GetClientByEmail(ctx, params.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Same failure as a wrong password, to keep unknown emails
			// indistinguishable from bad credentials.
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !client.Verified {
		return nil, ErrEmailNotVerified
	}

	if ok, err := security.VerifyPassword(params.Password, client.PasswordHash); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrInvalidCredentials
	}

	safe := payload.NewSafeClient(client)

	now := time.Now()
	claims := payload.SessionClaims{
		Client: safe,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   safe.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTokenTTL)),
			Issuer:    u.cfg.TokenIssuer,
			Audience:  jwt.ClaimStrings{u.cfg.TokenIssuer},
		},
	}

	token, err := u.jwtAuth.GenerateToken(claims, u.cfg.Secret)
	if err != nil {
		return nil, err
	}

	if err := u.clientRepo.SetSessionToken(ctx, safe.ID, token); err != nil {
		return nil, err
	}

	return &payload.LoginResponse{
		Token:  token,
		Client: safe,
	}, nil
}

func (u *authUsecase) Logout(ctx context.Context, clientID string) error {
	return u.clientRepo.ClearSessionToken(ctx, clientID)
}
