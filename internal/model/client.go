package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Client represents a prospective client together with the project brief
// submitted during registration.
type Client struct {
	ID                bson.ObjectID `bson:"_id,omitempty"`
	FullName          string        `bson:"full_name"`
	Email             string        `bson:"email"`
	Phone             string        `bson:"phone"`
	PasswordHash      string        `bson:"password_hash"`
	Services          []string      `bson:"services"`
	Description       string        `bson:"description"`
	Mission           string        `bson:"mission"`
	Values            string        `bson:"values"`
	Goals             string        `bson:"goals"`
	Files             []string      `bson:"files"`
	Links             []string      `bson:"links"`
	Budget            int           `bson:"budget"`
	DateStart         time.Time     `bson:"date_start"`
	Deadline          time.Time     `bson:"deadline"`
	AvatarURL         string        `bson:"avatar_url"`
	AvatarFolderID    string        `bson:"avatar_folder_id,omitempty"`
	SessionToken      string        `bson:"session_token"`
	Verified          bool          `bson:"verified"`
	VerificationToken string        `bson:"verification_token,omitempty"`
	CreatedAt         time.Time     `bson:"created_at"`
	UpdatedAt         time.Time     `bson:"updated_at"`
}
