package usecase

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/CyresSmith/projects-tracker-backend/internal/config"
	"github.com/CyresSmith/projects-tracker-backend/internal/repository"
)

// VerificationUsecase consumes verification tokens and resends
// verification mail for unverified clients.
type VerificationUsecase interface {
	// Verify flips the client holding the token to verified and clears the
	// token. A consumed token no longer matches any client, so a second
	// call yields ErrClientNotFound.
	Verify(ctx context.Context, token string) error

	// ResendVerification sends the same unconsumed token to the client
	// again.
	ResendVerification(ctx context.Context, email string) error
}

type verificationUsecase struct {
	clientRepo repository.ClientRepository
	mail       EmailSender
	cfg        *config.Config
}

// NewVerificationUsecase creates a new instance of VerificationUsecase.
func NewVerificationUsecase(
	clientRepo repository.ClientRepository,
	mail EmailSender,
	cfg *config.Config,
) VerificationUsecase {
	return &verificationUsecase{
		clientRepo: clientRepo,
		mail:       mail,
		cfg:        cfg,
	}
}

func (u *verificationUsecase) Verify(ctx context.Context, token string) error {
	if _, err := u.clientRepo.VerifyClient(ctx, token); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrClientNotFound
		}
		return err
	}

	return nil
}

func (u *verificationUsecase) ResendVerification(ctx context.Context, email string) error {
	client, err := u.clientRepo.GetClientByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrClientNotFound
		}
		return err
	}

	if client.Verified {
		return ErrAlreadyVerified
	}

	subject, htmlBody := verificationEmail(u.cfg.BaseURL, client.VerificationToken)
	return u.mail.SendHTML([]string{client.Email}, subject, htmlBody)
}
