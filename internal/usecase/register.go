package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/CyresSmith/projects-tracker-backend/internal/config"
	"github.com/CyresSmith/projects-tracker-backend/internal/model"
	"github.com/CyresSmith/projects-tracker-backend/internal/repository"
	"github.com/CyresSmith/projects-tracker-backend/shared/auth"
	"github.com/CyresSmith/projects-tracker-backend/shared/security"
	"github.com/CyresSmith/projects-tracker-backend/shared/storage"
)

const defaultAvatarURL = "https://res.cloudinary.com/dqejymgnk/image/upload/v1684344303/avatar/Group_1000002112_2x_i1bd8a.png"

// EmailSender sends templated notification mail. Satisfied by
// mailer.Mailer.
type EmailSender interface {
	SendHTML(to []string, subject, htmlBody string) error
}

// FileStager persists uploaded brief attachments to external storage and
// can discard a staged folder again. Satisfied by storage.DriveStore.
type FileStager interface {
	Stage(ctx context.Context, folderName string, files []storage.File) (*storage.StageResult, error)
	Discard(ctx context.Context, folderID string) error
}

// RegistrationUsecase orchestrates the registration transaction: uniqueness
// check, password hashing, token issuance, record creation, attachment
// staging and the verification email.
type RegistrationUsecase interface {
	Register(ctx context.Context, params RegisterParams, files []storage.File) (*RegisterResult, error)
}

// RegisterParams defines the validated registration payload.
type RegisterParams struct {
	FullName    string
	Email       string
	Phone       string
	Password    string
	Services    []string
	Description string
	Mission     string
	Values      string
	Goals       string
	Links       []string
	Budget      int
	DateStart   time.Time
	Deadline    time.Time
	AvatarURL   string
}

// RegisterResult is the public summary returned on success. It never
// carries the password hash, token material or internal id.
type RegisterResult struct {
	FullName string
	Email    string
}

type registrationUsecase struct {
	clientRepo repository.ClientRepository
	stager     FileStager
	mail       EmailSender
	cfg        *config.Config
	logger     *zerolog.Logger
}

// NewRegistrationUsecase creates a new instance of RegistrationUsecase.
func NewRegistrationUsecase(
	clientRepo repository.ClientRepository,
	stager FileStager,
	mail EmailSender,
	cfg *config.Config,
	logger *zerolog.Logger,
) RegistrationUsecase {
	return &registrationUsecase{
		clientRepo: clientRepo,
		stager:     stager,
		mail:       mail,
		cfg:        cfg,
		logger:     logger,
	}
}

func (u *registrationUsecase) Register(
	ctx context.Context,
	params RegisterParams,
	files []storage.File,
) (*RegisterResult, error) {
	// Rejected before any upload call is made.
	if len(files) > storage.MaxFilesPerClient {
		return nil, storage.ErrTooManyFiles
	}

	if _, err := u.clientRepo.GetClientByEmail(ctx, params.Email); err == nil {
		return nil, ErrEmailInUse
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	verificationToken, err := auth.NewVerificationToken()
	if err != nil {
		return nil, err
	}

	avatarURL := params.AvatarURL
	if avatarURL == "" {
		avatarURL = defaultAvatarURL
	}

	var undo undoLog

	created, err := u.clientRepo.CreateClient(ctx, &model.Client{
		FullName:          params.FullName,
		Email:             params.Email,
		Phone:             params.Phone,
		PasswordHash:      passwordHash,
		Services:          params.Services,
		Description:       params.Description,
		Mission:           params.Mission,
		Values:            params.Values,
		Goals:             params.Goals,
		Links:             params.Links,
		Budget:            params.Budget,
		DateStart:         params.DateStart,
		Deadline:          params.Deadline,
		AvatarURL:         avatarURL,
		Verified:          false,
		VerificationToken: verificationToken,
	})
	if err != nil {
		// The unique index resolves the race two concurrent registrations
		// with the same email would win against the check above.
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrEmailInUse
		}
		return nil, err
	}
	undo.push(func(ctx context.Context) error {
		return u.clientRepo.DeleteClient(ctx, created.ID.Hex())
	})

	if len(files) > 0 {
		staged, err := u.stager.Stage(ctx, clientFolderName(params.FullName, params.Email), files)
		if staged != nil && staged.FolderID != "" {
			undo.push(func(ctx context.Context) error {
				return u.stager.Discard(ctx, staged.FolderID)
			})
		}
		if err != nil {
			undo.rollback(ctx, u.logger)
			return nil, fmt.Errorf("failed to stage attachments: %w", err)
		}

		if _, err := u.clientRepo.UpdateClient(ctx, created.ID.Hex(), repository.UpdateClientParams{
			Files: &staged.ViewURLs,
		}); err != nil {
			undo.rollback(ctx, u.logger)
			return nil, err
		}
	}

	subject, htmlBody := verificationEmail(u.cfg.BaseURL, verificationToken)
	if err := u.mail.SendHTML([]string{created.Email}, subject, htmlBody); err != nil {
		undo.rollback(ctx, u.logger)
		return nil, fmt.Errorf("failed to send verification email: %w", err)
	}

	return &RegisterResult{
		FullName: created.FullName,
		Email:    created.Email,
	}, nil
}

// clientFolderName derives the deterministic storage folder name for a
// client's attachments.
func clientFolderName(fullName, email string) string {
	return fmt.Sprintf("%s_%s", fullName, email)
}

// verificationEmail builds the verification mail with the link embedding
// the token.
func verificationEmail(baseURL, token string) (subject, htmlBody string) {
	link := fmt.Sprintf("%s/api/clients/verify/%s", baseURL, token)
	htmlBody = fmt.Sprintf(
		`<a target="_blank" href="%s">Click here to verify your email</a>`,
		link,
	)
	return "Verification email", htmlBody
}
