package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/CyresSmith/projects-tracker-backend/internal/payload"
	"github.com/CyresSmith/projects-tracker-backend/internal/repository"
	"github.com/CyresSmith/projects-tracker-backend/shared/security"
	"github.com/CyresSmith/projects-tracker-backend/shared/storage"
)

// AccountUsecase serves and updates the authenticated client's profile.
type AccountUsecase interface {
	CurrentClient(ctx context.Context, clientID string) (*payload.SafeClient, error)
	UpdateProfile(ctx context.Context, clientID string, params UpdateProfileParams) (*payload.SafeClient, error)
	UpdateAvatar(ctx context.Context, clientID string, avatar storage.File) (*payload.SafeClient, error)
}

// UpdateProfileParams defines the optional profile fields to change. Only
// non-nil fields are updated.
type UpdateProfileParams struct {
	FullName *string
	Email    *string
	Phone    *string
	Password *string
}

type accountUsecase struct {
	clientRepo repository.ClientRepository
	stager     FileStager
	logger     *zerolog.Logger
}

// NewAccountUsecase creates a new instance of AccountUsecase.
func NewAccountUsecase(
	clientRepo repository.ClientRepository,
	stager FileStager,
	logger *zerolog.Logger,
) AccountUsecase {
	return &accountUsecase{
		clientRepo: clientRepo,
		stager:     stager,
		logger:     logger,
	}
}

func (u *accountUsecase) CurrentClient(ctx context.Context, clientID string) (*payload.SafeClient, error) {
	client, err := u.clientRepo.GetClient(ctx, clientID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}

	safe := payload.NewSafeClient(client)
	return &safe, nil
}

func (u *accountUsecase) UpdateProfile(
	ctx context.Context,
	clientID string,
	params UpdateProfileParams,
) (*payload.SafeClient, error) {
	repoParams := repository.UpdateClientParams{
		FullName: params.FullName,
		Email:    params.Email,
		Phone:    params.Phone,
	}

	if params.Password != nil {
		passwordHash, err := security.HashPassword(*params.Password)
		if err != nil {
			return nil, err
		}
		repoParams.PasswordHash = &passwordHash
	}

	client, err := u.clientRepo.UpdateClient(ctx, clientID, repoParams)
	if err != nil {
		switch {
		case mongo.IsDuplicateKeyError(err):
			return nil, ErrEmailInUse
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, ErrClientNotFound
		default:
			return nil, err
		}
	}

	safe := payload.NewSafeClient(client)
	return &safe, nil
}

func (u *accountUsecase) UpdateAvatar(
	ctx context.Context,
	clientID string,
	avatar storage.File,
) (*payload.SafeClient, error) {
	client, err := u.clientRepo.GetClient(ctx, clientID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}

	folderName := fmt.Sprintf("%s_avatar", clientFolderName(client.FullName, client.Email))
	staged, err := u.stager.Stage(ctx, folderName, []storage.File{avatar})
	if err != nil {
		if staged != nil && staged.FolderID != "" {
			u.discardFolder(ctx, staged.FolderID)
		}
		return nil, fmt.Errorf("failed to stage avatar: %w", err)
	}
	if len(staged.ViewURLs) == 0 {
		return nil, errors.New("avatar upload returned no url")
	}

	updated, err := u.clientRepo.UpdateClient(ctx, clientID, repository.UpdateClientParams{
		AvatarURL:      &staged.ViewURLs[0],
		AvatarFolderID: &staged.FolderID,
	})
	if err != nil {
		u.discardFolder(ctx, staged.FolderID)
		return nil, err
	}

	// The previous upload is no longer referenced once the swap landed.
	if client.AvatarFolderID != "" {
		u.discardFolder(ctx, client.AvatarFolderID)
	}

	safe := payload.NewSafeClient(updated)
	return &safe, nil
}

// discardFolder removes a staged avatar folder best effort. A leftover
// folder is recoverable garbage, not a reason to fail the call.
func (u *accountUsecase) discardFolder(ctx context.Context, folderID string) {
	if err := u.stager.Discard(ctx, folderID); err != nil {
		u.logger.Error().Err(err).Str("folder_id", folderID).Msg("failed to discard avatar folder")
	}
}
