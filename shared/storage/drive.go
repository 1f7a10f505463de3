package storage

import (
	"context"
	"errors"
	"fmt"
	"os"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Config holds the Google Drive service account settings.
type Config struct {
	CredentialsFile string `env:"GOOGLE_CREDENTIALS_FILE,required"`
	ParentFolderID  string `env:"DRIVE_PARENT_FOLDER_ID,required"`
}

// MaxFilesPerClient caps how many brief attachments one client may stage.
const MaxFilesPerClient = 10

// ErrTooManyFiles is returned before any upload when the attachment count
// exceeds MaxFilesPerClient.
var ErrTooManyFiles = fmt.Errorf("maximum %d files allowed", MaxFilesPerClient)

// File describes one attachment spooled to the local temp dir and awaiting
// upload.
type File struct {
	Name     string
	MIMEType string
	Path     string
}

// StageResult carries the outcome of staging a client's attachments.
type StageResult struct {
	FolderID string
	ViewURLs []string
}

// DriveStore persists client attachments to Google Drive, one folder per
// client under a fixed parent folder.
type DriveStore struct {
	service  *drive.Service
	parentID string
}

// NewDriveStore builds a Drive client from a service account credentials
// file. The client is constructed once and shared across requests.
func NewDriveStore(ctx context.Context, cfg Config) (*DriveStore, error) {
	service, err := drive.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(drive.DriveScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return &DriveStore{
		service:  service,
		parentID: cfg.ParentFolderID,
	}, nil
}

// Stage creates a dedicated folder named after the client and uploads each
// file into it sequentially, collecting publicly viewable reference URLs.
// Local temp copies are removed whether or not the upload succeeds. On
// partial failure the already created folder ID is still returned so the
// caller can discard it.
func (s *DriveStore) Stage(ctx context.Context, folderName string, files []File) (*StageResult, error) {
	defer func() {
		for _, f := range files {
			os.Remove(f.Path)
		}
	}()

	if len(files) > MaxFilesPerClient {
		return nil, ErrTooManyFiles
	}

	folderID, err := s.createFolder(ctx, folderName)
	if err != nil {
		return nil, err
	}

	result := &StageResult{FolderID: folderID}

	for _, f := range files {
		url, err := s.uploadFile(ctx, folderID, f)
		if err != nil {
			return result, fmt.Errorf("failed to upload %q: %w", f.Name, err)
		}
		result.ViewURLs = append(result.ViewURLs, url)
	}

	return result, nil
}

// Discard removes a staged folder and everything in it. Used to undo a
// partially applied registration.
func (s *DriveStore) Discard(ctx context.Context, folderID string) error {
	if folderID == "" {
		return errors.New("missing folder id")
	}
	return s.service.Files.Delete(folderID).Context(ctx).Do()
}

func (s *DriveStore) createFolder(ctx context.Context, name string) (string, error) {
	folder, err := s.service.Files.Create(&drive.File{
		Name:     name,
		Parents:  []string{s.parentID},
		MimeType: "application/vnd.google-apps.folder",
	}).Context(ctx).Fields("id").Do()
	if err != nil {
		return "", fmt.Errorf("failed to create drive folder: %w", err)
	}

	return folder.Id, nil
}

func (s *DriveStore) uploadFile(ctx context.Context, folderID string, f File) (string, error) {
	reader, err := os.Open(f.Path)
	if err != nil {
		return "", err
	}
	defer reader.Close()

	created, err := s.service.Files.Create(&drive.File{
		Name:    f.Name,
		Parents: []string{folderID},
	}).Media(reader, googleapi.ContentType(f.MIMEType)).Context(ctx).Fields("id").Do()
	if err != nil {
		return "", err
	}

	info, err := s.service.Files.Get(created.Id).Context(ctx).Fields("webViewLink").Do()
	if err != nil {
		return "", err
	}

	return info.WebViewLink, nil
}
