package usecase

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/CyresSmith/projects-tracker-backend/internal/config"
	"github.com/CyresSmith/projects-tracker-backend/internal/model"
	"github.com/CyresSmith/projects-tracker-backend/internal/repository"
	"github.com/CyresSmith/projects-tracker-backend/shared/storage"
)

func testConfig() *config.Config {
	return &config.Config{
		BaseURL:     "http://localhost:3001",
		Secret:      "test-secret",
		TokenIssuer: "projects-tracker",
	}
}

func duplicateKeyError() error {
	return mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "duplicate key error"}},
	}
}

type fakeClientRepo struct {
	clients   map[string]*model.Client
	createErr error
	deleted   []string
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{clients: make(map[string]*model.Client)}
}

func (r *fakeClientRepo) CreateClient(_ context.Context, client *model.Client) (*model.Client, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, existing := range r.clients {
		if existing.Email == client.Email {
			return nil, duplicateKeyError()
		}
	}

	now := time.Now()
	client.ID = bson.NewObjectID()
	client.CreatedAt = now
	client.UpdatedAt = now

	stored := *client
	r.clients[client.ID.Hex()] = &stored
	return client, nil
}

func (r *fakeClientRepo) GetClient(_ context.Context, id string) (*model.Client, error) {
	client, ok := r.clients[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	clone := *client
	return &clone, nil
}

func (r *fakeClientRepo) GetClientByEmail(_ context.Context, email string) (*model.Client, error) {
	for _, client := range r.clients {
		if client.Email == email {
			clone := *client
			return &clone, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeClientRepo) UpdateClient(
	_ context.Context,
	id string,
	params repository.UpdateClientParams,
) (*model.Client, error) {
	client, ok := r.clients[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	if params.Email != nil {
		for otherID, other := range r.clients {
			if otherID != id && other.Email == *params.Email {
				return nil, duplicateKeyError()
			}
		}
		client.Email = *params.Email
	}
	if params.FullName != nil {
		client.FullName = *params.FullName
	}
	if params.Phone != nil {
		client.Phone = *params.Phone
	}
	if params.PasswordHash != nil {
		client.PasswordHash = *params.PasswordHash
	}
	if params.AvatarURL != nil {
		client.AvatarURL = *params.AvatarURL
	}
	if params.AvatarFolderID != nil {
		client.AvatarFolderID = *params.AvatarFolderID
	}
	if params.Files != nil {
		client.Files = *params.Files
	}
	client.UpdatedAt = time.Now()

	clone := *client
	return &clone, nil
}

func (r *fakeClientRepo) VerifyClient(_ context.Context, token string) (*model.Client, error) {
	for _, client := range r.clients {
		if client.VerificationToken != "" && client.VerificationToken == token {
			client.Verified = true
			client.VerificationToken = ""
			client.UpdatedAt = time.Now()
			clone := *client
			return &clone, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeClientRepo) SetSessionToken(_ context.Context, id, token string) error {
	client, ok := r.clients[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	client.SessionToken = token
	return nil
}

func (r *fakeClientRepo) ClearSessionToken(_ context.Context, id string) error {
	return r.SetSessionToken(context.Background(), id, "")
}

func (r *fakeClientRepo) DeleteClient(_ context.Context, id string) error {
	delete(r.clients, id)
	r.deleted = append(r.deleted, id)
	return nil
}

type sentEmail struct {
	to      []string
	subject string
	body    string
}

type fakeMailer struct {
	sent    []sentEmail
	sendErr error
}

func (m *fakeMailer) SendHTML(to []string, subject, htmlBody string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, sentEmail{to: to, subject: subject, body: htmlBody})
	return nil
}

type fakeStager struct {
	stageCalls int
	folders    []string
	discarded  []string
	stageErr   error
}

func (s *fakeStager) Stage(
	_ context.Context,
	folderName string,
	files []storage.File,
) (*storage.StageResult, error) {
	s.stageCalls++
	s.folders = append(s.folders, folderName)

	result := &storage.StageResult{FolderID: fmt.Sprintf("folder-%d", s.stageCalls)}
	if s.stageErr != nil {
		// Folder already created, uploads failed.
		return result, s.stageErr
	}

	for i := range files {
		result.ViewURLs = append(result.ViewURLs, fmt.Sprintf("https://drive.google.com/file/d/%d/view", i))
	}
	return result, nil
}

func (s *fakeStager) Discard(_ context.Context, folderID string) error {
	s.discarded = append(s.discarded, folderID)
	return nil
}
