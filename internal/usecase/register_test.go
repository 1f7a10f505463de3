package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CyresSmith/projects-tracker-backend/shared/security"
	"github.com/CyresSmith/projects-tracker-backend/shared/storage"
)

func validRegisterParams() RegisterParams {
	return RegisterParams{
		FullName:    "Jane Doe Co",
		Email:       "jane@co.com",
		Phone:       "+380501234567",
		Password:    "Passw0rd",
		Services:    []string{"branding"},
		Description: "A thirty character description for the brief.",
		Mission:     "A thirty character mission text for the brief.",
		Values:      "A thirty character values statement for the brief.",
		Goals:       "A thirty character goals statement for the brief.",
		Budget:      1000,
		DateStart:   time.Now().AddDate(0, 0, 1),
		Deadline:    time.Now().AddDate(0, 0, 30),
	}
}

func newRegistrationFixture() (*fakeClientRepo, *fakeStager, *fakeMailer, RegistrationUsecase) {
	repo := newFakeClientRepo()
	stager := &fakeStager{}
	mail := &fakeMailer{}
	logger := zerolog.Nop()

	u := NewRegistrationUsecase(repo, stager, mail, testConfig(), &logger)
	return repo, stager, mail, u
}

func TestRegisterCreatesUnverifiedClient(t *testing.T) {
	repo, _, mail, u := newRegistrationFixture()

	result, err := u.Register(context.Background(), validRegisterParams(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe Co", result.FullName)
	assert.Equal(t, "jane@co.com", result.Email)

	stored, err := repo.GetClientByEmail(context.Background(), "jane@co.com")
	require.NoError(t, err)
	assert.False(t, stored.Verified)
	assert.NotEmpty(t, stored.VerificationToken)
	assert.Equal(t, defaultAvatarURL, stored.AvatarURL)

	// Password is stored hashed, never plaintext.
	assert.NotEqual(t, "Passw0rd", stored.PasswordHash)
	ok, err := security.VerifyPassword("Passw0rd", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	require.Len(t, mail.sent, 1)
	assert.Equal(t, []string{"jane@co.com"}, mail.sent[0].to)
	assert.Contains(t, mail.sent[0].body, stored.VerificationToken)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo, _, mail, u := newRegistrationFixture()

	_, err := u.Register(context.Background(), validRegisterParams(), nil)
	require.NoError(t, err)

	_, err = u.Register(context.Background(), validRegisterParams(), nil)
	assert.ErrorIs(t, err, ErrEmailInUse)

	// Exactly one client remains for that email and only one mail went out.
	assert.Len(t, repo.clients, 1)
	assert.Len(t, mail.sent, 1)
}

func TestRegisterDuplicateInsertRace(t *testing.T) {
	repo, _, _, u := newRegistrationFixture()
	repo.createErr = duplicateKeyError()

	_, err := u.Register(context.Background(), validRegisterParams(), nil)
	assert.ErrorIs(t, err, ErrEmailInUse)
}

func TestRegisterRejectsTooManyAttachments(t *testing.T) {
	repo, stager, _, u := newRegistrationFixture()

	files := make([]storage.File, storage.MaxFilesPerClient+1)
	for i := range files {
		files[i] = storage.File{Name: "brief.pdf", MIMEType: "application/pdf", Path: "unused"}
	}

	_, err := u.Register(context.Background(), validRegisterParams(), files)
	assert.ErrorIs(t, err, storage.ErrTooManyFiles)

	// Rejected before any upload call or record mutation.
	assert.Zero(t, stager.stageCalls)
	assert.Empty(t, repo.clients)
}

func TestRegisterStagesAttachments(t *testing.T) {
	repo, stager, _, u := newRegistrationFixture()

	files := []storage.File{
		{Name: "brief.pdf", MIMEType: "application/pdf", Path: "unused"},
		{Name: "logo.png", MIMEType: "image/png", Path: "unused"},
	}

	_, err := u.Register(context.Background(), validRegisterParams(), files)
	require.NoError(t, err)

	require.Equal(t, 1, stager.stageCalls)
	assert.Equal(t, []string{"Jane Doe Co_jane@co.com"}, stager.folders)

	stored, err := repo.GetClientByEmail(context.Background(), "jane@co.com")
	require.NoError(t, err)
	assert.Len(t, stored.Files, 2)
}

func TestRegisterStageFailureRollsBack(t *testing.T) {
	repo, stager, mail, u := newRegistrationFixture()
	stager.stageErr = errors.New("drive unavailable")

	files := []storage.File{{Name: "brief.pdf", MIMEType: "application/pdf", Path: "unused"}}

	_, err := u.Register(context.Background(), validRegisterParams(), files)
	require.Error(t, err)

	// The created record and the staged folder are both undone.
	assert.Empty(t, repo.clients)
	assert.Len(t, repo.deleted, 1)
	assert.Equal(t, []string{"folder-1"}, stager.discarded)
	assert.Empty(t, mail.sent)
}

func TestRegisterEmailFailureRollsBack(t *testing.T) {
	repo, stager, mail, u := newRegistrationFixture()
	mail.sendErr = errors.New("smtp unavailable")

	files := []storage.File{{Name: "brief.pdf", MIMEType: "application/pdf", Path: "unused"}}

	_, err := u.Register(context.Background(), validRegisterParams(), files)
	require.Error(t, err)

	// Send failure fails the whole call, and the compensation log removes
	// the record and the staged folder in reverse order.
	assert.Empty(t, repo.clients)
	assert.Len(t, repo.deleted, 1)
	assert.Equal(t, []string{"folder-1"}, stager.discarded)
}

func TestRegisterKeepsSuppliedAvatar(t *testing.T) {
	repo, _, _, u := newRegistrationFixture()

	params := validRegisterParams()
	params.AvatarURL = "https://example.com/avatar.png"

	_, err := u.Register(context.Background(), params, nil)
	require.NoError(t, err)

	stored, err := repo.GetClientByEmail(context.Background(), params.Email)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/avatar.png", stored.AvatarURL)
}

func TestVerificationTokensAreUnique(t *testing.T) {
	repo, _, _, u := newRegistrationFixture()

	first := validRegisterParams()
	second := validRegisterParams()
	second.Email = "john@co.com"

	_, err := u.Register(context.Background(), first, nil)
	require.NoError(t, err)
	_, err = u.Register(context.Background(), second, nil)
	require.NoError(t, err)

	a, err := repo.GetClientByEmail(context.Background(), first.Email)
	require.NoError(t, err)
	b, err := repo.GetClientByEmail(context.Background(), second.Email)
	require.NoError(t, err)
	assert.NotEqual(t, a.VerificationToken, b.VerificationToken)
}
