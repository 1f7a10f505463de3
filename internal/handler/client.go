package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/form/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/CyresSmith/projects-tracker-backend/internal/payload"
	"github.com/CyresSmith/projects-tracker-backend/internal/usecase"
	"github.com/CyresSmith/projects-tracker-backend/shared/storage"
	"github.com/CyresSmith/projects-tracker-backend/shared/validation"
)

const (
	maxUploadMemory = 32 << 20
	maxFileSize     = 10 << 20
)

// ClientHandler serves the /api/clients routes.
type ClientHandler struct {
	registration usecase.RegistrationUsecase
	verification usecase.VerificationUsecase
	auth         usecase.AuthUsecase
	account      usecase.AccountUsecase
	validator    *validation.Validator
	formDecoder  *form.Decoder
	tempDir      string
	logger       *zerolog.Logger
}

// NewClientHandler creates a new ClientHandler instance.
func NewClientHandler(
	registration usecase.RegistrationUsecase,
	verification usecase.VerificationUsecase,
	authUsecase usecase.AuthUsecase,
	account usecase.AccountUsecase,
	validator *validation.Validator,
	tempDir string,
	logger *zerolog.Logger,
) *ClientHandler {
	decoder := form.NewDecoder()
	// Brief dates arrive either as full timestamps or as plain dates.
	decoder.RegisterCustomTypeFunc(func(vals []string) (any, error) {
		if t, err := time.Parse(time.RFC3339, vals[0]); err == nil {
			return t, nil
		}
		return time.Parse("2006-01-02", vals[0])
	}, time.Time{})

	return &ClientHandler{
		registration: registration,
		verification: verification,
		auth:         authUsecase,
		account:      account,
		validator:    validator,
		formDecoder:  decoder,
		tempDir:      tempDir,
		logger:       logger,
	}
}

// Register handles POST /api/clients/register.
func (h *ClientHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondMessage(w, http.StatusBadRequest, "malformed multipart form")
		return
	}

	values := r.MultipartForm.Value
	normalizeArrayFields(values, "services", "links")

	var req payload.RegisterRequest
	if err := h.formDecoder.Decode(&req, values); err != nil {
		respondMessage(w, http.StatusBadRequest, "malformed form data")
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		h.respondError(w, err)
		return
	}

	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) > storage.MaxFilesPerClient {
		respondMessage(w, http.StatusBadRequest, storage.ErrTooManyFiles.Error())
		return
	}

	files, err := h.spoolFiles(fileHeaders)
	if err != nil {
		h.respondError(w, err)
		return
	}
	// The stager deletes the copies it consumed; this covers failures
	// before staging runs.
	defer removeSpooled(files)

	result, err := h.registration.Register(r.Context(), usecase.RegisterParams{
		FullName:    req.FullName,
		Email:       req.Email,
		Phone:       req.Phone,
		Password:    req.Password,
		Services:    req.Services,
		Description: req.Desc,
		Mission:     req.Mission,
		Values:      req.Values,
		Goals:       req.Goals,
		Links:       req.Links,
		Budget:      req.Budget,
		DateStart:   req.DateStart,
		Deadline:    req.Deadline,
		AvatarURL:   req.AvatarURL,
	}, files)
	if err != nil {
		h.respondError(w, err)
		return
	}

	respondMessage(w, http.StatusCreated, fmt.Sprintf(
		"Welcome, %s! A verification letter was sent to %s",
		result.FullName, result.Email,
	))
}

// Verify handles GET /api/clients/verify/{verificationToken}.
func (h *ClientHandler) Verify(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "verificationToken")

	if err := h.verification.Verify(r.Context(), token); err != nil {
		h.respondError(w, err)
		return
	}

	respondMessage(w, http.StatusOK, "Verification successful")
}

// Reverify handles POST /api/clients/reverify.
func (h *ClientHandler) Reverify(w http.ResponseWriter, r *http.Request) {
	var req payload.EmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		h.respondError(w, err)
		return
	}

	if err := h.verification.ResendVerification(r.Context(), req.Email); err != nil {
		h.respondError(w, err)
		return
	}

	respondMessage(w, http.StatusOK, "Verification email sent")
}

// Login handles POST /api/clients/login.
func (h *ClientHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req payload.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		h.respondError(w, err)
		return
	}

	result, err := h.auth.Login(r.Context(), usecase.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Current handles GET /api/clients/current.
func (h *ClientHandler) Current(w http.ResponseWriter, r *http.Request) {
	client, ok := ClientFromContext(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	safe, err := h.account.CurrentClient(r.Context(), client.ID.Hex())
	if err != nil {
		h.respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, safe)
}

// Update handles PATCH /api/clients/update.
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	client, ok := ClientFromContext(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	var req payload.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if req.FullName == nil && req.Email == nil && req.Phone == nil && req.Password == nil {
		respondMessage(w, http.StatusBadRequest, "at least one field is required")
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		h.respondError(w, err)
		return
	}

	safe, err := h.account.UpdateProfile(r.Context(), client.ID.Hex(), usecase.UpdateProfileParams{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, safe)
}

// Logout handles POST /api/clients/logout.
func (h *ClientHandler) Logout(w http.ResponseWriter, r *http.Request) {
	client, ok := ClientFromContext(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	if err := h.auth.Logout(r.Context(), client.ID.Hex()); err != nil {
		h.respondError(w, err)
		return
	}

	respondMessage(w, http.StatusOK, "Successfully logout")
}

// UpdateAvatar handles PATCH /api/clients/avatars.
func (h *ClientHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	client, ok := ClientFromContext(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondMessage(w, http.StatusBadRequest, "malformed multipart form")
		return
	}

	headers := r.MultipartForm.File["avatar"]
	if len(headers) != 1 {
		respondMessage(w, http.StatusBadRequest, "a single avatar file is required")
		return
	}

	files, err := h.spoolFiles(headers)
	if err != nil {
		h.respondError(w, err)
		return
	}
	defer removeSpooled(files)

	safe, err := h.account.UpdateAvatar(r.Context(), client.ID.Hex(), files[0])
	if err != nil {
		h.respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, safe)
}

// spoolFiles copies the uploaded parts into the temp dir so the stager can
// stream them to external storage. Already spooled copies are removed when
// a later part fails.
func (h *ClientHandler) spoolFiles(headers []*multipart.FileHeader) ([]storage.File, error) {
	files := make([]storage.File, 0, len(headers))

	cleanup := func() {
		for _, f := range files {
			os.Remove(f.Path)
		}
	}

	for _, header := range headers {
		if header.Size > maxFileSize {
			cleanup()
			return nil, errFileTooLarge
		}

		mimeType := header.Header.Get("Content-Type")
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}

		path, err := h.spoolFile(header)
		if err != nil {
			cleanup()
			return nil, err
		}

		files = append(files, storage.File{
			Name:     header.Filename,
			MIMEType: mimeType,
			Path:     path,
		})
	}

	return files, nil
}

// removeSpooled deletes temp copies left behind when the request fails
// before the stager consumed them. Paths the stager already removed are
// gone, so errors are ignored.
func removeSpooled(files []storage.File) {
	for _, f := range files {
		os.Remove(f.Path)
	}
}

func (h *ClientHandler) spoolFile(header *multipart.FileHeader) (string, error) {
	src, err := header.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	if err := os.MkdirAll(h.tempDir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(h.tempDir, uuid.NewString()+filepath.Ext(header.Filename))
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", err
	}

	return path, nil
}

var errFileTooLarge = fmt.Errorf("file size exceeds %d MB", maxFileSize>>20)

// respondError maps workflow errors onto HTTP statuses.
func (h *ClientHandler) respondError(w http.ResponseWriter, err error) {
	var fields validation.FieldErrors
	if errors.As(err, &fields) {
		respondFieldErrors(w, fields)
		return
	}

	switch {
	case errors.Is(err, usecase.ErrEmailInUse):
		respondMessage(w, http.StatusConflict, "Email in use")
	case errors.Is(err, usecase.ErrClientNotFound):
		respondMessage(w, http.StatusNotFound, "Not found")
	case errors.Is(err, usecase.ErrAlreadyVerified):
		respondMessage(w, http.StatusBadRequest, "Verification has already been passed")
	case errors.Is(err, usecase.ErrInvalidCredentials):
		respondMessage(w, http.StatusUnauthorized, "Email or password is wrong")
	case errors.Is(err, usecase.ErrEmailNotVerified):
		respondMessage(w, http.StatusUnauthorized, "Email not verified")
	case errors.Is(err, storage.ErrTooManyFiles), errors.Is(err, errFileTooLarge):
		respondMessage(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("request failed")
		respondMessage(w, http.StatusInternalServerError, "Something went wrong")
	}
}

// normalizeArrayFields unpacks array fields the client submitted as a
// single JSON-encoded string, which is how the web form serializes them.
func normalizeArrayFields(values map[string][]string, fields ...string) {
	for _, field := range fields {
		vals, ok := values[field]
		if !ok || len(vals) != 1 {
			continue
		}

		trimmed := strings.TrimSpace(vals[0])
		if !strings.HasPrefix(trimmed, "[") {
			continue
		}

		var parsed []string
		if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
			values[field] = parsed
		}
	}
}
