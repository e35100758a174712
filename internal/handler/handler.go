package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"sociogram/internal/apperrors"
	"sociogram/internal/config"
	"sociogram/internal/service"
)

type Handlers struct {
	AuthService  service.AuthService
	UserService  service.UserService
	PostService  service.PostService
	StoryService service.StoryService
	Cfg          *config.Config
	Validate     *validator.Validate
}

func NewHandlers(services *service.Service, cfg *config.Config) *Handlers {
	return &Handlers{
		AuthService:  services.Auth,
		UserService:  services.User,
		PostService:  services.Post,
		StoryService: services.Story,
		Cfg:          cfg,
		Validate:     validator.New(),
	}
}

type contextKey string

const userIDKey contextKey = "userID"

// WithUserID stores the authenticated user's id on the request context; the
// auth middleware is the only writer.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func UserIDFrom(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok
}

// readUpload pulls one optional file out of a multipart form. A missing file
// is not an error; the caller decides whether the field is required.
func (h *Handlers) readUpload(r *http.Request, field string) (string, []byte, error) {
	if err := r.ParseMultipartForm(h.Cfg.MaxUploadSize); err != nil {
		return "", nil, apperrors.Validation("invalid multipart form: %v", err)
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return "", nil, nil
		}
		return "", nil, apperrors.Validation("invalid %s upload: %v", field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, apperrors.Validation("failed to read %s upload: %v", field, err)
	}

	return header.Filename, data, nil
}
