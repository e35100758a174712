package test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"sociogram/internal/config"
	handlers "sociogram/internal/handler"
	"sociogram/internal/service"
)

type mocks struct {
	auth  *MockAuthService
	user  *MockUserService
	post  *MockPostService
	story *MockStoryService
}

func createTestHandler() (*handlers.Handlers, *mocks) {
	cfg := &config.Config{
		JWTSecretKey:  "test-secret-key",
		ServerPort:    8080,
		MaxUploadSize: 10 * 1024 * 1024,
		TokenDuration: time.Hour,
	}

	m := &mocks{
		auth:  new(MockAuthService),
		user:  new(MockUserService),
		post:  new(MockPostService),
		story: new(MockStoryService),
	}

	return &handlers.Handlers{
		AuthService:  m.auth,
		UserService:  m.user,
		PostService:  m.post,
		StoryService: m.story,
		Cfg:          cfg,
		Validate:     validator.New(),
	}, m
}

// authedRequest attaches a user id the way the auth middleware would.
func authedRequest(req *http.Request, userID string) *http.Request {
	return req.WithContext(handlers.WithUserID(req.Context(), userID))
}

// multipartBody builds a multipart form with string fields and one optional
// file part.
func multipartBody(t *testing.T, fields map[string]string, fileField, fileName string, fileData []byte) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for key, value := range fields {
		assert.NoError(t, writer.WriteField(key, value))
	}
	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, fileName)
		assert.NoError(t, err)
		_, err = part.Write(fileData)
		assert.NoError(t, err)
	}
	assert.NoError(t, writer.Close())

	return &buf, writer.FormDataContentType()
}

func assertJSONError(t *testing.T, rr *httptest.ResponseRecorder, expectedStatus int, expectedError string) {
	t.Helper()

	assert.Equal(t, expectedStatus, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var response map[string]string
	err := json.Unmarshal(rr.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Contains(t, response["error"], expectedError)
}

func TestNewHandlers(t *testing.T) {
	h := handlers.NewHandlers(&service.Service{
		Auth:  new(MockAuthService),
		User:  new(MockUserService),
		Post:  new(MockPostService),
		Story: new(MockStoryService),
	}, &config.Config{})

	assert.NotNil(t, h.AuthService)
	assert.NotNil(t, h.UserService)
	assert.NotNil(t, h.PostService)
	assert.NotNil(t, h.StoryService)
	assert.NotNil(t, h.Cfg)
	assert.NotNil(t, h.Validate)
}
