package handler

import (
	"encoding/json"
	"net/http"

	"sociogram/internal/models"
	"sociogram/internal/service"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register accepts a multipart form so the profile picture can ride along
// with the registration fields.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	fileName, fileData, err := h.readUpload(r, "picture")
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	req := service.RegisterRequest{
		FirstName:       r.FormValue("firstName"),
		LastName:        r.FormValue("lastName"),
		Email:           r.FormValue("email"),
		Password:        r.FormValue("password"),
		Location:        r.FormValue("location"),
		Occupation:      r.FormValue("occupation"),
		Twitter:         r.FormValue("twitter"),
		LinkedIn:        r.FormValue("linkedin"),
		PictureFileName: fileName,
		PictureData:     fileData,
	}

	fields := struct {
		FirstName string `validate:"required"`
		LastName  string `validate:"required"`
		Email     string `validate:"required,email"`
		Password  string `validate:"required,min=6"`
	}{req.FirstName, req.LastName, req.Email, req.Password}

	if err := h.Validate.Struct(fields); err != nil {
		WriteError(w, "invalid registration data: "+err.Error(), http.StatusBadRequest)
		return
	}

	user, token, err := h.AuthService.Register(r.Context(), req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	h.setTokenCookie(w, token)
	WriteJSON(w, AuthResponse{Token: token, User: user}, http.StatusCreated)
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Validate.Struct(req); err != nil {
		WriteError(w, "email and password are required", http.StatusBadRequest)
		return
	}

	user, token, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	h.setTokenCookie(w, token)
	WriteJSON(w, AuthResponse{Token: token, User: user}, http.StatusOK)
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	WriteJSON(w, map[string]string{"message": "logged out successfully"}, http.StatusOK)
}

// VerifyToken returns the authenticated user for a valid token; the auth
// middleware has already rejected the request otherwise.
func (h *Handlers) VerifyToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFrom(r.Context())
	if !ok {
		WriteError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	user, err := h.UserService.Get(r.Context(), userID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, map[string]*models.User{"user": user}, http.StatusOK)
}

func (h *Handlers) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.Cfg.TokenDuration.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
