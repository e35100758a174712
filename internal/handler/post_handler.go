package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"sociogram/internal/service"
)

func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFrom(r.Context())
	if !ok {
		WriteError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	fileName, fileData, err := h.readUpload(r, "picture")
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	req := service.CreatePostRequest{
		UserID:      userID,
		Description: r.FormValue("description"),
		FileName:    fileName,
		FileData:    fileData,
	}

	post, err := h.PostService.Create(r.Context(), req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, post, http.StatusCreated)
}

func (h *Handlers) GetFeedPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.PostService.ListFeed(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, posts, http.StatusOK)
}

func (h *Handlers) GetUserPosts(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	posts, err := h.PostService.ListByAuthor(r.Context(), userID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, posts, http.StatusOK)
}

func (h *Handlers) LikePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFrom(r.Context())
	if !ok {
		WriteError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	postID := mux.Vars(r)["id"]

	post, err := h.PostService.ToggleLike(r.Context(), postID, userID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, post, http.StatusOK)
}

func (h *Handlers) AddComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFrom(r.Context())
	if !ok {
		WriteError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	postID := mux.Vars(r)["id"]

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	post, err := h.PostService.AddComment(r.Context(), postID, userID, req.Text)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, post, http.StatusOK)
}

func (h *Handlers) GetComments(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["id"]

	comments, err := h.PostService.GetComments(r.Context(), postID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, comments, http.StatusOK)
}

func (h *Handlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFrom(r.Context())
	if !ok {
		WriteError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	postID := mux.Vars(r)["id"]

	if err := h.PostService.Delete(r.Context(), postID, userID); err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, map[string]string{"message": "post deleted successfully"}, http.StatusOK)
}
