package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]

	user, err := h.UserService.Get(r.Context(), userID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, user, http.StatusOK)
}

func (h *Handlers) GetUserFriends(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]

	friends, err := h.UserService.GetFriends(r.Context(), userID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, friends, http.StatusOK)
}

func (h *Handlers) ToggleFriend(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	friends, err := h.UserService.ToggleFriend(r.Context(), vars["id"], vars["friendId"])
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, friends, http.StatusOK)
}

func (h *Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]

	var req struct {
		Twitter  string `json:"twitter"`
		LinkedIn string `json:"linkedin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.UserService.UpdateSocialLinks(r.Context(), userID, req.Twitter, req.LinkedIn)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, user, http.StatusOK)
}
