package handler

import (
	"net/http"

	"sociogram/internal/apperrors"
	"sociogram/internal/service"
)

func (h *Handlers) CreateStory(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFrom(r.Context())
	if !ok {
		WriteError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	fileName, fileData, err := h.readUpload(r, "media")
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if len(fileData) == 0 {
		WriteServiceError(w, apperrors.Validation("a media file is required"))
		return
	}

	req := service.SubmitStoryRequest{
		UserID:     userID,
		FileName:   fileName,
		FileData:   fileData,
		SongName:   r.FormValue("songName"),
		SongArtist: r.FormValue("songArtist"),
	}

	story, err := h.StoryService.Submit(r.Context(), req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, story, http.StatusCreated)
}

func (h *Handlers) GetStories(w http.ResponseWriter, r *http.Request) {
	stories, err := h.StoryService.ListVisible(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, stories, http.StatusOK)
}
