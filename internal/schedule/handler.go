package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"creatorhub/internal/schedule/model"
	"creatorhub/internal/schedule/service"
	"creatorhub/middleware"
	"creatorhub/pkg/logger"
)

type ScheduleHandler struct {
	Service *service.ScheduleService
}

func NewScheduleHandler(service *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{Service: service}
}

func (h *ScheduleHandler) SchedulePost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req model.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID := r.Context().Value(middleware.UserIDKey).(string)

	post, err := h.Service.SchedulePost(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, "schedule post", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(post)
}

func (h *ScheduleHandler) GetPosts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := r.Context().Value(middleware.UserIDKey).(string)

	posts, err := h.Service.GetPosts(r.Context(), userID)
	if err != nil {
		logger.Sugar.Errorf("Error fetching scheduled posts: %v", err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(posts)
}

func (h *ScheduleHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	postID := r.URL.Query().Get("postId")
	if postID == "" {
		http.Error(w, "Missing postId parameter", http.StatusBadRequest)
		return
	}

	var req model.UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID := r.Context().Value(middleware.UserIDKey).(string)

	if err := h.Service.UpdatePost(r.Context(), postID, userID, req); err != nil {
		writeServiceError(w, "update scheduled post "+postID, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Scheduled post updated successfully"))
}

func (h *ScheduleHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	postID := r.URL.Query().Get("postId")
	if postID == "" {
		http.Error(w, "Missing postId parameter", http.StatusBadRequest)
		return
	}

	userID := r.Context().Value(middleware.UserIDKey).(string)

	if err := h.Service.DeletePost(r.Context(), postID, userID); err != nil {
		writeServiceError(w, "delete scheduled post "+postID, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Scheduled post deleted successfully"))
}

func writeServiceError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrProjectNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrInvalidPlatform), errors.Is(err, service.ErrMissingDate), errors.Is(err, service.ErrEmptyUpdate):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		logger.Sugar.Errorf("Handler: Failed to %s: %v", action, err)
		http.Error(w, "Failed to "+action, http.StatusInternalServerError)
	}
}
