package handler

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"creatorhub/internal/gemini"
	projectservice "creatorhub/internal/project/service"
	"creatorhub/internal/studio/model"
	"creatorhub/internal/studio/service"
	"creatorhub/middleware"
	"creatorhub/pkg/logger"
)

// maxBodyBytes allows a base64 image of roughly 15 MB.
const maxBodyBytes = 20 << 20

type StudioHandler struct {
	Service *service.StudioService
}

func NewStudioHandler(service *service.StudioService) *StudioHandler {
	return &StudioHandler{Service: service}
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (h *StudioHandler) GenerateText(w http.ResponseWriter, r *http.Request) {
	var req model.TextRequest
	if !decodePost(w, r, &req) {
		return
	}

	res, err := h.Service.Text(r.Context(), req.Prompt)
	if err != nil {
		writeAIError(w, "generate text", err)
		return
	}
	writeJSON(w, http.StatusOK, textResponse(res))
}

func (h *StudioHandler) AnalyzeImage(w http.ResponseWriter, r *http.Request) {
	var req model.VisionRequest
	if !decodePost(w, r, &req) {
		return
	}
	image, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "image must be base64 encoded")
		return
	}

	res, err := h.Service.Vision(r.Context(), req.Prompt, image, req.MIMEType)
	if err != nil {
		writeAIError(w, "analyze image", err)
		return
	}
	writeJSON(w, http.StatusOK, textResponse(res))
}

func (h *StudioHandler) GenerateImage(w http.ResponseWriter, r *http.Request) {
	var req model.ImageRequest
	if !decodePost(w, r, &req) {
		return
	}

	img, err := h.Service.Image(r.Context(), req.Prompt, req.AspectRatio)
	if err != nil {
		writeAIError(w, "generate image", err)
		return
	}
	writeJSON(w, http.StatusOK, model.ImageResponse{
		Image:    base64.StdEncoding.EncodeToString(img.Data),
		MIMEType: img.MIMEType,
	})
}

// Synthesize responds with a WAV file rather than JSON.
func (h *StudioHandler) Synthesize(w http.ResponseWriter, r *http.Request) {
	var req model.SpeechRequest
	if !decodePost(w, r, &req) {
		return
	}

	speech, err := h.Service.Speech(r.Context(), req.Text, req.Voice)
	if err != nil {
		writeAIError(w, "synthesize speech", err)
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Length", strconv.Itoa(len(speech.WAV)))
	w.Header().Set("X-Sample-Rate", strconv.Itoa(speech.SampleRate))
	w.Header().Set("X-Voice", speech.Voice)
	w.WriteHeader(http.StatusOK)
	w.Write(speech.WAV)
}

func (h *StudioHandler) RecommendBooks(w http.ResponseWriter, r *http.Request) {
	var req model.BooksRequest
	if !decodePost(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, map[string][]model.Book{
		"books": h.Service.RecommendBooks(r.Context(), req.Topic),
	})
}

func (h *StudioHandler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	var req model.DraftRequest
	if !decodePost(w, r, &req) {
		return
	}

	userID := r.Context().Value(middleware.UserIDKey).(string)

	draft, err := h.Service.CreateDraft(r.Context(), userID, req.Type, req.Topic)
	if err != nil {
		writeAIError(w, "create draft", err)
		return
	}
	writeJSON(w, http.StatusCreated, draft)
}

func (h *StudioHandler) GetPresets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.Service.Presets.All())
}

func (h *StudioHandler) GetVoices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"default": gemini.DefaultVoice,
		"voices":  gemini.Voices,
	})
}

func decodePost(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "invalid_request", "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return false
	}
	return true
}

func textResponse(res gemini.TextResult) model.TextResponse {
	return model.TextResponse{Text: res.Text, Truncated: res.Truncated, FinishReason: res.FinishReason}
}

// aiStatus maps a failure to the status the browser sees. Upstream
// credential problems are the server's fault, not the caller's.
func aiStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrEmptyInput), errors.Is(err, service.ErrNoPreset),
		errors.Is(err, projectservice.ErrInvalidType):
		return http.StatusBadRequest, "invalid_request"
	}

	var gerr *gemini.Error
	if !errors.As(err, &gerr) {
		return http.StatusInternalServerError, "internal"
	}
	kind := gerr.Kind.String()
	switch gerr.Kind {
	case gemini.KindTerminalClient:
		switch {
		case gerr.Status == http.StatusUnauthorized || gerr.Status == http.StatusForbidden:
			return http.StatusBadGateway, kind
		case gerr.Status >= 400 && gerr.Status < 500:
			return gerr.Status, kind
		}
		return http.StatusBadRequest, kind
	case gemini.KindContentBlocked:
		return http.StatusUnprocessableEntity, kind
	case gemini.KindMalformedResponse, gemini.KindTruncated:
		return http.StatusBadGateway, kind
	case gemini.KindRetriesExhausted, gemini.KindTransientServer, gemini.KindTransientNetwork:
		return http.StatusServiceUnavailable, kind
	}
	return http.StatusInternalServerError, kind
}

func writeAIError(w http.ResponseWriter, action string, err error) {
	status, kind := aiStatus(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		logger.Sugar.Errorf("Handler: Failed to %s: %v", action, err)
		if status == http.StatusInternalServerError {
			msg = "Failed to " + action
		}
	}
	writeError(w, status, kind, msg)
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Kind: kind, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Sugar.Errorf("Error encoding response: %v", err)
	}
}
