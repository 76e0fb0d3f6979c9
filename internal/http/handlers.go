package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"finchat/internal/core"
	"finchat/internal/log"
)

const (
	rootBanner   = "AI Finance Chatbot Backend OK"
	maxBodyBytes = 64 << 10
)

type chatRequest struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

type chatResponse struct {
	Answer string `json:"answer"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Code    string `json:"code"`
}

func handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(rootBanner))
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
		defer cancel()
		if err := s.ready.Ping(ctx); err != nil {
			log.FromContext(ctx).WarnContext(ctx, "Readiness check failed", log.FieldError, err)
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	// Empty and non-JSON bodies carry no fields and fail validation below.
	if isJSON(r) {
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body", Code: core.CodeValidation})
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	answer, err := s.chat.Answer(ctx, req.UserID, req.Message)
	if err != nil {
		s.writeChatError(ctx, w, req, err)
		return
	}

	log.FromContext(ctx).InfoContext(ctx, "Chat answered",
		log.NewFields().WithChat(req.UserID, answer.Intent.String()).ToSlice()...)
	writeJSON(w, http.StatusOK, chatResponse{Answer: answer.Text})
}

// writeChatError maps validation failures to 400 and everything else to a
// 500 carrying the error text and its classification code.
func (s *Server) writeChatError(ctx context.Context, w http.ResponseWriter, req chatRequest, err error) {
	code := core.ErrorCode(err)

	if errors.Is(err, core.ErrValidation) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "userId and message required", Code: code})
		return
	}

	log.FromContext(ctx).LogError(ctx, "Chat request failed", err, code,
		log.NewFields().WithChat(req.UserID, "").WithOperation(log.OpAnswer))
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Error:   "Server error",
		Details: err.Error(),
		Code:    code,
	})
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && (mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"))
}

func handleRateLimited(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusTooManyRequests, errorResponse{
		Error: "Rate limit exceeded. Please try again later.",
		Code:  "rate_limited",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
