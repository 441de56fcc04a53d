package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"logostage/internal/logger"
	"logostage/internal/model"
)

type httpError struct {
	StatusCode int
	StatusMsg  string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.StatusMsg)
}

type helper struct {
	ctx context.Context
	log *slog.Logger
	r   *http.Request
	w   http.ResponseWriter
}

func newHelper(w http.ResponseWriter, r *http.Request, op string) *helper {
	ctx := r.Context()
	return &helper{
		ctx: ctx,
		log: logger.FromContext(ctx).With("op", op),
		w:   w,
		r:   r,
	}
}

func (h *helper) Ctx() context.Context {
	return h.ctx
}

func (h *helper) Logger() *slog.Logger {
	return h.log
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// WriteError отдает ошибку в JSON-обертке {success:false, error}, как того
// ожидают клиенты шлюза.
func (h *helper) WriteError(err error) {
	httpErr := h.mapError(err)
	h.WriteResponse(errorResponse{Success: false, Error: httpErr.StatusMsg}, httpErr.StatusCode)
}

func (h *helper) mapError(err error) *httpError {
	var httpErr *httpError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	switch {
	case errors.Is(err, model.ErrNoFiles):
		return &httpError{http.StatusBadRequest, err.Error()}
	case errors.Is(err, model.ErrTooManyFiles):
		return &httpError{http.StatusBadRequest, err.Error()}
	case errors.Is(err, model.ErrMissingURL):
		return &httpError{http.StatusBadRequest, err.Error()}
	case errors.Is(err, model.ErrNotImage):
		return &httpError{http.StatusBadRequest, err.Error()}
	}

	// Ошибки хранилища отдаем как есть: клиент показывает их пользователю.
	h.log.Error("operation failed", "error", err)
	return &httpError{http.StatusInternalServerError, err.Error()}
}

func (h *helper) WriteResponse(resp any, statusCode int) {
	h.w.Header().Add("content-type", "application/json")
	h.w.WriteHeader(statusCode)
	err := json.NewEncoder(h.w).Encode(resp)
	if err != nil {
		h.log.Error("write response failed", "error", err)
	}
}

func (h *helper) ReadRequest(req any) error {
	body, err := io.ReadAll(h.r.Body)
	if err != nil {
		msg := "can't read request body"
		h.log.Error(msg, "error", err)
		return &httpError{http.StatusInternalServerError, msg}
	}

	if err := json.Unmarshal(body, req); err != nil {
		msg := "can't parse request body"
		h.log.Error(msg, "error", err)
		return &httpError{http.StatusBadRequest, msg}
	}

	return nil
}
