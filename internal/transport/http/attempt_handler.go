package http

import (
	"errors"
	"net/http"
	"strconv"

	"quiz-grading-service/internal/app"
	"quiz-grading-service/internal/domain"
)

type AttemptHandler struct {
	attempts *app.AttemptService
}

func NewAttemptHandler(attempts *app.AttemptService) *AttemptHandler {
	return &AttemptHandler{attempts: attempts}
}

// Submit grades an anonymous submission and returns the stored attempt.
func (h *AttemptHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submissionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	attempt, err := h.attempts.Submit(r.Context(), req.toDomain())
	if err != nil {
		// Unknown ids inside a submission are bad input, not missing resources.
		if errors.Is(err, domain.ErrQuestionNotFound) || errors.Is(err, domain.ErrOptionNotFound) {
			writeDetail(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newAttemptView(attempt))
}

// List returns the latest attempts; ?limit= may lower the default cap.
func (h *AttemptHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := app.MaxListedAttempts
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, errorBody{Detail: "invalid request", Fields: map[string]string{"limit": "gt"}})
			return
		}
		limit = n
	}

	attempts, err := h.attempts.List(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]attemptView, 0, len(attempts))
	for _, a := range attempts {
		out = append(out, newAttemptView(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AttemptHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, domain.ErrAttemptNotFound)
		return
	}
	attempt, err := h.attempts.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newAttemptView(attempt))
}
