package http

import (
	"net/http"

	"quiz-grading-service/internal/app"
	"quiz-grading-service/internal/auth"
	"quiz-grading-service/internal/domain"
)

// QuestionHandler serves the question catalog. Reads are public, writes require an admin.
type QuestionHandler struct {
	catalog *app.CatalogService
}

func NewQuestionHandler(catalog *app.CatalogService) *QuestionHandler {
	return &QuestionHandler{catalog: catalog}
}

func (h *QuestionHandler) List(w http.ResponseWriter, r *http.Request) {
	questions, err := h.catalog.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questionViews(questions, auth.IsAdmin(r.Context())))
}

func (h *QuestionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, domain.ErrQuestionNotFound)
		return
	}
	q, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questionView(q, auth.IsAdmin(r.Context())))
}

func (h *QuestionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	q, err := h.catalog.Create(r.Context(), domain.QuestionInput{Text: req.Text, Options: optionInputs(req.Options)})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newAdminQuestionView(q))
}

// Replace handles PUT: text and the full option set are both required.
func (h *QuestionHandler) Replace(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, domain.ErrQuestionNotFound)
		return
	}
	var req questionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	h.update(w, r, id, domain.QuestionPatch{Text: &req.Text, Options: optionInputs(req.Options)})
}

// Patch handles PATCH: omitted fields keep their current values.
func (h *QuestionHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, domain.ErrQuestionNotFound)
		return
	}
	var req questionPatchRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	h.update(w, r, id, domain.QuestionPatch{Text: req.Text, Options: optionInputs(req.Options)})
}

func (h *QuestionHandler) update(w http.ResponseWriter, r *http.Request, id int64, patch domain.QuestionPatch) {
	q, err := h.catalog.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newAdminQuestionView(q))
}

func (h *QuestionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, domain.ErrQuestionNotFound)
		return
	}
	if err := h.catalog.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
