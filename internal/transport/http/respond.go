package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"quiz-grading-service/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Detail string            `json:"detail"`
	Field  string            `json:"field,omitempty"`
	Rule   string            `json:"rule,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

var validate = newValidator()

// newValidator reports field errors under their JSON names and rejects
// whitespace-only values tagged notblank.
func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}

// writeError maps domain errors onto HTTP responses; anything unknown is a 500.
func writeError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Detail: verr.Message, Field: verr.Field, Rule: verr.Rule})
	case errors.Is(err, domain.ErrEmptyResponses), errors.Is(err, domain.ErrOptionMismatch):
		writeDetail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrOptionNotFound),
		errors.Is(err, domain.ErrAttemptNotFound):
		writeDetail(w, http.StatusNotFound, err.Error())
	default:
		log.Printf("internal error: %v", err)
		writeDetail(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeAndValidate reads a JSON body into dst and runs its validate tags.
// It writes the 400 response itself and reports false when the request is rejected.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeDetail(w, http.StatusBadRequest, "malformed request body")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			writeDetail(w, http.StatusBadRequest, "invalid request")
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			ns := fe.Namespace()
			if i := strings.Index(ns, "."); i >= 0 {
				ns = ns[i+1:]
			}
			fields[ns] = fe.Tag()
		}
		writeJSON(w, http.StatusBadRequest, errorBody{Detail: "invalid request", Fields: fields})
		return false
	}
	return true
}

// pathID parses the {id} URL parameter.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
