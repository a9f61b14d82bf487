package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/asventura96/testcenter/internal/model"
	"github.com/asventura96/testcenter/internal/repository"
	"github.com/asventura96/testcenter/internal/response"
	"github.com/asventura96/testcenter/internal/sequence"
	"github.com/asventura96/testcenter/internal/service"
	"github.com/asventura96/testcenter/internal/utils"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type normalizer interface {
	Normalize()
}

// decode reads and validates a JSON body into dst. It writes the 400
// response itself and reports whether the handler may continue.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := utils.DecodeJSON(r, dst); err != nil {
		response.BadRequest(w, "Malformed request body", err.Error())
		return false
	}
	if n, ok := dst.(normalizer); ok {
		n.Normalize()
	}
	if errs := utils.Validate(dst); errs.HasErrors() {
		response.BadRequest(w, "Validation failed", errs)
		return false
	}
	return true
}

// fail maps service and store errors onto HTTP statuses. Unexpected errors
// are logged and reported without detail.
func fail(w http.ResponseWriter, log *zap.Logger, err error) {
	var refErr *service.ReferenceError
	switch {
	case errors.As(err, &refErr):
		response.BadRequest(w, "Validation failed", utils.ValidationErrors{refErr.Field: "does not exist"})

	case errors.Is(err, service.ErrInvalidID),
		errors.Is(err, service.ErrWeakPassword):
		response.BadRequest(w, err.Error(), nil)

	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidRefreshToken):
		response.Unauthorized(w, err.Error())
	case errors.Is(err, service.ErrAccountDisabled):
		response.Forbidden(w, err.Error())

	case errors.Is(err, service.ErrCertifierNotFound),
		errors.Is(err, service.ErrCertificationNotFound),
		errors.Is(err, service.ErrClientNotFound),
		errors.Is(err, service.ErrTestCenterNotFound),
		errors.Is(err, service.ErrExamNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrUnknownKind):
		response.NotFound(w, err.Error())

	case errors.Is(err, service.ErrCertifierInUse),
		errors.Is(err, service.ErrCertificationInUse),
		errors.Is(err, service.ErrClientInUse),
		errors.Is(err, service.ErrTestCenterInUse),
		errors.Is(err, service.ErrAbbreviationTaken),
		errors.Is(err, service.ErrEmailAlreadyExists):
		response.Conflict(w, err.Error())

	case errors.Is(err, repository.ErrForeignKey):
		response.Conflict(w, "Record is referenced by other records")
	case errors.Is(err, repository.ErrDuplicate):
		response.Conflict(w, "Record already exists")

	case errors.Is(err, sequence.ErrOverflow),
		errors.Is(err, sequence.ErrConfiguration):
		response.Unprocessable(w, err.Error())

	case errors.Is(err, sequence.ErrConcurrencyExhausted):
		log.Warn("certification id contention", zap.Error(err))
		response.ServiceUnavailable(w, "Could not assign a certification id, please retry")

	default:
		log.Error("request failed", zap.Error(err))
		response.InternalError(w, "Internal server error")
	}
}

func parseIntQuery(s string, defaultVal int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return defaultVal
	}
	return v
}

// parseBoolQuery returns nil for an absent or unparsable value.
func parseBoolQuery(s string) *bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &b
}

func parseListFilter(r *http.Request) model.ListFilter {
	q := r.URL.Query()
	desc := parseBoolQuery(q.Get("descending"))
	return model.ListFilter{
		Search:     strings.TrimSpace(q.Get("search")),
		Idle:       parseBoolQuery(q.Get("idle")),
		OrderBy:    q.Get("order_by"),
		Descending: desc != nil && *desc,
		Page:       parseIntQuery(q.Get("page"), 1),
		PerPage:    parseIntQuery(q.Get("per_page"), model.DefaultPerPage),
	}
}

func parseIntParam(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, service.ErrInvalidID
	}
	return v, nil
}

func parseInt64Param(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, service.ErrInvalidID
	}
	return v, nil
}

func parseDateQuery(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
