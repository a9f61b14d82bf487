package handler

import (
	"net/http"
	"strconv"

	"github.com/asventura96/testcenter/internal/model"
	"github.com/asventura96/testcenter/internal/response"
	"github.com/asventura96/testcenter/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CertificationHandler struct {
	svc service.CertificationService
	log *zap.Logger
}

func NewCertificationHandler(svc service.CertificationService, log *zap.Logger) *CertificationHandler {
	return &CertificationHandler{svc: svc, log: log}
}

// GetAll lists certifications
// @Summary      List certifications
// @Tags         certifications
// @Produce      json
// @Param        search        query  string  false  "Search by name or exam code"
// @Param        certifier_id  query  int     false  "Filter by certifier"
// @Param        idle          query  bool    false  "Filter by idle flag"
// @Param        order_by      query  string  false  "id, name, exam_code, duration, idle or certifier"
// @Param        descending    query  bool    false  "Reverse the order"
// @Param        page          query  int     false  "Page number (default 1)"
// @Param        per_page      query  int     false  "Items per page (default 20, max 200)"
// @Security     BearerAuth
// @Success      200  {object}  response.PaginatedResponse
// @Router       /certifications [get]
func (h *CertificationHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	filter := model.CertificationFilter{ListFilter: parseListFilter(r)}
	if v := r.URL.Query().Get("certifier_id"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			filter.CertifierID = &id
		}
	}

	certifications, pagination, err := h.svc.GetAll(r.Context(), filter)
	if err != nil {
		fail(w, h.log, err)
		return
	}
	response.Paginated(w, "Certifications retrieved", certifications, pagination)
}

// GetByID returns one certification
// @Summary      Get certification
// @Tags         certifications
// @Produce      json
// @Param        id   path  string  true  "Certification ID, e.g. CIS0001"
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /certifications/{id} [get]
func (h *CertificationHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	certification, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, h.log, err)
		return
	}
	response.Success(w, "Certification retrieved", certification)
}

// Create adds a certification and assigns its id from the certifier's sequence
// @Summary      Create certification
// @Tags         certifications
// @Accept       json
// @Produce      json
// @Param        request  body  model.CreateCertificationRequest  true  "Certification"
// @Security     BearerAuth
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      422  {object}  response.Response  "Sequence exhausted or bad abbreviation"
// @Failure      503  {object}  response.Response  "Id contention, retry"
// @Router       /certifications [post]
func (h *CertificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCertificationRequest
	if !decode(w, r, &req) {
		return
	}

	certification, err := h.svc.Create(r.Context(), req)
	if err != nil {
		fail(w, h.log, err)
		return
	}
	response.Created(w, "Certification created", certification)
}

// Update edits a certification; its id never changes
// @Summary      Update certification
// @Tags         certifications
// @Accept       json
// @Produce      json
// @Param        id       path  string                            true  "Certification ID"
// @Param        request  body  model.UpdateCertificationRequest  true  "Certification"
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /certifications/{id} [put]
func (h *CertificationHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateCertificationRequest
	if !decode(w, r, &req) {
		return
	}

	certification, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		fail(w, h.log, err)
		return
	}
	response.Success(w, "Certification updated", certification)
}

// Delete removes a certification without exams
// @Summary      Delete certification
// @Tags         certifications
// @Produce      json
// @Param        id   path  string  true  "Certification ID"
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /certifications/{id} [delete]
func (h *CertificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		fail(w, h.log, err)
		return
	}
	response.Success(w, "Certification deleted", nil)
}
