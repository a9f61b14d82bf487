package handler

import (
	"net/http"

	"github.com/asventura96/testcenter/internal/model"
	"github.com/asventura96/testcenter/internal/response"
	"github.com/asventura96/testcenter/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CertifierHandler struct {
	svc service.CertifierService
	log *zap.Logger
}

func NewCertifierHandler(svc service.CertifierService, log *zap.Logger) *CertifierHandler {
	return &CertifierHandler{svc: svc, log: log}
}

// GetAll lists certifiers
// @Summary      List certifiers
// @Tags         certifiers
// @Produce      json
// @Param        search      query  string  false  "Search by name or abbreviation"
// @Param        idle        query  bool    false  "Filter by idle flag"
// @Param        order_by    query  string  false  "id, name, abbreviation or idle"
// @Param        descending  query  bool    false  "Reverse the order"
// @Param        page        query  int     false  "Page number (default 1)"
// @Param        per_page    query  int     false  "Items per page (default 20, max 200)"
// @Security     BearerAuth
// @Success      200  {object}  response.PaginatedResponse
// @Failure      500  {object}  response.Response
// @Router       /certifiers [get]
func (h *CertifierHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	certifiers, pagination, err := h.svc.GetAll(r.Context(), parseListFilter(r))
	if err != nil {
		fail(w, h.log, err)
		return
	}
	response.Paginated(w, "Certifiers retrieved", certifiers, pagination)
}

// GetByID returns one certifier
// @Summary      Get certifier
// @Tags         certifiers
// @Produce      json
// @Param        id   path  int  true  "Certifier ID"
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /certifiers/{id} [get]
func (h *CertifierHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, h.log, err)
		return
	}

	certifier, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		fail(w, h.log, err)
		return
	}
	response.Success(w, "Certifier retrieved", certifier)
}

// Create adds a certifier
// @Summary      Create certifier
// @Tags         certifiers
// @Accept       json
// @Produce      json
// @Param        request  body  model.CreateCertifierRequest  true  "Certifier"
// @Security     BearerAuth
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /certifiers [post]
func (h *CertifierHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCertifierRequest
	if !decode(w, r, &req) {
		return
	}

	certifier, err := h.svc.Create(r.Context(), req)
	if err != nil {
		fail(w, h.log, err)
		return
	}
	response.Created(w, "Certifier created", certifier)
}

// Update edits a certifier
// @Summary      Update certifier
// @Tags         certifiers
// @Accept       json
// @Produce      json
// @Param        id       path  int                           true  "Certifier ID"
// @Param        request  body  model.UpdateCertifierRequest  true  "Certifier"
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /certifiers/{id} [put]
func (h *CertifierHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, h.log, err)
		return
	}

	var req model.UpdateCertifierRequest
	if !decode(w, r, &req) {
		return
	}

	certifier, err := h.svc.Update(r.Context(), id, req)
	if err != nil {
		fail(w, h.log, err)
		return
	}
	response.Success(w, "Certifier updated", certifier)
}

// Delete removes a certifier without certifications
// @Summary      Delete certifier
// @Tags         certifiers
// @Produce      json
// @Param        id   path  int  true  "Certifier ID"
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /certifiers/{id} [delete]
func (h *CertifierHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, h.log, err)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		fail(w, h.log, err)
		return
	}
	response.Success(w, "Certifier deleted", nil)
}
