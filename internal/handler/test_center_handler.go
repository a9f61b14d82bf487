package handler

import (
	"net/http"

	"github.com/asventura96/testcenter/internal/model"
	"github.com/asventura96/testcenter/internal/response"
	"github.com/asventura96/testcenter/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type TestCenterHandler struct {
	svc service.TestCenterService
	log *zap.Logger
}

func NewTestCenterHandler(svc service.TestCenterService, log *zap.Logger) *TestCenterHandler {
	return &TestCenterHandler{svc: svc, log: log}
}

// GetAll godoc
// @Summary      List test centers
// @Tags         test-centers
// @Produce      json
// @Param        search      query  string  false  "Search by name"
// @Param        idle        query  bool    false  "Filter by idle flag"
// @Param        order_by    query  string  false  "id, name or idle"
// @Param        descending  query  bool    false  "Reverse the order"
// @Param        page        query  int     false  "Page number (default 1)"
// @Param        per_page    query  int     false  "Items per page (default 20, max 200)"
// @Security     BearerAuth
// @Success      200  {object}  response.PaginatedResponse
// @Router       /test-centers [get]
func (h *TestCenterHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	centers, pagination, err := h.svc.GetAll(r.Context(), parseListFilter(r))
	if err != nil {
		fail(w, h.log, err)
		return
	}
	response.Paginated(w, "Test centers retrieved", centers, pagination)
}

// GetByID godoc
// @Summary      Get test center
// @Tags         test-centers
// @Produce      json
// @Param        id   path  int  true  "Test center ID"
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /test-centers/{id} [get]
func (h *TestCenterHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, h.log, err)
		return
	}

	center, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		fail(w, h.log, err)
		return
	}
	response.Success(w, "Test center retrieved", center)
}

// Create godoc
// @Summary      Create test center
// @Tags         test-centers
// @Accept       json
// @Produce      json
// @Param        request  body  model.CreateTestCenterRequest  true  "Test center"
// @Security     BearerAuth
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /test-centers [post]
func (h *TestCenterHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateTestCenterRequest
	if !decode(w, r, &req) {
		return
	}

	center, err := h.svc.Create(r.Context(), req)
	if err != nil {
		fail(w, h.log, err)
		return
	}
	response.Created(w, "Test center created", center)
}

// Update godoc
// @Summary      Update test center
// @Tags         test-centers
// @Accept       json
// @Produce      json
// @Param        id       path  int                            true  "Test center ID"
// @Param        request  body  model.UpdateTestCenterRequest  true  "Test center"
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /test-centers/{id} [put]
func (h *TestCenterHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, h.log, err)
		return
	}

	var req model.UpdateTestCenterRequest
	if !decode(w, r, &req) {
		return
	}

	center, err := h.svc.Update(r.Context(), id, req)
	if err != nil {
		fail(w, h.log, err)
		return
	}
	response.Success(w, "Test center updated", center)
}

// Delete godoc
// @Summary      Delete test center
// @Tags         test-centers
// @Produce      json
// @Param        id   path  int  true  "Test center ID"
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /test-centers/{id} [delete]
func (h *TestCenterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, h.log, err)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		fail(w, h.log, err)
		return
	}
	response.Success(w, "Test center deleted", nil)
}
