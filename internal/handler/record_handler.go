package handler

import (
	"net/http"

	"github.com/asventura96/testcenter/internal/response"
	"github.com/asventura96/testcenter/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RecordHandler deletes any registered record kind through one route.
type RecordHandler struct {
	registry *service.DeleteRegistry
	log      *zap.Logger
}

func NewRecordHandler(registry *service.DeleteRegistry, log *zap.Logger) *RecordHandler {
	return &RecordHandler{registry: registry, log: log}
}

// Kinds godoc
// @Summary      List deletable record kinds
// @Tags         records
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Router       /records [get]
func (h *RecordHandler) Kinds(w http.ResponseWriter, r *http.Request) {
	response.Success(w, "Record kinds", h.registry.Kinds())
}

// Delete godoc
// @Summary      Delete a record
// @Tags         records
// @Produce      json
// @Param        kind  path  string  true  "certifier, certification, client, test-center or exam"
// @Param        id    path  string  true  "Record ID"
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /records/{kind}/{id} [delete]
func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	if err := h.registry.Delete(r.Context(), kind, chi.URLParam(r, "id")); err != nil {
		fail(w, h.log, err)
		return
	}
	response.Success(w, "Record deleted", map[string]string{"kind": kind})
}
