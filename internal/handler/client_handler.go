package handler

import (
	"net/http"

	"github.com/asventura96/testcenter/internal/model"
	"github.com/asventura96/testcenter/internal/response"
	"github.com/asventura96/testcenter/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ClientHandler struct {
	svc service.ClientService
	log *zap.Logger
}

func NewClientHandler(svc service.ClientService, log *zap.Logger) *ClientHandler {
	return &ClientHandler{svc: svc, log: log}
}

// GetAll godoc
// @Summary      List clients
// @Tags         clients
// @Produce      json
// @Param        search      query  string  false  "Search by name or UID"
// @Param        idle        query  bool    false  "Filter by idle flag"
// @Param        order_by    query  string  false  "uid, name, country, city or idle"
// @Param        descending  query  bool    false  "Reverse the order"
// @Param        page        query  int     false  "Page number (default 1)"
// @Param        per_page    query  int     false  "Items per page (default 20, max 200)"
// @Security     BearerAuth
// @Success      200  {object}  response.PaginatedResponse
// @Router       /clients [get]
func (h *ClientHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	clients, pagination, err := h.svc.GetAll(r.Context(), parseListFilter(r))
	if err != nil {
		fail(w, h.log, err)
		return
	}
	response.Paginated(w, "Clients retrieved", clients, pagination)
}

// GetByUID godoc
// @Summary      Get client
// @Tags         clients
// @Produce      json
// @Param        uid  path  int  true  "Client UID"
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /clients/{uid} [get]
func (h *ClientHandler) GetByUID(w http.ResponseWriter, r *http.Request) {
	uid, err := parseInt64Param(chi.URLParam(r, "uid"))
	if err != nil {
		fail(w, h.log, err)
		return
	}

	client, err := h.svc.GetByUID(r.Context(), uid)
	if err != nil {
		fail(w, h.log, err)
		return
	}
	response.Success(w, "Client retrieved", client)
}

// Create godoc
// @Summary      Create client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        request  body  model.CreateClientRequest  true  "Client"
// @Security     BearerAuth
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /clients [post]
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateClientRequest
	if !decode(w, r, &req) {
		return
	}

	client, err := h.svc.Create(r.Context(), req)
	if err != nil {
		fail(w, h.log, err)
		return
	}
	response.Created(w, "Client created", client)
}

// Update godoc
// @Summary      Update client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        uid      path  int                        true  "Client UID"
// @Param        request  body  model.UpdateClientRequest  true  "Client"
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /clients/{uid} [put]
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, err := parseInt64Param(chi.URLParam(r, "uid"))
	if err != nil {
		fail(w, h.log, err)
		return
	}

	var req model.UpdateClientRequest
	if !decode(w, r, &req) {
		return
	}

	client, err := h.svc.Update(r.Context(), uid, req)
	if err != nil {
		fail(w, h.log, err)
		return
	}
	response.Success(w, "Client updated", client)
}

// Delete godoc
// @Summary      Delete client
// @Tags         clients
// @Produce      json
// @Param        uid  path  int  true  "Client UID"
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /clients/{uid} [delete]
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, err := parseInt64Param(chi.URLParam(r, "uid"))
	if err != nil {
		fail(w, h.log, err)
		return
	}

	if err := h.svc.Delete(r.Context(), uid); err != nil {
		fail(w, h.log, err)
		return
	}
	response.Success(w, "Client deleted", nil)
}
