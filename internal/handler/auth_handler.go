package handler

import (
	"net/http"
	"strings"

	"github.com/asventura96/testcenter/internal/middleware"
	"github.com/asventura96/testcenter/internal/response"
	"github.com/asventura96/testcenter/internal/service"
	"github.com/asventura96/testcenter/internal/utils"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService service.AuthService
	log         *zap.Logger
}

func NewAuthHandler(authService service.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, log: log}
}

// Login godoc
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body  service.LoginRequest  true  "Credentials"
// @Success      200  {object}  response.Response{data=service.LoginResponse}
// @Failure      400  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Failure      429  {object}  response.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Malformed request body", err.Error())
		return
	}
	req.Email = utils.SanitizeString(strings.ToLower(req.Email))
	if errs := utils.Validate(&req); errs.HasErrors() {
		response.BadRequest(w, "Validation failed", errs)
		return
	}

	result, err := h.authService.Login(r.Context(), req)
	if err != nil {
		fail(w, h.log, err)
		return
	}
	response.Success(w, "Login successful", result)
}

// Register godoc
// @Summary      Create a staff account
// @Description  Admin only
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request  body  service.RegisterRequest  true  "User"
// @Security     BearerAuth
// @Success      201  {object}  response.Response{data=model.UserResponse}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /users [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Malformed request body", err.Error())
		return
	}
	req.Name = utils.SanitizeString(req.Name)
	req.Email = utils.SanitizeString(strings.ToLower(req.Email))

	errs := utils.Validate(&req)
	if errs == nil {
		errs = utils.ValidationErrors{}
	}
	if _, bad := errs["password"]; !bad && !utils.IsValidPassword(req.Password) {
		errs["password"] = service.ErrWeakPassword.Error()
	}
	if errs.HasErrors() {
		response.BadRequest(w, "Validation failed", errs)
		return
	}

	user, err := h.authService.Register(r.Context(), req)
	if err != nil {
		fail(w, h.log, err)
		return
	}
	response.Created(w, "User created", user)
}

// RefreshToken godoc
// @Summary      Refresh the token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body  service.RefreshTokenRequest  true  "Refresh token"
// @Success      200  {object}  response.Response{data=utils.TokenPair}
// @Failure      401  {object}  response.Response
// @Router       /auth/refresh [post]
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req service.RefreshTokenRequest
	if !decode(w, r, &req) {
		return
	}

	tokenPair, err := h.authService.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		fail(w, h.log, err)
		return
	}
	response.Success(w, "Token refreshed", tokenPair)
}

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=model.UserResponse}
// @Failure      401  {object}  response.Response
// @Router       /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())
	if userID == "" {
		response.Unauthorized(w, "Not authenticated")
		return
	}

	user, err := h.authService.Me(r.Context(), userID)
	if err != nil {
		fail(w, h.log, err)
		return
	}
	response.Success(w, "Current user", user)
}
