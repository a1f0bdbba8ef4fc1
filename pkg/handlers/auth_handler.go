package handlers

import (
	"github.com/valyala/fasthttp"

	"github.com/backsoul/quizquest/pkg/models"
	"github.com/backsoul/quizquest/pkg/services"
)

// AuthHandler serves login, nickname and user administration routes
type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// LoginResponse is returned by a successful login
type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Bootstrap handles POST /api/auth/bootstrap
func (h *AuthHandler) Bootstrap(ctx *fasthttp.RequestCtx) {
	var req models.LoginRequest
	if !decodeBody(ctx, &req) {
		return
	}

	user, err := h.auth.Bootstrap(ctx, req.RealName, req.Password)
	if err != nil {
		respondWithServiceError(ctx, err)
		return
	}
	respondWithSuccess(ctx, user, "admin account created")
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	var req models.LoginRequest
	if !decodeBody(ctx, &req) {
		return
	}

	user, token, err := h.auth.Login(ctx, req.RealName, req.Password)
	if err != nil {
		respondWithServiceError(ctx, err)
		return
	}
	respondWithSuccess(ctx, LoginResponse{Token: token, User: user}, "logged in")
}

// ListUserNames handles GET /api/users/names
func (h *AuthHandler) ListUserNames(ctx *fasthttp.RequestCtx) {
	names, err := h.auth.ListUserNames(ctx)
	if err != nil {
		respondWithServiceError(ctx, err)
		return
	}
	respondWithSuccess(ctx, names, "")
}

// UpdateNickname handles PUT /api/users/me/nickname
func (h *AuthHandler) UpdateNickname(ctx *fasthttp.RequestCtx) {
	var req models.NicknameRequest
	if !decodeBody(ctx, &req) {
		return
	}

	claims := claimsFrom(ctx)
	if err := h.auth.UpdateNickname(ctx, claims.Subject, req.Nickname); err != nil {
		respondWithServiceError(ctx, err)
		return
	}
	user, err := h.auth.GetUser(ctx, claims.Subject)
	if err != nil {
		respondWithServiceError(ctx, err)
		return
	}
	respondWithSuccess(ctx, user, "nickname updated")
}

// RegisterStudents handles POST /api/admin/users. The body is plain text
// with one "name,password" per line.
func (h *AuthHandler) RegisterStudents(ctx *fasthttp.RequestCtx) {
	result, err := h.auth.RegisterStudents(ctx, string(ctx.PostBody()))
	if err != nil {
		respondWithServiceError(ctx, err)
		return
	}
	respondWithSuccess(ctx, result, "students registered")
}

// ScoreTable handles GET /api/admin/scores
func (h *AuthHandler) ScoreTable(ctx *fasthttp.RequestCtx) {
	rows, err := h.auth.ScoreTable(ctx)
	if err != nil {
		respondWithServiceError(ctx, err)
		return
	}
	respondWithSuccess(ctx, rows, "")
}
