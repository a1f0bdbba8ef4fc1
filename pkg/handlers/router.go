package handlers

import (
	"context"
	"log/slog"
	"strings"

	"github.com/valyala/fasthttp"

	"github.com/backsoul/quizquest/pkg/models"
	"github.com/backsoul/quizquest/pkg/services"
)

const claimsKey = "claims"

// HealthChecker reports whether the backing store answers
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthResponse body of GET /api/health
type HealthResponse struct {
	Status  string `json:"status"`
	Quizzes int    `json:"quizzes"`
}

// Router dispatches requests to the handlers
type Router struct {
	Auth     *AuthHandler
	Quizzes  *QuizHandler
	Sessions *SessionHandler
	Rankings *RankingHandler
	WS       *WSHandler

	authService *services.AuthService
	quizService *services.QuizService
	health      HealthChecker
	log         *slog.Logger
}

func NewRouter(authService *services.AuthService, quizService *services.QuizService, health HealthChecker, log *slog.Logger) *Router {
	return &Router{
		authService: authService,
		quizService: quizService,
		health:      health,
		log:         log.With("component", "router"),
	}
}

// Handle is the fasthttp request handler
func (rt *Router) Handle(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	method := string(ctx.Method())

	rt.log.Debug("📡 request", "method", method, "path", path)

	ctx.Response.Header.Set("Server", "QuizQuest-FastHTTP/1.0")
	ctx.Response.Header.Set("Cache-Control", "no-cache")

	ctx.Response.Header.Set("Access-Control-Allow-Origin", "*")
	ctx.Response.Header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	ctx.Response.Header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if method == fasthttp.MethodOptions {
		ctx.SetStatusCode(fasthttp.StatusOK)
		return
	}

	switch {
	case path == "/api/health":
		rt.HealthCheck(ctx)
	case path == "/api/categories" && method == fasthttp.MethodGet:
		rt.Quizzes.Categories(ctx)

	// Users and login
	case path == "/api/users/names" && method == fasthttp.MethodGet:
		rt.Auth.ListUserNames(ctx)
	case path == "/api/auth/bootstrap" && method == fasthttp.MethodPost:
		rt.Auth.Bootstrap(ctx)
	case path == "/api/auth/login" && method == fasthttp.MethodPost:
		rt.Auth.Login(ctx)
	case path == "/api/users/me/nickname" && method == fasthttp.MethodPut:
		rt.withUser(ctx, rt.Auth.UpdateNickname)

	// Quizzes
	case path == "/api/quizzes/extract" && method == fasthttp.MethodPost:
		rt.withUser(ctx, rt.Quizzes.Extract)
	case strings.HasPrefix(path, "/api/quizzes/"):
		rt.handleQuizRoutes(ctx, path, method)

	// Sessions
	case path == "/api/sessions" && method == fasthttp.MethodPost:
		rt.withUser(ctx, rt.Sessions.CreateSession)
	case strings.HasPrefix(path, "/api/sessions/"):
		rt.handleSessionRoutes(ctx, path, method)

	case path == "/api/rankings" && method == fasthttp.MethodGet:
		rt.withUser(ctx, rt.Rankings.Leaderboards)

	// Admin
	case path == "/api/admin/users" && method == fasthttp.MethodPost:
		rt.withTeacher(ctx, rt.Auth.RegisterStudents)
	case path == "/api/admin/scores" && method == fasthttp.MethodGet:
		rt.withTeacher(ctx, rt.Auth.ScoreTable)

	case path == "/ws":
		rt.WS.HandleWebSocket(ctx)

	default:
		serve404(ctx)
	}
}

func (rt *Router) handleQuizRoutes(ctx *fasthttp.RequestCtx, path, method string) {
	parts := strings.Split(path, "/")

	// /api/quizzes/{id}
	if len(parts) == 4 && method == fasthttp.MethodGet {
		ctx.SetUserValue("id", parts[3])
		rt.withUser(ctx, rt.Quizzes.GetQuiz)
		return
	}

	// /api/quizzes/{id}/like
	if len(parts) == 5 && parts[4] == "like" && method == fasthttp.MethodPost {
		ctx.SetUserValue("id", parts[3])
		rt.withUser(ctx, rt.Quizzes.ToggleLike)
		return
	}

	serve404(ctx)
}

func (rt *Router) handleSessionRoutes(ctx *fasthttp.RequestCtx, path, method string) {
	parts := strings.Split(path, "/")

	// /api/sessions/{id}
	if len(parts) == 4 && method == fasthttp.MethodGet {
		ctx.SetUserValue("id", parts[3])
		rt.withUser(ctx, rt.Sessions.GetSession)
		return
	}

	if len(parts) == 4 && method == fasthttp.MethodDelete {
		ctx.SetUserValue("id", parts[3])
		rt.withUser(ctx, rt.Sessions.Discard)
		return
	}

	if len(parts) != 5 || method != fasthttp.MethodPost {
		serve404(ctx)
		return
	}

	ctx.SetUserValue("id", parts[3])
	switch parts[4] {
	case "start":
		rt.withUser(ctx, rt.Sessions.Start)
	case "answer":
		rt.withUser(ctx, rt.Sessions.SubmitAnswer)
	case "next":
		rt.withUser(ctx, rt.Sessions.Next)
	case "end":
		rt.withUser(ctx, rt.Sessions.End)
	default:
		serve404(ctx)
	}
}

// HealthCheck handles GET /api/health
func (rt *Router) HealthCheck(ctx *fasthttp.RequestCtx) {
	if err := rt.health.HealthCheck(ctx); err != nil {
		respondWithError(ctx, fasthttp.StatusServiceUnavailable, "redis unavailable: "+err.Error())
		return
	}

	count, err := rt.quizService.QuizCount(ctx)
	if err != nil {
		respondWithServiceError(ctx, err)
		return
	}
	respondWithSuccess(ctx, HealthResponse{Status: "ok", Quizzes: count}, "server healthy")
}

// withUser runs next only for requests carrying a valid bearer token
func (rt *Router) withUser(ctx *fasthttp.RequestCtx, next fasthttp.RequestHandler) {
	if _, ok := rt.authenticate(ctx); ok {
		next(ctx)
	}
}

// withTeacher runs next only for teachers
func (rt *Router) withTeacher(ctx *fasthttp.RequestCtx, next fasthttp.RequestHandler) {
	claims, ok := rt.authenticate(ctx)
	if !ok {
		return
	}
	if claims.Role != models.RoleTeacher {
		respondWithError(ctx, fasthttp.StatusForbidden, "teacher role required")
		return
	}
	next(ctx)
}

func (rt *Router) authenticate(ctx *fasthttp.RequestCtx) (*services.Claims, bool) {
	header := string(ctx.Request.Header.Peek(fasthttp.HeaderAuthorization))
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		respondWithError(ctx, fasthttp.StatusUnauthorized, "missing bearer token")
		return nil, false
	}

	claims, err := rt.authService.Authenticate(token)
	if err != nil {
		respondWithServiceError(ctx, err)
		return nil, false
	}
	ctx.SetUserValue(claimsKey, claims)
	return claims, true
}

// claimsFrom returns the claims stored by withUser or withTeacher
func claimsFrom(ctx *fasthttp.RequestCtx) *services.Claims {
	claims, _ := ctx.UserValue(claimsKey).(*services.Claims)
	if claims == nil {
		return &services.Claims{}
	}
	return claims
}

func serve404(ctx *fasthttp.RequestCtx) {
	respondWithError(ctx, fasthttp.StatusNotFound, "route not found: "+string(ctx.Method())+" "+string(ctx.Path()))
}
