package handlers

import (
	"github.com/valyala/fasthttp"

	"github.com/backsoul/quizquest/pkg/models"
	"github.com/backsoul/quizquest/pkg/services"
)

// SessionHandler serves the quiz-play session routes
type SessionHandler struct {
	sessions *services.SessionService
}

func NewSessionHandler(sessions *services.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// CreateSession handles POST /api/sessions
func (h *SessionHandler) CreateSession(ctx *fasthttp.RequestCtx) {
	session, err := h.sessions.CreateSession(ctx, claimsFrom(ctx).Subject)
	if err != nil {
		respondWithServiceError(ctx, err)
		return
	}
	respondWithSuccess(ctx, models.SessionResponse{Session: session}, "session created")
}

// GetSession handles GET /api/sessions/{id}
func (h *SessionHandler) GetSession(ctx *fasthttp.RequestCtx) {
	session, err := h.sessions.GetSession(ctx, sessionID(ctx), claimsFrom(ctx).Subject)
	if err != nil {
		respondWithServiceError(ctx, err)
		return
	}
	respondWithSuccess(ctx, models.SessionResponse{Session: session}, "")
}

// Start handles POST /api/sessions/{id}/start
func (h *SessionHandler) Start(ctx *fasthttp.RequestCtx) {
	var req models.StartRequest
	if !decodeBody(ctx, &req) {
		return
	}

	session, err := h.sessions.Start(ctx, sessionID(ctx), claimsFrom(ctx).Subject, req.Mode)
	if err != nil {
		respondWithServiceError(ctx, err)
		return
	}
	respondWithSuccess(ctx, models.SessionResponse{Session: session}, "quiz started")
}

// SubmitAnswer handles POST /api/sessions/{id}/answer
func (h *SessionHandler) SubmitAnswer(ctx *fasthttp.RequestCtx) {
	var req models.AnswerRequest
	if !decodeBody(ctx, &req) {
		return
	}

	session, result, err := h.sessions.Answer(ctx, sessionID(ctx), claimsFrom(ctx).Subject, req.Choice)
	if err != nil {
		respondWithServiceError(ctx, err)
		return
	}
	respondWithSuccess(ctx, models.SessionResponse{Session: session, Result: &result}, "")
}

// Next handles POST /api/sessions/{id}/next
func (h *SessionHandler) Next(ctx *fasthttp.RequestCtx) {
	session, err := h.sessions.Next(ctx, sessionID(ctx), claimsFrom(ctx).Subject)
	if err != nil {
		respondWithServiceError(ctx, err)
		return
	}
	respondWithSuccess(ctx, models.SessionResponse{Session: session}, "")
}

// End handles POST /api/sessions/{id}/end
func (h *SessionHandler) End(ctx *fasthttp.RequestCtx) {
	session, summary, err := h.sessions.End(ctx, sessionID(ctx), claimsFrom(ctx).Subject)
	if err != nil {
		respondWithServiceError(ctx, err)
		return
	}
	respondWithSuccess(ctx, models.SessionResponse{Session: session, Summary: &summary}, "session ended")
}

// Discard handles DELETE /api/sessions/{id}
func (h *SessionHandler) Discard(ctx *fasthttp.RequestCtx) {
	if err := h.sessions.Discard(ctx, sessionID(ctx), claimsFrom(ctx).Subject); err != nil {
		respondWithServiceError(ctx, err)
		return
	}
	respondWithSuccess(ctx, nil, "session discarded")
}

func sessionID(ctx *fasthttp.RequestCtx) string {
	return ctx.UserValue("id").(string)
}
