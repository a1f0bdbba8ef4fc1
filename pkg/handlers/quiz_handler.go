package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/valyala/fasthttp"

	"github.com/backsoul/quizquest/pkg/models"
	"github.com/backsoul/quizquest/pkg/services"
	websocketHub "github.com/backsoul/quizquest/pkg/websocket"
)

// NoQuizzesFoundMessage is shown when an upload produced nothing
const NoQuizzesFoundMessage = "クイズが見つかりませんでした"

// ClosableDocument is an opened upload
type ClosableDocument interface {
	services.Document
	Close() error
}

// DocumentOpener parses an uploaded file
type DocumentOpener func(data []byte) (ClosableDocument, error)

// QuizHandler serves extraction, quiz lookup and likes
type QuizHandler struct {
	quizzes   *services.QuizService
	scores    *services.ScoreService
	auth      *services.AuthService
	extractor *services.Extractor
	open      DocumentOpener
	hub       *websocketHub.Hub
	log       *slog.Logger
}

func NewQuizHandler(quizzes *services.QuizService, scores *services.ScoreService, auth *services.AuthService,
	extractor *services.Extractor, open DocumentOpener, hub *websocketHub.Hub, log *slog.Logger) *QuizHandler {
	return &QuizHandler{
		quizzes:   quizzes,
		scores:    scores,
		auth:      auth,
		extractor: extractor,
		open:      open,
		hub:       hub,
		log:       log.With("component", "quiz_handler"),
	}
}

// CategoriesResponse lists the topic labels and playable modes
type CategoriesResponse struct {
	Categories        []string `json:"categories"`
	RankingCategories []string `json:"rankingCategories"`
}

// ExtractResponse reports an extraction run
type ExtractResponse struct {
	Count     int    `json:"count"`
	CreatedBy string `json:"createdBy"`
}

// QuizView is a quiz with the caller's like state
type QuizView struct {
	models.QuizRecord
	Liked bool `json:"liked"`
}

// Categories handles GET /api/categories
func (h *QuizHandler) Categories(ctx *fasthttp.RequestCtx) {
	respondWithSuccess(ctx, CategoriesResponse{
		Categories:        models.Categories,
		RankingCategories: models.RankingCategories,
	}, "")
}

// Extract handles POST /api/quizzes/extract. The PDF is either the raw body
// or the "file" field of a multipart form.
func (h *QuizHandler) Extract(ctx *fasthttp.RequestCtx) {
	claims := claimsFrom(ctx)
	user, err := h.auth.GetUser(ctx, claims.Subject)
	if err != nil {
		respondWithServiceError(ctx, err)
		return
	}

	data, err := uploadedFile(ctx)
	if err != nil {
		respondWithError(ctx, fasthttp.StatusBadRequest, err.Error())
		return
	}

	doc, err := h.open(data)
	if err != nil {
		h.log.Warn("⚠️ could not open upload", "user", user.ID, "err", err)
		respondWithError(ctx, fasthttp.StatusBadRequest, "could not read PDF")
		return
	}
	defer doc.Close()

	showName := ctx.QueryArgs().GetBool("show_name")
	h.log.Info("📄 extraction started", "user", user.ID, "pages", doc.PageCount(), "show_name", showName)

	records := h.extractor.Extract(ctx, doc, user.Nickname, showName)
	if len(records) == 0 {
		respondWithError(ctx, fasthttp.StatusUnprocessableEntity, NoQuizzesFoundMessage)
		return
	}

	createdBy := records[0].CreatedBy
	saved, err := h.quizzes.SaveAll(ctx, records)
	if saved > 0 {
		h.hub.BroadcastQuizzesAdded(saved, createdBy)
	}
	if err != nil {
		respondWithError(ctx, fasthttp.StatusInternalServerError,
			fmt.Sprintf("saved %d of %d quizzes: %v", saved, len(records), err))
		return
	}

	respondWithSuccess(ctx, ExtractResponse{Count: saved, CreatedBy: createdBy},
		fmt.Sprintf("%d quizzes added", saved))
}

func uploadedFile(ctx *fasthttp.RequestCtx) ([]byte, error) {
	if fh, err := ctx.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(f)
	}

	body := ctx.PostBody()
	if len(body) == 0 {
		return nil, errors.New("empty upload")
	}
	return append([]byte(nil), body...), nil
}

// GetQuiz handles GET /api/quizzes/{id}
func (h *QuizHandler) GetQuiz(ctx *fasthttp.RequestCtx) {
	id := ctx.UserValue("id").(string)
	quiz, err := h.quizzes.GetQuiz(ctx, id)
	if err != nil {
		respondWithServiceError(ctx, err)
		return
	}

	liked, err := h.scores.HasLiked(ctx, id, claimsFrom(ctx).Subject)
	if err != nil {
		respondWithServiceError(ctx, err)
		return
	}
	respondWithSuccess(ctx, QuizView{QuizRecord: *quiz, Liked: liked}, "")
}

// ToggleLike handles POST /api/quizzes/{id}/like
func (h *QuizHandler) ToggleLike(ctx *fasthttp.RequestCtx) {
	id := ctx.UserValue("id").(string)
	resp, err := h.scores.ToggleLike(ctx, id, claimsFrom(ctx).Subject)
	if err != nil {
		respondWithServiceError(ctx, err)
		return
	}

	h.hub.BroadcastLike(resp.QuizID, resp.Likes)
	respondWithSuccess(ctx, resp, "")
}
