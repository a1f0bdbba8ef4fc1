package handlers

import (
	"github.com/valyala/fasthttp"

	"github.com/backsoul/quizquest/pkg/services"
)

type RankingHandler struct {
	rankings *services.RankingService
}

func NewRankingHandler(rankings *services.RankingService) *RankingHandler {
	return &RankingHandler{rankings: rankings}
}

// Leaderboards handles GET /api/rankings
func (h *RankingHandler) Leaderboards(ctx *fasthttp.RequestCtx) {
	boards, err := h.rankings.Leaderboards(ctx)
	if err != nil {
		respondWithServiceError(ctx, err)
		return
	}
	respondWithSuccess(ctx, boards, "")
}
