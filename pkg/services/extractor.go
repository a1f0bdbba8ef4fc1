package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/backsoul/quizquest/pkg/models"
	"github.com/backsoul/quizquest/pkg/pageimage"
)

// RenderScale is the zoom used when rasterizing pages for the generator
const RenderScale = 1.5

// Extractor turns PDF pages into quiz records
type Extractor struct {
	generator    Generator
	log          *slog.Logger
	now          func() time.Time
	selectFigure func([]pageimage.Embedded, map[int]bool) (string, bool)
}

// NewExtractor creates an Extractor backed by generator
func NewExtractor(generator Generator, log *slog.Logger) *Extractor {
	return &Extractor{
		generator:    generator,
		log:          log.With("component", "extractor"),
		now:          time.Now,
		selectFigure: pageimage.Select,
	}
}

// Extract processes the pages of doc in order. Pages and items that fail are
// skipped; the result may be empty but there is never an error.
func (e *Extractor) Extract(ctx context.Context, doc Document, contributor string, showName bool) []models.QuizRecord {
	createdBy := models.AnonymousName
	if showName {
		createdBy = contributor
	}

	pageImages := make([][]pageimage.Embedded, doc.PageCount())
	refs := make([][]int, doc.PageCount())
	for i := range pageImages {
		images, err := doc.PageImages(i)
		if err != nil {
			e.log.Warn("⚠️ could not list page images", "page", i+1, "err", err)
		}
		pageImages[i] = images
		for _, img := range images {
			refs[i] = append(refs[i], img.ID)
		}
	}
	background := pageimage.BackgroundIDs(refs)

	quizzes := []models.QuizRecord{}
	for i := 0; i < doc.PageCount(); i++ {
		if ctx.Err() != nil {
			e.log.Warn("⚠️ extraction cancelled", "page", i+1, "err", ctx.Err())
			break
		}

		text, err := doc.PageText(i)
		if err != nil {
			e.log.Warn("⚠️ could not read page text", "page", i+1, "err", err)
			continue
		}
		if SkipPage(text) {
			e.log.Debug("page skipped as example material", "page", i+1)
			continue
		}

		figure, hasFigure := e.selectFigure(pageImages[i], background)
		items := e.extractPage(ctx, doc, i, hasFigure)

		for _, it := range items {
			if SkipItem(it.Question) {
				e.log.Debug("item skipped", "page", i+1, "question", it.Question)
				continue
			}

			images := []string{}
			if it.NeedsImage && hasFigure {
				images = append(images, figure)
			}

			quizzes = append(quizzes, models.QuizRecord{
				Category:     models.NormalizeCategory(it.Category),
				Question:     it.Question,
				Choices:      it.Choices,
				CorrectIndex: it.CorrectIndex,
				Answer:       it.Answer,
				Images:       images,
				CreatedBy:    createdBy,
				CreatedAt:    e.now(),
				Likes:        0,
			})
		}
	}

	e.log.Info("✅ extraction finished", "pages", doc.PageCount(), "quizzes", len(quizzes))
	return quizzes
}

// extractPage returns the raw items of one page, or nil when anything on
// the way fails
func (e *Extractor) extractPage(ctx context.Context, doc Document, page int, hasFigure bool) []ExtractedItem {
	log := e.log.With("page", page+1)

	raster, err := doc.RenderPage(page, RenderScale)
	if err != nil {
		log.Warn("⚠️ could not render page", "err", err)
		return nil
	}

	answer, err := e.generator.Generate(ctx, BuildPrompt(hasFigure), "image/png", raster)
	if err != nil {
		log.Warn("⚠️ generator call failed", "err", err)
		return nil
	}

	items, dropped, err := ParseItems(answer)
	if err != nil {
		log.Warn("⚠️ generator output discarded", "err", err)
		return nil
	}
	if dropped > 0 {
		log.Debug("malformed items dropped", "count", dropped)
	}
	return items
}
