package services

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"io"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backsoul/quizquest/pkg/logger"
	"github.com/backsoul/quizquest/pkg/models"
	"github.com/backsoul/quizquest/pkg/pageimage"
)

type fakePage struct {
	text   string
	images []pageimage.Embedded
}

type fakeDocument struct {
	pages []fakePage
}

func (d *fakeDocument) PageCount() int { return len(d.pages) }

func (d *fakeDocument) PageText(page int) (string, error) { return d.pages[page].text, nil }

func (d *fakeDocument) RenderPage(page int, scale float64) ([]byte, error) {
	return []byte{byte(page)}, nil
}

func (d *fakeDocument) PageImages(page int) ([]pageimage.Embedded, error) {
	return d.pages[page].images, nil
}

// fakeGenerator answers by page index, which the fake document encodes in the raster
type fakeGenerator struct {
	answers map[int]string
	errs    map[int]error
	calls   []int
	prompts []string
}

func (g *fakeGenerator) Generate(_ context.Context, prompt, mimeType string, image []byte) (string, error) {
	page := int(image[0])
	g.calls = append(g.calls, page)
	g.prompts = append(g.prompts, prompt)
	if err := g.errs[page]; err != nil {
		return "", err
	}
	return g.answers[page], nil
}

func newTestExtractor(g Generator) *Extractor {
	e := NewExtractor(g, logger.New(io.Discard, "debug"))
	e.now = func() time.Time { return time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC) }
	return e
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(w, h, color.NRGBA{G: 200, A: 255}), imaging.PNG))
	return buf.Bytes()
}

const oneItem = `[{"category": "東大寺大仏殿", "question": "大仏の高さは?", "choices": ["約5m", "約15m", "約30m", "約50m"], "answer": "約15m", "correct_index": 1, "needs_image": true}]`

func TestExtractSkipsExamplePageEvenWithAnswer(t *testing.T) {
	doc := &fakeDocument{pages: []fakePage{
		{text: "クイズの例: こんな問題を作ろう"},
		{text: "東大寺大仏殿について"},
	}}
	gen := &fakeGenerator{answers: map[int]string{0: oneItem, 1: oneItem}}

	got := newTestExtractor(gen).Extract(context.Background(), doc, "たろう", true)

	require.Len(t, got, 1)
	assert.Equal(t, []int{1}, gen.calls)
}

func TestExtractSkippedPageSelectsNoFigure(t *testing.T) {
	figure := pageimage.Embedded{ID: 3, Data: pngBytes(t, 300, 200)}
	doc := &fakeDocument{pages: []fakePage{
		{text: "練習問題", images: []pageimage.Embedded{figure}},
		{text: "東大寺大仏殿について", images: []pageimage.Embedded{figure}},
	}}
	gen := &fakeGenerator{answers: map[int]string{0: oneItem, 1: oneItem}}

	e := newTestExtractor(gen)
	var selected [][]pageimage.Embedded
	e.selectFigure = func(images []pageimage.Embedded, background map[int]bool) (string, bool) {
		selected = append(selected, images)
		return pageimage.Select(images, background)
	}

	got := e.Extract(context.Background(), doc, "たろう", true)
	require.Len(t, got, 1)
	assert.Len(t, selected, 1)
	assert.Equal(t, []int{1}, gen.calls)
}

func TestExtractBuildsRecords(t *testing.T) {
	figure := pageimage.Embedded{ID: 11, Data: pngBytes(t, 300, 200)}
	doc := &fakeDocument{pages: []fakePage{
		{text: "page one", images: []pageimage.Embedded{figure}},
		{text: "page two"},
	}}
	gen := &fakeGenerator{answers: map[int]string{
		0: "```json\n" + oneItem + "\n```",
		1: `[{"category": "不明", "question": "改行", "choices": "a\nb", "answer": "b", "needs_image": true}]`,
	}}

	got := newTestExtractor(gen).Extract(context.Background(), doc, "たろう", true)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "東大寺大仏殿", first.Category)
	assert.Equal(t, 1, first.CorrectIndex)
	assert.Equal(t, "たろう", first.CreatedBy)
	assert.Zero(t, first.Likes)
	assert.Len(t, first.Images, 1)
	assert.Contains(t, gen.prompts[0], withFigureHint)

	second := got[1]
	assert.Equal(t, models.FallbackCategory, second.Category)
	assert.Equal(t, []string{"a", "b"}, second.Choices)
	// needs an image but the page has none
	assert.Empty(t, second.Images)
	assert.Contains(t, gen.prompts[1], withoutFigureHint)
}

func TestExtractAnonymous(t *testing.T) {
	doc := &fakeDocument{pages: []fakePage{{text: "奈良公園"}}}
	gen := &fakeGenerator{answers: map[int]string{0: oneItem}}

	got := newTestExtractor(gen).Extract(context.Background(), doc, "たろう", false)
	require.Len(t, got, 1)
	assert.Equal(t, models.AnonymousName, got[0].CreatedBy)
}

func TestExtractBackgroundImageNeverAttached(t *testing.T) {
	logo := pageimage.Embedded{ID: 1, Data: pngBytes(t, 400, 400)}
	doc := &fakeDocument{pages: []fakePage{
		{text: "one", images: []pageimage.Embedded{logo}},
		{text: "two", images: []pageimage.Embedded{logo}},
	}}
	gen := &fakeGenerator{answers: map[int]string{0: oneItem, 1: oneItem}}

	got := newTestExtractor(gen).Extract(context.Background(), doc, "x", true)
	require.Len(t, got, 2)
	for _, q := range got {
		assert.Empty(t, q.Images)
	}
}

func TestExtractFailuresAreLocal(t *testing.T) {
	doc := &fakeDocument{pages: []fakePage{
		{text: "error page"},
		{text: "prose page"},
		{text: "broken page"},
		{text: "good page"},
		{text: "filtered items"},
	}}
	gen := &fakeGenerator{
		errs: map[int]error{0: errors.New("generator returned status 500")},
		answers: map[int]string{
			1: "作成できませんでした",
			2: `[{"question": "x",`,
			3: oneItem,
			4: `[{"question": "クイズの例: 鹿", "choices": ["a"], "answer": "a"}, {"question": "阿修羅像の顔", "choices": ["a"], "answer": "a"}]`,
		},
	}

	got := newTestExtractor(gen).Extract(context.Background(), doc, "x", true)
	require.Len(t, got, 1)
	assert.Equal(t, "大仏の高さは?", got[0].Question)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, gen.calls)
}

func TestExtractStopsOnCancelledContext(t *testing.T) {
	doc := &fakeDocument{pages: []fakePage{{text: "a"}, {text: "b"}}}
	gen := &fakeGenerator{answers: map[int]string{0: oneItem, 1: oneItem}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := newTestExtractor(gen).Extract(ctx, doc, "x", true)
	assert.Empty(t, got)
	assert.NotNil(t, got)
	assert.Empty(t, gen.calls)
}
