// Package pdf opens uploaded PDFs for quiz extraction: page text and page
// rasters come from MuPDF, embedded images and their object numbers from
// pdfcpu.
package pdf

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/backsoul/quizquest/pkg/pageimage"
)

// baseDPI is the resolution of a page rendered at scale 1
const baseDPI = 72.0

// Document is an opened PDF. Page numbers are zero-based.
type Document struct {
	doc    *fitz.Document
	images map[int][]pageimage.Embedded
}

// Open parses data. Embedded images that pdfcpu cannot read are logged and
// treated as absent; the pages remain usable.
func Open(data []byte, log *slog.Logger) (*Document, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("error opening pdf: %w", err)
	}

	images, err := extractImages(data, log)
	if err != nil {
		log.Warn("⚠️ embedded images unavailable", "err", err)
		images = map[int][]pageimage.Embedded{}
	}

	return &Document{doc: doc, images: images}, nil
}

// extractImages groups embedded images by zero-based page. An image that
// fails to extract is left out without affecting the others. Page
// thumbnails are not content and are never listed.
func extractImages(data []byte, log *slog.Logger) (map[int][]pageimage.Embedded, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, err
	}

	byPage := make(map[int][]pageimage.Embedded)
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		objNrs := pdfcpu.ImageObjNrs(ctx, pageNr)
		sort.Ints(objNrs)

		for _, objNr := range objNrs {
			obj, ok := ctx.Optimize.ImageObjects[objNr]
			if !ok {
				continue
			}
			img, err := pdfcpu.ExtractImage(ctx, obj.ImageDict, false, "", objNr, false)
			if err != nil {
				log.Debug("embedded image skipped", "page", pageNr, "obj", objNr, "err", err)
				continue
			}
			if img == nil || img.Thumb {
				continue
			}
			raw, err := io.ReadAll(img)
			if err != nil {
				continue
			}
			byPage[pageNr-1] = append(byPage[pageNr-1], pageimage.Embedded{ID: objNr, Data: raw})
		}
	}
	return byPage, nil
}

// Close releases the MuPDF document
func (d *Document) Close() error {
	return d.doc.Close()
}

func (d *Document) PageCount() int {
	return d.doc.NumPage()
}

func (d *Document) PageText(page int) (string, error) {
	return d.doc.Text(page)
}

// RenderPage rasterizes page at scale and encodes it as PNG
func (d *Document) RenderPage(page int, scale float64) ([]byte, error) {
	img, err := d.doc.ImageDPI(page, baseDPI*scale)
	if err != nil {
		return nil, fmt.Errorf("error rendering page %d: %w", page+1, err)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("error encoding page %d: %w", page+1, err)
	}
	return buf.Bytes(), nil
}

// PageImages returns the embedded images of page in object number order
func (d *Document) PageImages(page int) ([]pageimage.Embedded, error) {
	return d.images[page], nil
}
