// Package pageimage picks the illustrative image of a document page.
//
// Images that recur on several pages of the same document are treated as
// template decoration (logos, headers) and are never selected. Among the
// remaining images, thin strips and tiny icons are filtered out and the largest
// survivor is returned as a base64 JPEG thumbnail.
package pageimage

import (
	"bytes"
	"encoding/base64"
	"image"

	"github.com/disintegration/imaging"
)

const (
	MinSide        = 50
	MinAspectRatio = 0.15
	MaxAspectRatio = 6.0
	ThumbnailSide  = 600
	JPEGQuality    = 80
)

// Embedded is an image embedded in a page, identified by its PDF object number
type Embedded struct {
	ID   int
	Data []byte
}

// BackgroundIDs returns the identities referenced by more than one page.
// pageRefs[i] lists the image identities of page i. Documents with fewer than
// two pages have no background.
func BackgroundIDs(pageRefs [][]int) map[int]bool {
	background := make(map[int]bool)
	if len(pageRefs) < 2 {
		return background
	}

	pages := make(map[int]int)
	for _, refs := range pageRefs {
		seen := make(map[int]bool, len(refs))
		for _, id := range refs {
			if seen[id] {
				continue
			}
			seen[id] = true
			pages[id]++
		}
	}

	for id, n := range pages {
		if n > 1 {
			background[id] = true
		}
	}
	return background
}

// Select returns the base64 thumbnail of the best candidate among images, or
// false when none qualifies. Candidates that fail to decode are skipped.
func Select(images []Embedded, background map[int]bool) (string, bool) {
	var (
		best     image.Image
		bestArea int
	)

	for _, img := range images {
		if background[img.ID] {
			continue
		}
		decoded, err := imaging.Decode(bytes.NewReader(img.Data))
		if err != nil {
			continue
		}
		b := decoded.Bounds()
		if !qualifies(b.Dx(), b.Dy()) {
			continue
		}
		if area := b.Dx() * b.Dy(); area > bestArea {
			best, bestArea = decoded, area
		}
	}

	if best == nil {
		return "", false
	}

	encoded, err := Compress(best)
	if err != nil {
		return "", false
	}
	return encoded, true
}

func qualifies(w, h int) bool {
	if w < MinSide || h < MinSide {
		return false
	}
	ratio := float64(w) / float64(h)
	return ratio >= MinAspectRatio && ratio <= MaxAspectRatio
}

// Compress shrinks img to fit ThumbnailSide and returns it as base64 JPEG
func Compress(img image.Image) (string, error) {
	thumb := imaging.Fit(img, ThumbnailSide, ThumbnailSide, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
