package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrNoJSONArray   = errors.New("no JSON array in generator output")
	ErrMalformedJSON = errors.New("malformed JSON array in generator output")
)

// Page-level markers of example or practice material
var exampleMarkers = []string{"クイズの例", "例題", "練習問題", "サンプル"}

// Item-level marker; the generator is asked to skip example pages but may not
const itemExampleMarker = "クイズの例"

// ExtractedItem is one quiz object as returned by the generator
type ExtractedItem struct {
	Category     string
	Question     string
	Choices      []string
	Answer       string
	CorrectIndex int
	NeedsImage   bool
}

func (it *ExtractedItem) UnmarshalJSON(data []byte) error {
	var aux struct {
		Category     string          `json:"category"`
		Question     string          `json:"question"`
		Choices      json.RawMessage `json:"choices"`
		Answer       json.RawMessage `json:"answer"`
		CorrectIndex flexInt         `json:"correct_index"`
		NeedsImage   flexBool        `json:"needs_image"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	choices, err := decodeChoices(aux.Choices)
	if err != nil {
		return err
	}

	answer, err := decodeAnswer(aux.Answer)
	if err != nil {
		return err
	}

	*it = ExtractedItem{
		Category:     aux.Category,
		Question:     aux.Question,
		Choices:      choices,
		Answer:       answer,
		CorrectIndex: int(aux.CorrectIndex),
		NeedsImage:   bool(aux.NeedsImage),
	}
	return nil
}

// flexInt accepts 1, 1.0 and "1"
type flexInt int

func (n *flexInt) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || f != math.Trunc(f) {
		return fmt.Errorf("correct_index: not an integer: %s", data)
	}
	*n = flexInt(f)
	return nil
}

// flexBool accepts true, "true", 1 and "1"; unknown values read as false
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	*b = flexBool(err == nil && v)
	return nil
}

// choices may come back as a list or as one newline-separated string
func decodeChoices(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return []string{}, nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var joined string
	if err := json.Unmarshal(raw, &joined); err != nil {
		return nil, fmt.Errorf("choices: %w", err)
	}
	return strings.Split(joined, "\n"), nil
}

func decodeAnswer(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", errors.New("answer is missing")
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	return strings.TrimSpace(string(raw)), nil
}

// locateJSONArray returns the text from the first '[' to the last ']'
func locateJSONArray(text string) (string, bool) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return text[start : end+1], true
}

// ParseItems extracts quiz items from free-form generator output. The array
// itself must be valid JSON; elements that do not fit the item shape are
// dropped individually.
func ParseItems(text string) ([]ExtractedItem, int, error) {
	payload, ok := locateJSONArray(text)
	if !ok {
		return nil, 0, ErrNoJSONArray
	}

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(payload), &elements); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	items := make([]ExtractedItem, 0, len(elements))
	dropped := 0
	for _, el := range elements {
		var it ExtractedItem
		if err := json.Unmarshal(el, &it); err != nil {
			dropped++
			continue
		}
		items = append(items, it)
	}
	return items, dropped, nil
}

// isFalsePositive matches the description text of a specific exhibit that
// the slides use as a worked example
func isFalsePositive(text string) bool {
	return strings.Contains(text, "阿修羅像") &&
		(strings.Contains(text, "感情") || strings.Contains(text, "顔"))
}

func isExamplePage(text string) bool {
	for _, m := range exampleMarkers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// SkipPage reports whether a page's text marks it as non-quiz material
func SkipPage(text string) bool {
	return isFalsePositive(text) || isExamplePage(text)
}

// SkipItem reports whether a generated question should be discarded
func SkipItem(question string) bool {
	return isFalsePositive(question) || strings.Contains(question, itemExampleMarker)
}
