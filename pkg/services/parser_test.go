package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocateJSONArray(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"plain", `[{"a":1}]`, `[{"a":1}]`, true},
		{"code fence", "```json\n[1, 2]\n```", "[1, 2]", true},
		{"prose around", "こちらです: [] 以上", "[]", true},
		{"nested takes outermost", `x [[1],[2]] y`, `[[1],[2]]`, true},
		{"no open", `{"a": 1}]`, "", false},
		{"no close", `[{"a": 1}`, "", false},
		{"reversed", `] text [`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := locateJSONArray(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseItems(t *testing.T) {
	text := "```json\n" + `[
		{"category": "奈良公園", "question": "鹿は何頭?", "choices": ["100", "1000", "1300", "5000"], "answer": "約1300頭", "correct_index": 2, "needs_image": true},
		{"category": "不明", "question": "改行区切り", "choices": "A\nB\nC", "answer": 42},
		{"question": "解説なし", "choices": ["x", "y"]},
		"not an object"
	]` + "\n```"

	items, dropped, err := ParseItems(text)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 2, dropped)

	assert.Equal(t, ExtractedItem{
		Category:     "奈良公園",
		Question:     "鹿は何頭?",
		Choices:      []string{"100", "1000", "1300", "5000"},
		Answer:       "約1300頭",
		CorrectIndex: 2,
		NeedsImage:   true,
	}, items[0])

	assert.Equal(t, []string{"A", "B", "C"}, items[1].Choices)
	assert.Equal(t, "42", items[1].Answer)
	assert.Equal(t, 0, items[1].CorrectIndex)
	assert.False(t, items[1].NeedsImage)
}

func TestParseItemsLenientScalars(t *testing.T) {
	tests := []struct {
		name       string
		fields     string
		index      int
		needsImage bool
		dropped    bool
	}{
		{"float index", `"correct_index": 1.0, "needs_image": false`, 1, false, false},
		{"string index", `"correct_index": "3", "needs_image": "true"`, 3, true, false},
		{"numeric flag", `"correct_index": 2, "needs_image": 1`, 2, true, false},
		{"unknown flag", `"correct_index": 0, "needs_image": "yes please"`, 0, false, false},
		{"null index", `"correct_index": null`, 0, false, false},
		{"fractional index", `"correct_index": 1.5`, 0, false, true},
		{"word index", `"correct_index": "second"`, 0, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := `[{"question": "q", "choices": ["a", "b", "c", "d"], "answer": "a", ` + tt.fields + `}]`
			items, dropped, err := ParseItems(text)
			require.NoError(t, err)
			if tt.dropped {
				assert.Empty(t, items)
				assert.Equal(t, 1, dropped)
				return
			}
			require.Len(t, items, 1)
			assert.Equal(t, tt.index, items[0].CorrectIndex)
			assert.Equal(t, tt.needsImage, items[0].NeedsImage)
		})
	}
}

func TestParseItemsFailures(t *testing.T) {
	_, _, err := ParseItems("申し訳ありませんが作成できません。")
	assert.ErrorIs(t, err, ErrNoJSONArray)

	_, _, err = ParseItems(`[{"question": "broken",]`)
	assert.ErrorIs(t, err, ErrMalformedJSON)

	items, dropped, err := ParseItems(`[]`)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, dropped)
}

func TestSkipRules(t *testing.T) {
	assert.True(t, SkipPage("これはクイズの例です"))
	assert.True(t, SkipPage("練習問題 1"))
	assert.True(t, SkipPage("サンプル"))
	assert.True(t, SkipPage("阿修羅像の顔について"))
	assert.True(t, SkipPage("阿修羅像 感情"))
	assert.False(t, SkipPage("阿修羅像は国宝です"))
	assert.False(t, SkipPage("東大寺の大仏"))

	assert.True(t, SkipItem("クイズの例: 鹿の数"))
	assert.True(t, SkipItem("阿修羅像の三つの顔は何を表す?"))
	// item-level check only looks for the explicit example marker
	assert.False(t, SkipItem("例題のような問題"))
}

func TestBuildPromptListsCategories(t *testing.T) {
	p := BuildPrompt(true)
	for _, c := range []string{"興福寺国宝館", "東大寺大仏殿", "奈良公園", "大江能楽堂", "SDGs関係"} {
		assert.Contains(t, p, c)
	}
	assert.Contains(t, p, withFigureHint)
	assert.Contains(t, BuildPrompt(false), withoutFigureHint)
}
