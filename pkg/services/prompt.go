package services

import (
	"fmt"
	"strings"

	"github.com/backsoul/quizquest/pkg/models"
)

const promptTemplate = `あなたは教師です。画像からクイズを作成してください。

【重要ルール】
1. 「クイズの例」「例題」などのページは除外し、空リスト [] を返してください。
2. 問題文の内容を読み、以下のリストから最も適切なカテゴリを1つ選んでください。
   リスト: [%s]
3. 出力にはJSONデータ以外は一切含めないでください。
4. %s

【出力JSON】
[
  {
    "category": "カテゴリ名",
    "question": "問題文",
    "choices": ["選択肢1", "選択肢2", "選択肢3", "選択肢4"],
    "answer": "正解と解説",
    "correct_index": 0,
    "needs_image": true/false
  }
]
`

const (
	withFigureHint    = "このページには図版があります。問題が図版を見ないと解けない場合は needs_image を true にしてください。"
	withoutFigureHint = "このページには図版がありません。needs_image は false にしてください。"
)

// BuildPrompt renders the instruction sent with each page image
func BuildPrompt(hasFigure bool) string {
	quoted := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		quoted[i] = fmt.Sprintf("'%s'", c)
	}

	hint := withoutFigureHint
	if hasFigure {
		hint = withFigureHint
	}
	return fmt.Sprintf(promptTemplate, strings.Join(quoted, ", "), hint)
}
