package automation

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// fuzzyThreshold fuzzy_text 条件的相似度阈值
const fuzzyThreshold = 0.90

// similarityRatio 基于 Levenshtein 编辑距离的字符串相似度：
// 1 - distance/max(len(a), len(b))，按 rune 计算，取值 [0, 1]
func similarityRatio(a, b string) float64 {
	if a == b {
		return 1
	}

	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 1
	}

	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(maxLen)
}
