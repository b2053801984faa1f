// Package disclosure aggregates the daily trading-disclosure list: it
// classifies branch order flow into institution, hot money and retail
// buckets and derives the fund-flow records, series and branch reports the
// signal layer consumes.
package disclosure

import (
	"regexp"
	"strings"
	"unicode"

	"FundFlow/internal/domain/models"
)

// Branch name keywords are matched against the raw exchange feed, which is
// published in Chinese; they are not translated.
var institutionKeywords = []string{
	"机构", "基金", "保险", "社保", "QFII", "专用", "沪股通", "深股通",
}

// The one discount brokerage city whose branches carry dispersed retail
// order flow.
const retailPattern = "拉萨"

// Classify assigns a branch name to its actor bucket. Total and
// deterministic; hot money is the residual bucket. The QFII keyword matches
// regardless of letter case.
func Classify(branch string) models.Actor {
	upper := strings.ToUpper(branch)
	for _, kw := range institutionKeywords {
		if strings.Contains(upper, kw) {
			return models.ActorInstitution
		}
	}
	if strings.Contains(branch, retailPattern) {
		return models.ActorRetail
	}
	return models.ActorHotMoney
}

var (
	corporateSuffixes = []string{
		"证券股份有限公司", "证券有限责任公司", "证券有限公司",
		"证券营业部", "证券", "股份有限公司", "有限责任公司", "有限公司",
	}
	parenASCII = regexp.MustCompile(`\([^)]*\)`)
	parenCJK   = regexp.MustCompile(`（[^）]*）`)

	addressKeywords = []string{"路", "街", "大道", "广场", "大厦", "中心", "区", "市", "省"}
)

// SimplifyBranchName strips corporate boilerplate from a branch name and,
// when it is still long, keeps the fragment around the first address
// keyword so the location stays recognizable.
func SimplifyBranchName(branch string) string {
	if branch == "" {
		return ""
	}
	name := branch
	for _, suffix := range corporateSuffixes {
		name = strings.ReplaceAll(name, suffix, "")
	}
	name = parenASCII.ReplaceAllString(name, "")
	name = parenCJK.ReplaceAllString(name, "")

	var b strings.Builder
	for _, r := range name {
		if unicode.Is(unicode.Han, r) || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(r)
		}
	}
	runes := []rune(b.String())

	if len(runes) > 8 {
		for _, kw := range addressKeywords {
			kwRunes := []rune(kw)
			idx := runeIndex(runes, kwRunes)
			if idx > 0 {
				start := idx - 3
				if start < 0 {
					start = 0
				}
				end := idx + len(kwRunes) + 2
				if end > len(runes) {
					end = len(runes)
				}
				runes = runes[start:end]
				break
			}
		}
		if len(runes) > 8 {
			runes = append(runes[:8], []rune("..")...)
		}
	}

	return strings.TrimSpace(string(runes))
}

func runeIndex(haystack, needle []rune) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
