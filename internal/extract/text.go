// Package extract recovers ranking rows from semi-structured HTML, JSON, CSV and
// script payloads. Every heuristic here is a pure function over its input so the
// fallback cascade can be exercised one rule at a time.
package extract

import (
	"html"
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

const (
	// maxRankValue caps integers accepted as a rank when a column or cell is guessed.
	maxRankValue = 500
	// maxScoreValue caps decimals accepted as a score by the statistical heuristics.
	maxScoreValue = 100
)

var (
	tagExpr         = regexp.MustCompile(`<[^>]+>`)
	letterExpr      = regexp.MustCompile(`[A-Za-z]`)
	numericKeepExpr = regexp.MustCompile(`[^\d.,]`)
	rankCellExpr    = regexp.MustCompile(`^\d{1,3}$`)
	floatCellExpr   = regexp.MustCompile(`^\d{1,3}(?:[.,]\d+)?$`)
	floatPrefixExpr = regexp.MustCompile(`^(?:\d+(?:\.\d+)?|\.\d+)`)
	negativeExpr    = regexp.MustCompile(`^[^\d]*-\s*\d`)
)

// CleanText normalises compatibility characters and collapses whitespace.
func CleanText(s string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(s)), " ")
}

// StripTags removes markup from an HTML fragment and returns readable text.
func StripTags(fragment string) string {
	return CleanText(html.UnescapeString(tagExpr.ReplaceAllString(fragment, " ")))
}

// HasLetter reports whether s contains at least one ASCII letter.
func HasLetter(s string) bool {
	return letterExpr.MatchString(s)
}

func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// numericPart keeps only digits and decimal separators.
func numericPart(s string) string {
	return numericKeepExpr.ReplaceAllString(s, "")
}

// IsRankCell reports whether a cell looks like a 1-3 digit integer no greater than 500.
// A trailing period ("1.") is accepted, a leading minus sign is not.
func IsRankCell(s string) bool {
	if negativeExpr.MatchString(s) {
		return false
	}
	v := strings.TrimSuffix(numericPart(s), ".")
	if !rankCellExpr.MatchString(v) {
		return false
	}
	n, err := strconv.Atoi(v)
	return err == nil && n <= maxRankValue
}

// IsFloatCell reports whether a cell looks like a 1-3 digit number with an optional decimal part.
func IsFloatCell(s string) bool {
	return floatCellExpr.MatchString(numericPart(s))
}

// IsScoreCell is IsFloatCell with the value capped at 100.
func IsScoreCell(s string) bool {
	if !IsFloatCell(s) {
		return false
	}
	v, ok := ParseScore(s)
	return ok && v <= maxScoreValue
}

// ParseRank reads the integer part of a rank cell such as "12", "Rank 12" or "12.0".
func ParseRank(s string) (int, bool) {
	if negativeExpr.MatchString(s) {
		return 0, false
	}
	v := strings.ReplaceAll(numericPart(s), ",", "")
	if i := strings.IndexByte(v, '.'); i >= 0 {
		v = v[:i]
	}
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// ParseScore reads a decimal score; a lone comma is treated as the decimal separator.
func ParseScore(s string) (float64, bool) {
	v := numericPart(s)
	if strings.Count(v, ",") == 1 && !strings.Contains(v, ".") {
		v = strings.Replace(v, ",", ".", 1)
	} else {
		v = strings.ReplaceAll(v, ",", "")
	}
	m := floatPrefixExpr.FindString(v)
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
