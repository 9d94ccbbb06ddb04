package extract

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"RankingsScanner/internal/domain"
)

// fieldRule binds a label pattern to the semantic field it identifies.
type fieldRule struct {
	field domain.Field
	expr  *regexp.Regexp
}

var headerCleanExpr = regexp.MustCompile(`[^a-z/ ]`)

// headerRules map table header and CSV header labels. The first matching rule wins
// per header; rules are evaluated in field order.
var headerRules = []fieldRule{
	{domain.FieldRank, regexp.MustCompile(`^(?:overall\s*|nirf\s*)?rank\b`)},
	{domain.FieldName, regexp.MustCompile(`(?:^|\s)(?:name of (?:the )?institute|institute name|name of institution|institution name|institute|institution|name|college name|university name)(?:\s|$)`)},
	{domain.FieldCity, regexp.MustCompile(`(?:^|\s)(?:city|city/town|location)(?:\s|$)`)},
	{domain.FieldState, regexp.MustCompile(`(?:^|\s)(?:state|state/ut|province)(?:\s|$)`)},
	{domain.FieldScore, regexp.MustCompile(`(?:^|\s)(?:score|overall\s*score|nirf\s*score)(?:\s|$)`)},
}

// labelRules map per-cell data-label attributes.
var labelRules = []fieldRule{
	{domain.FieldRank, regexp.MustCompile(`^rank\b`)},
	{domain.FieldRank, regexp.MustCompile(`overall\s*rank`)},
	{domain.FieldName, regexp.MustCompile(`^(?:name of (?:the )?institute|institute name|name|college name|university name)\b`)},
	{domain.FieldCity, regexp.MustCompile(`^city\b`)},
	{domain.FieldCity, regexp.MustCompile(`^city/town\b`)},
	{domain.FieldState, regexp.MustCompile(`^state\b`)},
	{domain.FieldState, regexp.MustCompile(`^state/ut\b`)},
	{domain.FieldScore, regexp.MustCompile(`^score\b`)},
	{domain.FieldScore, regexp.MustCompile(`overall\s*score`)},
	{domain.FieldScore, regexp.MustCompile(`nirf\s*score`)},
}

// NormalizeHeader lower-cases a header and drops everything but letters, slashes and spaces.
func NormalizeHeader(label string) string {
	return headerCleanExpr.ReplaceAllString(lower(CleanText(label)), "")
}

// MatchHeader maps a header label to its semantic field.
func MatchHeader(label string) (domain.Field, bool) {
	clean := NormalizeHeader(label)
	for _, rule := range headerRules {
		if rule.expr.MatchString(clean) {
			return rule.field, true
		}
	}
	return "", false
}

func labelMatches(field domain.Field, label string) bool {
	for _, rule := range labelRules {
		if rule.field == field && rule.expr.MatchString(label) {
			return true
		}
	}
	return false
}

// KeyAliases lists the accepted key spellings per field in structured payloads.
var KeyAliases = map[domain.Field][]string{
	domain.FieldRank:  {"rank", "overall_rank", "Overall Rank"},
	domain.FieldName:  {"name", "institute_name", "Institute Name", "Name of Institute"},
	domain.FieldCity:  {"city", "City", "City/Town"},
	domain.FieldState: {"state", "State", "State/UT"},
	domain.FieldScore: {"score", "overall_score", "Overall Score"},
}

// lookup returns the first non-blank value stored under one of the field's aliases.
func lookup(obj map[string]any, field domain.Field) (string, bool) {
	for _, key := range KeyAliases[field] {
		v, ok := obj[key]
		if !ok || v == nil {
			continue
		}
		s := strings.TrimSpace(stringify(v))
		if s != "" {
			return s, true
		}
	}
	return "", false
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// rowFromObject builds a validated row from a decoded object using KeyAliases.
func rowFromObject(obj map[string]any, category string) (domain.RawRow, bool) {
	rankRaw, _ := lookup(obj, domain.FieldRank)
	scoreRaw, _ := lookup(obj, domain.FieldScore)
	name, _ := lookup(obj, domain.FieldName)
	city, _ := lookup(obj, domain.FieldCity)
	state, _ := lookup(obj, domain.FieldState)
	return buildRow(rankRaw, name, city, state, scoreRaw, category)
}

// buildRow parses the numeric fields and validates the result.
func buildRow(rankRaw, name, city, state, scoreRaw, category string) (domain.RawRow, bool) {
	rank, ok := ParseRank(rankRaw)
	if !ok {
		return domain.RawRow{}, false
	}
	score, ok := ParseScore(scoreRaw)
	if !ok {
		return domain.RawRow{}, false
	}
	row := domain.RawRow{
		Rank:     rank,
		Name:     strings.TrimSpace(name),
		City:     strings.TrimSpace(city),
		State:    strings.TrimSpace(state),
		Score:    score,
		Category: category,
	}
	return row, Valid(row)
}
