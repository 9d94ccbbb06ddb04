package ranking

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"RankingsScanner/internal/domain"
)

const (
	typeNational = "Government/Deemed/Institute of National Importance"
	typeMixed    = "Govt/Private (Mixed)"
)

var (
	categoryTags = map[string]string{
		"Engineering":  "Engineering",
		"Management":   "Management/MBA",
		"Medical":      "Medical/MBBS",
		"Pharmacy":     "Pharmacy/B.Pharma",
		"Architecture": "Architecture/B.Arch",
		"Law":          "Law/LLB",
		"Dental":       "Dental/BDS",
		"Agriculture":  "Agriculture/Allied",
		"College":      "Arts/Science/Commerce (BA/BSc/BCom/BBA/BCA)",
		"University":   "Multi-disciplinary",
		"Overall":      "Multi-disciplinary",
	}

	engineeringName = regexp.MustCompile(`(?i)IIT|NIT|IIIT|Institute of Technology`)
	managementName  = regexp.MustCompile(`(?i)IIM|Management`)
	nationalName    = regexp.MustCompile(`(?i)University|Institute|National|Government|Indian Institute`)
	acronymExpr     = regexp.MustCompile(`(?i)\b(IIT|IIM|NIT|IIIT|AIIMS|BITS)\b`)
	nonAlnum        = regexp.MustCompile(`[^a-z0-9]+`)

	knownWebsites = map[string]string{
		"indianinstituteoftechnologymadras":          "https://www.iitm.ac.in",
		"indianinstituteoftechnologydelhi":           "https://www.iitd.ac.in",
		"indianinstituteoftechnologybombay":          "https://www.iitb.ac.in",
		"indianinstituteoftechnologykanpur":          "https://www.iitk.ac.in",
		"indianinstituteoftechnologykharagpur":       "https://www.iitkgp.ac.in",
		"allindiainstituteofmedicalsciencesnewdelhi": "https://www.aiims.edu",
	}
)

// Enricher turns merged rows into canonical records.
type Enricher struct {
	DataVersion string
	Country     string
	SourceLabel string
	// Now stamps lastUpdated in its own location; defaults to time.Now.
	Now func() time.Time
}

// BuildDataset enriches rows in order and wraps them in the output artifact.
func (e Enricher) BuildDataset(rows []domain.RawRow) domain.Dataset {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	lastUpdated := now().Format("2006-01-02")

	colleges := make([]domain.College, 0, len(rows))
	for _, row := range rows {
		colleges = append(colleges, e.college(row, lastUpdated))
	}
	return domain.Dataset{
		DataVersion: e.DataVersion,
		LastUpdated: lastUpdated,
		Total:       len(colleges),
		Colleges:    colleges,
	}
}

func (e Enricher) college(row domain.RawRow, lastUpdated string) domain.College {
	category := CategoryTag(row.Category, row.Name)
	kind := typeMixed
	if nationalName.MatchString(row.Name) {
		kind = typeNational
	}

	return domain.College{
		Name:           row.Name,
		ShortName:      ShortName(row.Name),
		Category:       category,
		Tags:           []string{row.Category, category},
		City:           row.City,
		State:          row.State,
		Location:       fmt.Sprintf("%s, %s", row.City, row.State),
		Country:        e.Country,
		Type:           kind,
		NIRFRank:       row.Rank,
		NIRFScore:      row.Score,
		OverallRank:    row.Rank,
		CoursesOffered: []string{},
		Contact:        domain.Contact{Website: GuessWebsite(row.Name)},
		Images:         []string{},
		Brochures:      []string{},
		Description:    fmt.Sprintf("%s appears in %s %s ranking %d.", row.Name, e.SourceLabel, row.Category, row.Rank),
		LastUpdated:    lastUpdated,
		DataVersion:    e.DataVersion,
	}
}

// CategoryTag maps a source category to the broad filter category, falling back
// to name patterns for categories outside the closed list.
func CategoryTag(category, name string) string {
	if tag, ok := categoryTags[category]; ok {
		return tag
	}
	switch {
	case engineeringName.MatchString(name):
		return "Engineering"
	case managementName.MatchString(name):
		return "Management/MBA"
	}
	return "Multi-disciplinary"
}

// ShortName returns the last institutional acronym upper-cased with whatever
// follows it (minus closing punctuation), or the initials of the first two words.
func ShortName(name string) string {
	if all := acronymExpr.FindAllStringSubmatchIndex(name, -1); len(all) > 0 {
		loc := all[len(all)-1]
		short := strings.ToUpper(name[loc[2]:loc[3]])
		rest := strings.TrimSpace(strings.TrimLeftFunc(name[loc[3]:], unicode.IsPunct))
		if rest == "" {
			return short
		}
		return short + " " + rest
	}

	var initials strings.Builder
	for i, word := range strings.Fields(name) {
		if i == 2 {
			break
		}
		initials.WriteString(string([]rune(word)[:1]))
	}
	short := []rune(strings.ToUpper(initials.String()))
	if len(short) > 6 {
		short = short[:6]
	}
	return string(short)
}

// GuessWebsite looks the squashed name up in a small table of known domains.
func GuessWebsite(name string) *string {
	key := strings.ReplaceAll(strings.ToLower(name), "&", "and")
	key = nonAlnum.ReplaceAllString(key, "")
	if site, ok := knownWebsites[key]; ok {
		return &site
	}
	return nil
}
