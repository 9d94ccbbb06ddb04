package domain

// College is the canonical output record emitted after merge and ranking.
type College struct {
	Name           string   `json:"name" yaml:"name"`
	ShortName      string   `json:"shortName" yaml:"shortName"`
	Category       string   `json:"category" yaml:"category"`
	Tags           []string `json:"tags" yaml:"tags"`
	City           string   `json:"city" yaml:"city"`
	State          string   `json:"state" yaml:"state"`
	Location       string   `json:"location" yaml:"location"`
	Country        string   `json:"country" yaml:"country"`
	Type           string   `json:"type" yaml:"type"`
	Established    *int     `json:"established" yaml:"established"`
	NIRFRank       int      `json:"nirfRank" yaml:"nirfRank"`
	NIRFScore      float64  `json:"nirfScore" yaml:"nirfScore"`
	OverallRank    int      `json:"overallRank" yaml:"overallRank"`
	Fees           *int64   `json:"fees" yaml:"fees"`
	CoursesOffered []string `json:"coursesOffered" yaml:"coursesOffered"`
	Placements     any      `json:"placements" yaml:"placements"`
	Facilities     any      `json:"facilities" yaml:"facilities"`
	Contact        Contact  `json:"contact" yaml:"contact"`
	Images         []string `json:"images" yaml:"images"`
	Brochures      []string `json:"brochures" yaml:"brochures"`
	Description    string   `json:"description" yaml:"description"`
	LastUpdated    string   `json:"lastUpdated" yaml:"lastUpdated"`
	DataVersion    string   `json:"dataVersion" yaml:"dataVersion"`
}

// Contact holds enrichment placeholders; only Website may be guessed at build time.
type Contact struct {
	Address       *string `json:"address" yaml:"address"`
	Phone         *string `json:"phone" yaml:"phone"`
	Email         *string `json:"email" yaml:"email"`
	Website       *string `json:"website" yaml:"website"`
	GoogleMapsURL *string `json:"googleMapsUrl" yaml:"googleMapsUrl"`
}

// Dataset is the output artifact written by a build.
type Dataset struct {
	DataVersion string    `json:"dataVersion" yaml:"dataVersion"`
	LastUpdated string    `json:"lastUpdated" yaml:"lastUpdated"`
	Total       int       `json:"total" yaml:"total"`
	Colleges    []College `json:"colleges" yaml:"colleges"`
}

// CollegeFilter narrows record store queries.
type CollegeFilter struct {
	Search  string
	State   string
	MinFees *int64
	MaxFees *int64
	Limit   int
	Offset  int
}

// ImportSummary reports the outcome of loading a dataset into the record store.
type ImportSummary struct {
	RunID       string
	Total       int
	Created     int
	Updated     int
	DataVersion string
}
