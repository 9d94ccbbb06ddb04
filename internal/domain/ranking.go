package domain

// Field names one of the five semantic columns recovered from a ranking table.
type Field string

const (
	FieldRank  Field = "rank"
	FieldName  Field = "name"
	FieldCity  Field = "city"
	FieldState Field = "state"
	FieldScore Field = "score"
)

// Fields lists the semantic columns in their canonical order.
var Fields = []Field{FieldRank, FieldName, FieldCity, FieldState, FieldScore}

// RawRow is one candidate extraction from a single source page.
type RawRow struct {
	Rank     int     `json:"rank" validate:"gt=0"`
	Name     string  `json:"name" validate:"hasletter"`
	City     string  `json:"city" validate:"hasletter"`
	State    string  `json:"state" validate:"hasletter"`
	Score    float64 `json:"score" validate:"finite"`
	Category string  `json:"nirfCategory"`
}

// Key identifies the entity a row refers to for deduplication.
func (r RawRow) Key() RowKey {
	return RowKey{Name: r.Name, State: r.State}
}

// RowKey is the exact (name, state) pair used to collapse rows across categories.
type RowKey struct {
	Name  string
	State string
}

// DiscoveredEndpoint is a confirmed page that carries a populated ranking table.
type DiscoveredEndpoint struct {
	Category string `json:"cat" yaml:"cat"`
	URL      string `json:"url" yaml:"url"`
}
