package extract

import "strings"

// DefaultStates lists Indian states and union territories recognised by the
// generic row parser. Deployments targeting other regions supply their own list.
var DefaultStates = []string{
	"andhra pradesh", "arunachal pradesh", "assam", "bihar", "chhattisgarh", "goa", "gujarat",
	"haryana", "himachal pradesh", "jharkhand", "karnataka", "kerala", "madhya pradesh",
	"maharashtra", "manipur", "meghalaya", "mizoram", "nagaland", "odisha", "punjab",
	"rajasthan", "sikkim", "tamil nadu", "telangana", "tripura", "uttar pradesh",
	"uttarakhand", "west bengal", "andaman and nicobar islands", "chandigarh",
	"dadra and nagar haveli and daman and diu", "delhi", "jammu and kashmir", "ladakh",
	"lakshadweep", "puducherry",
}

// StateSet is a closed list of recognised state names compared case- and space-insensitively.
type StateSet struct {
	names map[string]struct{}
}

// NewStateSet builds a StateSet; an empty list falls back to DefaultStates.
func NewStateSet(names []string) StateSet {
	if len(names) == 0 {
		names = DefaultStates
	}
	set := StateSet{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		if key := normState(n); key != "" {
			set.names[key] = struct{}{}
		}
	}
	return set
}

// Contains reports whether s names a recognised state.
func (s StateSet) Contains(name string) bool {
	_, ok := s.names[normState(name)]
	return ok
}

func normState(s string) string {
	return strings.TrimSpace(lower(CleanText(s)))
}
