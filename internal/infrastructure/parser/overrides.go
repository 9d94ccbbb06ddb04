package parser

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/titanous/json5"
)

// LoadOverrides reads the category to endpoint override file. Each category maps
// to a single URL or a list of URLs. A missing file yields an empty map.
func LoadOverrides(path string) (map[string][]string, error) {
	out := map[string][]string{}
	if path == "" {
		return out, nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read overrides %s: %w", path, err)
	}

	var decoded map[string]any
	if err := json5.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("parse overrides %s: %w", path, err)
	}
	for category, v := range decoded {
		switch t := v.(type) {
		case string:
			out[category] = appendEndpoint(nil, t)
		case []any:
			var endpoints []string
			for _, item := range t {
				if s, ok := item.(string); ok {
					endpoints = appendEndpoint(endpoints, s)
				}
			}
			out[category] = endpoints
		default:
			return nil, fmt.Errorf("overrides %s: category %s must map to a string or a list of strings", path, category)
		}
	}
	return out, nil
}

// MergeOverrides layers inline overrides over file overrides, category by category.
func MergeOverrides(file, inline map[string][]string) map[string][]string {
	out := make(map[string][]string, len(file)+len(inline))
	for k, v := range file {
		out[k] = v
	}
	for k, v := range inline {
		if len(v) > 0 {
			out[k] = v
		}
	}
	return out
}

func appendEndpoint(list []string, endpoint string) []string {
	if endpoint = strings.TrimSpace(endpoint); endpoint != "" {
		list = append(list, endpoint)
	}
	return list
}
