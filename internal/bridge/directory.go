package bridge

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/multierr"
)

// Partner is one manually curated fallback professional.
type Partner struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type directoryEntry struct {
	Category string    `json:"category"`
	Area     string    `json:"area"`
	Pros     []Partner `json:"pros"`
}

// Directory is the static (category, area) partner lookup. It is loaded
// once at startup and never mutated afterwards, so lookups need no
// locking.
type Directory struct {
	entries []directoryEntry
}

// LoadDirectory reads the partner file and validates every entry,
// reporting all problems at once rather than the first.
func LoadDirectory(path string) (*Directory, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading partner file: %w", err)
	}

	var entries []directoryEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parsing partner file: %w", err)
	}

	var errs error
	for i, entry := range entries {
		if strings.TrimSpace(entry.Category) == "" {
			errs = multierr.Append(errs, fmt.Errorf("entry %d: category required", i))
		}
		if strings.TrimSpace(entry.Area) == "" {
			errs = multierr.Append(errs, fmt.Errorf("entry %d: area required", i))
		}
		if len(entry.Pros) == 0 {
			errs = multierr.Append(errs, fmt.Errorf("entry %d: at least one partner required", i))
		}
		for j, pro := range entry.Pros {
			if strings.TrimSpace(pro.Name) == "" {
				errs = multierr.Append(errs, fmt.Errorf("entry %d partner %d: name required", i, j))
			}
			if strings.TrimSpace(pro.Phone) == "" {
				errs = multierr.Append(errs, fmt.Errorf("entry %d partner %d: phone required", i, j))
			}
		}
	}
	if errs != nil {
		return nil, fmt.Errorf("invalid partner file %s: %w", path, errs)
	}

	return &Directory{entries: entries}, nil
}

// NewDirectory builds a directory from in-memory entries, for tests and
// tooling.
func NewDirectory(entries map[[2]string][]Partner) *Directory {
	d := &Directory{}
	for key, pros := range entries {
		d.entries = append(d.entries, directoryEntry{Category: key[0], Area: key[1], Pros: pros})
	}
	return d
}

// Find returns the partner for a (category, area) pair, or nil when no
// entry matches. The first matching entry's first listed partner wins;
// there is no rotation across partners.
func (d *Directory) Find(category, area string) *Partner {
	if d == nil {
		return nil
	}
	for _, entry := range d.entries {
		if strings.EqualFold(entry.Category, category) && strings.EqualFold(entry.Area, area) {
			if len(entry.Pros) == 0 {
				return nil
			}
			partner := entry.Pros[0]
			return &partner
		}
	}
	return nil
}
