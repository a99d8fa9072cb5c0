package reports

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
)

// ErrUnknownReport is returned by Get for names not in the catalog.
var ErrUnknownReport = errors.New("unknown report")

var (
	registry = make(map[string]*Report)
	mu       sync.RWMutex
)

// Register adds reports to the catalog. Registering a name twice or a report
// without a Build function panics; both are programming errors caught at
// startup.
func Register(rs ...*Report) {
	mu.Lock()
	defer mu.Unlock()

	for _, r := range rs {
		if r.Name == "" || r.Build == nil {
			panic(fmt.Sprintf("reports: invalid report definition %q", r.Name))
		}
		if _, dup := registry[r.Name]; dup {
			panic(fmt.Sprintf("reports: duplicate report %q", r.Name))
		}
		registry[r.Name] = r
	}
}

// Get retrieves a report by name.
func Get(name string) (*Report, error) {
	mu.RLock()
	defer mu.RUnlock()

	r, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownReport, name)
	}
	return r, nil
}

// List returns all registered report names in catalog order.
func List() []string {
	all := All()
	names := make([]string, len(all))
	for i, r := range all {
		names[i] = r.Name
	}
	return names
}

// All returns all registered reports ordered by category, then name.
func All() []*Report {
	mu.RLock()
	defer mu.RUnlock()

	all := make([]*Report, 0, len(registry))
	for _, r := range registry {
		all = append(all, r)
	}
	sort.Slice(all, func(i, j int) bool {
		ci, cj := categoryRank(all[i].Category), categoryRank(all[j].Category)
		if ci != cj {
			return ci < cj
		}
		return all[i].Name < all[j].Name
	})
	return all
}

// ByCategory returns the reports of one category in name order.
func ByCategory(category string) []*Report {
	var out []*Report
	for _, r := range All() {
		if r.Category == category {
			out = append(out, r)
		}
	}
	return out
}

// Categories returns the categories that have at least one report.
func Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range All() {
		if !seen[r.Category] {
			seen[r.Category] = true
			out = append(out, r.Category)
		}
	}
	return out
}

func categoryRank(c string) int {
	if i := slices.Index(CategoryOrder, c); i >= 0 {
		return i
	}
	return len(CategoryOrder)
}
