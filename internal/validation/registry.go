package validation

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/banshee-data/lanelint/internal/config"
	"github.com/banshee-data/lanelint/internal/lanemap"
)

// Validator is one registered map check.
type Validator interface {
	// Name returns the stable dotted check name
	// (e.g. "mapping.traffic_light.correct_facing").
	Name() string

	// Validate runs the check against a read-only map and returns its
	// findings. It must not mutate the map and must not panic; degenerate
	// geometry is reported as issues.
	Validate(m *lanemap.Map) []Issue
}

// Configurable is implemented by validators that accept tuning parameters.
type Configurable interface {
	Configure(params *config.Params)
}

var registry = make(map[string]Validator)

// Register adds a validator to the registry. Validator packages call this
// from init; the CLI pulls them in with blank imports. Duplicate names are a
// programming error.
func Register(v Validator) {
	if _, dup := registry[v.Name()]; dup {
		panic(fmt.Sprintf("validation: duplicate validator name %q", v.Name()))
	}
	registry[v.Name()] = v
}

// Configure forwards tuning parameters to every registered validator that
// accepts them.
func Configure(params *config.Params) {
	for _, v := range registry {
		if c, ok := v.(Configurable); ok {
			c.Configure(params)
		}
	}
}

// matchesFilter reports whether name matches the comma-separated list of
// glob patterns. An empty filter matches everything.
func matchesFilter(filter, name string) bool {
	if strings.TrimSpace(filter) == "" {
		return true
	}
	for _, pat := range strings.Split(filter, ",") {
		pat = strings.TrimSpace(pat)
		if pat == "" {
			continue
		}
		if pat == name {
			return true
		}
		if ok, err := path.Match(pat, name); err == nil && ok {
			return true
		}
	}
	return false
}

// AvailableChecks returns the names of the registered checks matching the
// filter, sorted.
func AvailableChecks(filter string) []string {
	var names []string
	for name := range registry {
		if matchesFilter(filter, name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// CheckReport is the outcome of one check over one map.
type CheckReport struct {
	Name   string  `json:"name"`
	Issues []Issue `json:"issues"`
}

// RunAll runs every registered check matching the filter against the map,
// in sorted name order, and returns one report per check run. Checks that
// found nothing still appear with an empty issue list.
func RunAll(m *lanemap.Map, filter string) []CheckReport {
	reports := make([]CheckReport, 0)
	for _, name := range AvailableChecks(filter) {
		reports = append(reports, CheckReport{
			Name:   name,
			Issues: registry[name].Validate(m),
		})
	}
	return reports
}

// RunCheck runs the single named check. A name with no registered check
// yields no issues, matching the behaviour of a filter that matches nothing.
func RunCheck(m *lanemap.Map, name string) []Issue {
	v, ok := registry[name]
	if !ok {
		return nil
	}
	return v.Validate(m)
}
