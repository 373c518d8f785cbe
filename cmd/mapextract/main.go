// Command mapextract cuts a small reproducible subset out of a large map
// document: one target lanelet plus every regulatory element referencing one
// of the given traffic-light linestrings, with the linestrings they point at.
// Useful for turning a failure found on a production map into a fixture.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/lanelint/internal/lanemap"
)

var (
	mapFile    = flag.String("map", "", "Path to the source map document (required)")
	outFile    = flag.String("out", "extracted_lanelet.json", "Path to write the subset map to")
	configFile = flag.String("config", "", "Optional YAML map config carrying the map origin")
	laneletID  = flag.Int64("lanelet", 0, "ID of the lanelet to extract (required)")
	lightIDs   = flag.String("lights", "", "Comma-separated traffic-light linestring IDs to pull regulatory elements for")
)

// mapConfig is the YAML shape of the map config file.
type mapConfig struct {
	MapOrigin lanemap.Origin `yaml:"map_origin"`
}

func main() {
	flag.Parse()

	if *mapFile == "" {
		log.Fatal("no map file specified")
	}
	if *laneletID == 0 {
		log.Fatal("no lanelet id specified")
	}

	ids, err := parseIDList(*lightIDs)
	if err != nil {
		log.Fatalf("invalid -lights value: %v", err)
	}

	m, err := lanemap.Load(*mapFile)
	if err != nil {
		log.Fatalf("failed to load map: %v", err)
	}

	subset, err := extract(m, lanemap.ID(*laneletID), ids)
	if err != nil {
		log.Fatalf("extraction failed: %v", err)
	}

	if *configFile != "" {
		origin, err := loadOrigin(*configFile)
		if err != nil {
			log.Fatalf("failed to load map config: %v", err)
		}
		subset.Origin = origin
	}

	if err := lanemap.Save(subset, *outFile); err != nil {
		log.Fatalf("failed to write subset map: %v", err)
	}
	fmt.Printf("Lanelet %d exported successfully to %q\n", *laneletID, *outFile)
}

// parseIDList parses a comma-separated list of numeric ids.
func parseIDList(s string) ([]lanemap.ID, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var ids []lanemap.ID
	for _, field := range strings.Split(s, ",") {
		v, err := strconv.ParseInt(strings.TrimSpace(field), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad id %q: %w", field, err)
		}
		ids = append(ids, lanemap.ID(v))
	}
	return ids, nil
}

// loadOrigin reads the map origin from a YAML config file.
func loadOrigin(path string) (*lanemap.Origin, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg mapConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &cfg.MapOrigin, nil
}

// extract builds the subset map: the target lanelet plus the regulatory
// elements referencing any of the given linestring ids, with the linestrings
// those elements point at so the subset decodes on its own.
func extract(m *lanemap.Map, laneletID lanemap.ID, lightIDs []lanemap.ID) (*lanemap.Map, error) {
	lanelet, ok := m.Lanelet(laneletID)
	if !ok {
		return nil, fmt.Errorf("lanelet %d not found in map", laneletID)
	}

	subset := &lanemap.Map{
		Origin:      m.Origin,
		Lanelets:    []lanemap.Lanelet{lanelet},
		LineStrings: []lanemap.LineString{lanelet.LeftBound, lanelet.RightBound},
	}

	wanted := make(map[lanemap.ID]bool, len(lightIDs))
	for _, id := range lightIDs {
		wanted[id] = true
	}

	included := map[lanemap.ID]bool{
		lanelet.LeftBound.ID:  true,
		lanelet.RightBound.ID: true,
	}
	for _, re := range m.RegulatoryElements {
		if !referencesAny(re, wanted) {
			continue
		}
		subset.RegulatoryElements = append(subset.RegulatoryElements, re)
		for _, members := range re.Parameters {
			for _, id := range members {
				if included[id] {
					continue
				}
				if ls, ok := m.LineString(id); ok {
					subset.LineStrings = append(subset.LineStrings, ls)
					included[id] = true
				}
			}
		}
	}

	subset.Normalize()
	return subset, nil
}

// referencesAny reports whether the regulatory element references one of the
// wanted linestring ids in any role.
func referencesAny(re lanemap.RegulatoryElement, wanted map[lanemap.ID]bool) bool {
	for _, members := range re.Parameters {
		for _, id := range members {
			if wanted[id] {
				return true
			}
		}
	}
	return false
}
