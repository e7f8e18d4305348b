package detector

import (
	"sort"
	"strings"

	"github.com/ternarybob/stackscout/internal/registry"
)

// Detector matches declared dependencies against the framework catalog of the
// languages present in a repository.
type Detector struct {
	registry *registry.Registry
}

// NewDetector creates a detector over the given registry
func NewDetector(reg *registry.Registry) *Detector {
	return &Detector{registry: reg}
}

// Detect returns the sorted, deduplicated frameworks of the present languages
// whose lowercased name appears among deps. Languages without a catalog entry
// contribute nothing.
func (d *Detector) Detect(languages map[string]int, deps []string) []string {
	depSet := make(map[string]struct{}, len(deps))
	for _, dep := range deps {
		depSet[strings.ToLower(dep)] = struct{}{}
	}

	found := make(map[string]struct{})
	for language := range languages {
		for _, framework := range d.registry.FrameworksFor(language) {
			if _, ok := depSet[strings.ToLower(framework)]; ok {
				found[framework] = struct{}{}
			}
		}
	}

	result := make([]string, 0, len(found))
	for framework := range found {
		result = append(result, framework)
	}
	sort.Strings(result)
	return result
}
