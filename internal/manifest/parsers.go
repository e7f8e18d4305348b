// Package manifest converts raw dependency-manifest text into flat lists of
// lowercase dependency names. Parsers never fail: malformed input yields an
// empty list.
package manifest

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"
)

var (
	versionSpecifier = regexp.MustCompile(`[<>=!]`)
	extrasSuffix     = regexp.MustCompile(`\[.*\]`)
	installRequires  = regexp.MustCompile(`(?s)install_requires\s*=\s*\[(.*?)\]`)
	quotedLiteral    = regexp.MustCompile(`['"]([^'"]+)['"]`)
	setupVersionCut  = regexp.MustCompile(`[<>=!~;\s\[]`)
)

// ParsePackageJSON returns the keys of "dependencies" and "devDependencies".
func ParsePackageJSON(content string) []string {
	var pkg struct {
		Dependencies    map[string]json.RawMessage `json:"dependencies"`
		DevDependencies map[string]json.RawMessage `json:"devDependencies"`
	}
	if err := json.Unmarshal([]byte(content), &pkg); err != nil {
		return []string{}
	}

	deps := lowerKeys(pkg.Dependencies)
	return append(deps, lowerKeys(pkg.DevDependencies)...)
}

// ParseRequirementsTxt parses a pip requirements file. "Foo[extra]==1.2.3" yields "foo".
func ParseRequirementsTxt(content string) []string {
	deps := []string{}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		// Pip options (-r, -e, --index-url) name no package
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}

		name := versionSpecifier.Split(line, 2)[0]
		name = extrasSuffix.ReplaceAllString(name, "")
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			deps = append(deps, name)
		}
	}
	return deps
}

// ParsePipfile returns the keys declared under [packages] and [dev-packages].
func ParsePipfile(content string) []string {
	deps := []string{}
	section := ""
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "[") {
			section = strings.ToLower(line)
			continue
		}
		if section != "[packages]" && section != "[dev-packages]" {
			continue
		}
		if !strings.Contains(line, "=") || strings.HasPrefix(line, "#") {
			continue
		}

		name := strings.TrimSpace(strings.SplitN(line, "=", 2)[0])
		name = strings.ToLower(strings.Trim(name, `"'`))
		if name != "" {
			deps = append(deps, name)
		}
	}
	return deps
}

// ParseSetupPy extracts the string literals of an install_requires = [...] list.
func ParseSetupPy(content string) []string {
	deps := []string{}
	match := installRequires.FindStringSubmatch(content)
	if match == nil {
		return deps
	}

	for _, literal := range quotedLiteral.FindAllStringSubmatch(match[1], -1) {
		name := setupVersionCut.Split(literal[1], 2)[0]
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			deps = append(deps, name)
		}
	}
	return deps
}

func lowerKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, strings.ToLower(k))
	}
	sort.Strings(keys)
	return keys
}
