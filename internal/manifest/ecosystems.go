package manifest

import (
	"encoding/json"
	"encoding/xml"
	"path"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"gopkg.in/yaml.v3"
)

var (
	gemDeclaration = regexp.MustCompile(`(?m)^\s*gem\s+['"]([^'"]+)['"]`)
	trailingDigits = regexp.MustCompile(`[0-9]+$`)
)

// ParseGoMod returns each required module path plus its short name
// ("github.com/labstack/echo/v4" also yields "echo").
func ParseGoMod(content string) []string {
	f, err := modfile.ParseLax("go.mod", []byte(content), nil)
	if err != nil {
		return []string{}
	}

	deps := []string{}
	for _, req := range f.Require {
		full := strings.ToLower(req.Mod.Path)
		deps = append(deps, full)

		prefix, _, ok := module.SplitPathVersion(full)
		if !ok {
			prefix = full
		}
		if short := path.Base(prefix); short != full && short != "." {
			deps = append(deps, short)
		}
	}
	return deps
}

// ParseCargoToml returns crate names from the dependency tables. Hyphenated
// crates also yield their first segment ("actix-web" yields "actix").
func ParseCargoToml(content string) []string {
	var manifest map[string]interface{}
	if err := toml.Unmarshal([]byte(content), &manifest); err != nil {
		return []string{}
	}

	deps := []string{}
	for _, table := range []string{"dependencies", "dev-dependencies", "build-dependencies"} {
		section, ok := manifest[table].(map[string]interface{})
		if !ok {
			continue
		}
		for _, name := range lowerKeys(section) {
			deps = append(deps, name)
			if head, _, found := strings.Cut(name, "-"); found && head != "" {
				deps = append(deps, head)
			}
		}
	}
	return deps
}

// ParsePubspecYAML returns the keys of dependencies and dev_dependencies.
func ParsePubspecYAML(content string) []string {
	var pubspec struct {
		Dependencies    map[string]interface{} `yaml:"dependencies"`
		DevDependencies map[string]interface{} `yaml:"dev_dependencies"`
	}
	if err := yaml.Unmarshal([]byte(content), &pubspec); err != nil {
		return []string{}
	}

	deps := lowerKeys(pubspec.Dependencies)
	return append(deps, lowerKeys(pubspec.DevDependencies)...)
}

// ParseGemfile returns the names of gem declarations.
func ParseGemfile(content string) []string {
	deps := []string{}
	for _, m := range gemDeclaration.FindAllStringSubmatch(content, -1) {
		deps = append(deps, strings.ToLower(m[1]))
	}
	return deps
}

type pomProject struct {
	Parent       pomDependency   `xml:"parent"`
	Dependencies []pomDependency `xml:"dependencies>dependency"`
	Managed      []pomDependency `xml:"dependencyManagement>dependencies>dependency"`
}

type pomDependency struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
}

// ParsePomXML returns artifact IDs and the last groupId segment of each
// dependency. Spring Boot artifacts also yield "spring boot" and "spring".
func ParsePomXML(content string) []string {
	var project pomProject
	if err := xml.Unmarshal([]byte(content), &project); err != nil {
		return []string{}
	}

	all := append([]pomDependency{}, project.Dependencies...)
	all = append(all, project.Managed...)
	if project.Parent.ArtifactID != "" {
		all = append(all, project.Parent)
	}

	deps := []string{}
	for _, d := range all {
		artifact := strings.ToLower(strings.TrimSpace(d.ArtifactID))
		group := strings.ToLower(strings.TrimSpace(d.GroupID))
		if artifact == "" {
			continue
		}
		deps = append(deps, artifact)

		if idx := strings.LastIndex(group, "."); idx >= 0 && idx < len(group)-1 {
			deps = append(deps, group[idx+1:])
		}

		switch {
		case strings.HasPrefix(artifact, "spring-boot"):
			deps = append(deps, "spring boot", "spring")
		case strings.HasPrefix(artifact, "spring-"), strings.HasPrefix(group, "org.springframework"):
			deps = append(deps, "spring")
		}
	}
	return deps
}

// ParseComposerJSON returns the keys of "require" and "require-dev" plus their
// vendor and package parts with trailing version digits removed.
func ParseComposerJSON(content string) []string {
	var composer struct {
		Require    map[string]json.RawMessage `json:"require"`
		RequireDev map[string]json.RawMessage `json:"require-dev"`
	}
	if err := json.Unmarshal([]byte(content), &composer); err != nil {
		return []string{}
	}

	names := append(lowerKeys(composer.Require), lowerKeys(composer.RequireDev)...)
	deps := []string{}
	for _, name := range names {
		// Platform requirements such as "php" and "ext-json" are not packages
		if !strings.Contains(name, "/") {
			continue
		}
		deps = append(deps, name)
		vendor, pkg, _ := strings.Cut(name, "/")
		for _, part := range []string{vendor, pkg} {
			if part = trailingDigits.ReplaceAllString(part, ""); part != "" {
				deps = append(deps, part)
			}
		}
	}
	return deps
}
