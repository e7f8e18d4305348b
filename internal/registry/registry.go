// Package registry holds the immutable language tables used for stack
// detection: where each language declares its dependencies, and which
// frameworks are known for it.
package registry

import (
	"path"
	"sort"
	"strings"
)

// ManifestParser converts manifest text into lowercase dependency names
type ManifestParser func(content string) []string

// Parser is either a supported parser or a marker for a known manifest
// format that is not parsed. The zero value is Unsupported.
type Parser struct {
	fn ManifestParser
}

// Supported wraps a parser function
func Supported(fn ManifestParser) Parser {
	return Parser{fn: fn}
}

// Unsupported marks a manifest format that is recognised but not parsed
func Unsupported() Parser {
	return Parser{}
}

// Supported reports whether the manifest format can be parsed
func (p Parser) Supported() bool {
	return p.fn != nil
}

// Parse runs the parser. Unsupported parsers return (nil, false).
func (p Parser) Parse(content string) ([]string, bool) {
	if p.fn == nil {
		return nil, false
	}
	return p.fn(content), true
}

// DependencyFileSpec names a manifest file and how to parse it
type DependencyFileSpec struct {
	Pattern string // file name ("package.json") or base-name glob ("*.csproj")
	Parser  Parser
}

// Matches reports whether a repository path refers to this manifest.
// Plain names match any path ending with the name.
func (s DependencyFileSpec) Matches(filePath string) bool {
	if strings.ContainsAny(s.Pattern, "*?[") {
		ok, err := path.Match(s.Pattern, path.Base(filePath))
		return err == nil && ok
	}
	return strings.HasSuffix(filePath, s.Pattern)
}

// Registry is a read-only view over the language tables. Safe for concurrent use.
type Registry struct {
	files      map[string][]DependencyFileSpec
	frameworks map[string][]string
	known      map[string]string // lowercased framework -> registry spelling
}

// New builds a Registry from the given tables. Language keys are lowercased and
// the inputs are copied.
func New(files map[string][]DependencyFileSpec, frameworks map[string][]string) *Registry {
	r := &Registry{
		files:      make(map[string][]DependencyFileSpec, len(files)),
		frameworks: make(map[string][]string, len(frameworks)),
		known:      make(map[string]string),
	}
	for lang, specs := range files {
		r.files[strings.ToLower(lang)] = append([]DependencyFileSpec(nil), specs...)
	}
	for lang, names := range frameworks {
		r.frameworks[strings.ToLower(lang)] = append([]string(nil), names...)
		for _, name := range names {
			r.known[strings.ToLower(name)] = name
		}
	}
	return r
}

// FilesFor returns the manifest specs of a language (case-insensitive)
func (r *Registry) FilesFor(language string) []DependencyFileSpec {
	return append([]DependencyFileSpec(nil), r.files[strings.ToLower(language)]...)
}

// FrameworksFor returns the known frameworks of a language (case-insensitive)
func (r *Registry) FrameworksFor(language string) []string {
	return append([]string(nil), r.frameworks[strings.ToLower(language)]...)
}

// HasFrameworks reports whether the language has a framework catalog
func (r *Registry) HasFrameworks(language string) bool {
	_, ok := r.frameworks[strings.ToLower(language)]
	return ok
}

// Languages returns every language with a dependency-file entry, sorted
func (r *Registry) Languages() []string {
	langs := make([]string, 0, len(r.files))
	for lang := range r.files {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// KnownFramework reports whether name is a framework of any language
func (r *Registry) KnownFramework(name string) bool {
	_, ok := r.known[strings.ToLower(name)]
	return ok
}

// FrameworksIn returns the registry-known frameworks among names regardless of
// language, deduplicated and sorted.
func (r *Registry) FrameworksIn(names []string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, n := range names {
		canonical, ok := r.known[strings.ToLower(n)]
		if !ok {
			continue
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		out = append(out, canonical)
	}
	sort.Strings(out)
	return out
}
