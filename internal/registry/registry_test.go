package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_CoversAllLanguages(t *testing.T) {
	r := Default()

	for _, lang := range []string{"python", "javascript", "typescript", "java", "c#", "php", "ruby", "go", "kotlin", "dart", "scala", "rust", "elixir", "swift"} {
		assert.NotEmpty(t, r.FilesFor(lang), "files for %s", lang)
		assert.True(t, r.HasFrameworks(lang), "frameworks for %s", lang)
	}
}

func TestFilesFor_CaseInsensitive(t *testing.T) {
	r := Default()
	lower := r.FilesFor("python")
	mixed := r.FilesFor("Python")
	require.NotEmpty(t, lower)
	require.Len(t, mixed, len(lower))
	for i := range lower {
		assert.Equal(t, lower[i].Pattern, mixed[i].Pattern)
		assert.Equal(t, lower[i].Parser.Supported(), mixed[i].Parser.Supported())
	}
	assert.Empty(t, r.FilesFor("cobol"))
}

func patterns(specs []DependencyFileSpec) []string {
	out := make([]string, len(specs))
	for i, s := range specs {
		out[i] = s.Pattern
	}
	return out
}

func TestFilesFor_PythonManifests(t *testing.T) {
	assert.ElementsMatch(t, []string{"requirements.txt", "Pipfile", "setup.py"}, patterns(Default().FilesFor("python")))
}

func TestParser_Variant(t *testing.T) {
	unsupported := Unsupported()
	assert.False(t, unsupported.Supported())
	deps, ok := unsupported.Parse("anything")
	assert.False(t, ok)
	assert.Nil(t, deps)

	var zero Parser
	assert.False(t, zero.Supported())

	supported := Supported(func(string) []string { return []string{"x"} })
	require.True(t, supported.Supported())
	deps, ok = supported.Parse("")
	assert.True(t, ok)
	assert.Equal(t, []string{"x"}, deps)
}

func TestUnsupportedOnlyLanguages(t *testing.T) {
	r := Default()
	for _, lang := range []string{"c#", "kotlin", "scala", "elixir", "swift"} {
		for _, spec := range r.FilesFor(lang) {
			assert.False(t, spec.Parser.Supported(), "%s %s", lang, spec.Pattern)
		}
	}
}

func TestDependencyFileSpec_Matches(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"package.json", "package.json", true},
		{"package.json", "web/client/package.json", true},
		{"package.json", "package.json.bak", false},
		{"requirements.txt", "dev-requirements.txt", true},
		{"*.csproj", "src/App/App.csproj", true},
		{"*.csproj", "src/App/App.cs", false},
		{"Gemfile", "Gemfile.lock", false},
	}

	for _, tt := range tests {
		spec := DependencyFileSpec{Pattern: tt.pattern}
		assert.Equal(t, tt.want, spec.Matches(tt.path), "%s vs %s", tt.pattern, tt.path)
	}
}

func TestFrameworksIn(t *testing.T) {
	r := Default()
	got := r.FrameworksIn([]string{"Flask", "os", "react", "flask", "Spring Boot"})
	assert.Equal(t, []string{"flask", "react", "spring boot"}, got)
	assert.Empty(t, r.FrameworksIn(nil))
}

func TestNew_CopiesInput(t *testing.T) {
	frameworks := map[string][]string{"Go": {"gin"}}
	r := New(nil, frameworks)
	frameworks["Go"][0] = "mutated"

	assert.Equal(t, []string{"gin"}, r.FrameworksFor("go"))

	got := r.FrameworksFor("go")
	got[0] = "changed"
	assert.Equal(t, []string{"gin"}, r.FrameworksFor("go"))
}
