package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ternarybob/stackscout/internal/registry"
)

func TestDetect_PythonKnownOnly(t *testing.T) {
	d := NewDetector(registry.Default())

	got := d.Detect(map[string]int{"python": 1200}, []string{"fastapi", "numpy", "unknownlib"})
	assert.Equal(t, []string{"fastapi", "numpy"}, got)
}

func TestDetect_CaseInsensitive(t *testing.T) {
	d := NewDetector(registry.Default())

	got := d.Detect(map[string]int{"Python": 100}, []string{"Flask", "DJANGO"})
	assert.Equal(t, []string{"django", "flask"}, got)
}

func TestDetect_OnlyPresentLanguages(t *testing.T) {
	d := NewDetector(registry.Default())

	// react is a javascript framework; only python is present
	got := d.Detect(map[string]int{"python": 10}, []string{"react", "flask"})
	assert.Equal(t, []string{"flask"}, got)
}

func TestDetect_UnionAcrossLanguagesDeduplicated(t *testing.T) {
	d := NewDetector(registry.Default())

	got := d.Detect(
		map[string]int{"javascript": 10, "typescript": 20, "java": 5},
		[]string{"react", "express", "spring", "nestjs"},
	)
	assert.Equal(t, []string{"express", "nestjs", "react", "spring"}, got)
}

func TestDetect_EmptyInputs(t *testing.T) {
	d := NewDetector(registry.Default())

	assert.Empty(t, d.Detect(nil, []string{"flask"}))
	assert.Empty(t, d.Detect(map[string]int{"python": 1}, nil))
	assert.Empty(t, d.Detect(map[string]int{"cobol": 1}, []string{"flask"}))
	assert.NotNil(t, d.Detect(nil, nil))
}

func TestDetect_Idempotent(t *testing.T) {
	d := NewDetector(registry.Default())
	languages := map[string]int{"go": 1, "rust": 2}
	deps := []string{"gin", "chi", "axum", "tokio"}

	first := d.Detect(languages, deps)
	second := d.Detect(languages, deps)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"axum", "chi", "gin"}, first)
}
