package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePackageJSON(t *testing.T) {
	content := `{
		"name": "web",
		"dependencies": {"React": "^18.0.0", "express": "4.18.2"},
		"devDependencies": {"Jest": "29.0.0"}
	}`

	deps := ParsePackageJSON(content)
	assert.ElementsMatch(t, []string{"react", "express", "jest"}, deps)
}

func TestParsePackageJSON_NoDedupAcrossSections(t *testing.T) {
	content := `{"dependencies": {"react": "1"}, "devDependencies": {"react": "1"}}`
	assert.Equal(t, []string{"react", "react"}, ParsePackageJSON(content))
}

func TestParsePackageJSON_Malformed(t *testing.T) {
	assert.Empty(t, ParsePackageJSON(`{"dependencies": `))
	assert.Empty(t, ParsePackageJSON(``))
	assert.Empty(t, ParsePackageJSON(`[]`))
	assert.Empty(t, ParsePackageJSON(`{"name": "no-deps"}`))
}

func TestParseRequirementsTxt(t *testing.T) {
	content := `
# web stack
Foo[extra]==1.2.3
flask>=2.0
Django<5
numpy!=1.20
requests

-r base.txt
   # indented comment
pandas
`
	deps := ParseRequirementsTxt(content)
	assert.Equal(t, []string{"foo", "flask", "django", "numpy", "requests", "pandas"}, deps)
}

func TestParseRequirementsTxt_CommentsAndBlanksOnly(t *testing.T) {
	assert.Empty(t, ParseRequirementsTxt("\n# nothing here\n\n"))
}

func TestParsePipfile(t *testing.T) {
	content := `
[[source]]
url = "https://pypi.org/simple"
verify_ssl = true

[packages]
fastapi = "*"
"Uvicorn" = {extras = ["standard"], version = "*"}

[dev-packages]
pytest = "*"

[requires]
python_version = "3.11"
`
	deps := ParsePipfile(content)
	assert.Equal(t, []string{"fastapi", "uvicorn", "pytest"}, deps)
}

func TestParseSetupPy(t *testing.T) {
	content := `
from setuptools import setup

setup(
    name="svc",
    install_requires = [
        "Flask>=2.0",
        'numpy',
        "requests ~= 2.31",
    ],
)
`
	deps := ParseSetupPy(content)
	assert.Equal(t, []string{"flask", "numpy", "requests"}, deps)
}

func TestParseSetupPy_NoInstallRequires(t *testing.T) {
	assert.Empty(t, ParseSetupPy(`setup(name="x")`))
}
