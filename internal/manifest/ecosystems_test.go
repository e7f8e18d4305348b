package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseGoMod(t *testing.T) {
	content := `module example.com/api

go 1.22

require (
	github.com/gin-gonic/gin v1.9.1
	github.com/labstack/echo/v4 v4.11.0
	gopkg.in/yaml.v3 v3.0.1 // indirect
)
`
	deps := ParseGoMod(content)
	assert.Contains(t, deps, "github.com/gin-gonic/gin")
	assert.Contains(t, deps, "gin")
	assert.Contains(t, deps, "github.com/labstack/echo/v4")
	assert.Contains(t, deps, "echo")
	assert.Contains(t, deps, "yaml")
}

func TestParseGoMod_Malformed(t *testing.T) {
	assert.Empty(t, ParseGoMod("require github.com/x"))
}

func TestParseCargoToml(t *testing.T) {
	content := `
[package]
name = "svc"

[dependencies]
actix-web = "4"
serde = { version = "1", features = ["derive"] }

[dev-dependencies]
tokio = "1"
`
	deps := ParseCargoToml(content)
	assert.ElementsMatch(t, []string{"actix-web", "actix", "serde", "tokio"}, deps)
}

func TestParseCargoToml_Malformed(t *testing.T) {
	assert.Empty(t, ParseCargoToml("[dependencies\nfoo ="))
}

func TestParsePubspecYAML(t *testing.T) {
	content := `
name: app
dependencies:
  flutter:
    sdk: flutter
  http: ^1.1.0
dev_dependencies:
  flutter_test:
    sdk: flutter
`
	deps := ParsePubspecYAML(content)
	assert.ElementsMatch(t, []string{"flutter", "http", "flutter_test"}, deps)
}

func TestParseGemfile(t *testing.T) {
	content := `source "https://rubygems.org"

gem "rails", "~> 7.0"
gem 'Sinatra'
  gem "puma"
# gem "ignored"
`
	assert.Equal(t, []string{"rails", "sinatra", "puma"}, ParseGemfile(content))
}

func TestParsePomXML(t *testing.T) {
	content := `<?xml version="1.0"?>
<project xmlns="http://maven.apache.org/POM/4.0.0">
  <parent>
    <groupId>org.springframework.boot</groupId>
    <artifactId>spring-boot-starter-parent</artifactId>
  </parent>
  <dependencies>
    <dependency>
      <groupId>org.apache.spark</groupId>
      <artifactId>spark-core_2.12</artifactId>
    </dependency>
    <dependency>
      <groupId>io.quarkus</groupId>
      <artifactId>quarkus-core</artifactId>
    </dependency>
  </dependencies>
</project>`

	deps := ParsePomXML(content)
	assert.Contains(t, deps, "spark")
	assert.Contains(t, deps, "quarkus")
	assert.Contains(t, deps, "spring boot")
	assert.Contains(t, deps, "spring")
	assert.Contains(t, deps, "quarkus-core")
}

func TestParsePomXML_Malformed(t *testing.T) {
	assert.Empty(t, ParsePomXML("<project><dependencies>"))
}

func TestParseComposerJSON(t *testing.T) {
	content := `{
		"require": {"php": "^8.1", "laravel/framework": "^10.0", "ext-json": "*"},
		"require-dev": {"yiisoft/yii2": "~2.0"}
	}`

	deps := ParseComposerJSON(content)
	assert.Contains(t, deps, "laravel/framework")
	assert.Contains(t, deps, "laravel")
	assert.Contains(t, deps, "yii")
	assert.NotContains(t, deps, "php")
	assert.NotContains(t, deps, "ext-json")
}
