package registry

import (
	"github.com/ternarybob/stackscout/internal/manifest"
)

// DefaultDependencyFiles returns the language -> manifest table
func DefaultDependencyFiles() map[string][]DependencyFileSpec {
	packageJSON := Supported(manifest.ParsePackageJSON)

	return map[string][]DependencyFileSpec{
		"python": {
			{Pattern: "requirements.txt", Parser: Supported(manifest.ParseRequirementsTxt)},
			{Pattern: "Pipfile", Parser: Supported(manifest.ParsePipfile)},
			{Pattern: "setup.py", Parser: Supported(manifest.ParseSetupPy)},
		},
		"javascript": {
			{Pattern: "package.json", Parser: packageJSON},
		},
		"typescript": {
			{Pattern: "package.json", Parser: packageJSON},
		},
		"java": {
			{Pattern: "pom.xml", Parser: Supported(manifest.ParsePomXML)},
			{Pattern: "build.gradle", Parser: Unsupported()},
		},
		"c#": {
			{Pattern: "*.csproj", Parser: Unsupported()},
			{Pattern: "packages.config", Parser: Unsupported()},
		},
		"php": {
			{Pattern: "composer.json", Parser: Supported(manifest.ParseComposerJSON)},
		},
		"ruby": {
			{Pattern: "Gemfile", Parser: Supported(manifest.ParseGemfile)},
			{Pattern: "Gemfile.lock", Parser: Unsupported()},
		},
		"go": {
			{Pattern: "go.mod", Parser: Supported(manifest.ParseGoMod)},
			{Pattern: "go.sum", Parser: Unsupported()},
		},
		"kotlin": {
			{Pattern: "build.gradle.kts", Parser: Unsupported()},
			{Pattern: "build.gradle", Parser: Unsupported()},
		},
		"dart": {
			{Pattern: "pubspec.yaml", Parser: Supported(manifest.ParsePubspecYAML)},
		},
		"scala": {
			{Pattern: "build.sbt", Parser: Unsupported()},
		},
		"rust": {
			{Pattern: "Cargo.toml", Parser: Supported(manifest.ParseCargoToml)},
		},
		"elixir": {
			{Pattern: "mix.exs", Parser: Unsupported()},
		},
		"swift": {
			{Pattern: "Package.swift", Parser: Unsupported()},
		},
	}
}

// DefaultFrameworks returns the language -> known framework table
func DefaultFrameworks() map[string][]string {
	return map[string][]string{
		"python": {
			"fastapi", "flask", "django", "pyramid", "tornado", "bottle", "falcon", "hug", "web2py",
			"pytorch", "tensorflow", "scikit-learn", "xgboost", "lightgbm", "pandas", "numpy",
			"matplotlib", "seaborn", "statsmodels", "transformers", "spacy", "nltk", "openai",
		},
		"javascript": {
			"react", "vue", "angular", "next", "express", "gatsby", "svelte", "nuxt", "meteor",
			"ember", "tensorflowjs", "brain.js", "three", "d3",
		},
		"typescript": {
			"react", "vue", "angular", "next", "express", "nestjs", "nuxt", "sveltekit",
		},
		"java": {
			"spring", "spring boot", "jsf", "struts", "vaadin", "micronaut", "quarkus", "play",
			"hadoop", "spark", "weka",
		},
		"c#":     {"asp.net", "asp.net core", "blazor", "nancy", "service stack", "ml.net"},
		"php":    {"laravel", "symfony", "codeigniter", "zend", "cakephp", "yii", "phalcon"},
		"ruby":   {"rails", "sinatra", "hanami", "padrino"},
		"go":     {"gin", "echo", "fiber", "beego", "revel", "chi", "buffalo"},
		"kotlin": {"ktor", "spring", "http4k"},
		"dart":   {"flutter"},
		"scala":  {"play", "akka", "http4s", "spark"},
		"rust":   {"actix", "rocket", "warp", "axum"},
		"elixir": {"phoenix"},
		"swift":  {"vapor", "kitura", "perfect"},
	}
}

// Default builds the registry from the built-in tables. Call once at startup
// and pass the result to consumers.
func Default() *Registry {
	return New(DefaultDependencyFiles(), DefaultFrameworks())
}
