package knowledge

import (
	"context"
	"go/parser"
	"go/token"
	"path"
	"regexp"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

var jsImportPatterns = []*regexp.Regexp{
	regexp.MustCompile(`import[^'"]*?from\s*['"]([^'"]+)['"]`),
	regexp.MustCompile(`require\(\s*['"]([^'"]+)['"]\s*\)`),
	regexp.MustCompile(`import\s*['"]([^'"]+)['"]`),
}

var majorVersionRe = regexp.MustCompile(`^v[0-9]+$`)

// ExtractImports returns the top-level package names imported by a source
// file, in first-seen order. Unsupported file types and unparsable sources
// yield nil.
func ExtractImports(ctx context.Context, filePath string, content []byte) []string {
	switch strings.ToLower(path.Ext(filePath)) {
	case ".py":
		return dedupe(pythonImports(ctx, content))
	case ".js", ".ts", ".tsx", ".jsx":
		return dedupe(jsImports(content))
	case ".go":
		return dedupe(goImports(content))
	}
	return nil
}

func dedupe(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// pythonImports walks the tree-sitter syntax tree for import statements.
// Relative imports are skipped.
func pythonImports(ctx context.Context, content []byte) []string {
	if len(content) == 0 {
		return nil
	}

	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(python.GetLanguage())

	tree, err := p.ParseCtx(ctx, nil, content)
	if err != nil || tree == nil {
		return nil
	}
	defer tree.Close()

	var out []string
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "import_statement":
			for i := 0; i < int(n.NamedChildCount()); i++ {
				if name := importedModule(n.NamedChild(i), content); name != "" {
					out = append(out, topLevel(name))
				}
			}
			return
		case "import_from_statement":
			if mod := n.ChildByFieldName("module_name"); mod != nil && mod.Type() == "dotted_name" {
				out = append(out, topLevel(mod.Content(content)))
			}
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(tree.RootNode())
	return out
}

func importedModule(n *sitter.Node, content []byte) string {
	switch n.Type() {
	case "dotted_name":
		return n.Content(content)
	case "aliased_import":
		if name := n.ChildByFieldName("name"); name != nil {
			return name.Content(content)
		}
	}
	return ""
}

func topLevel(dotted string) string {
	if i := strings.IndexByte(dotted, '.'); i >= 0 {
		return dotted[:i]
	}
	return dotted
}

func jsImports(content []byte) []string {
	src := string(content)
	var out []string
	for _, re := range jsImportPatterns {
		for _, m := range re.FindAllStringSubmatch(src, -1) {
			spec := m[1]
			if strings.HasPrefix(spec, ".") || strings.HasPrefix(spec, "/") {
				continue
			}
			parts := strings.Split(spec, "/")
			if strings.HasPrefix(spec, "@") && len(parts) > 1 {
				out = append(out, parts[0]+"/"+parts[1])
				continue
			}
			out = append(out, parts[0])
		}
	}
	return out
}

// goImports names each import by its last path element, skipping a trailing
// major-version element such as /v5
func goImports(content []byte) []string {
	f, err := parser.ParseFile(token.NewFileSet(), "", content, parser.ImportsOnly)
	if err != nil {
		return nil
	}

	out := make([]string, 0, len(f.Imports))
	for _, imp := range f.Imports {
		p, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}
		parts := strings.Split(p, "/")
		name := parts[len(parts)-1]
		if majorVersionRe.MatchString(name) && len(parts) > 1 {
			name = parts[len(parts)-2]
		}
		out = append(out, name)
	}
	return out
}
