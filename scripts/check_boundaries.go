package main

import (
	"cmp"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/mod/modfile"
)

// Usage: go run ./scripts/check_boundaries.go
//
// Every service under contexts/<context>/<service>/ is a hexagon. The inner
// layers (domain, ports, application) may only import the standard library,
// the shared contracts and the inner layers named in their rule. Nothing under
// contexts/ may reach into a sibling service.

type violation struct {
	File   string
	Line   int
	Import string
	Rule   string
}

// layerRule lists the service-relative packages a layer may import. Shared
// contracts are opted in per layer.
type layerRule struct {
	inner     []string
	contracts bool
}

var layerRules = map[string]layerRule{
	"domain":      {inner: []string{"domain"}},
	"ports":       {inner: []string{"domain"}, contracts: true},
	"application": {inner: []string{"application", "domain", "ports"}, contracts: true},
}

type checker struct {
	module string
	fset   *token.FileSet
}

func main() {
	module := "practicedesk"
	if raw, err := os.ReadFile("go.mod"); err == nil {
		if path := modfile.ModulePath(raw); path != "" {
			module = path
		}
	}

	c := checker{module: module, fset: token.NewFileSet()}
	found, err := c.walk("contexts")
	if err != nil {
		fmt.Fprintf(os.Stderr, "boundary check failed: %v\n", err)
		os.Exit(2)
	}
	if len(found) == 0 {
		fmt.Println("boundary checks passed")
		return
	}
	fmt.Println("boundary violations found:")
	for _, v := range found {
		fmt.Printf("- %s:%d imports %q (%s)\n", v.File, v.Line, v.Import, v.Rule)
	}
	os.Exit(1)
}

func (c checker) walk(root string) ([]violation, error) {
	var found []violation
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".go" || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		segments := strings.Split(filepath.ToSlash(rel), "/")
		if len(segments) < 4 {
			return nil
		}
		service := c.module + "/contexts/" + segments[0] + "/" + segments[1]
		items, err := c.checkFile(filepath.ToSlash(path), service, segments[2])
		if err != nil {
			return err
		}
		found = append(found, items...)
		return nil
	})
	slices.SortFunc(found, func(a, b violation) int {
		return cmp.Or(
			cmp.Compare(a.File, b.File),
			cmp.Compare(a.Line, b.Line),
			cmp.Compare(a.Import, b.Import),
		)
	})
	return found, err
}

func (c checker) checkFile(path string, service string, layer string) ([]violation, error) {
	file, err := parser.ParseFile(c.fset, path, nil, parser.ImportsOnly)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	rule, guarded := layerRules[layer]

	var found []violation
	for _, spec := range file.Imports {
		imported := strings.Trim(spec.Path.Value, `"`)
		report := func(reason string) {
			found = append(found, violation{
				File:   path,
				Line:   c.fset.Position(spec.Pos()).Line,
				Import: imported,
				Rule:   reason,
			})
		}

		if within(imported, c.module+"/contexts") && !within(imported, service) {
			report("cross-module imports are forbidden")
		}
		if !guarded || (!within(imported, c.module) && !outsideStdlib(imported)) {
			continue
		}
		switch {
		case strings.Contains(imported, "/adapters/"):
			report(layer + " must not import adapters")
		case within(imported, c.module+"/internal"), within(imported, c.module+"/cmd"):
			report(layer + " must not import runtime infrastructure")
		case !c.permitted(imported, service, rule):
			report(layer + " import is outside explicit allowlist")
		}
	}
	return found, nil
}

func (c checker) permitted(imported string, service string, rule layerRule) bool {
	if rule.contracts && within(imported, c.module+"/contracts") {
		return true
	}
	for _, inner := range rule.inner {
		if within(imported, service+"/"+inner) {
			return true
		}
	}
	return false
}

// outsideStdlib treats any path whose first element lacks a dot as standard
// library. The module path itself is handled by callers before this.
func outsideStdlib(imported string) bool {
	first, _, _ := strings.Cut(imported, "/")
	return strings.Contains(first, ".")
}

func within(path string, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
