package domain_test

import (
	"go/parser"
	"go/token"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDomainHasNoExternalDependencies verifies that the domain layer
// does not import from application or infrastructure layers.
// This is a critical hexagonal architecture requirement.
func TestDomainHasNoExternalDependencies(t *testing.T) {
	fset := token.NewFileSet()

	for _, pkg := range []string{"entities", "errors", "ports"} {
		pattern := filepath.Join(pkg, "*.go")
		files, err := filepath.Glob(pattern)
		require.NoError(t, err, "failed to glob %s files", pkg)

		for _, file := range files {
			// Test files may import testing and testify.
			if strings.HasSuffix(file, "_test.go") {
				continue
			}
			checkFileImports(t, fset, file, pkg)
		}
	}
}

func checkFileImports(t *testing.T, fset *token.FileSet, filename, pkg string) {
	t.Helper()

	f, err := parser.ParseFile(fset, filename, nil, parser.ImportsOnly)
	require.NoError(t, err, "failed to parse %s", filename)

	for _, imp := range f.Imports {
		importPath := strings.Trim(imp.Path.Value, `"`)

		forbiddenPackages := []string{
			"github.com/lantern-dev/lanternhost/application",
			"github.com/lantern-dev/lanternhost/infrastructure",
			"github.com/lantern-dev/lanternhost/host",
			"github.com/lantern-dev/lanternhost/hostfuncs",
			"github.com/lantern-dev/lanternhost/wireformat",
			"github.com/lantern-dev/lanternhost/observability",
			"github.com/lantern-dev/lanternhost/log",
		}

		for _, forbidden := range forbiddenPackages {
			assert.NotContains(t, importPath, forbidden,
				"domain/%s package (%s) must not import from %s (violates hexagonal architecture)",
				pkg, filepath.Base(filename), forbidden)
		}

		// Domain may only import the standard library and other domain
		// packages.
		if strings.Contains(importPath, "github.com/lantern-dev/lanternhost/") {
			assert.True(t,
				strings.Contains(importPath, "/domain/"),
				"domain/%s package (%s) imports non-domain package: %s",
				pkg, filepath.Base(filename), importPath)
		}
	}
}

// TestDomainEntitiesPortsErrorsExist verifies that required domain packages exist
func TestDomainEntitiesPortsErrorsExist(t *testing.T) {
	for _, dir := range []string{"entities", "errors", "ports"} {
		pattern := filepath.Join(dir, "*.go")
		files, err := filepath.Glob(pattern)

		require.NoError(t, err, "failed to check %s directory", dir)
		assert.NotEmpty(t, files, "domain/%s should contain Go files", dir)
	}
}
