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

const modulePath = "github.com/reglet-dev/canister-sdk/go/"

// sourceFiles returns the non-test Go files of dir.
func sourceFiles(t *testing.T, dir string) []string {
	t.Helper()
	files, err := filepath.Glob(filepath.Join(dir, "*.go"))
	require.NoError(t, err, "failed to glob %s", dir)

	out := files[:0]
	for _, f := range files {
		if !strings.HasSuffix(f, "_test.go") {
			out = append(out, f)
		}
	}
	return out
}

func imports(t *testing.T, fset *token.FileSet, filename string) []string {
	t.Helper()
	f, err := parser.ParseFile(fset, filename, nil, parser.ImportsOnly)
	require.NoError(t, err, "failed to parse %s", filename)

	out := make([]string, 0, len(f.Imports))
	for _, imp := range f.Imports {
		out = append(out, strings.Trim(imp.Path.Value, `"`))
	}
	return out
}

// TestDomainHasNoExternalDependencies verifies that the domain layer only
// imports the standard library, other domain packages and the wide-integer
// library behind Uint128.
func TestDomainHasNoExternalDependencies(t *testing.T) {
	fset := token.NewFileSet()
	allowedThirdParty := []string{"github.com/holiman/uint256"}

	for _, pkg := range []string{"entities", "errors", "ports"} {
		for _, file := range sourceFiles(t, pkg) {
			for _, imp := range imports(t, fset, file) {
				if strings.HasPrefix(imp, modulePath) {
					assert.True(t, strings.HasPrefix(imp, modulePath+"domain/"),
						"domain/%s (%s) imports non-domain SDK package %s", pkg, filepath.Base(file), imp)
					continue
				}
				if !strings.Contains(strings.SplitN(imp, "/", 2)[0], ".") {
					continue
				}
				assert.Contains(t, allowedThirdParty, imp,
					"domain/%s (%s) imports third-party package %s", pkg, filepath.Base(file), imp)
			}
		}
	}
}

// TestConcernPackagesStayBelowRuntime verifies that the per-concern
// packages never reach up into the runtime, the adapters or the test
// tooling. Those layers depend on them, not the other way round.
func TestConcernPackagesStayBelowRuntime(t *testing.T) {
	fset := token.NewFileSet()
	forbidden := []string{
		modulePath + "application",
		modulePath + "infrastructure",
		modulePath + "host",
		modulePath + "testing",
		modulePath + "cmd",
	}

	for _, pkg := range []string{"msg", "call", "stable", "certified", "clock", "cost", "canister", "config"} {
		files := sourceFiles(t, filepath.Join("..", pkg))
		require.NotEmpty(t, files, "%s should contain Go files", pkg)
		for _, file := range files {
			for _, imp := range imports(t, fset, file) {
				for _, f := range forbidden {
					assert.False(t, strings.HasPrefix(imp, f),
						"%s (%s) must not import %s", pkg, filepath.Base(file), imp)
				}
			}
		}
	}
}

// TestDomainEntitiesPortsErrorsExist verifies that required domain packages exist
func TestDomainEntitiesPortsErrorsExist(t *testing.T) {
	for _, dir := range []string{"entities", "errors", "ports"} {
		files, err := filepath.Glob(filepath.Join(dir, "*.go"))
		require.NoError(t, err, "failed to check %s directory", dir)
		assert.NotEmpty(t, files, "domain/%s should contain Go files", dir)
	}
}
