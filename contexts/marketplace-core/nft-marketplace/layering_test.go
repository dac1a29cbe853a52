package nftmarketplace_test

import (
	"go/parser"
	"go/token"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const modulePath = "nftmarket/contexts/marketplace-core/nft-marketplace"

// Allowed non-stdlib import prefixes per layer directory.
var layerAllowlist = map[string][]string{
	"domain": {
		modulePath + "/domain",
		"github.com/shopspring/decimal",
	},
	"ports": {
		modulePath + "/domain",
		"nftmarket/contracts",
		"github.com/shopspring/decimal",
	},
	"application": {
		modulePath + "/application",
		modulePath + "/domain",
		modulePath + "/ports",
		"github.com/shopspring/decimal",
	},
	"transport": {},
}

func TestLayersImportOnlyInwards(t *testing.T) {
	var violations []string

	err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		layer := strings.SplitN(filepath.ToSlash(path), "/", 2)[0]
		allowed, ruled := layerAllowlist[layer]
		if !ruled {
			return nil
		}

		fset := token.NewFileSet()
		file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		for _, imp := range file.Imports {
			importPath := strings.Trim(imp.Path.Value, `"`)
			if isStdlib(importPath) || allowedImport(importPath, allowed) {
				continue
			}
			violations = append(violations,
				fset.Position(imp.Pos()).String()+" imports "+importPath+" from layer "+layer)
		}
		return nil
	})
	require.NoError(t, err)
	require.Empty(t, violations)
}

func allowedImport(importPath string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if importPath == prefix || strings.HasPrefix(importPath, prefix+"/") {
			return true
		}
	}
	return false
}

func isStdlib(importPath string) bool {
	first, _, _ := strings.Cut(importPath, "/")
	return !strings.Contains(first, ".") && first != "nftmarket"
}
