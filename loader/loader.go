// Package loader resolves and restricts the program image path before
// handing it to memory.LoadFile: the raw-binary counterpart of the
// teacher's assembly-program loader, scoped down to RV32I's flat image
// model where there is no symbol table or relocation to process.
package loader

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ResolvePath validates that path lies within root (once both are made
// absolute) and returns the absolute path to load. An empty root disables
// the restriction, matching the teacher's "-fsroot" default of the
// current working directory being implicit rather than enforced.
func ResolvePath(root, path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving input path: %w", err)
	}

	if root == "" {
		return absPath, nil
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving fsroot: %w", err)
	}

	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("input path %q escapes fsroot %q", path, root)
	}

	return absPath, nil
}
