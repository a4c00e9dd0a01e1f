package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hpungsan/spellbook/internal/config"
	"github.com/hpungsan/spellbook/internal/errors"
)

// PathCheckMode indicates whether the path check is for reading or writing.
type PathCheckMode int

const (
	PathCheckRead  PathCheckMode = iota // dataset, foreword, stylesheet, verify
	PathCheckWrite                      // built books
)

// File extensions accepted for each kind of path.
var (
	DatasetExts = []string{".csv", ".txt"}
	BookExts    = []string{".epub"}
	TextExts    = []string{".md", ".markdown", ".txt", ".css"}
)

// ValidatePath checks a user-supplied path before it is opened.
//
// The path must not contain "..", must end in one of exts (any case) and
// must not be a symlink. Unless AllowUnsafePaths is set, the file must sit
// directly inside ~/.spellbook/exports or an allowed_paths directory, and
// that directory must not be a symlink. Nested directories are refused so no
// intermediate component can be swapped between this check and the
// O_NOFOLLOW open. In read mode the file must exist.
func ValidatePath(path string, mode PathCheckMode, cfg *config.Config, exts []string) error {
	abs, err := checkShape(path, exts)
	if err != nil {
		return err
	}

	if cfg == nil || !cfg.AllowUnsafePaths {
		dirs, err := allowedDirs(cfg)
		if err != nil {
			return err
		}
		if err := checkParent(filepath.Dir(abs), dirs); err != nil {
			return err
		}
	}

	info, err := os.Lstat(abs)
	switch {
	case err == nil && info.Mode()&os.ModeSymlink != 0:
		return errors.NewInvalidRequest("path must not be a symlink")
	case mode == PathCheckRead && os.IsNotExist(err):
		return errors.NewFileNotFound(path)
	}
	return nil
}

// checkShape applies the lexical rules and returns the absolute path.
func checkShape(path string, exts []string) (string, error) {
	if path == "" {
		return "", errors.NewInvalidRequest("path is required")
	}
	if containsTraversal(path) {
		return "", errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}
	cleaned := filepath.Clean(path)
	if !slices.Contains(exts, strings.ToLower(filepath.Ext(cleaned))) {
		return "", errors.NewInvalidRequest(fmt.Sprintf("path must have one of the extensions %v", exts))
	}
	abs, err := filepath.Abs(cleaned)
	if err != nil {
		return "", errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}
	return abs, nil
}

// checkParent requires parent to be one of dirs and not a symlink.
func checkParent(parent string, dirs []string) error {
	if !slices.Contains(dirs, filepath.Clean(parent)) {
		return errors.NewInvalidRequest(fmt.Sprintf(
			"file must be directly in an allowed directory (no subdirectories); allowed: %v", dirs))
	}
	if info, err := os.Lstat(parent); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("parent directory must not be a symlink")
	}
	return nil
}

// allowedDirs lists the exports directory plus every absolute allowed_paths
// entry, cleaned. A symlinked entry is replaced by its target.
func allowedDirs(cfg *config.Config) ([]string, error) {
	exports, err := DefaultExportsDir()
	if err != nil {
		return nil, err
	}
	candidates := []string{exports}
	if cfg != nil {
		for _, p := range cfg.AllowedPaths {
			if filepath.IsAbs(p) {
				candidates = append(candidates, p)
			}
		}
	}

	dirs := make([]string, 0, len(candidates))
	for _, d := range candidates {
		abs, err := filepath.Abs(filepath.Clean(d))
		if err != nil {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid allowed path: %v", err))
		}
		if info, err := os.Lstat(abs); err == nil && info.Mode()&os.ModeSymlink != 0 {
			if abs, err = filepath.EvalSymlinks(abs); err != nil {
				return nil, errors.NewInvalidRequest(fmt.Sprintf("cannot resolve symlink in allowed path: %v", err))
			}
		}
		dirs = append(dirs, abs)
	}
	return dirs, nil
}

// DefaultExportsDir returns the default exports directory (~/.spellbook/exports).
func DefaultExportsDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to get home directory: %w", err))
	}
	return filepath.Join(homeDir, config.DirName, "exports"), nil
}

// containsTraversal reports whether any component of path is "..". Forward
// slashes count as separators on every platform.
func containsTraversal(path string) bool {
	split := func(r rune) bool { return r == '/' || r == filepath.Separator }
	return slices.Contains(strings.FieldsFunc(path, split), "..")
}

// SanitizeForFilename turns a book title into a safe file stem. Path
// separators and ".." become dashes, control characters are dropped, dash
// runs collapse and edge dashes are trimmed. An empty result becomes
// "unnamed".
func SanitizeForFilename(s string) string {
	s = strings.NewReplacer("/", "-", "\\", "-").Replace(s)
	s = strings.ReplaceAll(s, "..", "-")
	s = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)

	var b strings.Builder
	for _, r := range s {
		if r == '-' && strings.HasSuffix(b.String(), "-") {
			continue
		}
		b.WriteRune(r)
	}
	if s = strings.Trim(b.String(), "-"); s == "" {
		return "unnamed"
	}
	return s
}
