package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/hpungsan/spellbook/internal/epub"
	sberrors "github.com/hpungsan/spellbook/internal/errors"
	"github.com/hpungsan/spellbook/internal/spell"
)

// DirName is the name of both the global (~/.spellbook) and repo
// (.spellbook) configuration directories.
const DirName = ".spellbook"

// Config holds application configuration.
type Config struct {
	// Categories is the default working category set by name. Empty means
	// every category.
	Categories []string `json:"categories,omitempty"`

	// Level restricts the working set to spells of exactly this level.
	Level *int `json:"level,omitempty"`

	// Limit caps the number of spells after sorting. 0 means no cap.
	Limit int `json:"limit,omitempty"`

	// Book metadata.
	Title    string `json:"title,omitempty"`
	Creator  string `json:"creator,omitempty"`
	Language string `json:"language,omitempty"`

	// StylesheetPath replaces the built-in stylesheet.
	StylesheetPath string `json:"stylesheet_path,omitempty"`

	// ForewordPath is a Markdown file rendered as front matter.
	ForewordPath  string `json:"foreword_path,omitempty"`
	ForewordTitle string `json:"foreword_title,omitempty"`

	// Collation orders spell names: "ordinal" (byte order) or a BCP 47
	// language tag such as "en" or "de".
	Collation string `json:"collation,omitempty"`

	// UnsafeChars are replaced in entry file names. Nil keeps the default set;
	// an empty string replaces control characters only.
	UnsafeChars *string `json:"unsafe_chars,omitempty"`

	// Placeholder replaces each unsafe character.
	Placeholder string `json:"placeholder,omitempty"`

	// Strict aborts a load on the first malformed record instead of
	// skipping it.
	Strict bool `json:"strict,omitempty"`

	// Workers bounds concurrent document synthesis. 0 uses GOMAXPROCS.
	Workers int `json:"workers,omitempty"`

	// AllowedPaths is an allowlist of directories for build/import/verify.
	// Paths outside ~/.spellbook/exports require either being in this list or
	// AllowUnsafePaths=true. Paths should be absolute (relative paths are ignored).
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions.
	// Symlink and extension checks still apply.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// DBMaxOpenConns limits the maximum number of open catalog connections.
	// If set to 1, all database access is serialized.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle catalog connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// LogLevel and LogFormat configure the logger (see internal/logging).
	LogLevel  string `json:"log_level,omitempty"`
	LogFormat string `json:"log_format,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Title:         "Spell Book",
		Language:      "en",
		ForewordTitle: "Foreword",
		Collation:     "ordinal",
		Placeholder:   "_",
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.spellbook.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.spellbook) and repo
// (.spellbook) directories. Repo config is found by walking upward from
// startDir. Repo config takes precedence for scalar values; allowlists are
// merged (deduplicated) while the category working set is replaced.
// Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repoConfigPath := FindRepoConfig(startDir)
	repo, err := loadFileRaw(repoConfigPath)
	if err != nil {
		return nil, err
	}

	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .spellbook/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, DirName, "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; allowlists are merged and
// deduplicated; a non-empty overlay category set replaces the base set.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.Categories = base.Categories
	if len(overlay.Categories) > 0 {
		result.Categories = overlay.Categories
	}
	result.Level = base.Level
	if overlay.Level != nil {
		result.Level = overlay.Level
	}
	result.UnsafeChars = base.UnsafeChars
	if overlay.UnsafeChars != nil {
		result.UnsafeChars = overlay.UnsafeChars
	}

	// Scalars: overlay wins if non-zero, else base
	result.Limit = pickInt(overlay.Limit, base.Limit)
	result.Workers = pickInt(overlay.Workers, base.Workers)
	result.DBMaxOpenConns = pickInt(overlay.DBMaxOpenConns, base.DBMaxOpenConns)
	result.DBMaxIdleConns = pickInt(overlay.DBMaxIdleConns, base.DBMaxIdleConns)

	result.Title = pickString(overlay.Title, base.Title)
	result.Creator = pickString(overlay.Creator, base.Creator)
	result.Language = pickString(overlay.Language, base.Language)
	result.StylesheetPath = pickString(overlay.StylesheetPath, base.StylesheetPath)
	result.ForewordPath = pickString(overlay.ForewordPath, base.ForewordPath)
	result.ForewordTitle = pickString(overlay.ForewordTitle, base.ForewordTitle)
	result.Collation = pickString(overlay.Collation, base.Collation)
	result.Placeholder = pickString(overlay.Placeholder, base.Placeholder)
	result.LogLevel = pickString(overlay.LogLevel, base.LogLevel)
	result.LogFormat = pickString(overlay.LogFormat, base.LogFormat)

	// Booleans: overlay wins if true, else base
	result.Strict = base.Strict || overlay.Strict
	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths

	// Arrays: merge and deduplicate
	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// WorkingSet resolves Categories. Empty means every category.
func (c *Config) WorkingSet() ([]spell.Category, error) {
	if len(c.Categories) == 0 {
		return spell.Categories(), nil
	}
	return spell.ParseCategories(c.Categories)
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if _, err := c.WorkingSet(); err != nil {
		return err
	}
	if c.Level != nil && *c.Level < 0 {
		return sberrors.NewInvalidRequest("level must be non-negative")
	}
	if c.Limit < 0 {
		return sberrors.NewInvalidRequest("limit must be non-negative")
	}
	if c.Workers < 0 {
		return sberrors.NewInvalidRequest("workers must be non-negative")
	}
	if _, err := spell.NewComparer(c.Collation); err != nil {
		return err
	}
	if strings.ContainsAny(c.Placeholder, c.UnsafeSet()) ||
		strings.ContainsAny(c.Placeholder, `/\`) ||
		strings.IndexFunc(c.Placeholder, unicode.IsControl) >= 0 {
		return sberrors.NewInvalidRequest("placeholder must not contain unsafe characters")
	}
	return nil
}

// UnsafeSet returns the configured unsafe characters, or the default set
// when unset.
func (c *Config) UnsafeSet() string {
	if c.UnsafeChars == nil {
		return epub.DefaultUnsafe
	}
	return *c.UnsafeChars
}

func pickInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

func pickString(overlay, base string) string {
	if overlay != "" {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
