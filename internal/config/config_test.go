package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hpungsan/spellbook/internal/epub"
	sberrors "github.com/hpungsan/spellbook/internal/errors"
	"github.com/hpungsan/spellbook/internal/spell"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoad_DefaultWhenMissing(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	def := DefaultConfig()
	if cfg.Title != def.Title || cfg.Language != def.Language || cfg.Collation != def.Collation {
		t.Fatalf("Load() = %+v, want defaults %+v", cfg, def)
	}
	if cfg.UnsafeSet() != epub.DefaultUnsafe {
		t.Errorf("UnsafeSet() = %q, want default", cfg.UnsafeSet())
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{"title": "Cleric Prayers", "limit": 50, "level": 0, "unsafe_chars": "", "strict": true}`)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Title != "Cleric Prayers" {
		t.Errorf("Title = %q, want %q", cfg.Title, "Cleric Prayers")
	}
	if cfg.Limit != 50 {
		t.Errorf("Limit = %d, want 50", cfg.Limit)
	}
	if cfg.Level == nil || *cfg.Level != 0 {
		t.Errorf("Level = %v, want 0", cfg.Level)
	}
	if cfg.UnsafeSet() != "" {
		t.Errorf("UnsafeSet() = %q, want empty", cfg.UnsafeSet())
	}
	if !cfg.Strict {
		t.Error("Strict = false, want true")
	}
	if cfg.Language != "en" {
		t.Errorf("Language = %q, want default en", cfg.Language)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{not json}`)

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

func TestLoad_DisabledTools(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{"disabled_tools": ["book_build", "spell_list"]}`)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.DisabledTools) != 2 {
		t.Fatalf("DisabledTools length = %d, want 2", len(cfg.DisabledTools))
	}
	if cfg.DisabledTools[0] != "book_build" {
		t.Errorf("DisabledTools[0] = %q, want %q", cfg.DisabledTools[0], "book_build")
	}
	if cfg.DisabledTools[1] != "spell_list" {
		t.Errorf("DisabledTools[1] = %q, want %q", cfg.DisabledTools[1], "spell_list")
	}
}

func TestLoadWithRepo_BothPresent(t *testing.T) {
	globalDir := t.TempDir()
	repoRoot := t.TempDir()

	writeConfig(t, globalDir, `{"title": "Global", "categories": ["Wizard"], "disabled_tools": ["book_build"], "workers": 4}`)
	writeConfig(t, filepath.Join(repoRoot, DirName), `{"title": "Repo", "categories": ["Cleric", "Oracle"], "disabled_tools": ["spell_list"]}`)

	cfg, err := LoadWithRepo(globalDir, repoRoot)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}

	if cfg.Title != "Repo" {
		t.Errorf("Title = %q, want Repo (repo override)", cfg.Title)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4 (from global)", cfg.Workers)
	}
	if len(cfg.Categories) != 2 || cfg.Categories[0] != "Cleric" {
		t.Errorf("Categories = %v, want repo set to replace global", cfg.Categories)
	}
	if len(cfg.DisabledTools) != 2 {
		t.Errorf("DisabledTools length = %d, want 2", len(cfg.DisabledTools))
	}
}

func TestLoadWithRepo_OnlyGlobal(t *testing.T) {
	globalDir := t.TempDir()
	writeConfig(t, globalDir, `{"creator": "Archivist"}`)

	cfg, err := LoadWithRepo(globalDir, t.TempDir())
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.Creator != "Archivist" {
		t.Errorf("Creator = %q, want Archivist", cfg.Creator)
	}
	if cfg.Title != DefaultConfig().Title {
		t.Errorf("Title = %q, want default", cfg.Title)
	}
}

func TestLoadWithRepo_NeitherPresent(t *testing.T) {
	cfg, err := LoadWithRepo(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.Collation != "ordinal" {
		t.Errorf("Collation = %q, want ordinal", cfg.Collation)
	}
}

func TestLoadWithRepo_WalksUpward(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, filepath.Join(tmpDir, DirName), `{"disabled_tools": ["book_build"]}`)

	subdir := filepath.Join(tmpDir, "subdir")
	if err := os.MkdirAll(subdir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	cfg, err := LoadWithRepo(t.TempDir(), subdir)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if len(cfg.DisabledTools) != 1 || cfg.DisabledTools[0] != "book_build" {
		t.Errorf("DisabledTools = %v, want [book_build]", cfg.DisabledTools)
	}
}

func TestMerge_ScalarOverride(t *testing.T) {
	base := &Config{Title: "A", Limit: 10, Collation: "en"}
	overlay := &Config{Title: "B"}

	got := Merge(base, overlay)
	if got.Title != "B" || got.Limit != 10 || got.Collation != "en" {
		t.Errorf("Merge() = %+v", got)
	}
}

func TestMerge_PointerOverride(t *testing.T) {
	zero, one := 0, 1
	empty := ""
	base := &Config{Level: &one}
	overlay := &Config{Level: &zero, UnsafeChars: &empty}

	got := Merge(base, overlay)
	if got.Level == nil || *got.Level != 0 {
		t.Errorf("Level = %v, want overlay 0", got.Level)
	}
	if got.UnsafeChars == nil || *got.UnsafeChars != "" {
		t.Errorf("UnsafeChars = %v, want overlay empty", got.UnsafeChars)
	}

	got = Merge(base, &Config{})
	if got.Level == nil || *got.Level != 1 {
		t.Errorf("Level = %v, want base 1", got.Level)
	}
}

func TestMerge_BooleanOr(t *testing.T) {
	got := Merge(&Config{Strict: true}, &Config{AllowUnsafePaths: true})
	if !got.Strict || !got.AllowUnsafePaths {
		t.Errorf("Merge() = %+v, want both flags set", got)
	}
}

func TestMerge_ArrayMergeDedup(t *testing.T) {
	base := &Config{AllowedPaths: []string{"/a", " /b "}}
	overlay := &Config{AllowedPaths: []string{"/b", "/c", ""}}

	got := Merge(base, overlay).AllowedPaths
	want := []string{"/a", "/b", "/c"}
	if len(got) != len(want) {
		t.Fatalf("AllowedPaths = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("AllowedPaths[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFindRepoConfig_InParentDir(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := writeConfig(t, filepath.Join(tmpDir, DirName), `{}`)

	subdir := filepath.Join(tmpDir, "subdir", "deeper")
	if err := os.MkdirAll(subdir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	if found := FindRepoConfig(subdir); found != configPath {
		t.Errorf("FindRepoConfig() = %q, want %q", found, configPath)
	}
}

func TestFindRepoConfig_NotFound(t *testing.T) {
	if found := FindRepoConfig(t.TempDir()); found != "" {
		t.Errorf("FindRepoConfig() = %q, want empty string", found)
	}
}

func TestWorkingSet(t *testing.T) {
	cfg := DefaultConfig()
	all, err := cfg.WorkingSet()
	if err != nil {
		t.Fatalf("WorkingSet() error = %v", err)
	}
	if len(all) != spell.NumCategories {
		t.Errorf("WorkingSet() len = %d, want every category", len(all))
	}

	cfg.Categories = []string{"oracle", "Cleric"}
	got, err := cfg.WorkingSet()
	if err != nil {
		t.Fatalf("WorkingSet() error = %v", err)
	}
	if len(got) != 2 || got[0] != spell.Oracle || got[1] != spell.Cleric {
		t.Errorf("WorkingSet() = %v", got)
	}
}

func TestValidate(t *testing.T) {
	neg := -1
	slash := "/"
	empty := ""
	tests := []struct {
		name   string
		mutate func(*Config)
		code   sberrors.ErrorCode
	}{
		{"defaults", func(*Config) {}, ""},
		{"unknown category", func(c *Config) { c.Categories = []string{"Warlock"} }, sberrors.ErrUnknownCategory},
		{"negative level", func(c *Config) { c.Level = &neg }, sberrors.ErrInvalidRequest},
		{"negative limit", func(c *Config) { c.Limit = -5 }, sberrors.ErrInvalidRequest},
		{"negative workers", func(c *Config) { c.Workers = -1 }, sberrors.ErrInvalidRequest},
		{"bad collation", func(c *Config) { c.Collation = "not a tag!!" }, sberrors.ErrInvalidRequest},
		{"unsafe placeholder", func(c *Config) { c.Placeholder = "#" }, sberrors.ErrInvalidRequest},
		{"placeholder allowed by custom set", func(c *Config) { c.Placeholder = "#"; c.UnsafeChars = &slash }, ""},
		{"separator placeholder with empty set", func(c *Config) { c.Placeholder = "/"; c.UnsafeChars = &empty }, sberrors.ErrInvalidRequest},
		{"control placeholder", func(c *Config) { c.Placeholder = "\t"; c.UnsafeChars = &empty }, sberrors.ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.code == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if !sberrors.Is(err, tt.code) {
				t.Fatalf("Validate() error = %v, want code %s", err, tt.code)
			}
		})
	}
}
