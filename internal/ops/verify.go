package ops

import (
	"fmt"

	"github.com/hpungsan/spellbook/internal/config"
	"github.com/hpungsan/spellbook/internal/epub"
	"github.com/hpungsan/spellbook/internal/errors"
)

// VerifyInput contains parameters for the Verify operation.
type VerifyInput struct {
	Path string // required
}

// VerifyOutput summarizes a package that passed verification.
type VerifyOutput struct {
	Path       string   `json:"path"`
	Identifier string   `json:"identifier"`
	Title      string   `json:"title"`
	Language   string   `json:"language"`
	Entries    int      `json:"entries"`
	Documents  int      `json:"documents"`
	NavPoints  int      `json:"nav_points"`
	Spine      []string `json:"spine"`
}

// Verify reopens a built package and checks its structure. A package that
// fails any check returns ErrInvalidPackage listing every problem found.
func Verify(cfg *config.Config, input VerifyInput) (*VerifyOutput, error) {
	cfg = orDefault(cfg)

	if err := ValidatePath(input.Path, PathCheckRead, cfg, BookExts); err != nil {
		return nil, err
	}
	f, err := openFileNoFollowRead(input.Path)
	if err != nil {
		return nil, wrapOpenErr(err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("stat %s: %w", input.Path, err))
	}
	entries, err := epub.Read(f, info.Size())
	if err != nil {
		return nil, err
	}
	report, err := epub.Verify(entries)
	if err != nil {
		return nil, err
	}

	return &VerifyOutput{
		Path:       input.Path,
		Identifier: report.Package.Identifier,
		Title:      report.Package.Title,
		Language:   report.Package.Language,
		Entries:    report.Entries,
		Documents:  report.Content,
		NavPoints:  report.NavCount,
		Spine:      report.Package.Spine,
	}, nil
}
