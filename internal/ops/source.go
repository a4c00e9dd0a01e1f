package ops

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/hpungsan/spellbook/internal/config"
	"github.com/hpungsan/spellbook/internal/epub"
	"github.com/hpungsan/spellbook/internal/errors"
	"github.com/hpungsan/spellbook/internal/spell"
)

// maxTextBytes bounds stylesheets and forewords read from disk.
const maxTextBytes = 4 * 1024 * 1024

// loadDataset validates path and loads the dataset it names.
func loadDataset(ctx context.Context, cfg *config.Config, path string, strict bool, logger *zap.Logger) (*spell.LoadResult, error) {
	if err := ValidatePath(path, PathCheckRead, cfg, DatasetExts); err != nil {
		return nil, err
	}
	f, err := openFileNoFollowRead(path)
	if err != nil {
		return nil, wrapOpenErr(err)
	}
	defer f.Close()

	logger.Debug("loading dataset", zap.String("path", path))
	return spell.Load(ctx, f, spell.LoadOptions{Strict: strict, Logger: logger})
}

// readTextFile validates path and reads a small text file such as a
// stylesheet or foreword.
func readTextFile(cfg *config.Config, path string) ([]byte, error) {
	if err := ValidatePath(path, PathCheckRead, cfg, TextExts); err != nil {
		return nil, err
	}
	f, err := openFileNoFollowRead(path)
	if err != nil {
		return nil, wrapOpenErr(err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxTextBytes+1))
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("read %s: %w", path, err))
	}
	if len(data) > maxTextBytes {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("%s exceeds %d bytes", path, maxTextBytes))
	}
	return data, nil
}

// Stylesheet returns the configured stylesheet, or the built-in one when
// stylesheet_path is unset.
func Stylesheet(cfg *config.Config) ([]byte, error) {
	cfg = orDefault(cfg)
	if cfg.StylesheetPath == "" {
		return epub.DefaultStylesheet, nil
	}
	return readTextFile(cfg, cfg.StylesheetPath)
}

// wrapOpenErr keeps structured errors from the open helpers and wraps the rest.
func wrapOpenErr(err error) error {
	if sErr := errors.As(err); sErr.Code != errors.ErrInternal {
		return sErr
	}
	return errors.NewInternal(fmt.Errorf("failed to open file: %w", err))
}
