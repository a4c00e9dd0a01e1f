package spell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/hpungsan/spellbook/internal/errors"
	"github.com/hpungsan/spellbook/internal/fields"
)

// maxLineBytes bounds a single dataset line. Rich descriptions can be long.
const maxLineBytes = 16 * 1024 * 1024

// LoadOptions controls dataset loading.
type LoadOptions struct {
	// Strict aborts the load on the first malformed record. Otherwise
	// malformed lines are skipped and reported in LoadResult.Skipped.
	Strict bool

	Logger *zap.Logger
}

// SkippedLine is a dataset line that could not be mapped to a record.
type SkippedLine struct {
	Line int   `json:"line"`
	Err  error `json:"-"`
}

// LoadResult is the outcome of a dataset load.
type LoadResult struct {
	Records []*Record
	Skipped []SkippedLine
	Lines   int // lines read, header included
}

// Load reads a dataset: a header line followed by one record per line.
// Blank lines are ignored.
func Load(ctx context.Context, r io.Reader, opts LoadOptions) (*LoadResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	result := &LoadResult{}
	for scanner.Scan() {
		result.Lines++
		if result.Lines == 1 {
			continue // header
		}

		if result.Lines%256 == 0 {
			select {
			case <-ctx.Done():
				return nil, errors.NewCancelled("load")
			default:
			}
		}

		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		rec, err := FromFields(fields.Split(line))
		if err != nil {
			lineErr := withLine(err, result.Lines)
			if opts.Strict {
				return nil, lineErr
			}
			logger.Warn("skipping malformed record",
				zap.Int("line", result.Lines),
				zap.Error(lineErr))
			result.Skipped = append(result.Skipped, SkippedLine{Line: result.Lines, Err: lineErr})
			continue
		}
		result.Records = append(result.Records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("read dataset: %w", err))
	}

	logger.Debug("dataset loaded",
		zap.Int("lines", result.Lines),
		zap.Int("records", len(result.Records)),
		zap.Int("skipped", len(result.Skipped)))
	return result, nil
}

// withLine attaches a line number to a malformed-record error.
func withLine(err error, line int) error {
	sErr := errors.As(err)
	if sErr.Code != errors.ErrMalformedRecord {
		return err
	}
	got, _ := sErr.Details["fields"].(int)
	want, _ := sErr.Details["required"].(int)
	return errors.NewMalformedRecord(line, got, want)
}
