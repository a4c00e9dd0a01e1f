package catalog

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/spellbook/internal/errors"
	"github.com/hpungsan/spellbook/internal/spell"
)

// Import describes one dataset import.
type Import struct {
	ID        string `json:"id"`
	Source    string `json:"source"`
	Records   int    `json:"records"`
	Skipped   int    `json:"skipped"`
	CreatedAt int64  `json:"created_at"`
}

// Filter narrows a catalog listing. The zero value matches every spell.
type Filter struct {
	Categories []spell.Category
	Level      *int
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// newID returns a fresh ULID string. IDs from one process sort in creation
// order even within the same millisecond.
func newID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// SaveImport upserts records in one transaction and records the import.
// A record whose name already exists replaces the stored one, levels
// included.
func SaveImport(ctx context.Context, db *sql.DB, source string, records []*spell.Record, skipped int) (*Import, error) {
	imp := &Import{
		ID:        newID(),
		Source:    source,
		Records:   len(records),
		Skipped:   skipped,
		CreatedAt: time.Now().Unix(),
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO imports (id, source, records, skipped, created_at) VALUES (?, ?, ?, ?, ?)`,
		imp.ID, imp.Source, imp.Records, imp.Skipped, imp.CreatedAt,
	); err != nil {
		return nil, errors.NewInternal(err)
	}

	upsert, err := tx.PrepareContext(ctx, `
		INSERT INTO spells (name, name_norm, record_json, import_id, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			name_norm = excluded.name_norm,
			record_json = excluded.record_json,
			import_id = excluded.import_id,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer upsert.Close()

	clearLevels, err := tx.PrepareContext(ctx, `DELETE FROM spell_levels WHERE name = ?`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer clearLevels.Close()

	addLevel, err := tx.PrepareContext(ctx, `INSERT INTO spell_levels (name, category, level) VALUES (?, ?, ?)`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer addLevel.Close()

	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return nil, errors.NewCancelled("import")
		}

		data, err := json.Marshal(r)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		if _, err := upsert.ExecContext(ctx, r.Name, spell.NormalizeName(r.Name), string(data), imp.ID, imp.CreatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		if _, err := clearLevels.ExecContext(ctx, r.Name); err != nil {
			return nil, errors.NewInternal(err)
		}
		for _, cl := range r.Levels.Present() {
			if _, err := addLevel.ExecContext(ctx, r.Name, cl.Category.String(), cl.Level); err != nil {
				return nil, errors.NewInternal(err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return imp, nil
}

// GetByName retrieves a spell by exact name, falling back to the
// normalized name (case and whitespace insensitive).
func GetByName(ctx context.Context, db *sql.DB, name string) (*spell.Record, error) {
	row := db.QueryRowContext(ctx, `SELECT record_json FROM spells WHERE name = ?`, name)
	r, err := scanRecord(row)
	if err == sql.ErrNoRows {
		row = db.QueryRowContext(ctx,
			`SELECT record_json FROM spells WHERE name_norm = ? ORDER BY name LIMIT 1`,
			spell.NormalizeName(name))
		r, err = scanRecord(row)
	}
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(name)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return r, nil
}

// List returns spells matching filter, ordered by name.
func List(ctx context.Context, db *sql.DB, f Filter) ([]*spell.Record, error) {
	query := `SELECT record_json FROM spells ORDER BY name`
	var args []any

	if len(f.Categories) > 0 {
		placeholders := make([]string, len(f.Categories))
		for i, c := range f.Categories {
			placeholders[i] = "?"
			args = append(args, c.String())
		}
		query = `
			SELECT s.record_json FROM spells s
			WHERE EXISTS (
				SELECT 1 FROM spell_levels l
				WHERE l.name = s.name AND l.category IN (` + strings.Join(placeholders, ", ") + `)`
		if f.Level != nil {
			query += ` AND l.level = ?`
			args = append(args, *f.Level)
		}
		query += `)
			ORDER BY s.name`
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var out []*spell.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

// Count returns the number of stored spells.
func Count(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM spells`).Scan(&n); err != nil {
		return 0, errors.NewInternal(err)
	}
	return n, nil
}

// CategoryCounts returns the number of stored spells per category.
// Categories without spells are omitted.
func CategoryCounts(ctx context.Context, db *sql.DB) (map[spell.Category]int, error) {
	rows, err := db.QueryContext(ctx, `SELECT category, COUNT(*) FROM spell_levels GROUP BY category`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	counts := make(map[spell.Category]int)
	for rows.Next() {
		var (
			name string
			n    int
		)
		if err := rows.Scan(&name, &n); err != nil {
			return nil, errors.NewInternal(err)
		}
		c, err := spell.ParseCategory(name)
		if err != nil {
			continue
		}
		counts[c] = n
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return counts, nil
}

// ListImports returns the most recent imports first.
func ListImports(ctx context.Context, db *sql.DB, limit int) ([]Import, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.QueryContext(ctx,
		`SELECT id, source, records, skipped, created_at FROM imports ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var out []Import
	for rows.Next() {
		var imp Import
		if err := rows.Scan(&imp.ID, &imp.Source, &imp.Records, &imp.Skipped, &imp.CreatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		out = append(out, imp)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanRecord decodes one record_json column.
func scanRecord(row scanner) (*spell.Record, error) {
	var data string
	if err := row.Scan(&data); err != nil {
		return nil, err
	}
	var r spell.Record
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return nil, err
	}
	return &r, nil
}
