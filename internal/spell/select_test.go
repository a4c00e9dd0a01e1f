package spell_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/hpungsan/spellbook/internal/errors"
	"github.com/hpungsan/spellbook/internal/spell"
	"github.com/hpungsan/spellbook/internal/spell/spelltest"
)

func names(records []*spell.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}

func sampleRecords() []*spell.Record {
	return spelltest.Records(
		spelltest.Row{Name: "Zone of Truth", Levels: map[spell.Category]int{spell.Cleric: 2, spell.Paladin: 2}},
		spelltest.Row{Name: "Aid", Levels: map[spell.Category]int{spell.Cleric: 2, spell.Inquisitor: 2}},
		spelltest.Row{Name: "Fireball", Levels: map[spell.Category]int{spell.Sorcerer: 3, spell.Wizard: 3}},
		spelltest.Row{Name: "Bless", Levels: map[spell.Category]int{spell.Cleric: 1, spell.Paladin: 1}},
		spelltest.Row{Name: "Prayer", Levels: map[spell.Category]int{spell.Cleric: 3, spell.Paladin: 3}},
		spelltest.Row{Name: "animate rope", Levels: map[spell.Category]int{spell.Wizard: 1}},
	)
}

func TestSelect(t *testing.T) {
	three := 3
	tests := []struct {
		name string
		sel  spell.Selection
		want []string
	}{
		{
			name: "single category sorted by name",
			sel:  spell.Selection{Categories: []spell.Category{spell.Cleric}},
			want: []string{"Aid", "Bless", "Prayer", "Zone of Truth"},
		},
		{
			name: "union of categories",
			sel:  spell.Selection{Categories: []spell.Category{spell.Wizard, spell.Paladin}},
			want: []string{"Bless", "Fireball", "Prayer", "Zone of Truth", "animate rope"},
		},
		{
			name: "level filter",
			sel:  spell.Selection{Categories: []spell.Category{spell.Cleric, spell.Wizard}, Level: &three},
			want: []string{"Fireball", "Prayer"},
		},
		{
			name: "limit applied after sort",
			sel:  spell.Selection{Categories: []spell.Category{spell.Cleric}, Limit: 2},
			want: []string{"Aid", "Bless"},
		},
		{
			name: "no categories selects nothing",
			sel:  spell.Selection{},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := spell.Select(sampleRecords(), tt.sel)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestSelect_CollateComparer(t *testing.T) {
	cmp, err := spell.NewComparer("en")
	require.NoError(t, err)

	got := spell.Select(sampleRecords(), spell.Selection{
		Categories: []spell.Category{spell.Wizard, spell.Cleric},
		Compare:    cmp,
	})
	// Collation interleaves lower-case names with capitalised ones.
	assert.Equal(t, []string{"Aid", "animate rope", "Bless", "Fireball", "Prayer", "Zone of Truth"}, names(got))
}

func TestNewComparer(t *testing.T) {
	for _, name := range []string{"", "ordinal", "ORDINAL"} {
		cmp, err := spell.NewComparer(name)
		require.NoError(t, err)
		assert.IsType(t, spell.OrdinalComparer{}, cmp)
	}

	_, err := spell.NewComparer("not a tag!!")
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestComparer_Total(t *testing.T) {
	cmp, err := spell.NewComparer("en")
	require.NoError(t, err)
	assert.NotZero(t, cmp.Compare("aid", "Aid"))
	assert.Zero(t, cmp.Compare("Aid", "Aid"))
}

func TestGroupByCategory(t *testing.T) {
	records := sampleRecords()
	groups := spell.GroupByCategory(records, []spell.Category{spell.Paladin, spell.Cleric, spell.Cleric, spell.Druid}, nil)

	require.Len(t, groups, 3)
	assert.Equal(t, []spell.Category{spell.Cleric, spell.Druid, spell.Paladin},
		[]spell.Category{groups[0].Category, groups[1].Category, groups[2].Category})

	cleric := groups[0]
	require.Len(t, cleric.Levels, 3)
	assert.Equal(t, 1, cleric.Levels[0].Level)
	assert.Equal(t, []string{"Bless"}, names(cleric.Levels[0].Records))
	assert.Equal(t, 2, cleric.Levels[1].Level)
	assert.Equal(t, []string{"Aid", "Zone of Truth"}, names(cleric.Levels[1].Records))
	assert.Equal(t, 3, cleric.Levels[2].Level)
	assert.Equal(t, []string{"Prayer"}, names(cleric.Levels[2].Records))

	assert.Empty(t, groups[1].Levels, "Druid has no members")
}

func TestGroupByCategory_MembershipMatchesLevels(t *testing.T) {
	records := sampleRecords()
	for _, g := range spell.GroupByCategory(records, spell.Categories(), nil) {
		members := make(map[*spell.Record]int)
		for _, lg := range g.Levels {
			for _, r := range lg.Records {
				members[r] = lg.Level
			}
		}
		for _, r := range records {
			n, ok := r.Levels.Of(g.Category).Get()
			level, in := members[r]
			assert.Equal(t, ok, in, "%s in %s", r.Name, g.Category)
			if ok {
				assert.Equal(t, n, level, "%s level in %s", r.Name, g.Category)
			}
		}
	}
}

func TestLoad(t *testing.T) {
	csv := spelltest.CSV(
		spelltest.Row{Name: "Aid", Levels: map[spell.Category]int{spell.Cleric: 2}},
		spelltest.Row{Name: "Bless", Levels: map[spell.Category]int{spell.Cleric: 1}},
	) + "\n   \nshort,line\n"

	t.Run("lenient skips malformed lines", func(t *testing.T) {
		res, err := spell.Load(context.Background(), strings.NewReader(csv), spell.LoadOptions{Logger: zaptest.NewLogger(t)})
		require.NoError(t, err)
		assert.Equal(t, []string{"Aid", "Bless"}, names(res.Records))
		require.Len(t, res.Skipped, 1)
		assert.Equal(t, 6, res.Skipped[0].Line)
		assert.True(t, errors.Is(res.Skipped[0].Err, errors.ErrMalformedRecord))
		assert.Equal(t, 6, res.Lines)
	})

	t.Run("strict aborts", func(t *testing.T) {
		_, err := spell.Load(context.Background(), strings.NewReader(csv), spell.LoadOptions{Strict: true})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrMalformedRecord))
		assert.Contains(t, err.Error(), "line 6")
	})

	t.Run("header only", func(t *testing.T) {
		res, err := spell.Load(context.Background(), strings.NewReader(spelltest.Header+"\n"), spell.LoadOptions{})
		require.NoError(t, err)
		assert.Empty(t, res.Records)
	})
}

func TestLint(t *testing.T) {
	records := spelltest.Records(
		spelltest.Row{Name: "Aid", Levels: map[spell.Category]int{spell.Cleric: 2}},
		spelltest.Row{Name: "Aid", Levels: map[spell.Category]int{spell.Cleric: 2}},
		spelltest.Row{Name: "", Levels: map[spell.Category]int{spell.Cleric: 1}},
		spelltest.Row{Name: "Orphan"},
	)

	issues := spell.Lint(records)
	require.Len(t, issues, 3)
	assert.Equal(t, spell.IssueDuplicateName, issues[0].Kind)
	assert.Equal(t, 1, issues[0].Index)
	assert.Equal(t, spell.IssueEmptyName, issues[1].Kind)
	assert.Equal(t, spell.IssueNoCategory, issues[2].Kind)
	assert.Equal(t, "Orphan", issues[2].Name)
}

func TestParseCategories(t *testing.T) {
	cats, err := spell.ParseCategories([]string{"cleric", " Wizard ", "CLERIC", "antipaladin"})
	require.NoError(t, err)
	assert.Equal(t, []spell.Category{spell.Cleric, spell.Wizard, spell.AntiPaladin}, cats)

	_, err = spell.ParseCategories([]string{"Warlock"})
	assert.True(t, errors.Is(err, errors.ErrUnknownCategory))
}

func TestSortedCategories(t *testing.T) {
	got := spell.SortedCategories()
	require.Len(t, got, spell.NumCategories)
	assert.Equal(t, spell.Adept, got[0])
	assert.Equal(t, spell.Alchemist, got[1])
	assert.Equal(t, spell.AntiPaladin, got[2])
	assert.Equal(t, spell.Wizard, got[len(got)-1])
}

func TestLevels_JSON(t *testing.T) {
	r := spelltest.Row{Name: "Aid", Levels: map[spell.Category]int{spell.Cleric: 2, spell.Inquisitor: 2}}.Record()
	b, err := r.Levels.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"Cleric":2,"Inquisitor":2}`, string(b))

	var back spell.Levels
	require.NoError(t, back.UnmarshalJSON(b))
	assert.Equal(t, r.Levels, back)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "zone of truth", spell.NormalizeName("  Zone   of\tTruth "))
	assert.Equal(t, "", spell.NormalizeName("   "))
}

func TestDedupe(t *testing.T) {
	records := spelltest.Records(
		spelltest.Row{Name: "Aid", Summary: "first"},
		spelltest.Row{Name: "Bless"},
		spelltest.Row{Name: "Aid", Summary: "second"},
	)
	kept, dropped := spell.Dedupe(records)
	assert.Equal(t, []string{"Aid", "Bless"}, names(kept))
	assert.Equal(t, "first", kept[0].Summary)
	require.Len(t, dropped, 1)
	assert.Equal(t, "second", dropped[0].Summary)
}
