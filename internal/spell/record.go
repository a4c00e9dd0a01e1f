package spell

import (
	"github.com/hpungsan/spellbook/internal/errors"
	"github.com/hpungsan/spellbook/internal/fields"
	"github.com/hpungsan/spellbook/internal/markup"
)

// Dataset column positions. The layout is fixed by the source export.
const (
	colName                 = 0
	colSchool               = 1
	colSubSchool            = 2
	colDescriptor           = 3
	colLevelText            = 4
	colCastingTime          = 5
	colComponents           = 6
	colCostlyComponents     = 7
	colRange                = 8
	colArea                 = 9
	colEffect               = 10
	colTargets              = 11
	colDuration             = 12
	colDismissable          = 13
	colShapeable            = 14
	colSavingThrow          = 15
	colSpellResistance      = 16
	colDescription          = 17
	colFormattedDescription = 18
	colSource               = 19
	colVerbal               = 21
	colSomatic              = 22
	colMaterial             = 23
	colFocus                = 24
	colDivineFocus          = 25
	colFirstLevel           = 26 // one column per Category, in enumeration order
	colSummary              = 44
)

// MinFields is the number of fields a record line must have.
const MinFields = colSummary + 1

// Record is one spell. It is built once from a field sequence and never
// modified afterwards. Empty strings mean the attribute is absent.
type Record struct {
	Name             string `json:"name"`
	School           string `json:"school,omitempty"`
	SubSchool        string `json:"subschool,omitempty"`
	Descriptor       string `json:"descriptor,omitempty"`
	LevelText        string `json:"level_text,omitempty"`
	CastingTime      string `json:"casting_time,omitempty"`
	Components       string `json:"components,omitempty"`
	CostlyComponents string `json:"costly_components,omitempty"`
	Range            string `json:"range,omitempty"`
	Area             string `json:"area,omitempty"`
	Effect           string `json:"effect,omitempty"`
	Targets          string `json:"targets,omitempty"`
	Duration         string `json:"duration,omitempty"`
	Dismissable      bool   `json:"dismissable"`
	Shapeable        bool   `json:"shapeable"`
	SavingThrow      string `json:"saving_throw,omitempty"`
	SpellResistance  string `json:"spell_resistance,omitempty"`
	Description      string `json:"description,omitempty"`
	Source           string `json:"source,omitempty"`

	// FormattedDescription is the canonical markup derived from the rich
	// description column.
	FormattedDescription string `json:"formatted_description,omitempty"`

	Verbal      bool `json:"verbal"`
	Somatic     bool `json:"somatic"`
	Material    bool `json:"material"`
	Focus       bool `json:"focus"`
	DivineFocus bool `json:"divine_focus"`

	Levels  Levels `json:"levels"`
	Summary string `json:"summary,omitempty"`
}

// FromFields maps a field sequence to a Record. Sequences shorter than
// MinFields are rejected with a MALFORMED_RECORD error.
func FromFields(f fields.Sequence) (*Record, error) {
	if len(f) < MinFields {
		return nil, errors.NewMalformedRecord(0, len(f), MinFields)
	}

	r := &Record{
		Name:                 f[colName],
		School:               f[colSchool],
		SubSchool:            f[colSubSchool],
		Descriptor:           f[colDescriptor],
		LevelText:            f[colLevelText],
		CastingTime:          f[colCastingTime],
		Components:           f[colComponents],
		CostlyComponents:     f[colCostlyComponents],
		Range:                f[colRange],
		Area:                 f[colArea],
		Effect:               f[colEffect],
		Targets:              f[colTargets],
		Duration:             f[colDuration],
		Dismissable:          flag(f[colDismissable]),
		Shapeable:            flag(f[colShapeable]),
		SavingThrow:          f[colSavingThrow],
		SpellResistance:      f[colSpellResistance],
		Description:          f[colDescription],
		FormattedDescription: markup.Normalize(f[colFormattedDescription]),
		Source:               f[colSource],
		Verbal:               flag(f[colVerbal]),
		Somatic:              flag(f[colSomatic]),
		Material:             flag(f[colMaterial]),
		Focus:                flag(f[colFocus]),
		DivineFocus:          flag(f[colDivineFocus]),
		Summary:              f[colSummary],
	}
	for _, c := range Categories() {
		r.Levels[c] = ParseLevel(f[colFirstLevel+int(c)])
	}
	return r, nil
}

// flag reads a boolean column: only the literal "1" is true.
func flag(s string) bool {
	return s == "1"
}

// InCategory reports whether the spell is on c's list.
func (r *Record) InCategory(c Category) bool {
	return r.Levels.Has(c)
}
