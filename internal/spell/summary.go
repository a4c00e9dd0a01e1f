package spell

// Summary is a record without its long text fields.
// Used for browse operations (list, MCP list) to keep output small.
type Summary struct {
	Name       string          `json:"name"`
	School     string          `json:"school,omitempty"`
	SubSchool  string          `json:"subschool,omitempty"`
	Descriptor string          `json:"descriptor,omitempty"`
	Levels     []CategoryLevel `json:"levels"`
	Summary    string          `json:"summary,omitempty"`
	Source     string          `json:"source,omitempty"`
}

// ToSummary converts a Record to a Summary by stripping the descriptions.
func (r *Record) ToSummary() Summary {
	levels := r.Levels.Present()
	if levels == nil {
		levels = []CategoryLevel{}
	}
	return Summary{
		Name:       r.Name,
		School:     r.School,
		SubSchool:  r.SubSchool,
		Descriptor: r.Descriptor,
		Levels:     levels,
		Summary:    r.Summary,
		Source:     r.Source,
	}
}
