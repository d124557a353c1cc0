package sanitizer

// Rules is the static configuration used to recognise template boilerplate.
// A Rules value is built once and never modified afterwards.
type Rules struct {
	// SectionPrefix marks the first line of a section.
	SectionPrefix string
	// BoilerplateHeaders are section header lines that are always dropped.
	BoilerplateHeaders []string
	// PlaceholderPatterns are unfilled template fragments. A section containing
	// one of them is dropped unless it also holds enough meaningful lines.
	PlaceholderPatterns []string
	// MinNonBlankLines is the number of non-blank lines a section needs to be kept.
	MinNonBlankLines int
	// MinMeaningfulLines is the number of meaningful lines a section containing a
	// placeholder pattern needs to be kept.
	MinMeaningfulLines int
	// MaxBlankRun caps consecutive blank lines in the cleaned output.
	MaxBlankRun int
}

// DefaultRules returns the rules for the daily journal template.
func DefaultRules() Rules {
	return Rules{
		SectionPrefix: "##",
		BoilerplateHeaders: []string{
			"## I. Work Responsibilities & Goals (Mon-Fri)",
			"## II. Primary Focus Activities: [Declared Primary Focus from above]",
			"## III. Nice-to-Haves / Other Minor Tasks",
			"## IV. Progress Toward Broader Goals",
			"## V. End-of-Day Reflection",
			"### A. If AI Study:",
			"### B. If Rust Study:",
			"### C. If Other Focused Activity (e.g., NixOS Rice, Specific Project):",
			"### C. If Other Focused Activity:",
		},
		PlaceholderPatterns: []string{
			"- Main Work Goal(s) for Today:\n  -\n",
			"- Key Work Tasks:\n  - [ ]\n  - [ ]\n  - [ ]\n",
			"- Learning Objective(s) (Review `journal/topics/ai_study_backlog.md` with Cline if needed):\n  -\n",
			"- Project Task(s) (if any):\n  - [ ]\n",
			"- Key Questions for AI / Discussion Points:\n  -\n",
			"- Time Allotted:\n",
			"- Goal for this session:\n  -\n",
			"- Specific Learning Focus:\n  -\n",
			"- Key Tasks:\n  - [ ]\n",
			"- [ ]\n- [ ]\n",
			"- Time Allotted:\n- Reflection/Notes:\n",
			"- Goal for this session:\n  -\n- Key Tasks:\n  - [ ]\n- Time Allotted:\n- Reflection/Notes:\n",
			"- What went well today (Work, Primary Focus, Personal)?\n",
			"- Challenges faced & how they were handled?\n",
			"- Key learnings (Technical, Rust, Personal, etc.)?\n",
			"- How did the overall balance feel today (Work/Focus/Relaxation/Other Activities)?\n",
			"- Adjustments or intentions for tomorrow?\n",
			"- Gratitude Moment:\n",
		},
		MinNonBlankLines:   3,
		MinMeaningfulLines: 2,
		MaxBlankRun:        2,
	}
}
