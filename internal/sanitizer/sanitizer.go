// Package sanitizer strips daily-template boilerplate from journal entries
// before they are chunked and embedded.
package sanitizer

import (
	"strings"
)

// Report counts what Clean removed from a document.
type Report struct {
	Sections           int
	DroppedBoilerplate int
	DroppedEmpty       int
}

// Kept returns the number of sections that survived cleaning.
func (r Report) Kept() int {
	return r.Sections - r.DroppedBoilerplate - r.DroppedEmpty
}

// Sanitizer removes boilerplate and empty sections according to a fixed Rules table.
// It holds no mutable state and is safe for concurrent use.
type Sanitizer struct {
	rules   Rules
	headers map[string]struct{}
}

// New builds a Sanitizer from rules.
func New(rules Rules) *Sanitizer {
	headers := make(map[string]struct{}, len(rules.BoilerplateHeaders))
	for _, h := range rules.BoilerplateHeaders {
		headers[h] = struct{}{}
	}
	patterns := make([]string, len(rules.PlaceholderPatterns))
	copy(patterns, rules.PlaceholderPatterns)
	rules.PlaceholderPatterns = patterns

	return &Sanitizer{rules: rules, headers: headers}
}

var defaultSanitizer = New(DefaultRules())

// Default returns the Sanitizer for the daily journal template.
func Default() *Sanitizer {
	return defaultSanitizer
}

// Clean removes template noise from content using the default rules.
func Clean(content string) string {
	return defaultSanitizer.Clean(content)
}

// Clean returns content with boilerplate and empty sections removed,
// blank-line runs collapsed and surrounding whitespace trimmed.
func (s *Sanitizer) Clean(content string) string {
	cleaned, _ := s.CleanWithReport(content)
	return cleaned
}

// CleanWithReport is Clean plus a count of the dropped sections.
func (s *Sanitizer) CleanWithReport(content string) (string, Report) {
	var (
		report Report
		kept   strings.Builder
	)

	for _, sec := range s.sections(content) {
		report.Sections++
		switch {
		case sec.boilerplate:
			report.DroppedBoilerplate++
		case s.isEmpty(sec.text):
			report.DroppedEmpty++
		default:
			kept.WriteString(sec.text)
		}
	}

	return s.collapseBlankLines(kept.String()), report
}

type section struct {
	text        string
	boilerplate bool
}

// sections partitions content at every line starting with the section prefix.
// Each section's text keeps its header and ends every line with "\n".
func (s *Sanitizer) sections(content string) []section {
	var (
		out     []section
		current strings.Builder
		isBP    bool
		started bool
	)

	flush := func() {
		if started {
			out = append(out, section{text: current.String(), boilerplate: isBP})
		}
		current.Reset()
	}

	for _, line := range splitLines(content) {
		if strings.HasPrefix(line, s.rules.SectionPrefix) {
			flush()
			_, isBP = s.headers[strings.TrimRight(line, " \t")]
		}
		started = true
		current.WriteString(line)
		current.WriteByte('\n')
	}
	flush()

	return out
}

// isEmpty reports whether a section carries no journal content worth indexing.
func (s *Sanitizer) isEmpty(text string) bool {
	lines := splitLines(text)

	nonBlank := 0
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			nonBlank++
		}
	}
	if nonBlank < s.rules.MinNonBlankLines {
		return true
	}

	for _, pattern := range s.rules.PlaceholderPatterns {
		if !strings.Contains(text, pattern) {
			continue
		}
		if countMeaningful(lines) < s.rules.MinMeaningfulLines {
			return true
		}
		// The count does not depend on which pattern matched.
		break
	}

	return false
}

// countMeaningful counts lines that are neither headers nor template scaffolding.
func countMeaningful(lines []string) int {
	n := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "", trimmed == "-":
		case strings.HasPrefix(trimmed, "#"):
		case strings.HasPrefix(trimmed, "- [ ]"):
		default:
			n++
		}
	}
	return n
}

func (s *Sanitizer) collapseBlankLines(text string) string {
	var (
		b     strings.Builder
		blank int
	)
	for _, line := range splitLines(text) {
		if strings.TrimSpace(line) == "" {
			blank++
			if blank <= s.rules.MaxBlankRun {
				b.WriteByte('\n')
			}
			continue
		}
		blank = 0
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String())
}

// splitLines splits on "\n", strips a trailing "\r" from each line and does
// not produce an empty final element for text ending in a newline.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
