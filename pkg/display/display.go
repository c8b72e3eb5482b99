// Package display renders command results for humans and scripts. Each
// renderer supports styled terminal output, plain text and JSON; the caller
// picks the format (see pkg/ui).
package display

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/shelf/pkg/display/styles"
	"github.com/arthur-debert/shelf/pkg/organizer"
	"github.com/arthur-debert/shelf/pkg/overlap"
	"github.com/arthur-debert/shelf/pkg/rules"
	"github.com/arthur-debert/shelf/pkg/ui"
	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
)

// Renderer writes command results in one output format
type Renderer struct {
	out    io.Writer
	format ui.Format
}

// NewRenderer creates a renderer for the given output and format. FormatAuto
// must already be resolved (see ui.Format.Resolve).
func NewRenderer(out io.Writer, format ui.Format) *Renderer {
	return &Renderer{out: out, format: format}
}

// style applies a registered style in terminal format and is a no-op in text
func (r *Renderer) style(name, s string) string {
	if r.format == ui.FormatTerminal {
		return styles.Get(name).Render(s)
	}
	return s
}

func (r *Renderer) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.out, format, args...)
}

// Plan renders a preview or run summary
func (r *Renderer) Plan(plan *organizer.Plan) error {
	if r.format == ui.FormatJSON {
		return r.planJSON(plan)
	}

	if len(plan.Steps) > 0 {
		r.printf("%s\n", r.style("Header", fmt.Sprintf("%d files to organize", len(plan.Steps))))
		for _, step := range plan.Steps {
			r.printf("  %s  %s (%s, rule %s)\n",
				r.style("Success", "→"),
				step.Describe(),
				humanize.IBytes(uint64(step.File.SizeInBytes)),
				r.style("RuleName", step.RuleName))
		}
	}

	if len(plan.Skips) > 0 {
		r.printf("%s\n", r.style("Warning", fmt.Sprintf("%d files skipped", len(plan.Skips))))
		for _, skip := range plan.Skips {
			r.printf("  %s  %s: %s (rule %s)\n",
				r.style("Warning", "!"),
				skip.File.Name,
				skip.Reason,
				r.style("RuleName", skip.RuleName))
		}
	}

	if len(plan.Unmatched) > 0 {
		r.printf("%s\n", r.style("Muted",
			fmt.Sprintf("%d files match no rule and stay put", len(plan.Unmatched))))
	}

	if plan.IsEmpty() && len(plan.Skips) == 0 {
		r.printf("%s\n", r.style("Muted", "nothing to organize"))
	}
	return nil
}

func (r *Renderer) planJSON(plan *organizer.Plan) error {
	type stepJSON struct {
		File   string `json:"file"`
		Rule   string `json:"rule"`
		Action string `json:"action"`
		Target string `json:"target"`
	}
	type skipJSON struct {
		File   string `json:"file"`
		Rule   string `json:"rule"`
		Reason string `json:"reason"`
	}
	doc := struct {
		Steps     []stepJSON `json:"steps"`
		Skips     []skipJSON `json:"skips"`
		Unmatched []string   `json:"unmatched"`
	}{
		Steps:     []stepJSON{},
		Skips:     []skipJSON{},
		Unmatched: []string{},
	}
	for _, step := range plan.Steps {
		doc.Steps = append(doc.Steps, stepJSON{
			File:   step.File.Path,
			Rule:   step.RuleName,
			Action: string(step.Action),
			Target: step.Target,
		})
	}
	for _, skip := range plan.Skips {
		doc.Skips = append(doc.Skips, skipJSON{
			File:   skip.File.Path,
			Rule:   skip.RuleName,
			Reason: skip.Reason,
		})
	}
	for _, file := range plan.Unmatched {
		doc.Unmatched = append(doc.Unmatched, file.Path)
	}
	return r.writeJSON(doc)
}

// Overlaps renders an overlap report
func (r *Renderer) Overlaps(overlaps []overlap.Overlap) error {
	if r.format == ui.FormatJSON {
		if overlaps == nil {
			overlaps = []overlap.Overlap{}
		}
		return r.writeJSON(overlaps)
	}

	if len(overlaps) == 0 {
		r.printf("%s\n", r.style("Success", "no overlapping rules found"))
		return nil
	}

	r.printf("%s\n", r.style("Warning", fmt.Sprintf("%d overlaps found", len(overlaps))))
	for _, o := range overlaps {
		var verdict string
		switch o.Kind {
		case overlap.Shadows:
			verdict = fmt.Sprintf("%s makes %s dead",
				r.style("RuleName", o.CandidateName), r.style("RuleName", o.ConflictingName))
		case overlap.ShadowedBy:
			verdict = fmt.Sprintf("%s never fires because of %s",
				r.style("RuleName", o.CandidateName), r.style("RuleName", o.ConflictingName))
		default:
			verdict = fmt.Sprintf("%s and %s claim some of the same files",
				r.style("RuleName", o.CandidateName), r.style("RuleName", o.ConflictingName))
		}
		r.printf("  %s  %s\n", r.style("Warning", "!"), verdict)
		r.printf("     %s\n", r.style("Muted", o.Description))
	}
	return nil
}

// Rules renders the rule listing as a table
func (r *Renderer) Rules(ruleSet []rules.Rule) error {
	if r.format == ui.FormatJSON {
		return r.rulesJSON(ruleSet)
	}

	if len(ruleSet) == 0 {
		r.printf("%s\n", r.style("Muted", "no rules defined"))
		return nil
	}

	data := pterm.TableData{
		{"PRIORITY", "NAME", "WHEN", "ACTION", "DESTINATION", "STATE"},
	}
	for i := range ruleSet {
		rule := &ruleSet[i]
		state := "enabled"
		if !rule.Enabled {
			state = "disabled"
		}
		data = append(data, []string{
			fmt.Sprintf("%d", rule.Priority),
			rule.Name,
			summarizeConditions(rule),
			string(rule.Action),
			rule.Destination.Describe(),
			state,
		})
	}

	table := pterm.DefaultTable.WithHasHeader().WithData(data).WithWriter(r.out)
	if r.format != ui.FormatTerminal {
		table = table.WithBoxed(false).WithStyle(pterm.NewStyle()).
			WithHeaderStyle(pterm.NewStyle()).WithSeparator("  ")
	}
	return table.Render()
}

func (r *Renderer) rulesJSON(ruleSet []rules.Rule) error {
	type ruleJSON struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Priority    int    `json:"priority"`
		When        string `json:"when"`
		Action      string `json:"action"`
		Destination string `json:"destination"`
		Enabled     bool   `json:"enabled"`
		Category    string `json:"category,omitempty"`
	}
	doc := make([]ruleJSON, 0, len(ruleSet))
	for i := range ruleSet {
		rule := &ruleSet[i]
		doc = append(doc, ruleJSON{
			ID:          rule.ID,
			Name:        rule.Name,
			Priority:    rule.Priority,
			When:        summarizeConditions(rule),
			Action:      string(rule.Action),
			Destination: rule.Destination.Describe(),
			Enabled:     rule.Enabled,
			Category:    rule.Category,
		})
	}
	return r.writeJSON(doc)
}

// DoctorEntry is one destination health check result
type DoctorEntry struct {
	RuleName    string `json:"rule"`
	Destination string `json:"destination"`
	Valid       bool   `json:"valid"`
	Detail      string `json:"detail,omitempty"`
}

// Doctor renders destination health checks
func (r *Renderer) Doctor(entries []DoctorEntry) error {
	if r.format == ui.FormatJSON {
		if entries == nil {
			entries = []DoctorEntry{}
		}
		return r.writeJSON(entries)
	}

	broken := 0
	for _, entry := range entries {
		if entry.Valid {
			r.printf("  %s  %s → %s\n",
				r.style("Success", "ok"),
				r.style("RuleName", entry.RuleName),
				r.style("Destination", entry.Destination))
			continue
		}
		broken++
		r.printf("  %s  %s → %s: %s\n",
			r.style("Error", "!!"),
			r.style("RuleName", entry.RuleName),
			entry.Destination,
			r.style("Warning", entry.Detail))
	}

	if broken == 0 {
		r.printf("%s\n", r.style("Success", "all destinations are healthy"))
	} else {
		r.printf("%s\n", r.style("Error", fmt.Sprintf("%d destinations need attention", broken)))
	}
	return nil
}

func (r *Renderer) writeJSON(v interface{}) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// summarizeConditions renders a rule's conditions on one line
func summarizeConditions(rule *rules.Rule) string {
	sep := " and "
	if rule.Conditions.Operator == rules.Or {
		sep = " or "
	}
	parts := make([]string, 0, len(rule.Conditions.Conditions))
	for _, c := range rule.Conditions.Conditions {
		parts = append(parts, c.Describe())
	}
	summary := strings.Join(parts, sep)
	if len(rule.Exclusions.Conditions) > 0 {
		excl := make([]string, 0, len(rule.Exclusions.Conditions))
		for _, c := range rule.Exclusions.Conditions {
			excl = append(excl, c.Describe())
		}
		summary += " unless " + strings.Join(excl, " or ")
	}
	return summary
}
