// Package engine implements rule evaluation: given a file and an ordered
// rule list, it finds the single rule that claims the file.
//
// Evaluation is synchronous and pure. Callers snapshot the rule list and the
// file records before a call; the engine never mutates either. Interactive
// callers (live match previews) should debounce bursts of edits and re-run
// the whole pass; a pass over a few hundred rules and a few thousand files
// stays well inside an interactive budget since the per-condition predicate
// does not allocate.
package engine

import (
	"time"

	"github.com/arthur-debert/shelf/pkg/files"
	"github.com/arthur-debert/shelf/pkg/logging"
	"github.com/arthur-debert/shelf/pkg/rules"
	"github.com/rs/zerolog"
)

// MatchResult is the outcome of evaluating one file against the rule list.
// The zero value is NoMatch — a normal, first-class result, not a failure.
type MatchResult struct {
	// Rule is the winning rule, nil when nothing matched
	Rule *rules.Rule

	// MatchedVia records which operator produced the match
	MatchedVia rules.Operator
}

// NoMatch is the result when no enabled rule claims the file
var NoMatch = MatchResult{}

// Matched reports whether any rule claimed the file
func (m MatchResult) Matched() bool {
	return m.Rule != nil
}

// FileMatch pairs a file with its evaluation result for batch previews
type FileMatch struct {
	File   files.Record
	Result MatchResult
}

// Evaluator runs rule evaluation
type Evaluator struct {
	logger zerolog.Logger
}

// New creates an evaluator
func New() *Evaluator {
	return &Evaluator{
		logger: logging.GetLogger("engine"),
	}
}

// Evaluate returns the first enabled rule that fully matches the file, or
// NoMatch. The rule list must already be in evaluation order (ascending
// priority, see rules.SortForEvaluation); first match wins and no further
// rules are looked at. Rules are a prioritized decision list, not a set of
// independent triggers: a later, lower-priority rule never overrides an
// earlier match even when it is more specific.
func (e *Evaluator) Evaluate(file *files.Record, ruleSet []rules.Rule, now time.Time) MatchResult {
	for i := range ruleSet {
		rule := &ruleSet[i]
		if !rule.Enabled {
			continue
		}
		if rule.Matches(file, now) {
			e.logger.Trace().
				Str("file", file.Name).
				Str("rule", rule.Name).
				Msg("file matched rule")
			return MatchResult{Rule: rule, MatchedVia: rule.Conditions.Operator}
		}
	}
	return NoMatch
}

// EvaluateAll evaluates every file against the rule list, sorting a copy of
// the rules into evaluation order first. Used for previews and batch runs.
func (e *Evaluator) EvaluateAll(records []files.Record, ruleSet []rules.Rule, now time.Time) []FileMatch {
	ordered := make([]rules.Rule, len(ruleSet))
	copy(ordered, ruleSet)
	rules.SortForEvaluation(ordered)

	results := make([]FileMatch, 0, len(records))
	for i := range records {
		results = append(results, FileMatch{
			File:   records[i],
			Result: e.Evaluate(&records[i], ordered, now),
		})
	}

	e.logger.Debug().
		Int("files", len(records)).
		Int("rules", len(ordered)).
		Msg("batch evaluation complete")
	return results
}
