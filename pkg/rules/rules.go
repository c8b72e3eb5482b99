// Package rules defines the rule model: a named, prioritized policy made of
// a compound condition set, an OR'd exclusion set, an action and a
// destination. The engine only ever reads rules; editing replaces values.
package rules

import (
	"sort"
	"time"

	"github.com/arthur-debert/shelf/pkg/conditions"
	"github.com/arthur-debert/shelf/pkg/destinations"
	"github.com/arthur-debert/shelf/pkg/errors"
	"github.com/arthur-debert/shelf/pkg/files"
)

// Operator combines the conditions of a set
type Operator string

const (
	// Single applies when the set holds at most one condition
	Single Operator = "single"
	// And requires every condition to match
	And Operator = "and"
	// Or requires at least one condition to match
	Or Operator = "or"
)

// ParseOperator validates an operator name
func ParseOperator(s string) (Operator, error) {
	switch Operator(s) {
	case Single, And, Or:
		return Operator(s), nil
	}
	return "", errors.Newf(errors.ErrInvalidInput, "unknown operator: %q", s)
}

// Action is what happens to a file once a rule claims it
type Action string

const (
	ActionMove   Action = "move"
	ActionCopy   Action = "copy"
	ActionDelete Action = "delete"
)

// ParseAction validates an action name
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionMove, ActionCopy, ActionDelete:
		return Action(s), nil
	}
	return "", errors.Newf(errors.ErrRuleAction, "unknown action: %q", s)
}

// ConditionSet is an ordered list of conditions combined with an operator.
// Invariant, enforced at rule validation: Operator is Single iff the set
// holds at most one condition.
type ConditionSet struct {
	Conditions []conditions.Condition
	Operator   Operator
}

// Matches evaluates the set against a file. An empty set never matches,
// regardless of operator, so a bare rule cannot silently claim everything.
func (s ConditionSet) Matches(file *files.Record, now time.Time) bool {
	if len(s.Conditions) == 0 {
		return false
	}

	switch s.Operator {
	case Single:
		return s.Conditions[0].Matches(file, now)
	case Or:
		for i := range s.Conditions {
			if s.Conditions[i].Matches(file, now) {
				return true
			}
		}
		return false
	default: // And
		for i := range s.Conditions {
			if !s.Conditions[i].Matches(file, now) {
				return false
			}
		}
		return true
	}
}

// ExclusionSet vetoes otherwise-positive matches. Its conditions are always
// OR-combined: any hit excludes the file. An empty set never excludes.
type ExclusionSet struct {
	Conditions []conditions.Condition
}

// Matches reports whether any exclusion condition applies to the file
func (s ExclusionSet) Matches(file *files.Record, now time.Time) bool {
	for i := range s.Conditions {
		if s.Conditions[i].Matches(file, now) {
			return true
		}
	}
	return false
}

// Rule is a single organizing policy
type Rule struct {
	ID          string
	Name        string
	Conditions  ConditionSet
	Exclusions  ExclusionSet
	Action      Action
	Destination destinations.Destination
	Enabled     bool

	// Priority orders evaluation; lower values run first. Priority is the
	// engine's source of truth, list position is purely a UI concern.
	Priority int

	// Seq is the creation order, used as the stable tie break when two
	// rules share a priority value.
	Seq int

	// Category optionally groups rules in the editor
	Category string
}

// Matches reports whether the file satisfies the rule's conditions and is
// not vetoed by its exclusions. Enabled is not consulted here; skipping
// disabled rules is the engine's job.
func (r *Rule) Matches(file *files.Record, now time.Time) bool {
	return r.Conditions.Matches(file, now) && !r.Exclusions.Matches(file, now)
}

// Validate enforces the save-time invariants. It returns a rule validation
// error (see pkg/errors); the engine assumes validated rules and never
// re-checks these at evaluation time.
func (r *Rule) Validate() error {
	if r.Name == "" {
		return errors.New(errors.ErrRuleName, "rule name must not be empty")
	}

	if len(r.Conditions.Conditions) == 0 {
		return errors.Newf(errors.ErrRuleConditions,
			"rule %q has no conditions and would never match", r.Name)
	}
	if len(r.Conditions.Conditions) > 1 && r.Conditions.Operator == Single {
		return errors.Newf(errors.ErrRuleConditions,
			"rule %q combines %d conditions but has no operator; choose all or any",
			r.Name, len(r.Conditions.Conditions))
	}
	if len(r.Conditions.Conditions) <= 1 && r.Conditions.Operator != Single {
		return errors.Newf(errors.ErrRuleConditions,
			"rule %q has a single condition; operator must be single", r.Name)
	}

	if _, err := ParseAction(string(r.Action)); err != nil {
		return err
	}

	return r.validateDestination()
}

// validateDestination checks the action/destination pairing. Delete rules
// ignore the destination entirely; move and copy need a granted handle or a
// well-known folder name that resolves without one.
func (r *Rule) validateDestination() error {
	if r.Action == ActionDelete {
		return nil
	}

	if r.Destination.Trash {
		return errors.Newf(errors.ErrRuleDestination,
			"rule %q: only delete rules may target the trash", r.Name)
	}
	if r.Destination.HasHandle() {
		return nil
	}
	if _, err := files.ParseLocation(r.Destination.DisplayName); err == nil {
		return nil
	}
	return errors.Newf(errors.ErrRuleDestination,
		"rule %q: %s action needs a destination folder", r.Name, r.Action)
}

// SortForEvaluation orders rules the way the engine consumes them:
// ascending priority, creation order breaking ties. The sort is
// deterministic; arbitrary order never decides a match.
func SortForEvaluation(ruleSet []Rule) {
	sort.SliceStable(ruleSet, func(i, j int) bool {
		if ruleSet[i].Priority != ruleSet[j].Priority {
			return ruleSet[i].Priority < ruleSet[j].Priority
		}
		return ruleSet[i].Seq < ruleSet[j].Seq
	})
}
