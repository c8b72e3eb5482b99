// Package organizer turns evaluation results into a file-moving plan and
// executes it. Planning and execution are strictly separated: a plan is a
// pure value the UI can preview, and only Execute touches the filesystem.
package organizer

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/arthur-debert/shelf/pkg/destinations"
	"github.com/arthur-debert/shelf/pkg/engine"
	"github.com/arthur-debert/shelf/pkg/files"
	"github.com/arthur-debert/shelf/pkg/filesystem"
	"github.com/arthur-debert/shelf/pkg/logging"
	"github.com/arthur-debert/shelf/pkg/rules"
	"github.com/rs/zerolog"
)

// Step is one planned file operation
type Step struct {
	File     files.Record
	RuleName string
	Action   rules.Action

	// Target is the full destination path. For delete steps it points into
	// the trash directory.
	Target string
}

// Describe renders the step for previews
func (s Step) Describe() string {
	switch s.Action {
	case rules.ActionDelete:
		return fmt.Sprintf("move %s to trash", s.File.Name)
	case rules.ActionCopy:
		return fmt.Sprintf("copy %s to %s", s.File.Name, filepath.Dir(s.Target))
	default:
		return fmt.Sprintf("move %s to %s", s.File.Name, filepath.Dir(s.Target))
	}
}

// Skip records a matched file the plan could not act on. Skips are expected
// outcomes, not errors; a run proceeds past them.
type Skip struct {
	File     files.Record
	RuleName string
	Reason   string
}

// Skip reasons for conditions the planner detects itself; unresolvable
// destinations carry the resolver's reason instead.
const (
	SkipCollision      = "a file with the same name already exists at the destination"
	SkipAlreadyInPlace = "file is already in the destination folder"
)

// Plan is the full outcome of planning a run over a set of files
type Plan struct {
	Steps     []Step
	Skips     []Skip
	Unmatched []files.Record
}

// IsEmpty reports whether the plan has nothing to execute
func (p *Plan) IsEmpty() bool {
	return len(p.Steps) == 0
}

// Planner builds plans from evaluation results
type Planner struct {
	evaluator *engine.Evaluator
	resolver  *destinations.Resolver
	fs        filesystem.FS
	trashDir  string
	logger    zerolog.Logger
}

// NewPlanner creates a planner. trashDir receives the files claimed by
// delete rules (see paths.TrashDir).
func NewPlanner(resolver *destinations.Resolver, fsys filesystem.FS, trashDir string) *Planner {
	return &Planner{
		evaluator: engine.New(),
		resolver:  resolver,
		fs:        fsys,
		trashDir:  trashDir,
		logger:    logging.GetLogger("organizer.planner"),
	}
}

// Plan evaluates every file against the rules and resolves each match into a
// step or a skip. Unmatched files are reported untouched. Planning never
// mutates anything; it is safe to call repeatedly for live previews.
func (p *Planner) Plan(records []files.Record, ruleSet []rules.Rule, now time.Time) *Plan {
	plan := &Plan{}
	claimed := make(map[string]bool)

	for _, match := range p.evaluator.EvaluateAll(records, ruleSet, now) {
		if !match.Result.Matched() {
			plan.Unmatched = append(plan.Unmatched, match.File)
			continue
		}

		rule := match.Result.Rule
		resolved := p.resolver.CheckResolvability(rule.Destination)
		if !resolved.Valid {
			plan.Skips = append(plan.Skips, Skip{
				File:     match.File,
				RuleName: rule.Name,
				Reason:   resolved.Reason,
			})
			continue
		}

		targetDir := resolved.Path
		if rule.Action == rules.ActionDelete {
			targetDir = p.trashDir
		}
		target := filepath.Join(targetDir, match.File.Name)
		if rule.Action == rules.ActionDelete {
			target = p.freeTrashTarget(target, now, claimed)
		}

		if reason := p.checkTarget(&match.File, target, claimed); reason != "" {
			plan.Skips = append(plan.Skips, Skip{
				File:     match.File,
				RuleName: rule.Name,
				Reason:   reason,
			})
			continue
		}

		claimed[target] = true
		plan.Steps = append(plan.Steps, Step{
			File:     match.File,
			RuleName: rule.Name,
			Action:   rule.Action,
			Target:   target,
		})
	}

	p.logger.Debug().
		Int("steps", len(plan.Steps)).
		Int("skips", len(plan.Skips)).
		Int("unmatched", len(plan.Unmatched)).
		Msg("plan built")
	return plan
}

// checkTarget guards against overwrites: an existing file at the target, a
// target claimed earlier in this plan, or a file already in place.
func (p *Planner) checkTarget(file *files.Record, target string, claimed map[string]bool) string {
	if filepath.Clean(file.Path) == filepath.Clean(target) {
		return SkipAlreadyInPlace
	}
	if claimed[target] {
		return SkipCollision
	}
	if _, err := p.fs.Stat(target); err == nil {
		return SkipCollision
	}
	return ""
}

// freeTrashTarget finds an unoccupied name in the trash. Trash collisions
// never skip a delete; the name is disambiguated instead.
func (p *Planner) freeTrashTarget(target string, now time.Time, claimed map[string]bool) string {
	candidate := target
	for i := 0; ; i++ {
		if !claimed[candidate] {
			if _, err := p.fs.Stat(candidate); err != nil {
				return candidate
			}
		}
		candidate = fmt.Sprintf("%s.%s-%d", target, now.Format("20060102T150405"), i)
	}
}
