// Package cli wires the shelf commands together.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/arthur-debert/shelf/internal/version"
	"github.com/arthur-debert/shelf/pkg/destinations"
	"github.com/arthur-debert/shelf/pkg/display"
	"github.com/arthur-debert/shelf/pkg/errors"
	"github.com/arthur-debert/shelf/pkg/files"
	"github.com/arthur-debert/shelf/pkg/filesystem"
	"github.com/arthur-debert/shelf/pkg/logging"
	"github.com/arthur-debert/shelf/pkg/organizer"
	"github.com/arthur-debert/shelf/pkg/overlap"
	"github.com/arthur-debert/shelf/pkg/paths"
	"github.com/arthur-debert/shelf/pkg/rules"
	"github.com/arthur-debert/shelf/pkg/rulestore"
	"github.com/arthur-debert/shelf/pkg/scanner"
	"github.com/arthur-debert/shelf/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var (
		verbosity  int
		formatFlag string
		ruleFile   string
	)

	rootCmd := &cobra.Command{
		Use:   "shelf",
		Short: "A rule-driven file organizer",
		Long: `shelf keeps your folders tidy by matching files against the rules you
define and moving, copying or trashing them accordingly. Rules live in a
plain TOML file you can edit by hand.`,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().StringVar(&formatFlag, "format", "auto",
		"Output format: auto, term, text or json")
	rootCmd.PersistentFlags().StringVar(&ruleFile, "rules", "",
		"Path to the rule file (default: the shelf.toml under the config dir)")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newPreviewCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newRulesCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newDoctorCmd())
	rootCmd.AddCommand(newDocsCmd())

	return rootCmd
}

// store returns the rule store honoring the --rules override
func store(cmd *cobra.Command) *rulestore.Store {
	if path, _ := cmd.Root().PersistentFlags().GetString("rules"); path != "" {
		return rulestore.New(paths.ExpandHome(path))
	}
	return rulestore.Default()
}

// renderer builds a renderer from the --format flag, resolving auto against
// stdout.
func renderer(cmd *cobra.Command) (*display.Renderer, error) {
	value, _ := cmd.Root().PersistentFlags().GetString("format")
	format, err := ui.ParseFormat(value)
	if err != nil {
		return nil, err
	}
	return display.NewRenderer(cmd.OutOrStdout(), format.Resolve(os.Stdout)), nil
}

// scanDirs resolves the directories a preview or run covers. With no
// arguments, the downloads and desktop folders are scanned.
func scanDirs(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	userDirs := paths.UserDirs()
	var dirs []string
	for _, loc := range []files.Location{files.LocationDownloads, files.LocationDesktop} {
		if dir := userDirs[loc]; dir != "" {
			dirs = append(dirs, dir)
		}
	}
	if len(dirs) == 0 {
		return nil, errors.New(errors.ErrInvalidInput,
			"no folders to scan; pass one or more directories")
	}
	return dirs, nil
}

// buildPlan loads the rules, scans the given directories and plans a run
func buildPlan(cmd *cobra.Command, args []string) (*organizer.Plan, error) {
	ruleSet, err := store(cmd).Load()
	if err != nil {
		return nil, err
	}

	dirs, err := scanDirs(args)
	if err != nil {
		return nil, err
	}

	fsys := filesystem.NewOS()
	userDirs := paths.UserDirs()
	scan := scanner.New(fsys, userDirs)

	var records []files.Record
	for _, dir := range dirs {
		found, err := scan.Scan(dir)
		if err != nil {
			return nil, err
		}
		records = append(records, found...)
	}

	resolver := destinations.NewResolver(destinations.PathBookmarks{}, fsys, userDirs)
	planner := organizer.NewPlanner(resolver, fsys, paths.TrashDir())
	return planner.Plan(records, ruleSet, time.Now()), nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "shelf version %s\n", version.Version)
			if version.Commit != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Commit: %s\n", version.Commit)
			}
			if version.Date != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Built:  %s\n", version.Date)
			}
		},
	}
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a starter rule file to edit",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := store(cmd)
			if err := s.Init(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"wrote %s; the starter rules are disabled until you edit them\n", s.Path())
			return nil
		},
	}
}

func newPreviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview [dirs...]",
		Short: "Show what a run would do without touching anything",
		Example: `  # Preview the default folders (downloads and desktop)
  shelf preview

  # Preview a specific folder
  shelf preview ~/Downloads`,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := buildPlan(cmd, args)
			if err != nil {
				return err
			}
			r, err := renderer(cmd)
			if err != nil {
				return err
			}
			return r.Plan(plan)
		},
	}
}

func newRunCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run [dirs...]",
		Short: "Organize files according to the rules",
		Example: `  # Organize the default folders
  shelf run

  # See what would happen first
  shelf run --dry-run ~/Downloads`,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := buildPlan(cmd, args)
			if err != nil {
				return err
			}

			r, err := renderer(cmd)
			if err != nil {
				return err
			}
			if err := r.Plan(plan); err != nil {
				return err
			}

			executor := organizer.NewExecutor(filesystem.NewOS(), dryRun)
			return executor.Execute(cmd.Context(), plan)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"Plan and report without moving any files")
	return cmd
}

func newRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the configured rules in evaluation order",
		RunE: func(cmd *cobra.Command, args []string) error {
			ruleSet, err := store(cmd).Load()
			if err != nil {
				return err
			}
			rules.SortForEvaluation(ruleSet)

			r, err := renderer(cmd)
			if err != nil {
				return err
			}
			return r.Rules(ruleSet)
		},
	}
}

func newCheckCmd() *cobra.Command {
	var ruleName string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report rules that shadow or overlap each other",
		Long: `Check compares every pair of enabled rules and reports where their match
sets collide. A shadowed rule can never fire; partially overlapping rules
route some files by priority alone. Overlaps are warnings, not errors.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ruleSet, err := store(cmd).Load()
			if err != nil {
				return err
			}

			detector := overlap.New()
			var found []overlap.Overlap
			if ruleName != "" {
				candidate := findRule(ruleSet, ruleName)
				if candidate == nil {
					return errors.Newf(errors.ErrNotFound, "no rule named %q", ruleName)
				}
				found = detector.Detect(*candidate, ruleSet, candidate.ID)
			} else {
				// Each pair is compared once, with the earlier rule in the
				// file as the candidate
				for i := range ruleSet {
					if !ruleSet[i].Enabled {
						continue
					}
					found = append(found, detector.Detect(ruleSet[i], ruleSet[i+1:], "")...)
				}
			}

			r, err := renderer(cmd)
			if err != nil {
				return err
			}
			return r.Overlaps(found)
		},
	}

	cmd.Flags().StringVar(&ruleName, "rule", "",
		"Check a single rule against the rest of the set")
	return cmd
}

func findRule(ruleSet []rules.Rule, name string) *rules.Rule {
	for i := range ruleSet {
		if ruleSet[i].Name == name {
			return &ruleSet[i]
		}
	}
	return nil
}

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check every rule destination is still reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			ruleSet, err := store(cmd).Load()
			if err != nil {
				return err
			}

			resolver := destinations.NewResolver(
				destinations.PathBookmarks{}, filesystem.NewOS(), paths.UserDirs())

			var entries []display.DoctorEntry
			for i := range ruleSet {
				rule := &ruleSet[i]
				if rule.Action == rules.ActionDelete {
					continue
				}
				resolved := resolver.CheckResolvability(rule.Destination)
				entries = append(entries, display.DoctorEntry{
					RuleName:    rule.Name,
					Destination: rule.Destination.Describe(),
					Valid:       resolved.Valid,
					Detail:      resolved.Reason,
				})
			}

			r, err := renderer(cmd)
			if err != nil {
				return err
			}
			return r.Doctor(entries)
		},
	}
}
