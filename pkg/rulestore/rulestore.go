// Package rulestore persists rules as a TOML document. The on-disk format is
// meant to be hand-editable:
//
//	[[rules]]
//	name = "PDFs to Finance"
//	priority = 1
//	action = "move"
//	destination = "~/Documents/Finance"
//
//	  [[rules.when]]
//	  type = "extension"
//	  value = "pdf"
//
// Loading is strict: a rule that fails validation aborts the whole load with
// the rule named in the error, so a typo never silently drops a policy.
package rulestore

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/shelf/pkg/conditions"
	"github.com/arthur-debert/shelf/pkg/destinations"
	"github.com/arthur-debert/shelf/pkg/errors"
	"github.com/arthur-debert/shelf/pkg/files"
	"github.com/arthur-debert/shelf/pkg/logging"
	"github.com/arthur-debert/shelf/pkg/paths"
	"github.com/arthur-debert/shelf/pkg/rules"
	ktoml "github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
)

// Store reads and writes the rule file
type Store struct {
	path   string
	logger zerolog.Logger
}

// New creates a store for the given rule file path
func New(path string) *Store {
	return &Store{
		path:   path,
		logger: logging.GetLogger("rulestore"),
	}
}

// Default creates a store for the user's rule file under the config dir
func Default() *Store {
	return New(paths.RuleFile())
}

// Path returns the rule file path this store operates on
func (s *Store) Path() string {
	return s.path
}

//go:embed defaults.toml
var defaultRules []byte

// Init writes the starter rule file, with every rule disabled, so new users
// have a template to edit. An existing file is never touched.
func (s *Store) Init() error {
	if _, err := os.Stat(s.path); err == nil {
		return errors.Newf(errors.ErrInvalidInput,
			"rule file %s already exists", s.path)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrConfigLoad,
			"failed to create config directory for %s", s.path)
	}
	if err := os.WriteFile(s.path, defaultRules, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrConfigLoad,
			"failed to write rule file %s", s.path)
	}
	s.logger.Info().Str("path", s.path).Msg("starter rule file written")
	return nil
}

// conditionDoc is the TOML shape of one condition
type conditionDoc struct {
	Type  string `koanf:"type" toml:"type"`
	Value string `koanf:"value" toml:"value"`
}

// ruleDoc is the TOML shape of one rule. Enabled is a pointer so an absent
// key defaults to true rather than false.
type ruleDoc struct {
	ID          string         `koanf:"id" toml:"id,omitempty"`
	Name        string         `koanf:"name" toml:"name"`
	Priority    int            `koanf:"priority" toml:"priority"`
	Action      string         `koanf:"action" toml:"action"`
	Destination string         `koanf:"destination" toml:"destination,omitempty"`
	Enabled     *bool          `koanf:"enabled" toml:"enabled"`
	Match       string         `koanf:"match" toml:"match,omitempty"`
	Category    string         `koanf:"category" toml:"category,omitempty"`
	When        []conditionDoc `koanf:"when" toml:"when"`
	Unless      []conditionDoc `koanf:"unless" toml:"unless,omitempty"`
}

type document struct {
	Rules []ruleDoc `koanf:"rules" toml:"rules"`
}

// Load reads, decodes and validates the rule file. A missing file is a fresh
// install and yields an empty rule set. Sequence numbers follow file order,
// which makes the priority tie break "whichever was written first".
func (s *Store) Load() ([]rules.Rule, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		s.logger.Debug().Str("path", s.path).Msg("no rule file, starting empty")
		return nil, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(s.path), ktoml.Parser()); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse,
			"failed to parse rule file %s", s.path)
	}

	var doc document
	if err := k.Unmarshal("", &doc); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse,
			"failed to decode rule file %s", s.path)
	}

	ruleSet := make([]rules.Rule, 0, len(doc.Rules))
	seen := make(map[string]bool, len(doc.Rules))
	for i, rd := range doc.Rules {
		rule, err := fromDoc(rd, i)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad,
				"rule %d in %s is invalid", i+1, s.path)
		}
		if seen[rule.ID] {
			return nil, errors.Newf(errors.ErrRuleName,
				"duplicate rule %q in %s", rule.Name, s.path)
		}
		seen[rule.ID] = true
		ruleSet = append(ruleSet, rule)
	}

	s.logger.Debug().
		Str("path", s.path).
		Int("rules", len(ruleSet)).
		Msg("rule file loaded")
	return ruleSet, nil
}

// Save writes the rule set back to disk, creating the config directory if
// needed. Rules are written in the order given.
func (s *Store) Save(ruleSet []rules.Rule) error {
	doc := document{Rules: make([]ruleDoc, 0, len(ruleSet))}
	for i := range ruleSet {
		doc.Rules = append(doc.Rules, toDoc(&ruleSet[i]))
	}

	data, err := toml.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to encode rules")
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrConfigLoad,
			"failed to create config directory for %s", s.path)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrConfigLoad,
			"failed to write rule file %s", s.path)
	}

	s.logger.Info().
		Str("path", s.path).
		Int("rules", len(ruleSet)).
		Msg("rule file saved")
	return nil
}

// fromDoc builds and validates a rule from its TOML shape
func fromDoc(rd ruleDoc, seq int) (rules.Rule, error) {
	conds, err := parseConditions(rd.When)
	if err != nil {
		return rules.Rule{}, err
	}
	exclusions, err := parseConditions(rd.Unless)
	if err != nil {
		return rules.Rule{}, err
	}

	op, err := operatorFor(rd.Match, len(conds))
	if err != nil {
		return rules.Rule{}, err
	}

	action, err := rules.ParseAction(rd.Action)
	if err != nil {
		return rules.Rule{}, err
	}

	dest, err := parseDestination(rd.Destination, action)
	if err != nil {
		return rules.Rule{}, err
	}

	enabled := true
	if rd.Enabled != nil {
		enabled = *rd.Enabled
	}

	id := rd.ID
	if id == "" {
		id = slug(rd.Name)
	}

	rule := rules.Rule{
		ID:          id,
		Name:        rd.Name,
		Conditions:  rules.ConditionSet{Conditions: conds, Operator: op},
		Exclusions:  rules.ExclusionSet{Conditions: exclusions},
		Action:      action,
		Destination: dest,
		Enabled:     enabled,
		Priority:    rd.Priority,
		Seq:         seq,
		Category:    rd.Category,
	}
	if err := rule.Validate(); err != nil {
		return rules.Rule{}, err
	}
	return rule, nil
}

func parseConditions(docs []conditionDoc) ([]conditions.Condition, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	conds := make([]conditions.Condition, 0, len(docs))
	for _, cd := range docs {
		cond, err := conditions.New(conditions.Type(cd.Type), cd.Value)
		if err != nil {
			return nil, err
		}
		conds = append(conds, cond)
	}
	return conds, nil
}

// operatorFor maps the file's match key to an operator. A lone condition is
// always single; multiple conditions default to all.
func operatorFor(match string, condCount int) (rules.Operator, error) {
	if condCount <= 1 {
		return rules.Single, nil
	}
	switch match {
	case "", "all":
		return rules.And, nil
	case "any":
		return rules.Or, nil
	}
	return "", errors.Newf(errors.ErrConfigParse,
		"match must be \"all\" or \"any\", got %q", match)
}

// parseDestination interprets the destination string. Delete rules always
// target the trash. A well-known folder name becomes a placeholder that
// resolves through the user dirs; a path (absolute or ~-relative) becomes a
// granted path-backed destination.
func parseDestination(value string, action rules.Action) (destinations.Destination, error) {
	if action == rules.ActionDelete {
		return destinations.NewTrash(), nil
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return destinations.Destination{}, errors.Newf(errors.ErrRuleDestination,
			"%s rules need a destination", action)
	}
	if _, err := files.ParseLocation(strings.ToLower(value)); err == nil {
		return destinations.NewPlaceholder(strings.ToLower(value)), nil
	}

	expanded := paths.ExpandHome(value)
	if !filepath.IsAbs(expanded) {
		return destinations.Destination{}, errors.Newf(errors.ErrRuleDestination,
			"destination must be a well-known folder name or an absolute path, got %q", value)
	}
	return destinations.NewFolder(filepath.Clean(expanded), value), nil
}

// toDoc converts a rule back to its TOML shape
func toDoc(r *rules.Rule) ruleDoc {
	rd := ruleDoc{
		ID:       r.ID,
		Name:     r.Name,
		Priority: r.Priority,
		Action:   string(r.Action),
		Enabled:  &r.Enabled,
		Category: r.Category,
	}
	if r.ID == slug(r.Name) {
		rd.ID = ""
	}

	switch r.Conditions.Operator {
	case rules.And:
		rd.Match = "all"
	case rules.Or:
		rd.Match = "any"
	}

	switch {
	case r.Destination.Trash:
		// delete rules carry no destination key
	case r.Destination.HasHandle():
		rd.Destination = r.Destination.DisplayName
		if rd.Destination == "" {
			rd.Destination = r.Destination.Handle
		}
	default:
		rd.Destination = r.Destination.DisplayName
	}

	for _, c := range r.Conditions.Conditions {
		rd.When = append(rd.When, conditionDoc{Type: string(c.Type()), Value: c.Value()})
	}
	for _, c := range r.Exclusions.Conditions {
		rd.Unless = append(rd.Unless, conditionDoc{Type: string(c.Type()), Value: c.Value()})
	}
	return rd
}

// slug derives a stable identifier from a rule name
func slug(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
