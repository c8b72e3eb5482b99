// Package overlap detects rules whose match sets intersect, so the editor
// can warn about dead or ambiguous rules before a save.
//
// The analysis is a conservative syntactic one, not a decision procedure:
// open-ended predicates (arbitrary substrings, numeric thresholds) make full
// semantic overlap undecidable from the rule vocabulary alone. Missed
// overlaps are acceptable; reported overlaps on the decidable dimensions
// (extensions, name containment, the enumerated kind/location vocabularies)
// are always real. Loosely-bounded numeric ranges may over-report, which the
// caller should present as a warning, never as an error. Detection is
// advisory only and never blocks a save.
package overlap

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/shelf/pkg/conditions"
	"github.com/arthur-debert/shelf/pkg/files"
	"github.com/arthur-debert/shelf/pkg/logging"
	"github.com/arthur-debert/shelf/pkg/rules"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
)

// Kind classifies the relationship between two overlapping rules
type Kind string

const (
	// Shadows: the candidate fires first and claims every file the other
	// rule could claim, leaving it dead.
	Shadows Kind = "shadows"

	// ShadowedBy: the symmetric case, the candidate itself can never fire.
	ShadowedBy Kind = "shadowed-by"

	// PartialOverlap: the match sets intersect but neither subsumes the
	// other; some files are ambiguous between the two rules.
	PartialOverlap Kind = "partial-overlap"
)

// Overlap describes one detected conflict, for UI display only; it is never
// persisted.
type Overlap struct {
	CandidateID     string
	CandidateName   string
	ConflictingID   string
	ConflictingName string
	Kind            Kind
	Description     string
}

// Detector runs overlap analysis
type Detector struct {
	logger zerolog.Logger
}

// New creates a detector
func New() *Detector {
	return &Detector{
		logger: logging.GetLogger("overlap"),
	}
}

// Detect compares the candidate against every other enabled rule and
// returns the overlaps found. excludeID skips the stored copy of the rule
// being edited; structurally identical rules are skipped for the same
// reason. An empty result is a valid, safe outcome.
func (d *Detector) Detect(candidate rules.Rule, existing []rules.Rule, excludeID string) []Overlap {
	var found []Overlap

	for i := range existing {
		other := &existing[i]
		if !other.Enabled {
			continue
		}
		if excludeID != "" && other.ID == excludeID {
			continue
		}
		if structurallyIdentical(&candidate, other) {
			continue
		}

		if overlap, ok := d.compare(&candidate, other); ok {
			found = append(found, overlap)
		}
	}

	d.logger.Debug().
		Str("candidate", candidate.Name).
		Int("overlaps", len(found)).
		Msg("overlap detection complete")
	return found
}

// compare analyzes one candidate/other pair
func (d *Detector) compare(candidate, other *rules.Rule) (Overlap, bool) {
	candProfiles := profilesFor(candidate)
	otherProfiles := profilesFor(other)

	// Or-operator rules decompose into one profile per disjunct; any
	// overlapping pair of profiles means the rules can collide.
	var candHit, otherHit *profile
	for ci := range candProfiles {
		for oi := range otherProfiles {
			if profilesOverlap(&candProfiles[ci], &otherProfiles[oi]) {
				candHit = &candProfiles[ci]
				otherHit = &otherProfiles[oi]
				break
			}
		}
		if candHit != nil {
			break
		}
	}
	if candHit == nil {
		return Overlap{}, false
	}

	// Exclusions that provably reject everything the other rule matches
	// keep the pair apart.
	if exclusionsDisjoint(candidate.Exclusions, otherHit) ||
		exclusionsDisjoint(other.Exclusions, candHit) {
		return Overlap{}, false
	}

	kind := d.classify(candidate, other, candProfiles, otherProfiles)
	return Overlap{
		CandidateID:     candidate.ID,
		CandidateName:   candidate.Name,
		ConflictingID:   other.ID,
		ConflictingName: other.Name,
		Kind:            kind,
		Description:     describeOverlap(candHit, otherHit, candidate, other),
	}, true
}

// classify decides shadows / shadowed-by / partial. Subsumption is only
// claimed for conjunctive rules; disjunctive (or-operator) rules always
// report a partial overlap.
func (d *Detector) classify(candidate, other *rules.Rule, candProfiles, otherProfiles []profile) Kind {
	if len(candProfiles) != 1 || len(otherProfiles) != 1 {
		return PartialOverlap
	}
	cand, oth := &candProfiles[0], &otherProfiles[0]

	if firesFirst(candidate, other) && subsumes(cand, oth) {
		return Shadows
	}
	if firesFirst(other, candidate) && subsumes(oth, cand) {
		return ShadowedBy
	}
	return PartialOverlap
}

// firesFirst reports whether a is evaluated before b: ascending priority,
// creation order breaking ties.
func firesFirst(a, b *rules.Rule) bool {
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	return a.Seq < b.Seq
}

// structurallyIdentical reports whether two rules express the same policy
func structurallyIdentical(a, b *rules.Rule) bool {
	if a.Conditions.Operator != b.Conditions.Operator ||
		a.Action != b.Action ||
		a.Destination != b.Destination {
		return false
	}
	return sameConditions(a.Conditions.Conditions, b.Conditions.Conditions) &&
		sameConditions(a.Exclusions.Conditions, b.Exclusions.Conditions)
}

func sameConditions(a, b []conditions.Condition) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// describeOverlap builds the human-readable sample description for the UI
func describeOverlap(cand, other *profile, candRule, otherRule *rules.Rule) string {
	var parts []string

	if cand.ext != "" && other.ext != "" && cand.ext == other.ext {
		parts = append(parts, fmt.Sprintf("both match extension %q", cand.ext))
	}
	if cand.kind != "" && other.kind != "" && cand.kind == other.kind {
		parts = append(parts, fmt.Sprintf("both match %s files", cand.kind))
	}
	if cand.location != "" && other.location != "" && cand.location == other.location {
		parts = append(parts, fmt.Sprintf("both match files from %s", cand.location))
	}
	for _, a := range cand.contains {
		for _, b := range other.contains {
			if strings.Contains(a, b) || strings.Contains(b, a) {
				wider, narrower := a, b
				if len(a) < len(b) {
					wider, narrower = b, a
				}
				if wider == narrower {
					parts = append(parts, fmt.Sprintf("both match names containing %q", wider))
				} else {
					parts = append(parts, fmt.Sprintf(
						"names containing %q also contain %q", wider, narrower))
				}
			}
		}
	}
	if cand.hasCreatedDays && other.hasCreatedDays {
		older, younger := cand.createdDays, other.createdDays
		if older < younger {
			older, younger = younger, older
		}
		if older == younger {
			parts = append(parts, fmt.Sprintf("both match files older than %d days", older))
		} else {
			parts = append(parts, fmt.Sprintf(
				"files older than %d days are also older than %d days", older, younger))
		}
	}
	if cand.hasBytes && other.hasBytes {
		larger, smaller := cand.bytes, other.bytes
		if larger < smaller {
			larger, smaller = smaller, larger
		}
		if larger == smaller {
			parts = append(parts, fmt.Sprintf(
				"both match files larger than %s", humanize.IBytes(uint64(larger))))
		} else {
			parts = append(parts, fmt.Sprintf(
				"files larger than %s are also larger than %s",
				humanize.IBytes(uint64(larger)), humanize.IBytes(uint64(smaller))))
		}
	}

	if len(parts) == 0 {
		return fmt.Sprintf("no condition keeps these rules apart: %q requires %s while %q requires %s",
			candRule.Name, describeConditions(candRule),
			otherRule.Name, describeConditions(otherRule))
	}
	return strings.Join(parts, "; ")
}

func describeConditions(r *rules.Rule) string {
	sep := " and "
	if r.Conditions.Operator == rules.Or {
		sep = " or "
	}
	descs := make([]string, 0, len(r.Conditions.Conditions))
	for _, c := range r.Conditions.Conditions {
		descs = append(descs, c.Describe())
	}
	return strings.Join(descs, sep)
}

// kindOf is a handle for tests; extension-implied kinds come from the same
// table the scanner uses.
func kindOf(ext string) files.Kind {
	return files.KindForExtension(ext)
}
