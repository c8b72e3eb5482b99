package overlap

import (
	"strings"

	"github.com/arthur-debert/shelf/pkg/conditions"
	"github.com/arthur-debert/shelf/pkg/rules"
)

// profile is the conjunctive constraint summary of a rule (or of one
// disjunct of an or-operator rule). Empty string / absent flag means the
// dimension is unconstrained.
type profile struct {
	ext      string
	kind     string
	location string

	contains []string
	prefixes []string
	suffixes []string

	createdDays    int
	hasCreatedDays bool

	modifiedDays    int
	hasModifiedDays bool

	accessedDays    int
	hasAccessedDays bool

	bytes    int64
	hasBytes bool

	// contradictory is set when the rule's own conditions can never hold
	// together (two different extensions AND'ed, for instance)
	contradictory bool
}

// profilesFor summarizes a rule. Or-operator rules decompose into one
// profile per condition since each disjunct matches independently.
func profilesFor(r *rules.Rule) []profile {
	conds := r.Conditions.Conditions
	if r.Conditions.Operator == rules.Or && len(conds) > 1 {
		profiles := make([]profile, 0, len(conds))
		for i := range conds {
			var p profile
			p.add(conds[i])
			profiles = append(profiles, p)
		}
		return profiles
	}

	var p profile
	for i := range conds {
		p.add(conds[i])
	}
	return []profile{p}
}

// add folds one condition into the profile
func (p *profile) add(c conditions.Condition) {
	switch c.Type() {
	case conditions.FileExtension:
		p.setExt(c.Value())
	case conditions.ExtensionOlderThan:
		ext, _, _ := strings.Cut(c.Value(), ":")
		p.setExt(ext)
		p.raiseCreatedDays(c.Days())
	case conditions.NameContains:
		p.contains = append(p.contains, strings.ToLower(c.Value()))
	case conditions.NameStartsWith:
		p.prefixes = append(p.prefixes, strings.ToLower(c.Value()))
	case conditions.NameEndsWith:
		p.suffixes = append(p.suffixes, strings.ToLower(c.Value()))
	case conditions.DateOlderThan:
		p.raiseCreatedDays(c.Days())
	case conditions.DateModifiedOlderThan:
		if !p.hasModifiedDays || c.Days() > p.modifiedDays {
			p.modifiedDays = c.Days()
		}
		p.hasModifiedDays = true
	case conditions.DateAccessedOlderThan:
		if !p.hasAccessedDays || c.Days() > p.accessedDays {
			p.accessedDays = c.Days()
		}
		p.hasAccessedDays = true
	case conditions.SizeLargerThan:
		if !p.hasBytes || c.Bytes() > p.bytes {
			p.bytes = c.Bytes()
		}
		p.hasBytes = true
	case conditions.FileKind:
		if p.kind != "" && p.kind != c.Value() {
			p.contradictory = true
		}
		p.kind = c.Value()
	case conditions.SourceLocation:
		if p.location != "" && p.location != c.Value() {
			p.contradictory = true
		}
		p.location = c.Value()
	}
}

func (p *profile) setExt(ext string) {
	if p.ext != "" && p.ext != ext {
		p.contradictory = true
	}
	p.ext = ext
}

func (p *profile) raiseCreatedDays(days int) {
	if !p.hasCreatedDays || days > p.createdDays {
		p.createdDays = days
	}
	p.hasCreatedDays = true
}

// profilesOverlap reports whether some file could satisfy both profiles.
// Only the decidable dimensions can prove disjointness; substrings and
// open-ended thresholds never can, so they contribute false, never true,
// to the "provably apart" verdict.
func profilesOverlap(a, b *profile) bool {
	if a.contradictory || b.contradictory {
		return false
	}

	if a.ext != "" && b.ext != "" && a.ext != b.ext {
		return false
	}

	// An extension pins the derived kind, so a conflicting kind constraint
	// is decidably disjoint.
	if a.ext != "" && b.kind != "" && string(kindOf(a.ext)) != b.kind {
		return false
	}
	if b.ext != "" && a.kind != "" && string(kindOf(b.ext)) != a.kind {
		return false
	}
	if a.kind != "" && b.kind != "" && a.kind != b.kind {
		return false
	}

	if a.location != "" && b.location != "" && a.location != b.location {
		return false
	}

	// Two prefix requirements only coexist when one extends the other
	for _, pa := range a.prefixes {
		for _, pb := range b.prefixes {
			if !strings.HasPrefix(pa, pb) && !strings.HasPrefix(pb, pa) {
				return false
			}
		}
	}
	for _, sa := range a.suffixes {
		for _, sb := range b.suffixes {
			if !strings.HasSuffix(sa, sb) && !strings.HasSuffix(sb, sa) {
				return false
			}
		}
	}

	return true
}

// subsumes reports whether a's match set contains b's: every constraint a
// imposes must be implied by b's constraints.
func subsumes(a, b *profile) bool {
	if a.contradictory || b.contradictory {
		return false
	}

	if a.ext != "" && b.ext != a.ext {
		return false
	}
	if a.kind != "" {
		impliedByExt := b.ext != "" && string(kindOf(b.ext)) == a.kind
		if b.kind != a.kind && !impliedByExt {
			return false
		}
	}
	if a.location != "" && b.location != a.location {
		return false
	}

	for _, na := range a.contains {
		if !impliesContains(b, na) {
			return false
		}
	}
	for _, pa := range a.prefixes {
		if !anyHasPrefix(b.prefixes, pa) {
			return false
		}
	}
	for _, sa := range a.suffixes {
		if !anyHasSuffix(b.suffixes, sa) {
			return false
		}
	}

	if a.hasCreatedDays && (!b.hasCreatedDays || b.createdDays < a.createdDays) {
		return false
	}
	if a.hasModifiedDays && (!b.hasModifiedDays || b.modifiedDays < a.modifiedDays) {
		return false
	}
	if a.hasAccessedDays && (!b.hasAccessedDays || b.accessedDays < a.accessedDays) {
		return false
	}
	if a.hasBytes && (!b.hasBytes || b.bytes < a.bytes) {
		return false
	}

	return true
}

// impliesContains reports whether the profile guarantees the name contains
// the needle: a required substring, prefix or suffix carrying the needle
// inside it does.
func impliesContains(p *profile, needle string) bool {
	for _, n := range p.contains {
		if strings.Contains(n, needle) {
			return true
		}
	}
	for _, n := range p.prefixes {
		if strings.Contains(n, needle) {
			return true
		}
	}
	for _, n := range p.suffixes {
		if strings.Contains(n, needle) {
			return true
		}
	}
	return false
}

func anyHasPrefix(candidates []string, needle string) bool {
	for _, c := range candidates {
		if strings.HasPrefix(c, needle) {
			return true
		}
	}
	return false
}

func anyHasSuffix(candidates []string, needle string) bool {
	for _, c := range candidates {
		if strings.HasSuffix(c, needle) {
			return true
		}
	}
	return false
}

// exclusionsDisjoint reports whether one rule's exclusions provably reject
// every file the other profile matches; if so the pair can never collide.
func exclusionsDisjoint(exclusions rules.ExclusionSet, other *profile) bool {
	for i := range exclusions.Conditions {
		if impliedByProfile(exclusions.Conditions[i], other) {
			return true
		}
	}
	return false
}

// impliedByProfile reports whether every file matching the profile also
// satisfies the given condition.
func impliedByProfile(c conditions.Condition, p *profile) bool {
	switch c.Type() {
	case conditions.FileExtension:
		return p.ext == c.Value()
	case conditions.FileKind:
		if p.kind == c.Value() {
			return true
		}
		return p.ext != "" && string(kindOf(p.ext)) == c.Value()
	case conditions.SourceLocation:
		return p.location == c.Value()
	case conditions.NameContains:
		return impliesContains(p, strings.ToLower(c.Value()))
	case conditions.NameStartsWith:
		return anyHasPrefix(p.prefixes, strings.ToLower(c.Value()))
	case conditions.NameEndsWith:
		return anyHasSuffix(p.suffixes, strings.ToLower(c.Value()))
	case conditions.DateOlderThan:
		return p.hasCreatedDays && p.createdDays >= c.Days()
	case conditions.DateModifiedOlderThan:
		return p.hasModifiedDays && p.modifiedDays >= c.Days()
	case conditions.DateAccessedOlderThan:
		return p.hasAccessedDays && p.accessedDays >= c.Days()
	case conditions.SizeLargerThan:
		return p.hasBytes && p.bytes >= c.Bytes()
	case conditions.ExtensionOlderThan:
		ext, _, _ := strings.Cut(c.Value(), ":")
		return p.ext == ext && p.hasCreatedDays && p.createdDays >= c.Days()
	}
	return false
}
