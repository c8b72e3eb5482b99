package engine

import (
	"testing"
	"time"

	"github.com/arthur-debert/shelf/pkg/conditions"
	"github.com/arthur-debert/shelf/pkg/destinations"
	"github.com/arthur-debert/shelf/pkg/files"
	"github.com/arthur-debert/shelf/pkg/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func mustCondition(t *testing.T, ctype conditions.Type, value string) conditions.Condition {
	t.Helper()
	cond, err := conditions.New(ctype, value)
	require.NoError(t, err)
	return cond
}

func singleRule(t *testing.T, name string, priority int, ctype conditions.Type, value, destName string) rules.Rule {
	t.Helper()
	return rules.Rule{
		ID:   name,
		Name: name,
		Conditions: rules.ConditionSet{
			Conditions: []conditions.Condition{mustCondition(t, ctype, value)},
			Operator:   rules.Single,
		},
		Action:      rules.ActionMove,
		Destination: destinations.NewFolder("/home/user/"+destName, destName),
		Enabled:     true,
		Priority:    priority,
	}
}

func record(name, ext string) files.Record {
	return files.Record{
		Name:        name,
		Extension:   ext,
		SizeInBytes: 1024,
		CreatedAt:   now.AddDate(0, 0, -1),
		ModifiedAt:  now.AddDate(0, 0, -1),
		AccessedAt:  now.AddDate(0, 0, -1),
		Path:        "/home/user/Downloads/" + name,
		Kind:        files.KindForExtension(ext),
		Location:    files.LocationDownloads,
	}
}

// financeRules is the two-rule setup from the organizer's canonical example:
// priority 1 routes PDFs to Finance, priority 2 routes invoices to Invoices.
func financeRules(t *testing.T) []rules.Rule {
	return []rules.Rule{
		singleRule(t, "PDFs to Finance", 1, conditions.FileExtension, "pdf", "Documents/Finance"),
		singleRule(t, "Invoices", 2, conditions.NameContains, "invoice", "Documents/Invoices"),
	}
}

func TestEvaluate_FirstMatchWins(t *testing.T) {
	ruleSet := financeRules(t)
	file := record("invoice_march.pdf", "pdf")

	// Both rules match, the higher-priority one wins
	result := New().Evaluate(&file, ruleSet, now)
	require.True(t, result.Matched())
	assert.Equal(t, "PDFs to Finance", result.Rule.Name)
	assert.Equal(t, "Documents/Finance", result.Rule.Destination.DisplayName)
}

func TestEvaluate_FallsThroughToLowerPriority(t *testing.T) {
	ruleSet := financeRules(t)
	file := record("invoice_march.txt", "txt")

	result := New().Evaluate(&file, ruleSet, now)
	require.True(t, result.Matched())
	assert.Equal(t, "Invoices", result.Rule.Name)
	assert.Equal(t, "Documents/Invoices", result.Rule.Destination.DisplayName)
}

func TestEvaluate_NoMatch(t *testing.T) {
	ruleSet := financeRules(t)
	file := record("report.txt", "txt")

	result := New().Evaluate(&file, ruleSet, now)
	assert.False(t, result.Matched())
	assert.Equal(t, NoMatch, result)
}

func TestEvaluate_DisabledRulesNeverMatch(t *testing.T) {
	ruleSet := financeRules(t)
	file := record("statement.pdf", "pdf")
	evaluator := New()

	require.True(t, evaluator.Evaluate(&file, ruleSet, now).Matched())

	// Disabling the only matching rule flips the result to NoMatch
	ruleSet[0].Enabled = false
	result := evaluator.Evaluate(&file, ruleSet, now)
	assert.False(t, result.Matched())
}

func TestEvaluate_ExclusionsOverrideInclusion(t *testing.T) {
	ruleSet := financeRules(t)
	ruleSet[0].Exclusions = rules.ExclusionSet{Conditions: []conditions.Condition{
		mustCondition(t, conditions.NameContains, "draft"),
	}}
	evaluator := New()

	excluded := record("draft_invoice.pdf", "pdf")
	result := evaluator.Evaluate(&excluded, ruleSet, now)
	// The PDF rule is vetoed; the invoice rule still claims the file
	require.True(t, result.Matched())
	assert.Equal(t, "Invoices", result.Rule.Name)

	fullyExcluded := record("draft_notes.pdf", "pdf")
	result = evaluator.Evaluate(&fullyExcluded, ruleSet, now)
	assert.False(t, result.Matched())
}

func TestEvaluate_EmptyConditionSetNeverMatches(t *testing.T) {
	for _, op := range []rules.Operator{rules.Single, rules.And, rules.Or} {
		rule := rules.Rule{
			Name:       "empty",
			Conditions: rules.ConditionSet{Operator: op},
			Enabled:    true,
		}
		file := record("anything.pdf", "pdf")
		result := New().Evaluate(&file, []rules.Rule{rule}, now)
		assert.False(t, result.Matched(), "operator %s", op)
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	ruleSet := financeRules(t)
	file := record("invoice_march.pdf", "pdf")
	evaluator := New()

	first := evaluator.Evaluate(&file, ruleSet, now)
	for i := 0; i < 50; i++ {
		again := evaluator.Evaluate(&file, ruleSet, now)
		assert.Equal(t, first.Rule.Name, again.Rule.Name)
		assert.Equal(t, first.MatchedVia, again.MatchedVia)
	}
}

func TestEvaluate_MatchedVia(t *testing.T) {
	compound := rules.Rule{
		Name: "big old pdfs",
		Conditions: rules.ConditionSet{
			Conditions: []conditions.Condition{
				mustCondition(t, conditions.FileExtension, "pdf"),
				mustCondition(t, conditions.SizeLargerThan, "1KB"),
			},
			Operator: rules.And,
		},
		Enabled:  true,
		Priority: 1,
	}

	file := record("report.pdf", "pdf")
	file.SizeInBytes = 4096
	result := New().Evaluate(&file, []rules.Rule{compound}, now)
	require.True(t, result.Matched())
	assert.Equal(t, rules.And, result.MatchedVia)
}

func TestEvaluateAll(t *testing.T) {
	// Deliberately out of order; EvaluateAll must sort by priority itself
	ruleSet := []rules.Rule{
		singleRule(t, "Invoices", 2, conditions.NameContains, "invoice", "Documents/Invoices"),
		singleRule(t, "PDFs to Finance", 1, conditions.FileExtension, "pdf", "Documents/Finance"),
	}

	records := []files.Record{
		record("invoice_march.pdf", "pdf"),
		record("invoice_march.txt", "txt"),
		record("report.txt", "txt"),
	}

	results := New().EvaluateAll(records, ruleSet, now)
	require.Len(t, results, 3)

	require.True(t, results[0].Result.Matched())
	assert.Equal(t, "PDFs to Finance", results[0].Result.Rule.Name)

	require.True(t, results[1].Result.Matched())
	assert.Equal(t, "Invoices", results[1].Result.Rule.Name)

	assert.False(t, results[2].Result.Matched())
}

func TestEvaluateAll_DoesNotMutateInput(t *testing.T) {
	ruleSet := []rules.Rule{
		singleRule(t, "second", 2, conditions.FileExtension, "pdf", "B"),
		singleRule(t, "first", 1, conditions.FileExtension, "pdf", "A"),
	}

	New().EvaluateAll([]files.Record{record("a.pdf", "pdf")}, ruleSet, now)

	assert.Equal(t, "second", ruleSet[0].Name, "caller's rule order must be preserved")
}

func BenchmarkEvaluate(b *testing.B) {
	var ruleSet []rules.Rule
	for i := 0; i < 200; i++ {
		cond, err := conditions.New(conditions.NameContains, "no-such-file")
		if err != nil {
			b.Fatal(err)
		}
		ruleSet = append(ruleSet, rules.Rule{
			Name: "r",
			Conditions: rules.ConditionSet{
				Conditions: []conditions.Condition{cond},
				Operator:   rules.Single,
			},
			Enabled:  true,
			Priority: i,
		})
	}
	file := record("invoice_march.pdf", "pdf")
	evaluator := New()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		evaluator.Evaluate(&file, ruleSet, now)
	}
}
