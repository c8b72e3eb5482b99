package organizer

import (
	"testing"
	"time"

	"github.com/arthur-debert/shelf/pkg/conditions"
	"github.com/arthur-debert/shelf/pkg/destinations"
	"github.com/arthur-debert/shelf/pkg/files"
	"github.com/arthur-debert/shelf/pkg/rules"
	"github.com/arthur-debert/shelf/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

const trashDir = "/home/user/.local/state/shelf/trash"

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

func moveRule(t *testing.T, name string, priority int, ctype conditions.Type, value, destDir string) rules.Rule {
	t.Helper()
	cond, err := conditions.New(ctype, value)
	require.NoError(t, err)
	return rules.Rule{
		ID:   name,
		Name: name,
		Conditions: rules.ConditionSet{
			Conditions: []conditions.Condition{cond},
			Operator:   rules.Single,
		},
		Action:      rules.ActionMove,
		Destination: destinations.NewFolder(destDir, destDir),
		Enabled:     true,
		Priority:    priority,
	}
}

func newPlanner(fsys *testutil.MemoryFS) *Planner {
	resolver := destinations.NewResolver(destinations.PathBookmarks{}, fsys, nil)
	return NewPlanner(resolver, fsys, trashDir)
}

func TestPlan_RoutesMatchedFiles(t *testing.T) {
	fsys := testutil.NewMemoryFS().
		AddDir("/home/user/Documents/Finance").
		AddFile("/home/user/Downloads/invoice.pdf", 1024, now)

	ruleSet := []rules.Rule{
		moveRule(t, "pdfs", 1, conditions.FileExtension, "pdf", "/home/user/Documents/Finance"),
	}

	plan := newPlanner(fsys).Plan(
		[]files.Record{record("invoice.pdf", "pdf"), record("notes.txt", "txt")},
		ruleSet, now)

	require.Len(t, plan.Steps, 1)
	step := plan.Steps[0]
	assert.Equal(t, "pdfs", step.RuleName)
	assert.Equal(t, rules.ActionMove, step.Action)
	assert.Equal(t, "/home/user/Documents/Finance/invoice.pdf", step.Target)

	require.Len(t, plan.Unmatched, 1)
	assert.Equal(t, "notes.txt", plan.Unmatched[0].Name)
	assert.Empty(t, plan.Skips)
	assert.False(t, plan.IsEmpty())
}

func TestPlan_SkipsUnresolvableDestination(t *testing.T) {
	// The destination directory does not exist on disk
	fsys := testutil.NewMemoryFS().
		AddFile("/home/user/Downloads/invoice.pdf", 1024, now)

	ruleSet := []rules.Rule{
		moveRule(t, "pdfs", 1, conditions.FileExtension, "pdf", "/home/user/Gone"),
	}

	plan := newPlanner(fsys).Plan([]files.Record{record("invoice.pdf", "pdf")}, ruleSet, now)

	assert.Empty(t, plan.Steps)
	require.Len(t, plan.Skips, 1)
	assert.Equal(t, destinations.ReasonMissing, plan.Skips[0].Reason)
	assert.Equal(t, "pdfs", plan.Skips[0].RuleName)
	assert.True(t, plan.IsEmpty())
}

func TestPlan_SkipsCollisions(t *testing.T) {
	fsys := testutil.NewMemoryFS().
		AddFile("/home/user/Documents/Finance/invoice.pdf", 99, now).
		AddFile("/home/user/Downloads/invoice.pdf", 1024, now)

	ruleSet := []rules.Rule{
		moveRule(t, "pdfs", 1, conditions.FileExtension, "pdf", "/home/user/Documents/Finance"),
	}

	plan := newPlanner(fsys).Plan([]files.Record{record("invoice.pdf", "pdf")}, ruleSet, now)

	assert.Empty(t, plan.Steps)
	require.Len(t, plan.Skips, 1)
	assert.Equal(t, SkipCollision, plan.Skips[0].Reason)
}

func TestPlan_SkipsSecondClaimOnSameTarget(t *testing.T) {
	// Two files from different folders would land on the same target path
	fsys := testutil.NewMemoryFS().AddDir("/home/user/Documents/Finance")

	ruleSet := []rules.Rule{
		moveRule(t, "pdfs", 1, conditions.FileExtension, "pdf", "/home/user/Documents/Finance"),
	}

	first := record("invoice.pdf", "pdf")
	second := record("invoice.pdf", "pdf")
	second.Path = "/home/user/Desktop/invoice.pdf"
	second.Location = files.LocationDesktop

	plan := newPlanner(fsys).Plan([]files.Record{first, second}, ruleSet, now)

	require.Len(t, plan.Steps, 1)
	require.Len(t, plan.Skips, 1)
	assert.Equal(t, SkipCollision, plan.Skips[0].Reason)
}

func TestPlan_AlreadyInPlace(t *testing.T) {
	fsys := testutil.NewMemoryFS().
		AddFile("/home/user/Downloads/invoice.pdf", 1024, now)

	ruleSet := []rules.Rule{
		moveRule(t, "pdfs", 1, conditions.FileExtension, "pdf", "/home/user/Downloads"),
	}

	plan := newPlanner(fsys).Plan([]files.Record{record("invoice.pdf", "pdf")}, ruleSet, now)

	assert.Empty(t, plan.Steps)
	require.Len(t, plan.Skips, 1)
	assert.Equal(t, SkipAlreadyInPlace, plan.Skips[0].Reason)
}

func TestPlan_DeleteTargetsTrash(t *testing.T) {
	fsys := testutil.NewMemoryFS().
		AddFile("/home/user/Downloads/junk.tmp", 1024, now)

	cond, err := conditions.New(conditions.FileExtension, "tmp")
	require.NoError(t, err)
	ruleSet := []rules.Rule{{
		ID:   "junk",
		Name: "junk",
		Conditions: rules.ConditionSet{
			Conditions: []conditions.Condition{cond},
			Operator:   rules.Single,
		},
		Action:      rules.ActionDelete,
		Destination: destinations.NewTrash(),
		Enabled:     true,
		Priority:    1,
	}}

	plan := newPlanner(fsys).Plan([]files.Record{record("junk.tmp", "tmp")}, ruleSet, now)

	require.Len(t, plan.Steps, 1)
	assert.Equal(t, rules.ActionDelete, plan.Steps[0].Action)
	assert.Equal(t, trashDir+"/junk.tmp", plan.Steps[0].Target)
	assert.Contains(t, plan.Steps[0].Describe(), "trash")
}

func TestPlan_TrashCollisionDisambiguates(t *testing.T) {
	fsys := testutil.NewMemoryFS().
		AddFile(trashDir+"/junk.tmp", 99, now).
		AddFile("/home/user/Downloads/junk.tmp", 1024, now)

	cond, err := conditions.New(conditions.FileExtension, "tmp")
	require.NoError(t, err)
	ruleSet := []rules.Rule{{
		ID:   "junk",
		Name: "junk",
		Conditions: rules.ConditionSet{
			Conditions: []conditions.Condition{cond},
			Operator:   rules.Single,
		},
		Action:      rules.ActionDelete,
		Destination: destinations.NewTrash(),
		Enabled:     true,
		Priority:    1,
	}}

	plan := newPlanner(fsys).Plan([]files.Record{record("junk.tmp", "tmp")}, ruleSet, now)

	require.Len(t, plan.Steps, 1, "trash collisions never skip a delete")
	assert.NotEqual(t, trashDir+"/junk.tmp", plan.Steps[0].Target)
	assert.Contains(t, plan.Steps[0].Target, "junk.tmp.")
}

func TestPlan_FirstMatchWinsAcrossPriorities(t *testing.T) {
	fsys := testutil.NewMemoryFS().
		AddDir("/home/user/Documents/Finance").
		AddDir("/home/user/Documents/Invoices")

	ruleSet := []rules.Rule{
		moveRule(t, "invoices", 2, conditions.NameContains, "invoice", "/home/user/Documents/Invoices"),
		moveRule(t, "pdfs", 1, conditions.FileExtension, "pdf", "/home/user/Documents/Finance"),
	}

	plan := newPlanner(fsys).Plan([]files.Record{record("invoice.pdf", "pdf")}, ruleSet, now)

	require.Len(t, plan.Steps, 1)
	assert.Equal(t, "pdfs", plan.Steps[0].RuleName)
}
