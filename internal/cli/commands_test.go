package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	rootCmd := NewRootCmd()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func writeRules(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shelf.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const twoRules = `
[[rules]]
name = "All PDFs"
priority = 1
action = "move"
destination = "documents"
[[rules.when]]
type = "extension"
value = "pdf"

[[rules]]
name = "PDF invoices"
priority = 2
action = "move"
destination = "documents"
match = "all"
[[rules.when]]
type = "extension"
value = "pdf"
[[rules.when]]
type = "name-contains"
value = "invoice"
`

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "shelf version")
}

func TestRulesCommand_JSON(t *testing.T) {
	path := writeRules(t, twoRules)

	out, err := execute(t, "rules", "--rules", path, "--format", "json")
	require.NoError(t, err)

	var doc []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc, 2)
	assert.Equal(t, "All PDFs", doc[0]["name"], "rules list in evaluation order")
}

func TestRulesCommand_MissingFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shelf.toml")

	out, err := execute(t, "rules", "--rules", path, "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "no rules defined")
}

func TestCheckCommand_ReportsShadowing(t *testing.T) {
	path := writeRules(t, twoRules)

	out, err := execute(t, "check", "--rules", path, "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "All PDFs")
	assert.Contains(t, out, "PDF invoices")
	assert.Contains(t, out, "dead")
}

func TestCheckCommand_SingleRule(t *testing.T) {
	path := writeRules(t, twoRules)

	out, err := execute(t, "check", "--rule", "PDF invoices", "--rules", path, "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "never fires")

	_, err = execute(t, "check", "--rule", "no such rule", "--rules", path)
	require.Error(t, err)
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shelf.toml")

	out, err := execute(t, "init", "--rules", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	// The starter file loads cleanly with every rule disabled
	out, err = execute(t, "rules", "--rules", path, "--format", "json")
	require.NoError(t, err)
	var doc []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.NotEmpty(t, doc)
	for _, rule := range doc {
		assert.Equal(t, false, rule["enabled"])
	}

	// Running init again refuses to overwrite
	_, err = execute(t, "init", "--rules", path)
	require.Error(t, err)
}

func TestCheckCommand_NoOverlaps(t *testing.T) {
	path := writeRules(t, `
[[rules]]
name = "PDFs"
action = "move"
destination = "documents"
[[rules.when]]
type = "extension"
value = "pdf"
`)

	out, err := execute(t, "check", "--rules", path, "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "no overlapping rules")
}

func TestPreviewCommand_ScansGivenDir(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "sorted")
	require.NoError(t, os.Mkdir(dest, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "invoice.pdf"), []byte("x"), 0644))

	path := writeRules(t, `
[[rules]]
name = "PDFs"
action = "move"
destination = "`+dest+`"
[[rules.when]]
type = "extension"
value = "pdf"
`)

	out, err := execute(t, "preview", dir, "--rules", path, "--format", "json")
	require.NoError(t, err)

	var doc struct {
		Steps []struct {
			Rule   string `json:"rule"`
			Target string `json:"target"`
		} `json:"steps"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Steps, 1)
	assert.Equal(t, "PDFs", doc.Steps[0].Rule)
	assert.Equal(t, filepath.Join(dest, "invoice.pdf"), doc.Steps[0].Target)

	// Preview never moves anything
	_, statErr := os.Stat(filepath.Join(dir, "invoice.pdf"))
	assert.NoError(t, statErr)
}

func TestRunCommand_DryRunMovesNothing(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "sorted")
	require.NoError(t, os.Mkdir(dest, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "invoice.pdf"), []byte("x"), 0644))

	path := writeRules(t, `
[[rules]]
name = "PDFs"
action = "move"
destination = "`+dest+`"
[[rules.when]]
type = "extension"
value = "pdf"
`)

	_, err := execute(t, "run", dir, "--dry-run", "--rules", path, "--format", "text")
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "invoice.pdf"))
	assert.NoError(t, statErr)
}

func TestDoctorCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeRules(t, `
[[rules]]
name = "Into the void"
action = "move"
destination = "`+filepath.Join(dir, "missing")+`"
[[rules.when]]
type = "extension"
value = "pdf"
`)

	out, err := execute(t, "doctor", "--rules", path, "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Into the void")
	assert.Contains(t, out, "need attention")
}

func TestDocsCommand(t *testing.T) {
	out, err := execute(t, "docs", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "rules")
	assert.Contains(t, out, "conditions")

	out, err = execute(t, "docs", "rules", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "[[rules]]")

	_, err = execute(t, "docs", "no-such-topic")
	require.Error(t, err)
}

func TestUnknownFormatFlag(t *testing.T) {
	path := writeRules(t, twoRules)
	_, err := execute(t, "rules", "--rules", path, "--format", "yaml")
	require.Error(t, err)
}
