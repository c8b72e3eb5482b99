package cli

import (
	"embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/arthur-debert/shelf/pkg/errors"
	"github.com/arthur-debert/shelf/pkg/ui"
	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

//go:embed docs/*.md
var docFiles embed.FS

func newDocsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "docs [topic]",
		Short: "Read the built-in documentation",
		Example: `  # List available topics
  shelf docs

  # Read about the rule file format
  shelf docs rules`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return listTopics(cmd)
			}
			return showTopic(cmd, args[0])
		},
	}
}

func listTopics(cmd *cobra.Command) error {
	entries, err := docFiles.ReadDir("docs")
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "embedded docs are unreadable")
	}

	topics := make([]string, 0, len(entries))
	for _, entry := range entries {
		topics = append(topics, strings.TrimSuffix(entry.Name(), ".md"))
	}
	sort.Strings(topics)

	fmt.Fprintln(cmd.OutOrStdout(), "Available topics:")
	for _, topic := range topics {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", topic)
	}
	return nil
}

func showTopic(cmd *cobra.Command, topic string) error {
	content, err := docFiles.ReadFile("docs/" + topic + ".md")
	if err != nil {
		return errors.Newf(errors.ErrNotFound,
			"no such topic %q; run \"shelf docs\" to list topics", topic)
	}

	fmt.Fprint(cmd.OutOrStdout(), renderMarkdown(cmd, string(content)))
	return nil
}

// renderMarkdown renders the topic with glamour in terminal format and
// passes the raw markdown through otherwise.
func renderMarkdown(cmd *cobra.Command, content string) string {
	value, _ := cmd.Root().PersistentFlags().GetString("format")
	format, err := ui.ParseFormat(value)
	if err != nil {
		return content
	}
	if format.Resolve(os.Stdout) != ui.FormatTerminal {
		return content
	}

	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		return content
	}
	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
