package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/refhistory/internal/report"
	"github.com/fakeyudi/refhistory/internal/tui"
)

var plainOutput bool

var viewCmd = &cobra.Command{
	Use:   "view <file>",
	Short: "View a saved history report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("file not found: %s", path)
			}
			return err
		}

		rep, err := report.ParserFor(path).Parse(data)
		if err != nil {
			return err
		}

		if plainOutput {
			printReport(cmd.OutOrStdout(), rep)
			return nil
		}
		return tui.RunReport(rep, path)
	},
}

// printReport writes a plain-text summary to out.
func printReport(out io.Writer, rep *report.Report) {
	fmt.Fprintln(out, "## Summary")
	fmt.Fprintf(out, "  Source:     %s\n", rep.Source)
	fmt.Fprintf(out, "  Generated:  %s\n", rep.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	if rep.Capacity < 0 {
		fmt.Fprintln(out, "  Capacity:   unbounded")
	} else {
		fmt.Fprintf(out, "  Capacity:   %d\n", rep.Capacity)
	}
	fmt.Fprintln(out, "  Current:")
	fmt.Fprintln(out, indent(rep.Current, "    "))
	fmt.Fprintln(out)

	printEntries(out, "## History", rep.History)
	printEntries(out, "## Redo", rep.Future)
}

func printEntries(out io.Writer, title string, list []report.Entry) {
	fmt.Fprintln(out, title)
	if len(list) == 0 {
		fmt.Fprintln(out, "  (none)")
	} else {
		for i, e := range list {
			fmt.Fprintf(out, "  %d. [%s]\n", i+1, e.Timestamp.Format("2006-01-02 15:04:05"))
			fmt.Fprintln(out, indent(e.Value, "     "))
		}
	}
	fmt.Fprintln(out)
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

func init() {
	viewCmd.Flags().BoolVar(&plainOutput, "plain", false, "plain text output instead of TUI")
	rootCmd.AddCommand(viewCmd)
}
