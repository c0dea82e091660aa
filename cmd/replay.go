package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/refhistory/internal/report"
	"github.com/fakeyudi/refhistory/internal/script"
)

var (
	replayFormat   string
	replayOutput   string
	replayInitial  string
	replayCapacity int
)

var replayCmd = &cobra.Command{
	Use:   "replay <script>",
	Short: "Run a replay script and print the resulting history",
	Long: `Run a replay script against an in-memory value and print a report of the
resulting history. Use "-" to read the script from stdin.

Script lines are one of: set <value>, undo, redo, clear, capacity <n>,
pause, resume, tick. Blank lines and lines starting with # are ignored.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		var in io.Reader = cmd.InOrStdin()
		if path != "-" {
			f, err := os.Open(path)
			if err != nil {
				if os.IsNotExist(err) {
					return fmt.Errorf("file not found: %s", path)
				}
				return err
			}
			defer f.Close()
			in = f
		}

		steps, err := script.Parse(in)
		if err != nil {
			return err
		}

		conf := GetConfig()
		capacity := -1
		switch {
		case cmd.Flags().Changed("capacity"):
			capacity = replayCapacity
		case conf.Capacity != nil:
			capacity = *conf.Capacity
		}

		opts, err := conf.HistoryOptions(nil)
		if err != nil {
			return err
		}
		runner := script.NewRunner(replayInitial, capacity, logger, opts...)
		defer runner.History.Close()

		if err := runner.Run(steps); err != nil {
			return err
		}
		logger.Info("replay finished", "steps", runner.Executed(), "history", runner.History.Len())

		// Select renderer based on --format flag or config DefaultFormat.
		format := replayFormat
		if format == "" {
			format = conf.DefaultFormat
		}
		renderer, err := report.ForFormat(format)
		if err != nil {
			return err
		}

		rep := report.FromController(path, runner.Value.Get(), runner.History)
		data, err := renderer.Render(rep)
		if err != nil {
			return fmt.Errorf("render report: %w", err)
		}

		if replayOutput == "" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(replayOutput, data, 0644); err != nil {
			return fmt.Errorf("write output file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", replayOutput)
		return nil
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayFormat, "format", "", "output format: markdown, json or html (default from config)")
	replayCmd.Flags().StringVarP(&replayOutput, "output", "o", "", "write the report to a file instead of stdout")
	replayCmd.Flags().StringVar(&replayInitial, "initial", "", "initial value of the tracked source")
	replayCmd.Flags().IntVar(&replayCapacity, "capacity", -1, "history capacity, negative for unbounded (default from config)")
	rootCmd.AddCommand(replayCmd)
}
