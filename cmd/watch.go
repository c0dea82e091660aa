package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/refhistory/internal/filesource"
	"github.com/fakeyudi/refhistory/internal/history"
	"github.com/fakeyudi/refhistory/internal/report"
	"github.com/fakeyudi/refhistory/internal/tui"
)

var (
	watchPlain  bool
	watchReport string
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Track a file's contents with undo and redo",
	Long: `Track a file's contents. Every change, whether made here or by another
program, is recorded and can be undone or redone.

Opens the TUI when stdin is a terminal. Otherwise, or with --plain, reads
commands from stdin: set <value>, u/undo, r/redo, h/history, c/clear, q/quit.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := filesource.Open(args[0], filesource.WithLogger(logger))
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("file not found: %s", args[0])
			}
			return err
		}

		conf := GetConfig()
		opts, err := conf.HistoryOptions(nil)
		if err != nil {
			return err
		}
		opts = append(opts, history.WithLogger(logger))
		h := history.New[string](file, opts...)
		defer h.Close()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		changes := make(chan struct{}, 1)
		go func() {
			if err := file.Watch(ctx, changes); err != nil {
				logger.Warn("file watch stopped", "path", file.Path(), "error", err)
			}
		}()

		if !watchPlain && term.IsTerminal(os.Stdin.Fd()) {
			err = tui.RunLive(h, file, changes)
		} else {
			err = runPlain(cmd.InOrStdin(), cmd.OutOrStdout(), h, file, changes)
		}
		if err != nil {
			return err
		}

		if watchReport != "" {
			return writeReport(cmd.OutOrStdout(), watchReport, report.FromController(file.Path(), file.Get(), h))
		}
		return nil
	},
}

// runPlain drives h from line commands on in until quit or EOF. File change
// signals are handled on this goroutine so the controller is never touched
// concurrently.
func runPlain(in io.Reader, out io.Writer, h *history.Controller[string], file *filesource.File, changes <-chan struct{}) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	fmt.Fprintf(out, "Watching %s. Commands: set <value>, u, r, h, c, q\n", file.Path())
	for {
		select {
		case <-changes:
			before := h.Len()
			if err := file.Sync(); err != nil {
				logger.Warn("file sync failed", "path", file.Path(), "error", err)
				continue
			}
			if h.Len() != before {
				logger.Debug("external change recorded", "path", file.Path())
			}

		case line, ok := <-lines:
			if !ok {
				return nil
			}
			word, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
			switch strings.ToLower(word) {
			case "":
				continue
			case "q", "quit":
				return nil
			case "set":
				if err := file.Write(rest); err != nil {
					fmt.Fprintf(out, "error: %v\n", err)
					continue
				}
			case "u", "undo":
				if !h.CanUndo() {
					fmt.Fprintln(out, "nothing to undo")
					continue
				}
				if err := h.Undo(); err != nil {
					fmt.Fprintf(out, "error: %v\n", err)
					continue
				}
			case "r", "redo":
				if !h.CanRedo() {
					fmt.Fprintln(out, "nothing to redo")
					continue
				}
				if err := h.Redo(); err != nil {
					fmt.Fprintf(out, "error: %v\n", err)
					continue
				}
			case "h", "history":
				printSnapshots(out, "History", h.History())
				printSnapshots(out, "Redo", h.Future())
				continue
			case "c", "clear":
				h.Clear()
				fmt.Fprintln(out, "history cleared")
				continue
			default:
				fmt.Fprintf(out, "unknown command %q\n", word)
				continue
			}
			if err := file.Err(); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
			fmt.Fprintf(out, "current: %q (%d undo, %d redo)\n", file.Get(), h.Len(), h.FutureLen())
		}
	}
}

func printSnapshots(out io.Writer, title string, snaps []history.Snapshot[string]) {
	fmt.Fprintf(out, "%s:\n", title)
	if len(snaps) == 0 {
		fmt.Fprintln(out, "  (none)")
		return
	}
	for i, s := range snaps {
		fmt.Fprintf(out, "  %d. [%s] %q\n", i+1, s.Timestamp.Format("15:04:05"), s.Value)
	}
}

// writeReport renders rep in the format implied by path's extension.
func writeReport(out io.Writer, path string, rep *report.Report) error {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	renderer, err := report.ForFormat(format)
	if err != nil {
		renderer, err = report.ForFormat(GetConfig().DefaultFormat)
		if err != nil {
			return err
		}
	}
	data, err := renderer.Render(rep)
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	fmt.Fprintf(out, "Report written to %s\n", path)
	return nil
}

func init() {
	watchCmd.Flags().BoolVar(&watchPlain, "plain", false, "line commands on stdin instead of TUI")
	watchCmd.Flags().StringVar(&watchReport, "report", "", "write a report to this path on exit")
	rootCmd.AddCommand(watchCmd)
}
