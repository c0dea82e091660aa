package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fakeyudi/refhistory/internal/report"
)

func writeScript(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "edits.txt")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func parseJSONReport(t *testing.T, out string) *report.Report {
	t.Helper()
	var rep report.Report
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("output is not a JSON report: %v\n%s", err, out)
	}
	return &rep
}

func reportValues(list []report.Entry) []string {
	out := make([]string, len(list))
	for i, e := range list {
		out[i] = e.Value
	}
	return out
}

func TestReplayJSON(t *testing.T) {
	tmp := isolate(t)
	path := writeScript(t, tmp, "set dark\nundo\nredo\nset dim\n")

	out, err := executeCommand(rootCmd, "replay", path, "--initial", "light", "--format", "json")
	if err != nil {
		t.Fatalf("replay: %v\n%s", err, out)
	}
	rep := parseJSONReport(t, out)
	if rep.Current != "dim" {
		t.Errorf("Current: got %q, want dim", rep.Current)
	}
	if got := strings.Join(reportValues(rep.History), ","); got != "dark,light" {
		t.Errorf("History: got %s, want dark,light", got)
	}
	if len(rep.Future) != 0 {
		t.Errorf("Future: got %v, want empty", reportValues(rep.Future))
	}
	if rep.Capacity != -1 {
		t.Errorf("Capacity: got %d, want -1", rep.Capacity)
	}
}

func TestReplayCapacityFlag(t *testing.T) {
	tmp := isolate(t)
	path := writeScript(t, tmp, "set b\nset c\nset d\n")

	out, err := executeCommand(rootCmd, "replay", path, "--initial", "a", "--capacity", "1", "--format", "json")
	if err != nil {
		t.Fatalf("replay: %v\n%s", err, out)
	}
	rep := parseJSONReport(t, out)
	if got := reportValues(rep.History); len(got) != 1 || got[0] != "c" {
		t.Errorf("History: got %v, want [c]", got)
	}
}

func TestReplayUsesProjectConfig(t *testing.T) {
	tmp := isolate(t)
	if err := os.WriteFile(filepath.Join(tmp, ".refhistoryconfig"), []byte(`{"capacity": 2, "default_format": "json"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	path := writeScript(t, tmp, "set b\nset c\nset d\n")

	out, err := executeCommand(rootCmd, "replay", path, "--initial", "a")
	if err != nil {
		t.Fatalf("replay: %v\n%s", err, out)
	}
	rep := parseJSONReport(t, out)
	if rep.Capacity != 2 || len(rep.History) != 2 {
		t.Errorf("got capacity %d with %d entries, want 2 and 2", rep.Capacity, len(rep.History))
	}
}

func TestReplayOutputFile(t *testing.T) {
	tmp := isolate(t)
	path := writeScript(t, tmp, "set dark\n")
	dest := filepath.Join(tmp, "out.md")

	out, err := executeCommand(rootCmd, "replay", path, "--initial", "light", "-o", dest)
	if err != nil {
		t.Fatalf("replay: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Report written to "+dest) {
		t.Errorf("unexpected output: %q", out)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	rep, err := (&report.MarkdownParser{}).Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rep.Current != "dark" || len(rep.History) != 1 {
		t.Errorf("got %+v", rep)
	}
}

func TestReplayStdin(t *testing.T) {
	isolate(t)
	rootCmd.SetIn(strings.NewReader("set x\nset y\n"))
	defer rootCmd.SetIn(nil)

	out, err := executeCommand(rootCmd, "replay", "-", "--format", "json")
	if err != nil {
		t.Fatalf("replay: %v\n%s", err, out)
	}
	if rep := parseJSONReport(t, out); rep.Current != "y" || len(rep.History) != 2 {
		t.Errorf("got %+v", rep)
	}
}

func TestReplaySyntaxError(t *testing.T) {
	tmp := isolate(t)
	path := writeScript(t, tmp, "set a\nfly away\n")

	out, err := executeCommand(rootCmd, "replay", path)
	if err == nil {
		t.Fatal("expected an error for a bad script")
	}
	if combined := out + err.Error(); !strings.Contains(combined, "line 2") {
		t.Errorf("expected the failing line in %q", combined)
	}
}

func TestReplayMissingScript(t *testing.T) {
	tmp := isolate(t)
	missing := filepath.Join(tmp, "nope.txt")

	_, err := executeCommand(rootCmd, "replay", missing)
	if err == nil || !strings.Contains(err.Error(), "file not found: "+missing) {
		t.Errorf("expected file not found, got %v", err)
	}
}

func TestReplayUnknownFormat(t *testing.T) {
	tmp := isolate(t)
	path := writeScript(t, tmp, "set a\n")

	if _, err := executeCommand(rootCmd, "replay", path, "--format", "pdf"); err == nil {
		t.Error("expected an error for an unknown format")
	}
}

func TestBadLogLevel(t *testing.T) {
	tmp := isolate(t)
	path := writeScript(t, tmp, "set a\n")

	_, err := executeCommand(rootCmd, "replay", path, "--log-level", "loud")
	if err == nil || !strings.Contains(err.Error(), "unknown log level") {
		t.Errorf("expected a log level error, got %v", err)
	}
}
