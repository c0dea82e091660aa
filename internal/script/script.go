// Package script parses and runs replay scripts: line-oriented edit sequences
// used to exercise a history controller from the command line.
//
//	# comments and blank lines are ignored
//	set dark
//	set "two words"
//	undo
//	redo
//	capacity 3
//	pause
//	resume
//	clear
//	tick
package script

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Op is a script instruction.
type Op string

const (
	OpSet      Op = "set"
	OpUndo     Op = "undo"
	OpRedo     Op = "redo"
	OpClear    Op = "clear"
	OpCapacity Op = "capacity"
	OpPause    Op = "pause"
	OpResume   Op = "resume"
	OpTick     Op = "tick"
)

// ErrUnknownCommand is wrapped by SyntaxError for unrecognised instructions.
var ErrUnknownCommand = errors.New("unknown command")

// Step is one parsed instruction.
type Step struct {
	Line  int
	Op    Op
	Value string // OpSet
	N     int    // OpCapacity
}

// SyntaxError reports a malformed script line.
type SyntaxError struct {
	Line int
	Err  error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Parse reads a whole script.
func Parse(r io.Reader) ([]Step, error) {
	var steps []Step
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		step, err := parseLine(text)
		if err != nil {
			return nil, &SyntaxError{Line: line, Err: err}
		}
		step.Line = line
		steps = append(steps, step)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	return steps, nil
}

func parseLine(text string) (Step, error) {
	word, rest, _ := strings.Cut(text, " ")
	rest = strings.TrimSpace(rest)
	op := Op(strings.ToLower(word))

	switch op {
	case OpSet:
		value, err := parseValue(rest)
		if err != nil {
			return Step{}, err
		}
		return Step{Op: op, Value: value}, nil

	case OpCapacity:
		n, err := strconv.Atoi(rest)
		if err != nil {
			return Step{}, fmt.Errorf("capacity wants an integer, got %q", rest)
		}
		return Step{Op: op, N: n}, nil

	case OpUndo, OpRedo, OpClear, OpPause, OpResume, OpTick:
		if rest != "" {
			return Step{}, fmt.Errorf("%s takes no argument", op)
		}
		return Step{Op: op}, nil
	}
	return Step{}, fmt.Errorf("%w %q", ErrUnknownCommand, word)
}

// parseValue accepts a bare word run or a Go-quoted string.
func parseValue(s string) (string, error) {
	if strings.HasPrefix(s, `"`) || strings.HasPrefix(s, "`") {
		v, err := strconv.Unquote(s)
		if err != nil {
			return "", fmt.Errorf("bad quoted value %s: %w", s, err)
		}
		return v, nil
	}
	return s, nil
}
