package report

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// Parser deserializes a rendered report back into structured data.
type Parser interface {
	Parse(data []byte) (*Report, error)
}

// ParserFor picks a parser from the file extension. HTML reports are not
// parseable.
func ParserFor(path string) Parser {
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		return &JSONParser{}
	}
	return &MarkdownParser{}
}

// JSONParser parses a JSON-encoded Report.
type JSONParser struct{}

func (p *JSONParser) Parse(data []byte) (*Report, error) {
	var rep Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("failed to parse JSON report: %w", err)
	}
	return &rep, nil
}

// MarkdownParser parses a Markdown-rendered Report by extracting the embedded
// base64 JSON payload from the sentinel comments.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(data []byte) (*Report, error) {
	content := string(data)

	if !strings.Contains(content, versionSentinel) {
		return nil, fmt.Errorf("not a valid refhistory report: missing version sentinel")
	}

	start := strings.Index(content, dataPrefix)
	if start == -1 {
		return nil, fmt.Errorf("not a valid refhistory report: missing data payload")
	}
	start += len(dataPrefix)
	end := strings.Index(content[start:], dataSuffix)
	if end == -1 {
		return nil, fmt.Errorf("not a valid refhistory report: malformed data payload")
	}

	jsonBytes, err := base64.StdEncoding.DecodeString(content[start : start+end])
	if err != nil {
		return nil, fmt.Errorf("not a valid refhistory report: corrupted base64 payload: %w", err)
	}

	var rep Report
	if err := json.Unmarshal(jsonBytes, &rep); err != nil {
		return nil, fmt.Errorf("not a valid refhistory report: failed to parse embedded JSON: %w", err)
	}
	return &rep, nil
}
