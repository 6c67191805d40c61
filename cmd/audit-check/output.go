package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

type renderer func(w io.Writer, results []fileResult) error

func rendererFor(format string) (renderer, error) {
	switch strings.ToLower(format) {
	case formatText:
		return renderText, nil
	case formatJSON:
		return renderJSON, nil
	case formatYAML:
		return renderYAML, nil
	default:
		return nil, fmt.Errorf("invalid output format %q (must be %s, %s or %s)", format, formatText, formatJSON, formatYAML)
	}
}

func renderJSON(w io.Writer, results []fileResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func renderYAML(w io.Writer, results []fileResult) error {
	data, err := yaml.Marshal(results)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func renderText(w io.Writer, results []fileResult) error {
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		if r.Error != "" {
			fmt.Fprintf(&b, "%s: ERROR\n  %s\n", r.Path, r.Error)
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", r.Path, r.Report.OverallStatus)
		for _, issue := range r.Report.Issues {
			fmt.Fprintf(&b, "  - %s: %s\n", issue.Field, issue.Message)
		}
		for _, note := range r.Report.Notes {
			fmt.Fprintf(&b, "  note: %s\n", note)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
