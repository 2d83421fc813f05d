package ux

import (
	"bytes"
	"strings"
	"testing"
)

type testData struct {
	Name  string `json:"name" yaml:"name"`
	Value int    `json:"value" yaml:"value"`
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		wantErr bool
	}{
		{"json format", "json", false},
		{"yaml format", "yaml", false},
		{"text format", "text", false},
		{"empty format defaults to text", "", false},
		{"unknown format", "xml", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFormatter(tt.format, nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewFormatter() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	formatter, err := NewFormatter("json", &FormatterOptions{Writer: &buf})
	if err != nil {
		t.Fatalf("NewFormatter() error = %v", err)
	}

	data := testData{Name: "coadd", Value: 42}
	if err := formatter.Format(data); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, `"name": "coadd"`) {
		t.Errorf("expected indented JSON with name field, got: %s", output)
	}
	if !strings.Contains(output, `"value": 42`) {
		t.Errorf("expected value field, got: %s", output)
	}
}

func TestJSONFormatterCompact(t *testing.T) {
	var buf bytes.Buffer
	formatter, err := NewFormatter("json", &FormatterOptions{Writer: &buf, Compact: true})
	if err != nil {
		t.Fatalf("NewFormatter() error = %v", err)
	}

	if err := formatter.Format(testData{Name: "coadd", Value: 1}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	if strings.Contains(buf.String(), "\n  ") {
		t.Errorf("compact output should not be indented, got: %s", buf.String())
	}
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	formatter, err := NewFormatter("yaml", &FormatterOptions{Writer: &buf})
	if err != nil {
		t.Fatalf("NewFormatter() error = %v", err)
	}

	if err := formatter.Format(testData{Name: "coadd", Value: 42}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "name: coadd") {
		t.Errorf("expected yaml name field, got: %s", output)
	}
	if !strings.Contains(output, "value: 42") {
		t.Errorf("expected yaml value field, got: %s", output)
	}
}

func TestTextFormatterString(t *testing.T) {
	var buf bytes.Buffer
	formatter, err := NewFormatter("text", &FormatterOptions{Writer: &buf})
	if err != nil {
		t.Fatalf("NewFormatter() error = %v", err)
	}

	if err := formatter.Format("plain line"); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	if buf.String() != "plain line\n" {
		t.Errorf("unexpected text output: %q", buf.String())
	}
}

func TestTextFormatterRejectsPlainStructs(t *testing.T) {
	var buf bytes.Buffer
	formatter, err := NewFormatter("text", &FormatterOptions{Writer: &buf})
	if err != nil {
		t.Fatalf("NewFormatter() error = %v", err)
	}

	if err := formatter.Format(testData{}); err == nil {
		t.Error("expected error for struct without String() method")
	}
}

func TestTextFormatterStringer(t *testing.T) {
	var buf bytes.Buffer
	formatter, err := NewFormatter("text", &FormatterOptions{Writer: &buf})
	if err != nil {
		t.Fatalf("NewFormatter() error = %v", err)
	}

	view := RunView{RunID: "alice_2026_0823_120000"}
	if err := formatter.Format(view); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	if !strings.Contains(buf.String(), "alice_2026_0823_120000") {
		t.Errorf("expected rendered view, got: %q", buf.String())
	}
}
