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

	data := testData{Name: "test", Value: 42}
	if err := formatter.Format(data); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, `"name": "test"`) {
		t.Errorf("JSON output missing expected field: %s", output)
	}
	if !strings.Contains(output, `"value": 42`) {
		t.Errorf("JSON output missing expected field: %s", output)
	}
}

func TestJSONFormatterCompact(t *testing.T) {
	var buf bytes.Buffer
	formatter, err := NewFormatter("json", &FormatterOptions{
		Writer:  &buf,
		Compact: true,
	})
	if err != nil {
		t.Fatalf("NewFormatter() error = %v", err)
	}

	data := testData{Name: "test", Value: 42}
	if err := formatter.Format(data); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	// Compact JSON should be single line (no indentation)
	if strings.Count(output, "\n") > 1 {
		t.Errorf("Compact JSON should be single line, got: %s", output)
	}
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	formatter, err := NewFormatter("yaml", &FormatterOptions{Writer: &buf})
	if err != nil {
		t.Fatalf("NewFormatter() error = %v", err)
	}

	data := testData{Name: "test", Value: 42}
	if err := formatter.Format(data); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "name: test") {
		t.Errorf("YAML output missing expected field: %s", output)
	}
	if !strings.Contains(output, "value: 42") {
		t.Errorf("YAML output missing expected field: %s", output)
	}
}

type stringer struct{}

func (stringer) String() string { return "from stringer" }

type users []string

func (u users) Table() *Table {
	t := NewTable("NAME")
	for _, name := range u {
		t.AddRow(name)
	}
	return t
}

func TestTextFormatter(t *testing.T) {
	tests := []struct {
		name     string
		data     interface{}
		want     string
		contains []string
	}{
		{
			name: "string data",
			data: "hello world",
			want: "hello world",
		},
		{
			name: "stringer",
			data: stringer{},
			want: "from stringer",
		},
		{
			name:     "struct falls back to yaml",
			data:     testData{Name: "test", Value: 42},
			contains: []string{"name: test", "value: 42"},
		},
		{
			name:     "tabular renders a table",
			data:     users{"Ada", "Grace"},
			contains: []string{"NAME", "Ada", "Grace", "╭"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			formatter, err := NewFormatter("text", &FormatterOptions{Writer: &buf, NoColor: true})
			if err != nil {
				t.Fatalf("NewFormatter() error = %v", err)
			}

			if err := formatter.Format(tt.data); err != nil {
				t.Fatalf("Format() error = %v", err)
			}

			output := strings.TrimSpace(buf.String())
			if tt.want != "" && output != tt.want {
				t.Errorf("Format() output = %q, want %q", output, tt.want)
			}
			for _, c := range tt.contains {
				if !strings.Contains(output, c) {
					t.Errorf("Format() output missing %q:\n%s", c, output)
				}
			}
		})
	}
}

func TestTabularAsJSON(t *testing.T) {
	var buf bytes.Buffer
	formatter, err := NewFormatter("json", &FormatterOptions{Writer: &buf, Compact: true})
	if err != nil {
		t.Fatalf("NewFormatter() error = %v", err)
	}
	if err := formatter.Format(users{"Ada"}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != `["Ada"]` {
		t.Errorf("JSON should encode the value, not the table: %s", got)
	}
}
