package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParse(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "doc.yaml", "items: []\n")
	query := writeFile(t, dir, "query.yaml", "select: [items]\n")
	schema := writeFile(t, dir, "schema.yaml", "keys:\n  items: [id]\n")

	tests := []struct {
		name     string
		args     []string
		want     *Config
		wantCode int
		wantErr  bool
	}{
		{
			name: "defaults",
			args: []string{"treeq", "-document", doc, "-query", query},
			want: &Config{
				DocumentFile: doc,
				QueryFile:    query,
				Keys:         map[string][]string{},
				Mode:         ModeEager,
				Format:       FormatYAML,
			},
		},
		{
			name: "all_options",
			args: []string{
				"treeq", "-document", doc, "-query", query, "-schema", schema,
				"-key", "items=id", "-key", "hosts=name, zone",
				"-mode", "LAZY", "-limit", "5", "-rate", "2.5", "-format", "json", "-debug",
			},
			want: &Config{
				DocumentFile: doc,
				QueryFile:    query,
				SchemaFile:   schema,
				Keys:         map[string][]string{"items": {"id"}, "hosts": {"name", "zone"}},
				Mode:         ModeLazy,
				Limit:        5,
				Rate:         2.5,
				Format:       FormatJSON,
				Debug:        true,
			},
		},
		{
			name:    "no_arguments",
			args:    []string{},
			wantErr: true,
		},
		{
			name:    "missing_query",
			args:    []string{"treeq", "-document", doc},
			wantErr: true,
		},
		{
			name:    "missing_file",
			args:    []string{"treeq", "-document", filepath.Join(dir, "nope.yaml"), "-query", query},
			wantErr: true,
		},
		{
			name:    "invalid_mode",
			args:    []string{"treeq", "-document", doc, "-query", query, "-mode", "parallel"},
			wantErr: true,
		},
		{
			name:    "invalid_format",
			args:    []string{"treeq", "-document", doc, "-query", query, "-format", "xml"},
			wantErr: true,
		},
		{
			name:    "negative_limit",
			args:    []string{"treeq", "-document", doc, "-query", query, "-limit", "-1"},
			wantErr: true,
		},
		{
			name:    "invalid_key",
			args:    []string{"treeq", "-document", doc, "-query", query, "-key", "items"},
			wantErr: true,
		},
		{
			name:    "positional_arguments",
			args:    []string{"treeq", "-document", doc, "-query", query, "extra.yaml"},
			wantErr: true,
		},
		{
			name:     "help",
			args:     []string{"treeq", "-h"},
			wantCode: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, result := Parse(tt.args)

			if tt.wantErr {
				if result == nil || result.ExitCode == 0 {
					t.Fatalf("Parse() expected an error result, got %+v", result)
				}
				if !strings.Contains(result.Message, "Usage:") {
					t.Errorf("error message should include usage, got %q", result.Message)
				}
				return
			}

			if tt.want == nil {
				if result == nil || result.ExitCode != tt.wantCode {
					t.Fatalf("Parse() result = %+v, want exit code %d", result, tt.wantCode)
				}
				return
			}

			if result != nil {
				t.Fatalf("Parse() unexpected result: %s", result.Message)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestKeysFlag(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  error
	}{
		{name: "single_field", value: "items=id"},
		{name: "composite", value: "hosts=name,zone"},
		{name: "no_separator", value: "items", want: ErrInvalidKeyFormat},
		{name: "empty_name", value: "=id", want: ErrEmptyKeyName},
		{name: "empty_field", value: "items=id,", want: ErrInvalidKeyFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := make(keysFlag).Set(tt.value)
			if !errors.Is(err, tt.want) {
				t.Errorf("Set(%q) error = %v, want %v", tt.value, err, tt.want)
			}
		})
	}
}

func TestKeysFlag_String(t *testing.T) {
	k := keysFlag{"b": {"x", "y"}, "a": {"id"}}
	if got := k.String(); got != "a=id b=x,y" {
		t.Errorf("String() = %q", got)
	}
}
