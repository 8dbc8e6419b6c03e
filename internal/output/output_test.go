package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jacoelho/treeq/internal/query"
	"github.com/jacoelho/treeq/internal/tree"
)

func sampleMatches() []query.Match {
	entry := func(id int, name string) query.Match {
		return query.Match{
			Path: tree.PathOf(tree.Named("items"), tree.Keyed("items", tree.KeyOf("id", id))),
			Node: tree.NewEntry("items", tree.KeyOf("id", id), tree.NewLeaf("id", id), tree.NewLeaf("name", name)),
		}
	}
	return []query.Match{entry(1, "bolt"), entry(2, "nut")}
}

func TestNewWithWriter_UnknownFormat(t *testing.T) {
	if _, err := NewWithWriter("xml", &bytes.Buffer{}); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("NewWithWriter() error = %v, want ErrUnknownFormat", err)
	}
}

func TestYAML(t *testing.T) {
	var buf bytes.Buffer
	f, err := NewWithWriter("yaml", &buf)
	if err != nil {
		t.Fatalf("NewWithWriter() error = %v", err)
	}

	for _, m := range sampleMatches() {
		if err := f.Format(m); err != nil {
			t.Fatalf("Format() error = %v", err)
		}
	}

	out := buf.String()
	if got := strings.Count(out, "---\n"); got != 1 {
		t.Errorf("output has %d separators, want 1:\n%s", got, out)
	}
	for _, want := range []string{"path:", "/items/items[id=1]", "/items/items[id=2]", "name: nut"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestJSONLines(t *testing.T) {
	var buf bytes.Buffer
	f, err := NewWithWriter("json", &buf)
	if err != nil {
		t.Fatalf("NewWithWriter() error = %v", err)
	}

	for _, m := range sampleMatches() {
		if err := f.Format(m); err != nil {
			t.Fatalf("Format() error = %v", err)
		}
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), buf.String())
	}

	var got map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &got); err != nil {
		t.Fatalf("line %q is not JSON: %v", lines[1], err)
	}
	want := map[string]any{
		"path":  "/items/items[id=2]",
		"value": map[string]any{"id": float64(2), "name": "nut"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("JSON line mismatch (-want +got):\n%s", diff)
	}
}
