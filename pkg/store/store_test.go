package store

import (
	"os"
	"path/filepath"
	"testing"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestFileStore_EnsureCreatesEmptyCollection(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(dir)

	if err := fs.Ensure("things"); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "things.json"))
	if err != nil {
		t.Fatalf("read backing file: %v", err)
	}
	if string(b) != "[]" {
		t.Fatalf("expected empty collection, got %q", b)
	}

	// idempotent: a second Ensure must not clobber existing content
	if err := fs.Write("things", []byte(`[{"name":"a","count":1}]`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := fs.Ensure("things"); err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	got := LoadAll[record](fs, "things")
	if len(got) != 1 || got[0].Name != "a" {
		t.Fatalf("ensure clobbered content: %+v", got)
	}
}

func TestFileStore_SaveLoadRoundTrip(t *testing.T) {
	fs := NewFileStore(t.TempDir())

	want := []record{{Name: "a", Count: 1}, {Name: "b", Count: 2}}
	if err := SaveAll(fs, "things", want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got := LoadAll[record](fs, "things")
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	// SaveAll replaces, never appends
	if err := SaveAll(fs, "things", []record{{Name: "c", Count: 3}}); err != nil {
		t.Fatalf("save again: %v", err)
	}
	got = LoadAll[record](fs, "things")
	if len(got) != 1 || got[0].Name != "c" {
		t.Fatalf("expected full overwrite, got %+v", got)
	}
}

func TestLoadAll_CorruptContentIsEmpty(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"truncated json", `[{"name":"a"`},
		{"not a list", `{"name":"a"}`},
		{"plain text", `this is not json`},
		{"wrong element type", `["a", "b"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := NewFileStore(t.TempDir())
			if err := fs.Write("things", []byte(tt.content)); err != nil {
				t.Fatalf("write: %v", err)
			}
			got := LoadAll[record](fs, "things")
			if len(got) != 0 {
				t.Fatalf("expected empty collection, got %+v", got)
			}
		})
	}
}

func TestMemStore_BehavesLikeFileStore(t *testing.T) {
	ms := NewMemStore()

	if err := ms.Ensure("things"); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if got := LoadAll[record](ms, "things"); len(got) != 0 {
		t.Fatalf("expected empty collection, got %+v", got)
	}

	want := []record{{Name: "a", Count: 1}}
	if err := SaveAll(ms, "things", want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got := LoadAll[record](ms, "things")
	if len(got) != 1 || got[0] != want[0] {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	if _, err := ms.Read("missing"); err == nil {
		t.Fatal("expected error reading a collection that was never ensured")
	}
}

func TestSaveAll_NilRecordsWriteEmptyList(t *testing.T) {
	ms := NewMemStore()
	if err := SaveAll[record](ms, "things", nil); err != nil {
		t.Fatalf("save: %v", err)
	}
	b, err := ms.Read("things")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "[]" {
		t.Fatalf("expected empty list, got %q", b)
	}
}
