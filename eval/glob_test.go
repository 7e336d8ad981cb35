package eval

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/kestrel-lang/kestrel/value"
)

// TestExpandArgsJoinsPositionsWithoutGlob checks expand's non-glob path:
// evaluated fragments fuse into a single joined word (filepath.Join, per
// original_source's prod) when every position yields exactly one value.
func TestExpandArgsJoinsPositionsWithoutGlob(t *testing.T) {
	i, pool, _ := newTestInterp(t)
	args := list(pool, value.NewString(pool, "hello"), value.Int(1))
	got, err := i.ExpandArgs(value.ModeSingle, args)
	if err != nil {
		t.Fatalf("ExpandArgs: %v", err)
	}
	want := filepath.Join("hello", "1")
	if len(got) != 1 || got[0] != want {
		t.Fatalf("got %v, want [%s]", got, want)
	}
}

// TestExpandArgsBraceExpandsListResult checks that a position whose
// evaluated result is a list fans out into one word per element
// (flattened Cartesian product), per spec §4.10.
func TestExpandArgsBraceExpandsListResult(t *testing.T) {
	i, pool, _ := newTestInterp(t)
	choices := list(pool, value.Int(1), value.Int(2))
	quoted := value.NewCons(pool, i.Intern("quote"), value.NewCons(pool, choices, value.Nil))
	args := list(pool, quoted)
	got, err := i.ExpandArgs(value.ModeSingle, args)
	if err != nil {
		t.Fatalf("ExpandArgs: %v", err)
	}
	sort.Strings(got)
	if len(got) != 2 || got[0] != "1" || got[1] != "2" {
		t.Fatalf("got %v, want [1 2]", got)
	}
}

// TestExpandArgsSingleModeErrorsOnNoMatches checks that a glob fragment
// matching nothing yields a missing-values error in Single mode.
func TestExpandArgsSingleModeErrorsOnNoMatches(t *testing.T) {
	i, pool, _ := newTestInterp(t)
	dir := t.TempDir()
	pattern := filepath.Join(dir, "*.nonexistent-suffix-xyz")
	globForm := list(pool, i.Intern("glob"), value.NewString(pool, pattern))
	args := list(pool, globForm)
	_, err := i.ExpandArgs(value.ModeSingle, args)
	if err == nil {
		t.Fatalf("expected a missing-values error, got nil")
	}
}

// TestExpandArgsGlobMatchesFilesystem checks that a glob fragment actually
// matches real files on disk.
func TestExpandArgsGlobMatchesFilesystem(t *testing.T) {
	i, pool, _ := newTestInterp(t)
	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
	pattern := filepath.Join(dir, "*.txt")
	globForm := list(pool, i.Intern("glob"), value.NewString(pool, pattern))
	args := list(pool, globForm)
	got, err := i.ExpandArgs(value.ModeSingle, args)
	if err != nil {
		t.Fatalf("ExpandArgs: %v", err)
	}
	sort.Strings(got)
	want := []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt")}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %v, want %v", got, want)
	}
}

// TestExpandArgsFusesPositionsIntoOneWord checks that separate argument
// forms combine into a single joined word, matching original_source's
// prod/brace_expand: a literal directory fragment followed by a glob
// pattern fragment joins into one filesystem pattern before matching,
// rather than expanding each position as an independent word.
func TestExpandArgsFusesPositionsIntoOneWord(t *testing.T) {
	i, pool, _ := newTestInterp(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	globForm := list(pool, i.Intern("glob"), value.NewString(pool, "*.txt"))
	args := list(pool, value.NewString(pool, dir), globForm)
	got, err := i.ExpandArgs(value.ModeSingle, args)
	if err != nil {
		t.Fatalf("ExpandArgs: %v", err)
	}
	want := filepath.Join(dir, "a.txt")
	if len(got) != 1 || got[0] != want {
		t.Fatalf("got %v, want [%s]", got, want)
	}
}
