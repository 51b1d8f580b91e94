package runtime

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// goldenTest runs a .lox file and compares its output to a .expected file.
func goldenTest(t *testing.T, loxPath string) {
	t.Helper()

	expectedPath := strings.TrimSuffix(loxPath, ".lox") + ".expected"

	source, err := os.ReadFile(loxPath)
	if err != nil {
		t.Fatalf("failed to read %s: %v", loxPath, err)
	}

	expected, err := os.ReadFile(expectedPath)
	if err != nil {
		t.Fatalf("failed to read %s: %v", expectedPath, err)
	}

	got, err := runSource(string(source))
	if err != nil {
		t.Fatalf("runtime error: %v", err)
	}

	expectedLines := strings.Split(strings.TrimRight(string(expected), "\n"), "\n")
	gotLines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if diff := cmp.Diff(expectedLines, gotLines); diff != "" {
		t.Errorf("output mismatch for %s (-want +got):\n%s", filepath.Base(loxPath), diff)
	}
}

func TestGolden(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("..", "..", "testdata", "*.lox"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no golden files found")
	}
	for _, f := range files {
		name := strings.TrimSuffix(filepath.Base(f), ".lox")
		t.Run(name, func(t *testing.T) {
			goldenTest(t, f)
		})
	}
}
