// Package testutil provides the golden-file helper used by pipeline tests:
// a test renders its result to a JSON-comparable value, and the helper
// diffs it against testdata/<feature>/<name>.golden.json, rewriting the
// file instead when UPDATE_GOLDENS=true is set.
package testutil

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// UpdateGoldens rewrites golden files instead of comparing against them.
// Set via: UPDATE_GOLDENS=true go test ./...
var UpdateGoldens = os.Getenv("UPDATE_GOLDENS") == "true"

// GoldenPath returns the on-disk path for a golden file.
func GoldenPath(feature, name string) string {
	return filepath.Join("testdata", feature, name+".golden.json")
}

// CompareWithGolden compares actual (marshaled to indented JSON) with the
// stored golden file, creating or updating the file in update mode.
func CompareWithGolden(t *testing.T, feature, name string, actual any) {
	t.Helper()

	path := GoldenPath(feature, name)
	actualJSON, err := json.MarshalIndent(actual, "", "  ")
	if err != nil {
		t.Fatalf("marshaling actual value: %v", err)
	}

	if UpdateGoldens {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("creating golden directory: %v", err)
		}
		if err := os.WriteFile(path, append(actualJSON, '\n'), 0o644); err != nil {
			t.Fatalf("writing golden file: %v", err)
		}
		t.Logf("updated golden file %s", path)
		return
	}

	expectedJSON, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("golden file %s does not exist; run with UPDATE_GOLDENS=true to create it", path)
		}
		t.Fatalf("reading golden file: %v", err)
	}

	if !jsonEqual(actualJSON, expectedJSON) {
		t.Errorf("golden mismatch for %s/%s\nexpected:\n%s\nactual:\n%s",
			feature, name, expectedJSON, actualJSON)
	}
}

// jsonEqual compares two JSON documents structurally, ignoring formatting.
func jsonEqual(a, b []byte) bool {
	var av, bv any
	if err := json.Unmarshal(a, &av); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bv); err != nil {
		return false
	}
	aj, _ := json.Marshal(av)
	bj, _ := json.Marshal(bv)
	return bytes.Equal(aj, bj)
}
