package plan

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const loginFeature = `Feature: login

  Scenario: valid password
    Given a user

  Scenario Outline: lockout
    Given <n> attempts

    Examples:
      | n |
      | 3 |
      | 5 |
`

const searchFeature = `Feature: search

  Scenario: empty query
    Given nothing
`

func writeFile(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return path
}

// --- Discover Tests ---

func TestDiscover_Directory(t *testing.T) {
	dir := t.TempDir()
	login := writeFile(t, dir, "a/login.feature", loginFeature)
	search := writeFile(t, dir, "b/search.feature", searchFeature)
	writeFile(t, dir, "b/notes.txt", "not a feature")

	p, err := Discover([]string{dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(p.Features) != 2 || p.Features[0] != login || p.Features[1] != search {
		t.Errorf("unexpected features %v", p.Features)
	}

	want := []string{
		login + ":valid password",
		login + ":lockout",
		search + ":empty query",
	}
	if len(p.Expected) != len(want) {
		t.Fatalf("expected %v, got %v", want, p.Expected)
	}
	for i := range want {
		if p.Expected[i] != want[i] {
			t.Errorf("id %d: expected %q, got %q", i, want[i], p.Expected[i])
		}
	}
}

func TestDiscover_CountsSinkMessages(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "login.feature", loginFeature)
	writeFile(t, dir, "search.feature", searchFeature)

	p, err := Discover([]string{dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Обе строки Examples выполняются, хотя идентификатор у них один.
	if p.Pickles != 4 || p.Steps != 4 {
		t.Errorf("expected 4 pickles and 4 steps, got %d and %d", p.Pickles, p.Steps)
	}
	if p.SinkMessages() != 8 {
		t.Errorf("expected 8 sink messages, got %d", p.SinkMessages())
	}
	if len(p.Expected) != 3 {
		t.Errorf("expected 3 distinct ids, got %v", p.Expected)
	}
}

func TestDiscover_File(t *testing.T) {
	path := writeFile(t, t.TempDir(), "search.feature", searchFeature)

	p, err := Discover([]string{path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Expected) != 1 || p.Expected[0] != path+":empty query" {
		t.Errorf("unexpected expected %v", p.Expected)
	}
}

func TestDiscover_NoFeatures(t *testing.T) {
	_, err := Discover([]string{t.TempDir()})
	if !errors.Is(err, ErrNoFeatures) {
		t.Errorf("expected ErrNoFeatures, got %v", err)
	}
}

func TestDiscover_ParseError(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.feature", "this is not gherkin\n")

	_, err := Discover([]string{path})
	if !errors.Is(err, ErrParseFeature) {
		t.Errorf("expected ErrParseFeature, got %v", err)
	}
}

func TestDiscover_MissingPath(t *testing.T) {
	if _, err := Discover([]string{filepath.Join(t.TempDir(), "missing")}); err == nil {
		t.Error("expected error for missing path")
	}
}

// --- Split Tests ---

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		items []string
		n     int
		want  [][]string
	}{
		{"round robin", []string{"a", "b", "c", "d", "e"}, 2, [][]string{{"a", "c", "e"}, {"b", "d"}}},
		{"more workers than items", []string{"a"}, 3, [][]string{{"a"}, nil, nil}},
		{"single worker", []string{"a", "b"}, 1, [][]string{{"a", "b"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Split(tt.items, tt.n)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d slices, got %d", len(tt.want), len(got))
			}
			for i := range tt.want {
				if len(got[i]) != len(tt.want[i]) {
					t.Fatalf("slice %d: expected %v, got %v", i, tt.want[i], got[i])
				}
				for j := range tt.want[i] {
					if got[i][j] != tt.want[i][j] {
						t.Errorf("slice %d: expected %v, got %v", i, tt.want[i], got[i])
					}
				}
			}
		})
	}
}

func TestSplit_InvalidWorkers(t *testing.T) {
	if _, err := Split([]string{"a"}, 0); !errors.Is(err, ErrInvalidWorkers) {
		t.Errorf("expected ErrInvalidWorkers, got %v", err)
	}
}

// --- Manifest Tests ---

func TestLoadManifest_Expected(t *testing.T) {
	path := writeFile(t, t.TempDir(), "plan.yaml", `
features:
  - features/login.feature
expected:
  - "features/login.feature:valid password"
`)

	p, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Expected) != 1 || p.Expected[0] != "features/login.feature:valid password" {
		t.Errorf("unexpected expected %v", p.Expected)
	}
	if len(p.Features) != 1 {
		t.Errorf("unexpected features %v", p.Features)
	}
}

func TestLoadManifest_DiscoversWhenExpectedMissing(t *testing.T) {
	dir := t.TempDir()
	feature := writeFile(t, dir, "search.feature", searchFeature)
	path := writeFile(t, dir, "plan.yaml", "features:\n  - "+feature+"\n")

	p, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Expected) != 1 || p.Expected[0] != feature+":empty query" {
		t.Errorf("unexpected expected %v", p.Expected)
	}
}

func TestLoadManifest_Invalid(t *testing.T) {
	dir := t.TempDir()

	tests := map[string]string{
		"empty":      "",
		"bad yaml":   "expected: [unterminated",
		"wrong type": "expected: 42\n",
	}

	for name, text := range tests {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, dir, name+".yaml", text)
			if _, err := LoadManifest(path); !errors.Is(err, ErrInvalidManifest) {
				t.Errorf("expected ErrInvalidManifest, got %v", err)
			}
		})
	}
}

func TestWriteManifest_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	in := &Plan{Features: []string{"a.feature"}, Expected: []string{"a.feature:x"}, Pickles: 1, Steps: 3}

	if err := WriteManifest(path, in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Expected[0] != "a.feature:x" || out.Features[0] != "a.feature" || out.SinkMessages() != 4 {
		t.Errorf("unexpected plan %+v", out)
	}
}
