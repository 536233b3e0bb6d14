package builder

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"condcomp/internal/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestBuildTransformsAndCopies(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")

	writeFile(t, filepath.Join(src, "app.js"), strings.Join([]string{
		"// #if __DEBUG",
		"console.log('debug');",
		"// #endif",
		"run();",
	}, "\n"))
	writeFile(t, filepath.Join(src, "assets", "data.txt"), "raw bytes\n")

	cfg := config.Default(dir)
	cfg.Values = map[string]interface{}{"__DEBUG": false}
	cfg.WriteMaps = true

	b := New(cfg)
	if err := b.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}

	out, err := os.ReadFile(filepath.Join(dir, "build", "app.js"))
	if err != nil {
		t.Fatalf("missing output: %v", err)
	}
	want := "\n\n\nrun();"
	if string(out) != want {
		t.Errorf("app.js = %q, want %q", out, want)
	}

	copied, err := os.ReadFile(filepath.Join(dir, "build", "assets", "data.txt"))
	if err != nil {
		t.Fatalf("missing copied file: %v", err)
	}
	if string(copied) != "raw bytes\n" {
		t.Errorf("data.txt = %q", copied)
	}

	if _, err := os.Stat(filepath.Join(dir, "build", "app.js.map")); err != nil {
		t.Errorf("missing source map: %v", err)
	}
}

func TestBuildReportsFailuresAndContinues(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")

	writeFile(t, filepath.Join(src, "bad.js"), "// #endif\n")
	writeFile(t, filepath.Join(src, "good.js"), "ok();\n")

	cfg := config.Default(dir)
	b := New(cfg)

	err := b.Build()
	if err == nil {
		t.Fatal("expected Build to report the failing file")
	}
	if _, statErr := os.Stat(filepath.Join(dir, "build", "good.js")); statErr != nil {
		t.Errorf("good.js should still be written: %v", statErr)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "build", "bad.js")); statErr == nil {
		t.Error("bad.js must yield no output")
	}
}

func TestDirectiveStateCarriesAcrossFilesInOneBuild(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")

	// Walk order is lexicographic, so 0_defs.js runs first.
	writeFile(t, filepath.Join(src, "0_defs.js"), "// #set __API 'v2'\n")
	writeFile(t, filepath.Join(src, "1_use.js"), "fetch(__API);\n")

	cfg := config.Default(dir)
	if err := New(cfg).Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}

	out, err := os.ReadFile(filepath.Join(dir, "build", "1_use.js"))
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(out)); got != `fetch("v2");` {
		t.Errorf("1_use.js = %q", got)
	}
}
