package preflight_test

import (
	"os"
	"path/filepath"
	"testing"

	"fitfaker/internal/config"
	"fitfaker/internal/preflight"
)

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()
	if r := preflight.CheckDirectoryAccess("dir", dir); !r.Passed {
		t.Fatalf("writable dir failed: %s", r.Detail)
	}

	missing := filepath.Join(dir, "missing")
	if r := preflight.CheckDirectoryAccess("dir", missing); r.Passed {
		t.Fatal("missing dir passed")
	}

	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if r := preflight.CheckDirectoryAccess("dir", file); r.Passed {
		t.Fatal("regular file passed as directory")
	}
}

func TestCheckFreeSpace(t *testing.T) {
	if r := preflight.CheckFreeSpace("space", t.TempDir()); !r.Passed {
		t.Skipf("test filesystem nearly full: %s", r.Detail)
	}
}

func TestRunAllReportsUnconfiguredSourceDir(t *testing.T) {
	profile := &config.Profile{Name: "zwift", App: "zwift"}
	results := preflight.RunAll(profile, "")
	if len(results) != 1 {
		t.Fatalf("%d results", len(results))
	}
	if results[0].Passed {
		t.Fatal("unconfigured source dir passed")
	}
	if preflight.Passed(results) {
		t.Fatal("Passed true with failing result")
	}
}

func TestRunAllHappyPath(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	profile := &config.Profile{Name: "zwift", App: "zwift", FitFilesDir: src}
	results := preflight.RunAll(profile, out)
	if !preflight.Passed(results) {
		for _, r := range results {
			t.Logf("%s: passed=%v %s", r.Name, r.Passed, r.Detail)
		}
		t.Fatal("checks failed on writable directories")
	}
}
