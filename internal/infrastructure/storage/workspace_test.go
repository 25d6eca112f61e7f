package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSlugEmail(t *testing.T) {
	cases := map[string]string{
		"Dr.Benali@Cabinet.dz":  "dr.benali@cabinet.dz",
		" a b@x.fr ":            "a_20b@x.fr",
		"dr+martin@clinique.fr": "dr_2bmartin@clinique.fr",
		"dr_martin@clinique.fr": "dr_5fmartin@clinique.fr",
		"élise@x.fr":            "_c3_a9lise@x.fr",
		"../../etc":             "_2e._2f.._2fetc",
		"":                      "_",
	}
	for in, want := range cases {
		if got := SlugEmail(in); got != want {
			t.Errorf("SlugEmail(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCabinetDirDistinctPerEmail(t *testing.T) {
	w := NewWorkspaceAt("/data")
	emails := []string{
		"dr+martin@clinique.fr",
		"dr_martin@clinique.fr",
		"dr martin@clinique.fr",
		"dr_20martin@clinique.fr",
		".martin@clinique.fr",
		"_2emartin@clinique.fr",
	}
	seen := map[string]string{}
	for _, email := range emails {
		dir := w.CabinetDir(email)
		if other, ok := seen[dir]; ok {
			t.Fatalf("%q et %q partagent %s", email, other, dir)
		}
		seen[dir] = email
	}
}

func TestSaveStaysInsideCabinetDir(t *testing.T) {
	w := NewWorkspaceAt(t.TempDir())

	path, err := w.Save("admin@cab.fr", DirDocuments, "../../evil.pdf", []byte("%PDF"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	want := filepath.Join(w.CabinetDir("admin@cab.fr"), DirDocuments, "evil.pdf")
	if path != want {
		t.Fatalf("path = %s, want %s", path, want)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "%PDF" {
		t.Fatalf("unexpected content %q, err %v", data, err)
	}

	if _, err := w.Path("admin@cab.fr", "../other", "x.pdf"); err == nil {
		t.Fatal("expected error for sub-directory escaping the cabinet dir")
	}
}

func TestCleanOlderThan(t *testing.T) {
	w := NewWorkspaceAt(t.TempDir())
	oldPath, err := w.Save("a@x.fr", DirExports, "old.xlsx", []byte("x"))
	if err != nil {
		t.Fatal(err)
	}
	newPath, err := w.Save("b@x.fr", DirExports, "new.xlsx", []byte("y"))
	if err != nil {
		t.Fatal(err)
	}

	now := time.Now()
	if err := os.Chtimes(oldPath, now.Add(-48*time.Hour), now.Add(-48*time.Hour)); err != nil {
		t.Fatal(err)
	}

	removed, err := w.CleanOlderThan(DirExports, 24*time.Hour, now)
	if err != nil {
		t.Fatalf("CleanOlderThan: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Fatal("old export should be removed")
	}
	if _, err := os.Stat(newPath); err != nil {
		t.Fatal("recent export should be kept")
	}
}

func TestEnsureCreatesSubdirectories(t *testing.T) {
	base := t.TempDir()
	w := NewWorkspaceAt(base)

	if err := w.Ensure("admin@cab.fr"); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	for _, sub := range []string{DirDocuments, DirExports, DirImages} {
		info, err := os.Stat(filepath.Join(base, "admin@cab.fr", sub))
		if err != nil || !info.IsDir() {
			t.Errorf("%s absent: %v", sub, err)
		}
	}
}
