package migrations

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestLoadEmbeddedMigrationsAreOrdered(t *testing.T) {
	all, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(all) < 4 {
		t.Fatalf("expected at least 4 migrations, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Version >= all[i].Version {
			t.Fatalf("migrations not sorted: %s before %s", all[i-1].Version, all[i].Version)
		}
	}
	if !strings.Contains(all[0].SQL, "CREATE TABLE IF NOT EXISTS cabinets") {
		t.Fatalf("first migration should create cabinets")
	}
}

func TestLoadFromSkipsNonSQLFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"m/0002_b.sql": {Data: []byte("SELECT 2")},
		"m/0001_a.sql": {Data: []byte("SELECT 1")},
		"m/README.md":  {Data: []byte("doc")},
		"m/sub/x.sql":  {Data: []byte("SELECT 3")},
	}

	all, err := loadFrom(fsys, "m")
	if err != nil {
		t.Fatalf("loadFrom: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(all))
	}
	if all[0].Version != "0001_a" || all[1].Version != "0002_b" {
		t.Fatalf("unexpected order: %+v", all)
	}
}

func TestPending(t *testing.T) {
	all := []Migration{{Version: "0001"}, {Version: "0002"}, {Version: "0003"}}

	pending := Pending(all, map[string]bool{"0001": true, "0003": true})
	if len(pending) != 1 || pending[0].Version != "0002" {
		t.Fatalf("unexpected pending: %+v", pending)
	}

	if got := Pending(all, nil); len(got) != 3 {
		t.Fatalf("expected all pending, got %d", len(got))
	}
}
