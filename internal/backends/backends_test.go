package backends

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/timpalpant/holdem-cfr/internal/storetest"
	"github.com/timpalpant/holdem-cfr/sqlstore"
)

func TestOpen(t *testing.T) {
	dir, err := ioutil.TempDir("", "backends-test-")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	ctx := context.Background()
	for _, opts := range []Options{
		{Kind: "memory"},
		{Kind: "leveldb", DSN: filepath.Join(dir, "ldb"), Mode: sqlstore.Drop},
		{Kind: "sqlite", DSN: filepath.Join(dir, "strategy.db"), Table: "strategy", Mode: sqlstore.Drop},
	} {
		t.Run(opts.Kind, func(t *testing.T) {
			s, err := Open(ctx, opts)
			if err != nil {
				t.Fatal(err)
			}
			defer s.Close()

			storetest.Run(t, s)
		})
	}
}

func TestOpen_Unknown(t *testing.T) {
	_, err := Open(context.Background(), Options{Kind: "mongodb"})
	if err == nil || !strings.Contains(err.Error(), "sqlite") {
		t.Errorf("expected error listing known backends, got %v", err)
	}

	if Known("mongodb") || !Known("postgres") {
		t.Error("unexpected Known result")
	}
}

func TestPersistent(t *testing.T) {
	if Persistent("memory") {
		t.Error("memory backend reported as persistent")
	}

	for _, kind := range []string{"leveldb", "sqlite", "postgres"} {
		if !Persistent(kind) {
			t.Errorf("%s backend reported as not persistent", kind)
		}
	}
}

func TestPreparePath(t *testing.T) {
	dir, err := ioutil.TempDir("", "backends-test-")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	missing := filepath.Join(dir, "missing")
	if p, err := PreparePath(missing, sqlstore.Fresh); err != nil || p != missing {
		t.Errorf("expected %s, got %s (%v)", missing, p, err)
	}

	existing := filepath.Join(dir, "existing")
	if err := os.Mkdir(existing, 0755); err != nil {
		t.Fatal(err)
	}

	p, err := PreparePath(existing, sqlstore.Fresh)
	if err != nil {
		t.Fatal(err)
	}

	if p == existing || !strings.HasPrefix(p, existing+"-") {
		t.Errorf("expected fresh sibling of %s, got %s", existing, p)
	}

	if p, err := PreparePath(existing, sqlstore.Drop); err != nil || p != existing {
		t.Errorf("expected %s, got %s (%v)", existing, p, err)
	}

	if _, err := os.Stat(existing); !os.IsNotExist(err) {
		t.Errorf("expected %s to be removed", existing)
	}

	if _, err := PreparePath("", sqlstore.Drop); err == nil {
		t.Error("expected error for empty path")
	}
}
