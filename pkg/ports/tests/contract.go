package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/provview/pkg/domain"
	"github.com/aretw0/provview/pkg/ports"
)

// LoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.Loader.
// known lists UUIDs that must resolve to both an action and an artifact document.
func LoaderContractTest(t *testing.T, loader ports.Loader, known []string) {
	t.Helper()
	ctx := context.Background()

	t.Run("RootUUID", func(t *testing.T) {
		if loader.RootUUID() == "" {
			t.Fatal("expected a root uuid")
		}
	})

	t.Run("LoadRoot", func(t *testing.T) {
		action, err := loader.LoadAction(ctx, loader.RootUUID())
		if err != nil {
			t.Fatalf("unexpected error loading root action: %v", err)
		}
		if _, err := domain.DecodeAction(action); err != nil {
			t.Errorf("root action does not decode: %v", err)
		}
		if _, err := loader.LoadArtifact(ctx, loader.RootUUID()); err != nil {
			t.Errorf("unexpected error loading root artifact: %v", err)
		}
	})

	t.Run("LoadKnown", func(t *testing.T) {
		for _, id := range known {
			if _, err := loader.LoadAction(ctx, id); err != nil {
				t.Errorf("action for %s: %v", id, err)
			}
			if _, err := loader.LoadArtifact(ctx, id); err != nil {
				t.Errorf("artifact for %s: %v", id, err)
			}
		}
	})

	t.Run("LoadMissing", func(t *testing.T) {
		_, err := loader.LoadAction(ctx, "00000000-0000-4000-8000-000000000000")
		if !errors.Is(err, domain.ErrMissingProvenance) {
			t.Errorf("expected ErrMissingProvenance, got %v", err)
		}
		_, err = loader.LoadArtifact(ctx, "00000000-0000-4000-8000-000000000000")
		if !errors.Is(err, domain.ErrMissingProvenance) {
			t.Errorf("expected ErrMissingProvenance, got %v", err)
		}
	})
}

// ResultStoreContractTest verifies the ports.ResultStore semantics using two
// distinct sample values.
func ResultStoreContractTest[T any](t *testing.T, store ports.ResultStore[T], first, second T, equal func(a, b T) bool) {
	t.Helper()
	ctx := context.Background()

	if _, err := store.Load(ctx, "missing"); !errors.Is(err, domain.ErrResultNotFound) {
		t.Fatalf("expected ErrResultNotFound, got %v", err)
	}

	if err := store.Save(ctx, "b", first); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(ctx, "a", first); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Load(ctx, "b")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !equal(got, first) {
		t.Error("loaded value differs from saved value")
	}

	if err := store.Save(ctx, "b", second); err != nil {
		t.Fatalf("replace: %v", err)
	}
	got, err = store.Load(ctx, "b")
	if err != nil {
		t.Fatalf("load after replace: %v", err)
	}
	if !equal(got, second) {
		t.Error("save did not replace the previous value")
	}

	ids, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("expected [a b], got %v", ids)
	}

	if err := store.Delete(ctx, "b"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Load(ctx, "b"); !errors.Is(err, domain.ErrResultNotFound) {
		t.Errorf("expected ErrResultNotFound after delete, got %v", err)
	}
}
