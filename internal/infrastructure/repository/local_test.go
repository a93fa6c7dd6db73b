package repository

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"github.com/caltha/wanderlust"
	"github.com/caltha/wanderlust/internal/infrastructure/database"
	"github.com/caltha/wanderlust/internal/infrastructure/database/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestLoadEmptyStoreReturnsSeed(t *testing.T) {
	db := openTestDB(t)
	store := NewLocalStore(db)

	data, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if _, ok := data.Trips["indonesia-2024"]; !ok {
		t.Fatal("expected the default seed")
	}

	// the seed is written back together with the version tag
	var tag models.Snapshot
	if err := db.Where("key = ?", versionKey).Take(&tag).Error; err != nil {
		t.Fatalf("version tag not written: %v", err)
	}
	if tag.Value != wanderlust.DataVersion {
		t.Fatalf("unexpected version tag: %s", tag.Value)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	db := openTestDB(t)
	store := NewLocalStore(db)

	data := wanderlust.DefaultData()
	data.Recipes["pho-1"] = wanderlust.ContentItem{ID: "pho-1", Title: "Pho", Country: "Vietnam"}

	if err := store.Save(context.Background(), data); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.Recipes["pho-1"].Title != "Pho" {
		t.Fatal("round-trip lost the recipe")
	}
}

func TestStaleVersionTagForcesReset(t *testing.T) {
	db := openTestDB(t)
	store := NewLocalStore(db)

	// persist a snapshot, then age the tag
	data := wanderlust.DefaultData()
	data.Trips["stale-entry"] = wanderlust.ContentItem{ID: "stale-entry", Title: "Stale", Date: "1999", Location: "Nowhere"}
	if err := store.Save(context.Background(), data); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := db.Model(&models.Snapshot{}).Where("key = ?", versionKey).
		Update("value", "old").Error; err != nil {
		t.Fatalf("failed to age tag: %v", err)
	}

	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if _, ok := got.Trips["stale-entry"]; ok {
		t.Fatal("stale snapshot survived a version bump")
	}
	if _, ok := got.Trips["indonesia-2024"]; !ok {
		t.Fatal("reset did not return the seed")
	}
}

func TestCorruptSnapshotResetsSilently(t *testing.T) {
	db := openTestDB(t)
	store := NewLocalStore(db)

	if _, err := store.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if err := db.Model(&models.Snapshot{}).Where("key = ?", snapshotKey).
		Update("value", "{not json").Error; err != nil {
		t.Fatalf("failed to corrupt snapshot: %v", err)
	}

	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load after corruption failed: %v", err)
	}
	if _, ok := got.Trips["indonesia-2024"]; !ok {
		t.Fatal("corrupt snapshot did not reset to seed")
	}
}
