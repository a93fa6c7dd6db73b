package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/caltha/wanderlust"
	"github.com/caltha/wanderlust/internal/infrastructure/database/models"
)

const (
	snapshotKey = "appdata"
	versionKey  = "version"
)

// LocalStore reads and writes the whole AppData snapshot to the local
// database, guarded by a version tag. A missing, stale or corrupt
// snapshot silently resets to the default seed.
type LocalStore struct {
	db      *gorm.DB
	version string
}

func NewLocalStore(db *gorm.DB) *LocalStore {
	return &LocalStore{db: db, version: wanderlust.DataVersion}
}

func (s *LocalStore) Load(ctx context.Context) (wanderlust.AppData, error) {

	var tag models.Snapshot
	err := s.db.WithContext(ctx).
		Where("key = ?", versionKey).
		Take(&tag).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return wanderlust.AppData{}, pkgerrors.Wrap(err, "LocalStore.Load: read version tag")
	}

	if tag.Value != s.version {
		slog.Info(
			"local snapshot version mismatch, resetting to seed",
			slog.String("stored", tag.Value),
			slog.String("expected", s.version),
			slog.String("module", "localstore"),
		)
		return s.reset(ctx)
	}

	var blob models.Snapshot
	err = s.db.WithContext(ctx).
		Where("key = ?", snapshotKey).
		Take(&blob).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.reset(ctx)
	}
	if err != nil {
		return wanderlust.AppData{}, pkgerrors.Wrap(err, "LocalStore.Load: read snapshot")
	}

	var data wanderlust.AppData
	if err := json.Unmarshal([]byte(blob.Value), &data); err != nil {
		slog.Warn(
			"local snapshot is corrupt, resetting to seed",
			slog.String("error", err.Error()),
			slog.String("module", "localstore"),
		)
		return s.reset(ctx)
	}

	return data, nil
}

func (s *LocalStore) Save(ctx context.Context, data wanderlust.AppData) error {

	serialized, err := json.Marshal(data)
	if err != nil {
		return pkgerrors.Wrap(err, "LocalStore.Save: marshal snapshot")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entry := range []models.Snapshot{
			{Key: snapshotKey, Value: string(serialized)},
			{Key: versionKey, Value: s.version},
		} {
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&entry).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return pkgerrors.Wrap(err, "LocalStore.Save: write snapshot")
	}

	return nil
}

func (s *LocalStore) reset(ctx context.Context) (wanderlust.AppData, error) {
	seed := wanderlust.DefaultData()
	if err := s.Save(ctx, seed); err != nil {
		return wanderlust.AppData{}, err
	}
	return seed, nil
}
