package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/caltha/wanderlust"
	"github.com/caltha/wanderlust/internal/domain"
)

var tracer = otel.Tracer("content")

const pushTimeout = 10 * time.Second

// idBumpLimit bounds the collision retry when two items with the same
// title are created within one millisecond.
const idBumpLimit = 100

// ContentUsecase owns the in-memory AppData snapshot and is the only
// path through which it is mutated. Every mutation is saved locally
// before a detached remote push; a push failure never rolls the local
// write back, it only surfaces through SyncStatus.
type ContentUsecase struct {
	local  LocalStore
	remote RemoteStore
	signal Publisher

	mu   sync.RWMutex
	data wanderlust.AppData

	syncMu    sync.Mutex
	pushedSum uint64
	syncErr   error
}

func NewContentUsecase(local LocalStore, remote RemoteStore, signal Publisher) *ContentUsecase {
	return &ContentUsecase{
		local:  local,
		remote: remote,
		signal: signal,
	}
}

// Bootstrap loads the initial snapshot, once per process, before the
// server accepts traffic. The remote document is authoritative when it
// exists; otherwise the local snapshot (or the seed) is adopted, and a
// missing remote document is seeded best-effort.
func (uc *ContentUsecase) Bootstrap(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Content.Usecase.Bootstrap")
	defer span.End()

	data, err := uc.remote.Fetch(ctx)
	switch {
	case err == nil:
		slog.Info("adopted remote snapshot", slog.String("module", "content"))

	case errors.Is(err, domain.ErrNotFound):
		data, err = uc.local.Load(ctx)
		if err != nil {
			return err
		}
		slog.Info("remote snapshot missing, seeding from local", slog.String("module", "content"))
		seedCtx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		seed := data.Clone()
		go func() {
			defer cancel()
			uc.remote.Seed(seedCtx, seed)
		}()

	case errors.Is(err, domain.ErrSync):
		var syncErr domain.SyncError
		if errors.As(err, &syncErr) && syncErr.Denied {
			slog.Warn(
				"remote store access denied, continuing local-only",
				slog.String("error", err.Error()),
				slog.String("module", "content"),
			)
		} else {
			slog.Warn(
				"remote store unreachable, continuing local-only",
				slog.String("error", err.Error()),
				slog.String("module", "content"),
			)
		}
		data, err = uc.local.Load(ctx)
		if err != nil {
			return err
		}

	default:
		return err
	}

	// Materialize both collections up front so read paths never have
	// to allocate under a read lock.
	wanderlust.KindTrip.Collection(&data)
	wanderlust.KindRecipe.Collection(&data)

	uc.mu.Lock()
	uc.data = data
	uc.mu.Unlock()

	uc.syncMu.Lock()
	uc.pushedSum = wanderlust.Sum(data)
	uc.syncMu.Unlock()

	return nil
}

// Snapshot returns a deep copy of the current AppData.
func (uc *ContentUsecase) Snapshot() wanderlust.AppData {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.data.Clone()
}

// Item looks up one item of a kind.
func (uc *ContentUsecase) Item(kind wanderlust.Kind, id string) (wanderlust.ContentItem, error) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	item, ok := kind.Collection(&uc.data)[id]
	if !ok {
		return wanderlust.ContentItem{}, domain.NotFoundError{Resource: kind.Name}
	}
	return item.Clone(), nil
}

// List returns the items of a kind ordered by date descending.
func (uc *ContentUsecase) List(kind wanderlust.Kind) []wanderlust.ContentItem {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return wanderlust.SortedByDate(kind.Collection(&uc.data))
}

// Upsert writes a draft item into the collection of its kind. An empty
// id is derived from the title and the current time; an existing id
// updates in place. The snapshot is saved locally before the method
// returns and pushed to the remote store in the background.
func (uc *ContentUsecase) Upsert(ctx context.Context, kind wanderlust.Kind, draft wanderlust.ContentItem) (wanderlust.ContentItem, error) {
	ctx, span := tracer.Start(ctx, "Content.Usecase.Upsert")
	defer span.End()

	if err := kind.Validate(draft); err != nil {
		return wanderlust.ContentItem{}, err
	}
	kind.Normalize(&draft)

	// an item always carries a block sequence, even an empty one
	if draft.Blocks == nil {
		draft.Blocks = []wanderlust.Block{}
	}

	uc.mu.Lock()
	coll := kind.Collection(&uc.data)
	if draft.ID == "" {
		id, err := deriveID(coll, draft.Title, time.Now())
		if err != nil {
			uc.mu.Unlock()
			return wanderlust.ContentItem{}, err
		}
		draft.ID = id
	}
	coll[draft.ID] = draft.Clone()
	snapshot := uc.data.Clone()
	uc.mu.Unlock()

	if err := uc.local.Save(ctx, snapshot); err != nil {
		return draft, err
	}

	uc.pushAsync(snapshot)
	uc.publish(ctx, wanderlust.Event{Type: "upsert", Kind: kind.Name, ID: draft.ID})

	return draft, nil
}

// deriveID derives a collection-unique id from a title. Identical
// titles within the same millisecond collide on the timestamp suffix,
// so a taken id is bumped with a bounded counter.
func deriveID(coll wanderlust.Collection, title string, at time.Time) (string, error) {
	id := wanderlust.NewItemID(title, at)
	base := id
	for n := 2; ; n++ {
		if _, taken := coll[id]; !taken {
			return id, nil
		}
		if n > idBumpLimit {
			return "", fmt.Errorf("could not derive a free id for %q", title)
		}
		id = base + "-" + strconv.Itoa(n)
	}
}

// Remove deletes an item. A missing id is a no-op, not an error.
func (uc *ContentUsecase) Remove(ctx context.Context, kind wanderlust.Kind, id string) error {
	ctx, span := tracer.Start(ctx, "Content.Usecase.Remove")
	defer span.End()

	uc.mu.Lock()
	coll := kind.Collection(&uc.data)
	_, existed := coll[id]
	delete(coll, id)
	snapshot := uc.data.Clone()
	uc.mu.Unlock()

	if !existed {
		return nil
	}

	if err := uc.local.Save(ctx, snapshot); err != nil {
		return err
	}

	uc.pushAsync(snapshot)
	uc.publish(ctx, wanderlust.Event{Type: "remove", Kind: kind.Name, ID: id})

	return nil
}

// SyncStatus reports whether the last remote push succeeded. The
// message is empty while in sync.
func (uc *ContentUsecase) SyncStatus() (bool, string) {
	uc.syncMu.Lock()
	defer uc.syncMu.Unlock()
	if uc.syncErr == nil {
		return true, ""
	}
	return false, uc.syncErr.Error()
}

// pushAsync mirrors the snapshot to the remote store without blocking
// the caller. Concurrent pushes race; the later write wins at the
// document granularity. Failures are captured into the sync status
// instead of being dropped.
func (uc *ContentUsecase) pushAsync(snapshot wanderlust.AppData) {
	sum := wanderlust.Sum(snapshot)

	uc.syncMu.Lock()
	if sum == uc.pushedSum && uc.syncErr == nil {
		uc.syncMu.Unlock()
		return
	}
	uc.syncMu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		defer cancel()

		err := uc.remote.Push(ctx, snapshot)

		uc.syncMu.Lock()
		defer uc.syncMu.Unlock()

		if err != nil {
			uc.syncErr = err
			var syncErr domain.SyncError
			if errors.As(err, &syncErr) && syncErr.Denied {
				slog.Warn(
					"remote push denied, change is local-only",
					slog.String("error", err.Error()),
					slog.String("module", "content"),
				)
			} else {
				slog.Warn(
					"remote push failed, change is local-only",
					slog.String("error", err.Error()),
					slog.String("module", "content"),
				)
			}
			return
		}

		uc.syncErr = nil
		uc.pushedSum = sum
	}()
}

func (uc *ContentUsecase) publish(ctx context.Context, event wanderlust.Event) {
	if uc.signal == nil {
		return
	}
	if err := uc.signal.Publish(ctx, event); err != nil {
		slog.Debug(
			"failed to publish content event",
			slog.String("error", err.Error()),
			slog.String("module", "content"),
		)
	}
}
