package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/caltha/wanderlust"
	"github.com/caltha/wanderlust/internal/domain"
)

// RemoteStore mirrors the AppData snapshot to a single shared redis
// key, read and written wholesale. Last writer wins at the document
// granularity.
type RemoteStore struct {
	rdb *redis.Client
	key string
}

func NewRemoteStore(rdb *redis.Client, key string) *RemoteStore {
	if key == "" {
		key = domain.DefaultRemoteKey
	}
	return &RemoteStore{rdb: rdb, key: key}
}

// Fetch reads the shared document. It returns domain.ErrRemoteMissing
// when the document does not exist yet and a domain.SyncError for any
// transport or access failure.
func (s *RemoteStore) Fetch(ctx context.Context) (wanderlust.AppData, error) {

	val, err := s.rdb.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return wanderlust.AppData{}, domain.ErrRemoteMissing
	}
	if err != nil {
		return wanderlust.AppData{}, classifyRemoteErr(err)
	}

	var data wanderlust.AppData
	if err := json.Unmarshal([]byte(val), &data); err != nil {
		return wanderlust.AppData{}, domain.SyncError{Cause: err}
	}

	return data, nil
}

// Seed writes the snapshot when the remote document was missing. It is
// best-effort: failures are logged and never surfaced or retried.
func (s *RemoteStore) Seed(ctx context.Context, data wanderlust.AppData) {
	if err := s.Push(ctx, data); err != nil {
		slog.Warn(
			"failed to seed remote store",
			slog.String("error", err.Error()),
			slog.String("module", "remotestore"),
		)
	}
}

// Push overwrites the shared document with the snapshot.
func (s *RemoteStore) Push(ctx context.Context, data wanderlust.AppData) error {

	serialized, err := json.Marshal(data)
	if err != nil {
		return domain.SyncError{Cause: err}
	}

	if err := s.rdb.Set(ctx, s.key, serialized, 0).Err(); err != nil {
		return classifyRemoteErr(err)
	}

	return nil
}

// classifyRemoteErr distinguishes access-denied replies from other
// transport failures. Both are handled identically, the flag only
// steers logging.
func classifyRemoteErr(err error) error {
	msg := err.Error()
	denied := strings.Contains(msg, "NOAUTH") ||
		strings.Contains(msg, "WRONGPASS") ||
		strings.Contains(msg, "NOPERM")
	return domain.SyncError{Cause: err, Denied: denied}
}
