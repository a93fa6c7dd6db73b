package providers

import (
	"github.com/bradfitz/gomemcache/memcache"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/caltha/wanderlust/internal/config"
	"github.com/caltha/wanderlust/internal/infrastructure/database"
)

// NewDatabase opens the local snapshot database. Postgres is used when
// a DSN is configured, the sqlite file otherwise.
func NewDatabase(conf config.Server) (*gorm.DB, error) {
	if conf.PostgresDsn != "" {
		return database.NewPostgres(conf.PostgresDsn)
	}
	return database.NewSQLite(conf.DataPath)
}

// MigrateDatabase applies migrations for the application models.
func MigrateDatabase(db *gorm.DB) error {
	return database.Migrate(db)
}

// NewRedis creates the client for the shared remote document store.
func NewRedis(conf config.Server) *redis.Client {
	return database.NewRedis(conf.RedisAddr, conf.RedisPassword, conf.RedisDB)
}

// NewMemcache creates the rendered-page cache client.
func NewMemcache(addr string) *memcache.Client {
	return database.NewMemcached(addr)
}
