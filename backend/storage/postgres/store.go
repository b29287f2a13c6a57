// Copyright (C) 2025 efchat.net <tj@efchat.net>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package postgres

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	redisStore "github.com/efchatnet/winkdrops/backend/storage/redis"
)

// Store keeps accounts and community experiences in Postgres and hands
// per-user preference snapshots to Redis
type Store struct {
	db    *sql.DB
	redis *redis.Client
	prefs *redisStore.PreferenceStore
}

func NewStore(db *sql.DB, redis *redis.Client) *Store {
	return &Store{
		db:    db,
		redis: redis,
		prefs: redisStore.NewPreferenceStore(redis),
	}
}

// Ping checks both backing services
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return errors.Wrap(err, "database unavailable")
	}
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, "redis unavailable")
	}
	return nil
}
