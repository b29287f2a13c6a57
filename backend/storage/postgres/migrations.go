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

func (s *Store) Migrate() error {
	migrations := []string{
		// Accounts table
		`CREATE TABLE IF NOT EXISTS accounts (
			user_id VARCHAR(255) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(320) NOT NULL UNIQUE,
			mfa_enabled BOOLEAN NOT NULL DEFAULT FALSE,
			consent_contact_sync BOOLEAN NOT NULL DEFAULT TRUE,
			consent_personalized_ai BOOLEAN NOT NULL DEFAULT TRUE,
			consent_data_analytics BOOLEAN NOT NULL DEFAULT TRUE,
			password_hash BYTEA,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		// Anonymous community experiences
		`CREATE TABLE IF NOT EXISTS community_experiences (
			experience_id VARCHAR(255) PRIMARY KEY,
			text TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		// Create index for the newest-first feed
		`CREATE INDEX IF NOT EXISTS idx_community_experiences_created
		ON community_experiences(created_at DESC)`,

		// Note: contacts, notification settings and onboarding state are
		// per-user snapshots kept in Redis
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
