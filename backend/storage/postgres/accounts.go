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
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/efchatnet/winkdrops/backend/models"
	"github.com/efchatnet/winkdrops/backend/storage"
)

const uniqueViolation = "23505"

const accountColumns = `user_id, name, email, mfa_enabled,
	consent_contact_sync, consent_personalized_ai, consent_data_analytics,
	password_hash, created_at`

// CreateAccount inserts a new account. Emails are stored lower-cased and
// must be unique.
func (s *Store) CreateAccount(ctx context.Context, a models.Account) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.Name, strings.ToLower(a.Email), a.MFAEnabled,
		a.Consents.ContactSync, a.Consents.PersonalizedAI, a.Consents.DataAnalytics,
		a.PasswordHash, a.CreatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return storage.ErrEmailExists
	}
	return err
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	return s.scanAccount(s.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+` FROM accounts
		WHERE email = $1`, strings.ToLower(email)))
}

func (s *Store) GetAccount(ctx context.Context, userID string) (*models.Account, error) {
	return s.scanAccount(s.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+` FROM accounts
		WHERE user_id = $1`, userID))
}

func (s *Store) scanAccount(row *sql.Row) (*models.Account, error) {
	var a models.Account
	err := row.Scan(
		&a.ID, &a.Name, &a.Email, &a.MFAEnabled,
		&a.Consents.ContactSync, &a.Consents.PersonalizedAI, &a.Consents.DataAnalytics,
		&a.PasswordHash, &a.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) UpdateConsents(ctx context.Context, userID string, c models.Consents) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE accounts
		SET consent_contact_sync = $2, consent_personalized_ai = $3, consent_data_analytics = $4
		WHERE user_id = $1`,
		userID, c.ContactSync, c.PersonalizedAI, c.DataAnalytics)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
