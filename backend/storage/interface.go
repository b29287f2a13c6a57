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

package storage

import (
	"context"

	"github.com/pkg/errors"

	"github.com/efchatnet/winkdrops/backend/models"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrEmailExists = errors.New("an account with this email already exists")
)

// PreferenceStore keeps per-user snapshots. Every save overwrites the whole
// value; there is no incremental patching.
type PreferenceStore interface {
	SaveContacts(ctx context.Context, userID string, contacts []models.Contact) error
	LoadContacts(ctx context.Context, userID string) ([]models.Contact, error)

	SaveNotificationSettings(ctx context.Context, userID string, settings models.NotificationSettings) error
	// LoadNotificationSettings reports false when nothing was saved yet
	LoadNotificationSettings(ctx context.Context, userID string) (models.NotificationSettings, bool, error)

	SetOnboardingCompleted(ctx context.Context, userID string, completed bool) error
	OnboardingCompleted(ctx context.Context, userID string) (bool, error)
}

type AccountStore interface {
	CreateAccount(ctx context.Context, account models.Account) error
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	GetAccount(ctx context.Context, userID string) (*models.Account, error)
	UpdateConsents(ctx context.Context, userID string, consents models.Consents) error
}

type CommunityStore interface {
	AddCommunityExperience(ctx context.Context, exp models.CommunityExperience) error
	ListCommunityExperiences(ctx context.Context, limit int) ([]models.CommunityExperience, error)
}

type Store interface {
	PreferenceStore
	AccountStore
	CommunityStore
}
