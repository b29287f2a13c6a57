// Copyright (C) 2025 efchat.net <tj@efchat.net>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package postgres

import (
	"context"

	"github.com/efchatnet/winkdrops/backend/models"
)

// Preference snapshots are delegated to Redis

func (s *Store) SaveContacts(ctx context.Context, userID string, contacts []models.Contact) error {
	return s.prefs.SaveContacts(ctx, userID, contacts)
}

func (s *Store) LoadContacts(ctx context.Context, userID string) ([]models.Contact, error) {
	return s.prefs.LoadContacts(ctx, userID)
}

func (s *Store) SaveNotificationSettings(ctx context.Context, userID string, settings models.NotificationSettings) error {
	return s.prefs.SaveNotificationSettings(ctx, userID, settings)
}

func (s *Store) LoadNotificationSettings(ctx context.Context, userID string) (models.NotificationSettings, bool, error) {
	return s.prefs.LoadNotificationSettings(ctx, userID)
}

func (s *Store) SetOnboardingCompleted(ctx context.Context, userID string, completed bool) error {
	return s.prefs.SetOnboardingCompleted(ctx, userID, completed)
}

func (s *Store) OnboardingCompleted(ctx context.Context, userID string) (bool, error) {
	return s.prefs.OnboardingCompleted(ctx, userID)
}
