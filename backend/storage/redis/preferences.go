// Copyright (C) 2025 efchat.net <tj@efchat.net>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package redis

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/efchatnet/winkdrops/backend/models"
)

const (
	// Redis key prefixes, one JSON snapshot per user
	contactsPrefix      = "winkdrops:contacts:"              // winkdrops:contacts:{userId}
	settingsPrefix      = "winkdrops:notification_settings:" // winkdrops:notification_settings:{userId}
	onboardingPrefix    = "winkdrops:onboarding_completed:"  // winkdrops:onboarding_completed:{userId}
	notifyChannelPrefix = "winkdrops:notify:"                // pub/sub channel per user
)

type PreferenceStore struct {
	rdb *redis.Client
}

func NewPreferenceStore(rdb *redis.Client) *PreferenceStore {
	return &PreferenceStore{rdb: rdb}
}

// put overwrites key with the JSON encoding of v. Snapshots don't expire.
func (s *PreferenceStore) put(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal %s", key)
	}
	if err := s.rdb.Set(ctx, key, data, 0).Err(); err != nil {
		return errors.Wrapf(err, "failed to store %s", key)
	}
	return nil
}

// get decodes key into v and reports false if the key does not exist
func (s *PreferenceStore) get(ctx context.Context, key string, v interface{}) (bool, error) {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	} else if err != nil {
		return false, errors.Wrapf(err, "failed to load %s", key)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, errors.Wrapf(err, "malformed value at %s", key)
	}
	return true, nil
}

func (s *PreferenceStore) SaveContacts(ctx context.Context, userID string, contacts []models.Contact) error {
	if contacts == nil {
		contacts = []models.Contact{}
	}
	return s.put(ctx, contactsPrefix+userID, contacts)
}

func (s *PreferenceStore) LoadContacts(ctx context.Context, userID string) ([]models.Contact, error) {
	contacts := []models.Contact{}
	if _, err := s.get(ctx, contactsPrefix+userID, &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

func (s *PreferenceStore) SaveNotificationSettings(ctx context.Context, userID string, settings models.NotificationSettings) error {
	return s.put(ctx, settingsPrefix+userID, settings)
}

func (s *PreferenceStore) LoadNotificationSettings(ctx context.Context, userID string) (models.NotificationSettings, bool, error) {
	settings := models.DefaultNotificationSettings()
	found, err := s.get(ctx, settingsPrefix+userID, &settings)
	if err != nil {
		return models.DefaultNotificationSettings(), false, err
	}
	return settings, found, nil
}

func (s *PreferenceStore) SetOnboardingCompleted(ctx context.Context, userID string, completed bool) error {
	return s.put(ctx, onboardingPrefix+userID, completed)
}

func (s *PreferenceStore) OnboardingCompleted(ctx context.Context, userID string) (bool, error) {
	var completed bool
	_, err := s.get(ctx, onboardingPrefix+userID, &completed)
	return completed, err
}
