// Copyright (C) 2025 efchat.net <tj@efchat.net>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efchatnet/winkdrops/backend/models"
)

type recordingSink struct {
	shown []models.Notification
	err   error
}

func (s *recordingSink) Show(_ context.Context, _ string, n models.Notification) error {
	if s.err != nil {
		return s.err
	}
	s.shown = append(s.shown, n)
	return nil
}

type memorySettings struct {
	saved map[string]models.NotificationSettings
	err   error
}

func (m *memorySettings) SaveNotificationSettings(_ context.Context, userID string, s models.NotificationSettings) error {
	if m.err != nil {
		return m.err
	}
	if m.saved == nil {
		m.saved = make(map[string]models.NotificationSettings)
	}
	m.saved[userID] = s
	return nil
}

func granted(t *testing.T, sink Sink, settings models.NotificationSettings) *Dispatcher {
	t.Helper()
	d := NewDispatcher("user-1", settings, sink, nil)
	require.NoError(t, d.SetPermission(PermissionGranted))
	return d
}

func TestNotifyDeliversWhenEnabledAndGranted(t *testing.T) {
	sink := &recordingSink{}
	d := granted(t, sink, models.DefaultNotificationSettings())

	outcome := d.Notify(context.Background(), "Positive Update Received", "body", models.NotifyWinkUpdate)

	assert.Equal(t, Delivered, outcome)
	require.Len(t, sink.shown, 1)
	assert.Equal(t, "Positive Update Received", sink.shown[0].Title)
	assert.Equal(t, models.NotifyWinkUpdate, sink.shown[0].Category)
}

func TestNotifySuppressedByCategorySwitch(t *testing.T) {
	sink := &recordingSink{}
	settings := models.DefaultNotificationSettings()
	settings.CommunityReaction = false
	d := granted(t, sink, settings)

	assert.Equal(t, Disabled, d.Notify(context.Background(), "t", "b", models.NotifyCommunityReaction))
	assert.Empty(t, sink.shown)

	// other categories are unaffected
	assert.Equal(t, Delivered, d.Notify(context.Background(), "t", "b", models.NotifyNewNudge))
}

func TestNotifySkippedWithoutPermission(t *testing.T) {
	for _, p := range []Permission{PermissionDefault, PermissionDenied} {
		sink := &recordingSink{}
		d := NewDispatcher("user-1", models.DefaultNotificationSettings(), sink, nil)
		require.NoError(t, d.SetPermission(p))

		assert.Equal(t, NoPermission, d.Notify(context.Background(), "t", "b", models.NotifyNewWink), p)
		assert.Empty(t, sink.shown)
		// a notification attempt never changes the permission
		assert.Equal(t, p, d.Status().Permission)
	}
}

func TestNotifySinkFailureIsNotPropagated(t *testing.T) {
	sink := &recordingSink{err: errors.New("redis down")}
	d := granted(t, sink, models.DefaultNotificationSettings())

	assert.Equal(t, Failed, d.Notify(context.Background(), "t", "b", models.NotifyNewWink))
}

func TestNotifyUnknownCategoryIsDisabled(t *testing.T) {
	sink := &recordingSink{}
	d := granted(t, sink, models.DefaultNotificationSettings())

	assert.Equal(t, Disabled, d.Notify(context.Background(), "t", "b", models.NotificationCategory("marketing")))
}

func TestUpdateSettingsMergesAndPersists(t *testing.T) {
	store := &memorySettings{}
	d := NewDispatcher("user-1", models.DefaultNotificationSettings(), nil, store)

	off := false
	updated := d.UpdateSettings(context.Background(), models.NotificationSettingsPatch{WinkUpdate: &off})

	assert.False(t, updated.WinkUpdate)
	assert.True(t, updated.NewWink)
	assert.Equal(t, updated, store.saved["user-1"])
	assert.Equal(t, updated, d.Settings())
}

func TestUpdateSettingsKeepsChangeWhenPersistFails(t *testing.T) {
	store := &memorySettings{err: errors.New("unavailable")}
	d := NewDispatcher("user-1", models.DefaultNotificationSettings(), nil, store)

	off := false
	d.UpdateSettings(context.Background(), models.NotificationSettingsPatch{NewNudge: &off})

	assert.False(t, d.Settings().NewNudge)
}

func TestSubscribeFlow(t *testing.T) {
	d := NewDispatcher("user-1", models.DefaultNotificationSettings(), nil, nil)

	err := d.Subscribe(PermissionDefault)
	assert.ErrorIs(t, err, ErrPermissionNotGranted)
	assert.False(t, d.Status().Subscribed)

	require.NoError(t, d.Subscribe(PermissionGranted))
	st := d.Status()
	assert.True(t, st.Subscribed)
	assert.Equal(t, PermissionGranted, st.Permission)

	d.Unsubscribe()
	assert.False(t, d.Status().Subscribed)
}

func TestSubscribeBlockedAfterDenied(t *testing.T) {
	d := NewDispatcher("user-1", models.DefaultNotificationSettings(), nil, nil)
	require.NoError(t, d.SetPermission(PermissionDenied))

	assert.ErrorIs(t, d.Subscribe(PermissionGranted), ErrPermissionBlocked)
	assert.Equal(t, PermissionDenied, d.Status().Permission)
}

func TestSetPermissionRejectsUnknownState(t *testing.T) {
	d := NewDispatcher("user-1", models.DefaultNotificationSettings(), nil, nil)
	assert.ErrorIs(t, d.SetPermission("maybe"), ErrInvalidPermission)
}

// blockingSettings holds the first save until release is closed
type blockingSettings struct {
	mu      sync.Mutex
	writes  []models.NotificationSettings
	calls   int
	entered chan struct{}
	release chan struct{}
}

func (b *blockingSettings) SaveNotificationSettings(_ context.Context, _ string, s models.NotificationSettings) error {
	b.mu.Lock()
	b.calls++
	first := b.calls == 1
	b.mu.Unlock()
	if first {
		close(b.entered)
		<-b.release
	}
	b.mu.Lock()
	b.writes = append(b.writes, s)
	b.mu.Unlock()
	return nil
}

func TestConcurrentSettingsUpdatesPersistLatest(t *testing.T) {
	store := &blockingSettings{entered: make(chan struct{}), release: make(chan struct{})}
	d := NewDispatcher("user-1", models.DefaultNotificationSettings(), nil, store)
	ctx := context.Background()
	off := false

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		d.UpdateSettings(ctx, models.NotificationSettingsPatch{NewWink: &off})
	}()
	<-store.entered

	go func() {
		defer wg.Done()
		d.UpdateSettings(ctx, models.NotificationSettingsPatch{NewNudge: &off})
	}()
	require.Eventually(t, func() bool { return !d.Settings().NewNudge }, time.Second, time.Millisecond)

	close(store.release)
	wg.Wait()

	store.mu.Lock()
	defer store.mu.Unlock()
	require.NotEmpty(t, store.writes)
	last := store.writes[len(store.writes)-1]
	assert.False(t, last.NewWink)
	assert.False(t, last.NewNudge)
}

func TestStaleSettingsWriteIsSkipped(t *testing.T) {
	store := &memorySettings{}
	d := NewDispatcher("user-1", models.DefaultNotificationSettings(), nil, store)

	newer := models.DefaultNotificationSettings()
	newer.WinkUpdate = false
	d.saveSettings(context.Background(), 2, newer)
	d.saveSettings(context.Background(), 1, models.DefaultNotificationSettings())

	assert.False(t, store.saved["user-1"].WinkUpdate)
}
