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

// Package notify decides whether an event is surfaced to the user as a
// local notification. Two gates apply: the per-category switch in the
// user's settings and the platform permission the client last reported.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"

	"github.com/efchatnet/winkdrops/backend/models"
)

// Permission mirrors the platform notification permission state
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

func (p Permission) Valid() bool {
	return p == PermissionDefault || p == PermissionGranted || p == PermissionDenied
}

// Outcome records what happened to a single Notify call
type Outcome string

const (
	Delivered    Outcome = "delivered"
	Disabled     Outcome = "disabled"
	NoPermission Outcome = "no_permission"
	Failed       Outcome = "failed"
)

var (
	ErrPermissionBlocked    = errors.New("notification permission has been blocked, enable it in your browser settings")
	ErrPermissionNotGranted = errors.New("notification permission was not granted")
	ErrInvalidPermission    = errors.New("invalid permission state")
)

// Sink surfaces a notification on the user's devices
type Sink interface {
	Show(ctx context.Context, userID string, n models.Notification) error
}

// SinkFunc adapts a function to a Sink
type SinkFunc func(ctx context.Context, userID string, n models.Notification) error

func (f SinkFunc) Show(ctx context.Context, userID string, n models.Notification) error {
	return f(ctx, userID, n)
}

// SettingsStore persists notification settings. Writes are best-effort.
type SettingsStore interface {
	SaveNotificationSettings(ctx context.Context, userID string, settings models.NotificationSettings) error
}

// Status is a point-in-time view of a dispatcher
type Status struct {
	Settings   models.NotificationSettings `json:"settings"`
	Permission Permission                  `json:"permission"`
	Subscribed bool                        `json:"subscribed"`
}

// Dispatcher gates and delivers notifications for one user
type Dispatcher struct {
	mu         sync.Mutex
	userID     string
	settings   models.NotificationSettings
	permission Permission
	subscribed bool
	sink       Sink
	store      SettingsStore
	now        func() time.Time
	version    uint64

	// saveMu orders settings writes; saved is guarded by it
	saveMu sync.Mutex
	saved  uint64
}

// NewDispatcher creates a dispatcher with the given settings. The platform
// permission starts out as "default" until the client reports otherwise.
func NewDispatcher(userID string, settings models.NotificationSettings, sink Sink, store SettingsStore) *Dispatcher {
	return &Dispatcher{
		userID:     userID,
		settings:   settings,
		permission: PermissionDefault,
		sink:       sink,
		store:      store,
		now:        time.Now,
	}
}

// Notify surfaces a notification if the category is enabled and permission
// has been granted. It never prompts for permission and never fails the
// caller: suppressed and failed deliveries are reported through the outcome.
func (d *Dispatcher) Notify(ctx context.Context, title, body string, category models.NotificationCategory) Outcome {
	d.mu.Lock()
	enabled := d.settings.Enabled(category)
	permission := d.permission
	d.mu.Unlock()

	outcome := d.deliver(ctx, enabled, permission, models.Notification{
		Title:     title,
		Body:      body,
		Category:  category,
		Timestamp: d.now(),
	})
	notificationsTotal.WithLabelValues(string(category), string(outcome)).Inc()
	return outcome
}

func (d *Dispatcher) deliver(ctx context.Context, enabled bool, permission Permission, n models.Notification) Outcome {
	if !enabled {
		jww.DEBUG.Printf("[Notify] %s notifications are disabled for user %s", n.Category, d.userID)
		return Disabled
	}
	if permission != PermissionGranted || d.sink == nil {
		return NoPermission
	}
	if err := d.sink.Show(ctx, d.userID, n); err != nil {
		jww.WARN.Printf("[Notify] failed to show %s notification for user %s: %v", n.Category, d.userID, err)
		return Failed
	}
	return Delivered
}

// Settings returns the current per-category switches
func (d *Dispatcher) Settings() models.NotificationSettings {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.settings
}

// UpdateSettings merges patch into the settings and persists the full
// snapshot. A failed write is logged; the in-memory change stands.
func (d *Dispatcher) UpdateSettings(ctx context.Context, patch models.NotificationSettingsPatch) models.NotificationSettings {
	d.mu.Lock()
	d.settings = d.settings.Merge(patch)
	d.version++
	updated, version := d.settings, d.version
	d.mu.Unlock()

	d.saveSettings(ctx, version, updated)
	return updated
}

// saveSettings writes settings unless a newer version already landed
func (d *Dispatcher) saveSettings(ctx context.Context, version uint64, settings models.NotificationSettings) {
	if d.store == nil {
		return
	}
	d.saveMu.Lock()
	defer d.saveMu.Unlock()
	if version <= d.saved {
		jww.DEBUG.Printf("[Notify] skipping stale settings write v%d for user %s", version, d.userID)
		return
	}
	if err := d.store.SaveNotificationSettings(ctx, d.userID, settings); err != nil {
		jww.WARN.Printf("[Notify] failed to persist settings for user %s: %v", d.userID, err)
		return
	}
	d.saved = version
}

// SetPermission records the platform permission state reported by the client
func (d *Dispatcher) SetPermission(p Permission) error {
	if !p.Valid() {
		return errors.Wrapf(ErrInvalidPermission, "%q", p)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.permission = p
	if p != PermissionGranted {
		d.subscribed = false
	}
	return nil
}

// Subscribe completes the explicit, user-initiated subscription flow with
// the result of the client's permission prompt. A permission that was
// already denied cannot be re-prompted from here.
func (d *Dispatcher) Subscribe(result Permission) error {
	if !result.Valid() {
		return errors.Wrapf(ErrInvalidPermission, "%q", result)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.permission == PermissionDenied {
		return ErrPermissionBlocked
	}
	d.permission = result
	if result != PermissionGranted {
		d.subscribed = false
		return ErrPermissionNotGranted
	}
	d.subscribed = true
	jww.INFO.Printf("[Notify] user %s subscribed to notifications", d.userID)
	return nil
}

// Unsubscribe clears the subscribed flag and keeps the permission as is
func (d *Dispatcher) Unsubscribe() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscribed = false
}

func (d *Dispatcher) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Status{
		Settings:   d.settings,
		Permission: d.permission,
		Subscribed: d.subscribed,
	}
}
