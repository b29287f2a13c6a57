// Copyright (C) 2025 efchat.net <tj@efchat.net>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package session owns the live message state of every signed-in user.
// Each user gets exactly one mailbox and one notification dispatcher,
// created on first use from the persisted preferences.
package session

import (
	"context"
	"sync"

	jww "github.com/spf13/jwalterweatherman"

	"github.com/efchatnet/winkdrops/backend/mailbox"
	"github.com/efchatnet/winkdrops/backend/models"
	"github.com/efchatnet/winkdrops/backend/notify"
	"github.com/efchatnet/winkdrops/backend/storage"
)

type Session struct {
	Mailbox  *mailbox.Store
	Notifier *notify.Dispatcher
}

type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session

	prefs   storage.PreferenceStore
	sink    notify.Sink
	advisor mailbox.Advisor
}

// NewRegistry creates an empty registry. advisor may be nil, in which case
// AI-backed operations report that the service is not configured.
func NewRegistry(prefs storage.PreferenceStore, sink notify.Sink, advisor mailbox.Advisor) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		prefs:    prefs,
		sink:     sink,
		advisor:  advisor,
	}
}

// Get returns the user's session, creating it on first use. Preferences
// that fail to load fall back to defaults. Loading happens outside the
// registry lock; when two callers race on a new user the first insert wins.
func (r *Registry) Get(ctx context.Context, userID string) *Session {
	r.mu.Lock()
	s, ok := r.sessions[userID]
	r.mu.Unlock()
	if ok {
		return s
	}

	created, contacts := r.open(ctx, userID)

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[userID]; ok {
		return s
	}
	r.sessions[userID] = created
	jww.INFO.Printf("[Session] opened session for user %s (%d contacts)", userID, contacts)
	return created
}

// open builds a session from the persisted preferences
func (r *Registry) open(ctx context.Context, userID string) (*Session, int) {
	settings := models.DefaultNotificationSettings()
	var contacts []models.Contact
	if r.prefs != nil {
		loaded, found, err := r.prefs.LoadNotificationSettings(ctx, userID)
		switch {
		case err != nil:
			jww.WARN.Printf("[Session] failed to load notification settings for user %s: %v", userID, err)
		case found:
			settings = loaded
		}

		contacts, err = r.prefs.LoadContacts(ctx, userID)
		if err != nil {
			jww.WARN.Printf("[Session] failed to load contacts for user %s: %v", userID, err)
		}
	}

	var settingsStore notify.SettingsStore
	var contactStore mailbox.ContactStore
	if r.prefs != nil {
		settingsStore = r.prefs
		contactStore = r.prefs
	}

	dispatcher := notify.NewDispatcher(userID, settings, r.sink, settingsStore)
	opts := []mailbox.Option{mailbox.WithContacts(contacts)}
	if contactStore != nil {
		opts = append(opts, mailbox.WithContactStore(contactStore))
	}
	if r.advisor != nil {
		opts = append(opts, mailbox.WithAdvisor(r.advisor))
	}

	return &Session{
		Mailbox:  mailbox.New(userID, dispatcher, opts...),
		Notifier: dispatcher,
	}, len(contacts)
}

// Close drops the user's in-memory state, typically on logout
func (r *Registry) Close(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
