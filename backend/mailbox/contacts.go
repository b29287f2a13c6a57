// Copyright (C) 2025 efchat.net <tj@efchat.net>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package mailbox

import (
	"context"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"

	"github.com/efchatnet/winkdrops/backend/models"
)

var (
	ErrContactNotFound  = errors.New("contact not found")
	ErrDuplicateContact = errors.New("a contact with this name and handle already exists")
)

// AddContacts inserts the contacts whose (name, handle) pair is not
// already in the book. Duplicates, against the book or earlier entries of
// the same batch, are dropped without error. A missing or already taken
// id is replaced with a fresh one. Returns what was inserted.
func (s *Store) AddContacts(ctx context.Context, batch []models.Contact) []models.Contact {
	s.mu.Lock()
	seen := make(map[models.ContactKey]struct{}, len(s.contacts)+len(batch))
	taken := make(map[string]struct{}, len(s.contacts)+len(batch))
	for _, c := range s.contacts {
		seen[c.Key()] = struct{}{}
		taken[c.ID] = struct{}{}
	}

	added := make([]models.Contact, 0, len(batch))
	for _, c := range batch {
		if _, dup := seen[c.Key()]; dup {
			continue
		}
		seen[c.Key()] = struct{}{}
		for _, used := taken[c.ID]; c.ID == "" || used; _, used = taken[c.ID] {
			c.ID = s.newID()
		}
		taken[c.ID] = struct{}{}
		added = append(added, c)
	}
	if len(added) == 0 {
		s.mu.Unlock()
		operationsTotal.WithLabelValues("add_contacts", "duplicate").Add(float64(len(batch)))
		return added
	}
	s.contacts = append(s.contacts, added...)
	snap := s.snapshotContactsLocked()
	s.mu.Unlock()

	operationsTotal.WithLabelValues("add_contacts", "applied").Add(float64(len(added)))
	if dropped := len(batch) - len(added); dropped > 0 {
		operationsTotal.WithLabelValues("add_contacts", "duplicate").Add(float64(dropped))
	}
	s.saveContacts(ctx, snap)
	return added
}

// Contacts returns a copy of the contact book in insertion order
func (s *Store) Contacts() []models.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contactsLocked()
}

// DeleteContact removes the contact with id. Unknown ids are a no-op.
func (s *Store) DeleteContact(ctx context.Context, id string) bool {
	s.mu.Lock()
	i := s.contactIndexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.contacts = append(s.contacts[:i], s.contacts[i+1:]...)
	snap := s.snapshotContactsLocked()
	s.mu.Unlock()

	s.saveContacts(ctx, snap)
	return true
}

// SetContactBlocked sets or clears the blocked flag on a contact
func (s *Store) SetContactBlocked(ctx context.Context, id string, blocked bool) (models.Contact, error) {
	s.mu.Lock()
	i := s.contactIndexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return models.Contact{}, errors.Wrapf(ErrContactNotFound, "id %s", id)
	}
	s.contacts[i].IsBlocked = blocked
	updated := s.contacts[i]
	snap := s.snapshotContactsLocked()
	s.mu.Unlock()

	s.saveContacts(ctx, snap)
	return updated, nil
}

// EditContact replaces the stored contact with the same id. An edit that
// would give two contacts the same (name, handle) pair is rejected.
func (s *Store) EditContact(ctx context.Context, c models.Contact) (models.Contact, error) {
	s.mu.Lock()
	i := s.contactIndexLocked(c.ID)
	if i < 0 {
		s.mu.Unlock()
		return models.Contact{}, errors.Wrapf(ErrContactNotFound, "id %s", c.ID)
	}
	for j, other := range s.contacts {
		if j != i && other.Key() == c.Key() {
			s.mu.Unlock()
			return models.Contact{}, ErrDuplicateContact
		}
	}
	s.contacts[i] = c
	snap := s.snapshotContactsLocked()
	s.mu.Unlock()

	s.saveContacts(ctx, snap)
	return c, nil
}

func (s *Store) contactIndexLocked(id string) int {
	for i, c := range s.contacts {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) contactsLocked() []models.Contact {
	return append([]models.Contact{}, s.contacts...)
}

type contactSnapshot struct {
	version  uint64
	contacts []models.Contact
}

func (s *Store) snapshotContactsLocked() contactSnapshot {
	s.contactsVersion++
	return contactSnapshot{version: s.contactsVersion, contacts: s.contactsLocked()}
}

// saveContacts writes snap unless a newer book has already been written.
// Writes are serialized, so the store always ends on the latest book.
func (s *Store) saveContacts(ctx context.Context, snap contactSnapshot) {
	if s.contactStore == nil {
		return
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if snap.version <= s.savedVersion {
		jww.DEBUG.Printf("[Mailbox] skipping stale contact write v%d for user %s", snap.version, s.userID)
		return
	}
	if err := s.contactStore.SaveContacts(ctx, s.userID, snap.contacts); err != nil {
		jww.WARN.Printf("[Mailbox] failed to persist contacts for user %s: %v", s.userID, err)
		return
	}
	s.savedVersion = snap.version
}
