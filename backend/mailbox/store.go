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

// Package mailbox holds one user's message state: the inbox, the outbox,
// the community feed and the contact book.
//
// Messages live in a single arena keyed by id. The inbox and outbox are
// ordered lists of ids into that arena, most recent first, so a wink that
// is both sent and received is one record and every update to it touches
// exactly one place.
//
// Every exported operation takes the store lock for its whole state
// transition. Notifications and persistence writes run after the lock is
// released and never roll back the in-memory change.
package mailbox

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"

	"github.com/efchatnet/winkdrops/backend/models"
	"github.com/efchatnet/winkdrops/backend/notify"
)

var (
	ErrInvalidMessage = errors.New("message payload does not match its type")
	ErrIDConflict     = errors.New("a different message already uses this id")
	ErrEmptyRecipient = errors.New("recipient is required")
	ErrEmptyMessage   = errors.New("message is required")
)

// Notifier surfaces a notification as a side effect of a mutation
type Notifier interface {
	Notify(ctx context.Context, title, body string, category models.NotificationCategory) notify.Outcome
}

// ContactStore persists the contact book as a full snapshot
type ContactStore interface {
	SaveContacts(ctx context.Context, userID string, contacts []models.Contact) error
}

type Store struct {
	mu sync.Mutex

	userID  string
	records map[string]*models.Message
	inbox   []string
	outbox  []string

	community []*models.CommunityWink
	contacts  []models.Contact
	// bumped under mu on every contact book change
	contactsVersion uint64

	// saveMu orders contact writes; savedVersion is guarded by it
	saveMu       sync.Mutex
	savedVersion uint64

	notifier     Notifier
	contactStore ContactStore
	advisor      Advisor
	now          func() time.Time
	newID        func() string
	seq          uint64
}

type Option func(*Store)

// WithClock overrides time.Now, mostly for tests
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the message id generator
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithContacts seeds the contact book, typically from persisted state
func WithContacts(contacts []models.Contact) Option {
	return func(s *Store) { s.contacts = append([]models.Contact(nil), contacts...) }
}

// WithContactStore sets where contact snapshots are written
func WithContactStore(cs ContactStore) Option {
	return func(s *Store) { s.contactStore = cs }
}

// WithCommunity seeds the community feed
func WithCommunity(feed []*models.CommunityWink) Option {
	return func(s *Store) {
		for _, cw := range feed {
			if cw == nil || !cw.Message.IsWink() {
				continue
			}
			s.community = append(s.community, cloneCommunityWink(cw))
		}
	}
}

// New creates an empty mailbox for userID
func New(userID string, notifier Notifier, opts ...Option) *Store {
	s := &Store{
		userID:   userID,
		records:  make(map[string]*models.Message),
		notifier: notifier,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) UserID() string {
	return s.userID
}

// AddToOutbox inserts msg at the front of the outbox. A message whose id
// already names a record of the same type is linked to that record.
func (s *Store) AddToOutbox(msg *models.Message) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.admitLocked(msg)
	if err != nil {
		return nil, err
	}
	if !contains(s.outbox, rec.ID) {
		s.outbox = prepend(s.outbox, rec.ID)
	}
	operationsTotal.WithLabelValues("add_outbox", "applied").Inc()
	return rec.Clone(), nil
}

// Receive inserts msg at the front of the inbox and raises the matching
// new-message notification.
func (s *Store) Receive(ctx context.Context, msg *models.Message) (*models.Message, error) {
	s.mu.Lock()
	rec, err := s.admitLocked(msg)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if !contains(s.inbox, rec.ID) {
		s.inbox = prepend(s.inbox, rec.ID)
	}
	out := rec.Clone()
	s.mu.Unlock()

	operationsTotal.WithLabelValues("receive", "applied").Inc()

	switch out.Type {
	case models.TypeWink:
		s.notify(ctx, "New Wink Received", "Someone is thinking of you and sent an anonymous Wink.", models.NotifyNewWink)
	case models.TypeNudge:
		s.notify(ctx, "New Nudge", "You received a supportive Nudge.", models.NotifyNewNudge)
	case models.TypeSecondOpinionRequest:
		s.notify(ctx, "New Second Opinion Request",
			"Your opinion is requested for a Wink about "+out.SecondOpinionRequest.OriginalRecipientName+".",
			models.NotifySecondOpinionRequest)
	}
	return out, nil
}

// admitLocked validates msg and stores a copy of it in the arena, or
// returns the existing record with the same id.
func (s *Store) admitLocked(msg *models.Message) (*models.Message, error) {
	if msg == nil || !msg.Valid() {
		return nil, ErrInvalidMessage
	}
	if msg.ID == "" {
		msg = msg.Clone()
		msg.ID = s.newID()
	}
	if existing, ok := s.records[msg.ID]; ok {
		if existing.Type != msg.Type {
			return nil, errors.Wrapf(ErrIDConflict, "id %s", msg.ID)
		}
		return existing, nil
	}
	rec := msg.Clone()
	if rec.Timestamp.IsZero() {
		rec.Timestamp = s.now()
	}
	s.records[rec.ID] = rec
	return rec, nil
}

// SendNudge records a nudge in the outbox. Nudges are fire-and-forget, so
// they are stored already read.
func (s *Store) SendNudge(recipient, message string) (*models.Message, error) {
	if strings.TrimSpace(recipient) == "" {
		return nil, ErrEmptyRecipient
	}
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}
	return s.AddToOutbox(&models.Message{
		Type:   models.TypeNudge,
		IsRead: true,
		Nudge:  &models.Nudge{Recipient: recipient, Message: message},
	})
}

// Inbox returns copies of the inbox messages, most recent first
func (s *Store) Inbox() []*models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(s.inbox)
}

// Outbox returns copies of the outbox messages, most recent first
func (s *Store) Outbox() []*models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(s.outbox)
}

func (s *Store) snapshotLocked(ids []string) []*models.Message {
	out := make([]*models.Message, 0, len(ids))
	for _, id := range ids {
		if rec, ok := s.records[id]; ok {
			out = append(out, rec.Clone())
		}
	}
	return out
}

// Get returns a copy of the message with id if the inbox or outbox holds it
func (s *Store) Get(id string) (*models.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.heldLocked(id)
	if rec == nil {
		return nil, false
	}
	return rec.Clone(), true
}

// UnreadCount is the number of unread inbox messages
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, id := range s.inbox {
		if rec, ok := s.records[id]; ok && !rec.IsRead {
			n++
		}
	}
	return n
}

// MarkRead sets the read flag on the message with id wherever it is held.
// An unknown id is a no-op.
func (s *Store) MarkRead(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.markReadLocked(id)
}

func (s *Store) markReadLocked(id string) bool {
	rec := s.heldLocked(id)
	if rec == nil {
		operationsTotal.WithLabelValues("mark_read", "not_found").Inc()
		return false
	}
	rec.IsRead = true
	operationsTotal.WithLabelValues("mark_read", "applied").Inc()
	return true
}

// DeleteItem removes the message from both the inbox and the outbox.
// Second-opinion requests that reference a deleted wink are left in place.
func (s *Store) DeleteItem(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.heldLocked(id) == nil {
		operationsTotal.WithLabelValues("delete", "not_found").Inc()
		return false
	}
	s.inbox = remove(s.inbox, id)
	s.outbox = remove(s.outbox, id)
	delete(s.records, id)
	operationsTotal.WithLabelValues("delete", "applied").Inc()
	return true
}

// heldLocked returns the arena record for id when the inbox or outbox
// still references it
func (s *Store) heldLocked(id string) *models.Message {
	rec, ok := s.records[id]
	if !ok {
		return nil
	}
	if !contains(s.inbox, id) && !contains(s.outbox, id) {
		return nil
	}
	return rec
}

// winkLocked returns the wink record for id held by either collection
func (s *Store) winkLocked(id string) *models.Message {
	rec := s.heldLocked(id)
	if !rec.IsWink() {
		return nil
	}
	return rec
}

// outboxWinkLocked returns the wink record for id only if the outbox holds it
func (s *Store) outboxWinkLocked(id string) *models.Message {
	if !contains(s.outbox, id) {
		return nil
	}
	rec := s.records[id]
	if !rec.IsWink() {
		return nil
	}
	return rec
}

func (s *Store) notify(ctx context.Context, title, body string, category models.NotificationCategory) {
	if s.notifier == nil {
		return
	}
	outcome := s.notifier.Notify(ctx, title, body, category)
	jww.DEBUG.Printf("[Mailbox] %s notification for user %s: %s", category, s.userID, outcome)
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func prepend(ids []string, front ...string) []string {
	out := make([]string, 0, len(front)+len(ids))
	out = append(out, front...)
	return append(out, ids...)
}

func remove(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
