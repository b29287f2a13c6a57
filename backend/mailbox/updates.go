// Copyright (C) 2025 efchat.net <tj@efchat.net>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package mailbox

import (
	"context"

	"github.com/efchatnet/winkdrops/backend/models"
)

const unknownRecipient = "Unknown"

// AddWinkUpdate appends one timestamped follow-up per text to a wink the
// user sent. Only the outbox is searched since updates come from the
// original sender. The winkUpdate notification is raised either way; when
// the wink isn't in the outbox it names an unknown recipient and the state
// is left untouched.
func (s *Store) AddWinkUpdate(ctx context.Context, winkID string, texts []string) bool {
	s.mu.Lock()
	recipient := unknownRecipient
	applied := false
	if wink := s.outboxWinkLocked(winkID); wink != nil {
		recipient = wink.Wink.Recipient
		now := s.now()
		for _, text := range texts {
			wink.Wink.Updates = append(wink.Wink.Updates, models.WinkUpdate{Timestamp: now, Text: text})
		}
		applied = true
	}
	s.mu.Unlock()

	if applied {
		operationsTotal.WithLabelValues("wink_update", "applied").Inc()
	} else {
		operationsTotal.WithLabelValues("wink_update", "not_found").Inc()
	}

	s.notify(ctx, "Positive Update Received",
		"Someone has noticed positive changes regarding a past Wink for "+recipient+".",
		models.NotifyWinkUpdate)
	return applied
}
