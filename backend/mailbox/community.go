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

	"github.com/efchatnet/winkdrops/backend/models"
)

const anonymousRecipient = "Someone"

var ErrInvalidReaction = errors.New("unknown reaction type")

// AddCommunityWink puts a wink at the front of the community feed
func (s *Store) AddCommunityWink(cw *models.CommunityWink) (*models.CommunityWink, error) {
	if cw == nil || !cw.Message.IsWink() {
		return nil, ErrInvalidMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := cloneCommunityWink(cw)
	if c.Message.ID == "" {
		c.Message.ID = s.newID()
	}
	if c.Message.Timestamp.IsZero() {
		c.Message.Timestamp = s.now()
	}
	if s.communityLocked(c.Message.ID) != nil {
		return nil, errors.Wrapf(ErrIDConflict, "community wink %s", c.Message.ID)
	}
	s.community = append([]*models.CommunityWink{c}, s.community...)
	return cloneCommunityWink(c), nil
}

// CommunityWinks returns copies of the feed, most recent first
func (s *Store) CommunityWinks() []*models.CommunityWink {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.CommunityWink, 0, len(s.community))
	for _, cw := range s.community {
		out = append(out, cloneCommunityWink(cw))
	}
	return out
}

// ShareToCommunity publishes a copy of an outbox wink. The copy gets its
// own id, hides the recipient and starts with no reactions, second
// opinions or updates. It keeps a link back to the source wink.
func (s *Store) ShareToCommunity(winkID string) (*models.CommunityWink, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	src := s.outboxWinkLocked(winkID)
	if src == nil {
		operationsTotal.WithLabelValues("share", "not_found").Inc()
		return nil, false
	}

	msg := src.Clone()
	msg.ID = s.newID()
	msg.Timestamp = s.now()
	msg.IsRead = true
	msg.Wink.Recipient = anonymousRecipient
	msg.Wink.SenderLocation = ""
	msg.Wink.SecondOpinion = nil
	msg.Wink.Reactions = map[models.ReactionType]int{}
	msg.Wink.Updates = nil

	cw := &models.CommunityWink{Message: msg, SourceWinkID: src.ID}
	s.community = append([]*models.CommunityWink{cw}, s.community...)
	operationsTotal.WithLabelValues("share", "applied").Inc()
	return cloneCommunityWink(cw), true
}

// ReactToCommunityWink adds one reaction to a community wink. When the
// wink was shared from this user's outbox the author is told someone
// reacted. Unknown ids are ignored.
func (s *Store) ReactToCommunityWink(ctx context.Context, communityID string, reaction models.ReactionType) (bool, error) {
	if !reaction.Valid() {
		return false, errors.Wrapf(ErrInvalidReaction, "%q", reaction)
	}

	s.mu.Lock()
	cw := s.communityLocked(communityID)
	if cw == nil {
		s.mu.Unlock()
		operationsTotal.WithLabelValues("react", "not_found").Inc()
		return false, nil
	}
	w := cw.Message.Wink
	if w.Reactions == nil {
		w.Reactions = make(map[models.ReactionType]int)
	}
	w.Reactions[reaction]++

	authored := false
	recipient := ""
	if cw.SourceWinkID != "" {
		if src := s.outboxWinkLocked(cw.SourceWinkID); src != nil {
			authored = true
			recipient = src.Wink.Recipient
		}
	}
	s.mu.Unlock()

	operationsTotal.WithLabelValues("react", "applied").Inc()
	if authored {
		s.notify(ctx, "Your Wink was seen!",
			"Someone reacted to your Wink for "+recipient+".",
			models.NotifyCommunityReaction)
	}
	return true, nil
}

func (s *Store) communityLocked(id string) *models.CommunityWink {
	for _, cw := range s.community {
		if cw.Message.ID == id {
			return cw
		}
	}
	return nil
}

func cloneCommunityWink(cw *models.CommunityWink) *models.CommunityWink {
	if cw == nil {
		return nil
	}
	return &models.CommunityWink{Message: cw.Message.Clone(), SourceWinkID: cw.SourceWinkID}
}
