// Copyright (C) 2025 efchat.net <tj@efchat.net>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package mailbox

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"

	"github.com/efchatnet/winkdrops/backend/models"
)

var (
	ErrNoObservables   = errors.New("select at least one observation")
	ErrUnsafeContent   = errors.New("observation was rejected by moderation")
	ErrNoAdvisor       = errors.New("AI content service is not configured")
	ErrWinkNotFound    = errors.New("wink not found")
	ErrNoAIContent     = errors.New("wink has no AI content to build on")
	moderationFallback = "Could not verify the content's safety. Please try rephrasing."
)

// RemoteError is a failure of the AI content service. The message is the
// one the service chose to show users.
type RemoteError struct {
	Err error
}

func (e *RemoteError) Error() string { return e.Err.Error() }
func (e *RemoteError) Unwrap() error { return e.Err }

// ModerationError carries the reason an observation was rejected
type ModerationError struct {
	Reason string
}

func (e *ModerationError) Error() string { return e.Reason }
func (e *ModerationError) Unwrap() error { return ErrUnsafeContent }

// Advisor is the AI content service used when composing and enriching winks
type Advisor interface {
	GenerateWinkContent(ctx context.Context, observables []models.Observable) (*models.AIGeneratedContent, error)
	GenerateUpdateSuggestions(ctx context.Context, observables []models.Observable) ([]string, error)
	FindLocalResources(ctx context.Context, conditions []models.PossibleCondition, loc models.Location) (*models.GroundedContent, error)
	FindSocialResources(ctx context.Context, conditions []models.PossibleCondition) (*models.GroundedContent, error)
	Moderate(ctx context.Context, text string) (models.ModerationResult, error)
}

// WithAdvisor sets the AI content service
func WithAdvisor(a Advisor) Option {
	return func(s *Store) { s.advisor = a }
}

// SendWink moderates any custom observables, asks the advisor for content
// and puts the finished wink at the front of the outbox. Nothing is stored
// if moderation rejects an observable or the advisor fails.
func (s *Store) SendWink(ctx context.Context, recipient string, observables []models.Observable, senderLocation string) (*models.Message, error) {
	if strings.TrimSpace(recipient) == "" {
		return nil, ErrEmptyRecipient
	}
	if len(observables) == 0 {
		return nil, ErrNoObservables
	}
	if s.advisor == nil {
		return nil, ErrNoAdvisor
	}

	for _, o := range observables {
		if !o.IsCustom() {
			continue
		}
		verdict, err := s.advisor.Moderate(ctx, o.Text)
		if err != nil {
			jww.WARN.Printf("[Mailbox] moderation failed for user %s: %v", s.userID, err)
			verdict = models.ModerationResult{IsSafe: false, Reason: moderationFallback}
		}
		if !verdict.IsSafe {
			operationsTotal.WithLabelValues("send_wink", "rejected").Inc()
			reason := verdict.Reason
			if reason == "" {
				reason = moderationFallback
			}
			return nil, &ModerationError{Reason: reason}
		}
	}

	content, err := s.advisor.GenerateWinkContent(ctx, observables)
	if err != nil {
		operationsTotal.WithLabelValues("send_wink", "failed").Inc()
		return nil, &RemoteError{Err: err}
	}

	return s.AddToOutbox(&models.Message{
		Type:   models.TypeWink,
		IsRead: true,
		Wink: &models.Wink{
			Recipient:      recipient,
			SenderLocation: senderLocation,
			Observables:    observables,
			AIContent:      content,
		},
	})
}

// UpdateSuggestions asks the advisor for positive follow-up lines for a
// wink in the outbox
func (s *Store) UpdateSuggestions(ctx context.Context, winkID string) ([]string, error) {
	if s.advisor == nil {
		return nil, ErrNoAdvisor
	}
	s.mu.Lock()
	wink := s.outboxWinkLocked(winkID)
	var observables []models.Observable
	if wink != nil {
		observables = wink.Clone().Wink.Observables
	}
	s.mu.Unlock()
	if wink == nil {
		return nil, errors.Wrapf(ErrWinkNotFound, "id %s", winkID)
	}

	suggestions, err := s.advisor.GenerateUpdateSuggestions(ctx, observables)
	if err != nil {
		return nil, &RemoteError{Err: err}
	}
	return suggestions, nil
}

// AttachLocalResources looks up support near loc for the wink's possible
// conditions and stores the result on the wink. A failed lookup leaves the
// wink as it was and can simply be retried.
func (s *Store) AttachLocalResources(ctx context.Context, winkID string, loc models.Location) (*models.GroundedContent, error) {
	return s.attachGrounded(ctx, winkID, "local_resources",
		func(ctx context.Context, conditions []models.PossibleCondition) (*models.GroundedContent, error) {
			return s.advisor.FindLocalResources(ctx, conditions, loc)
		},
		func(c *models.AIGeneratedContent, g *models.GroundedContent) { c.LocalResources = g })
}

// AttachSocialResources is AttachLocalResources for online communities
func (s *Store) AttachSocialResources(ctx context.Context, winkID string) (*models.GroundedContent, error) {
	return s.attachGrounded(ctx, winkID, "social_resources",
		func(ctx context.Context, conditions []models.PossibleCondition) (*models.GroundedContent, error) {
			return s.advisor.FindSocialResources(ctx, conditions)
		},
		func(c *models.AIGeneratedContent, g *models.GroundedContent) { c.SocialResources = g })
}

func (s *Store) attachGrounded(
	ctx context.Context,
	winkID, op string,
	lookup func(context.Context, []models.PossibleCondition) (*models.GroundedContent, error),
	set func(*models.AIGeneratedContent, *models.GroundedContent),
) (*models.GroundedContent, error) {
	if s.advisor == nil {
		return nil, ErrNoAdvisor
	}

	s.mu.Lock()
	wink := s.winkLocked(winkID)
	if wink == nil {
		s.mu.Unlock()
		return nil, errors.Wrapf(ErrWinkNotFound, "id %s", winkID)
	}
	if wink.Wink.AIContent == nil {
		s.mu.Unlock()
		return nil, ErrNoAIContent
	}
	conditions := append([]models.PossibleCondition(nil), wink.Wink.AIContent.PossibleConditions...)
	s.mu.Unlock()

	// the lookup runs unlocked, the wink may be deleted meanwhile
	found, err := lookup(ctx, conditions)
	if err != nil {
		operationsTotal.WithLabelValues(op, "failed").Inc()
		return nil, &RemoteError{Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	wink = s.winkLocked(winkID)
	if wink == nil || wink.Wink.AIContent == nil {
		operationsTotal.WithLabelValues(op, "not_found").Inc()
		return nil, errors.Wrapf(ErrWinkNotFound, "id %s", winkID)
	}
	set(wink.Wink.AIContent, found)
	operationsTotal.WithLabelValues(op, "applied").Inc()
	return found, nil
}
