// Copyright (C) 2025 efchat.net <tj@efchat.net>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"

	"github.com/efchatnet/winkdrops/backend/mailbox"
	"github.com/efchatnet/winkdrops/backend/middleware"
	"github.com/efchatnet/winkdrops/backend/session"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// currentSession resolves the caller's session, answering 401 when the
// request carries no user
func currentSession(w http.ResponseWriter, r *http.Request, sessions *session.Registry) (*session.Session, bool) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return nil, false
	}
	return sessions.Get(r.Context(), userID), true
}

// writeMailboxError maps mailbox errors onto HTTP statuses. Messages from
// moderation and the AI service are meant for the user and passed through.
func writeMailboxError(w http.ResponseWriter, err error) {
	var moderation *mailbox.ModerationError
	var remote *mailbox.RemoteError

	switch {
	case errors.As(err, &moderation):
		http.Error(w, moderation.Reason, http.StatusBadRequest)
	case errors.As(err, &remote):
		http.Error(w, remote.Error(), http.StatusBadGateway)
	case errors.Is(err, mailbox.ErrNoAdvisor):
		http.Error(w, "AI features are not available", http.StatusServiceUnavailable)
	case errors.Is(err, mailbox.ErrWinkNotFound), errors.Is(err, mailbox.ErrContactNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, mailbox.ErrInvalidMessage),
		errors.Is(err, mailbox.ErrIDConflict),
		errors.Is(err, mailbox.ErrEmptyRecipient),
		errors.Is(err, mailbox.ErrEmptyMessage),
		errors.Is(err, mailbox.ErrNoObservables),
		errors.Is(err, mailbox.ErrNoAIContent),
		errors.Is(err, mailbox.ErrInvalidResponse),
		errors.Is(err, mailbox.ErrInvalidReaction),
		errors.Is(err, mailbox.ErrDuplicateContact):
		http.Error(w, errors.Cause(err).Error(), http.StatusBadRequest)
	default:
		jww.ERROR.Printf("[Handlers] unexpected error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
