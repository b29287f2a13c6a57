// Copyright (C) 2025 efchat.net <tj@efchat.net>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	jww "github.com/spf13/jwalterweatherman"

	"github.com/efchatnet/winkdrops/backend/middleware"
	"github.com/efchatnet/winkdrops/backend/models"
	"github.com/efchatnet/winkdrops/backend/notify"
	"github.com/efchatnet/winkdrops/backend/session"
)

const streamKeepAlive = 25 * time.Second

// Subscriber opens a user's live notification channel
type Subscriber interface {
	Subscribe(ctx context.Context, userID string) *redis.PubSub
}

type NotificationHandler struct {
	sessions *session.Registry
	stream   Subscriber
}

func NewNotificationHandler(sessions *session.Registry, stream Subscriber) *NotificationHandler {
	return &NotificationHandler{sessions: sessions, stream: stream}
}

func (h *NotificationHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.sessions)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Notifier.Status())
}

// UpdateSettings applies a partial settings update; absent fields are kept
func (h *NotificationHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.sessions)
	if !ok {
		return
	}
	var patch models.NotificationSettingsPatch
	if !decode(w, r, &patch) {
		return
	}
	writeJSON(w, http.StatusOK, s.Notifier.UpdateSettings(r.Context(), patch))
}

// SetPermission records the platform permission the client observed
func (h *NotificationHandler) SetPermission(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.sessions)
	if !ok {
		return
	}
	var req struct {
		Permission notify.Permission `json:"permission"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := s.Notifier.SetPermission(req.Permission); err != nil {
		http.Error(w, errors.Cause(err).Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, s.Notifier.Status())
}

// Subscribe completes the subscription flow with the prompt result
func (h *NotificationHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.sessions)
	if !ok {
		return
	}
	var req struct {
		Permission notify.Permission `json:"permission"`
	}
	if !decode(w, r, &req) {
		return
	}

	err := s.Notifier.Subscribe(req.Permission)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, s.Notifier.Status())
	case errors.Is(err, notify.ErrPermissionBlocked):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		http.Error(w, errors.Cause(err).Error(), http.StatusBadRequest)
	}
}

func (h *NotificationHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.sessions)
	if !ok {
		return
	}
	s.Notifier.Unsubscribe()
	writeJSON(w, http.StatusOK, s.Notifier.Status())
}

// Stream relays the user's notifications as server-sent events until the
// client goes away
func (h *NotificationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	sub := h.stream.Subscribe(ctx, userID)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		jww.WARN.Printf("[NotificationHandler] failed to subscribe user %s: %v", userID, err)
		http.Error(w, "Notifications unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(streamKeepAlive)
	defer ticker.Stop()
	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case msg, open := <-messages:
			if !open {
				return
			}
			fmt.Fprintf(w, "event: notification\ndata: %s\n\n", msg.Payload)
			flusher.Flush()
		}
	}
}
