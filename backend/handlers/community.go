// Copyright (C) 2025 efchat.net <tj@efchat.net>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	jww "github.com/spf13/jwalterweatherman"

	"github.com/efchatnet/winkdrops/backend/models"
	"github.com/efchatnet/winkdrops/backend/session"
	"github.com/efchatnet/winkdrops/backend/storage"
)

const (
	defaultExperienceLimit = 50
	maxExperienceLimit     = 200
	maxExperienceLength    = 2000
)

type CommunityHandler struct {
	sessions *session.Registry
	store    storage.CommunityStore
}

func NewCommunityHandler(sessions *session.Registry, store storage.CommunityStore) *CommunityHandler {
	return &CommunityHandler{sessions: sessions, store: store}
}

func (h *CommunityHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.sessions)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"winks": s.Mailbox.CommunityWinks()})
}

// Share publishes an anonymised copy of a sent wink to the community feed
func (h *CommunityHandler) Share(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.sessions)
	if !ok {
		return
	}
	cw, found := s.Mailbox.ShareToCommunity(mux.Vars(r)["winkId"])
	if !found {
		http.Error(w, "Wink not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, cw)
}

func (h *CommunityHandler) React(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.sessions)
	if !ok {
		return
	}
	var req struct {
		Reaction models.ReactionType `json:"reaction"`
	}
	if !decode(w, r, &req) {
		return
	}

	applied, err := s.Mailbox.ReactToCommunityWink(r.Context(), mux.Vars(r)["winkId"], req.Reaction)
	if err != nil {
		writeMailboxError(w, err)
		return
	}
	status := "not_found"
	if applied {
		status = "reacted"
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

// ListExperiences returns shared experiences, newest first
func (h *CommunityHandler) ListExperiences(w http.ResponseWriter, r *http.Request) {
	limit := defaultExperienceLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		if n > maxExperienceLimit {
			n = maxExperienceLimit
		}
		limit = n
	}

	exps, err := h.store.ListCommunityExperiences(r.Context(), limit)
	if err != nil {
		jww.ERROR.Printf("[CommunityHandler] failed to list experiences: %v", err)
		http.Error(w, "Failed to retrieve experiences", http.StatusInternalServerError)
		return
	}
	if exps == nil {
		exps = []models.CommunityExperience{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"experiences": exps})
}

func (h *CommunityHandler) AddExperience(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentSession(w, r, h.sessions); !ok {
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if !decode(w, r, &req) {
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" || len(text) > maxExperienceLength {
		http.Error(w, "Experience text is required", http.StatusBadRequest)
		return
	}

	exp := models.CommunityExperience{
		ID:        uuid.New().String(),
		Text:      text,
		Timestamp: time.Now().UTC(),
	}
	if err := h.store.AddCommunityExperience(r.Context(), exp); err != nil {
		jww.ERROR.Printf("[CommunityHandler] failed to save experience: %v", err)
		http.Error(w, "Failed to save experience", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, exp)
}
