// Copyright (C) 2025 efchat.net <tj@efchat.net>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/efchatnet/winkdrops/backend/models"
	"github.com/efchatnet/winkdrops/backend/session"
)

type ContactHandler struct {
	sessions *session.Registry
}

func NewContactHandler(sessions *session.Registry) *ContactHandler {
	return &ContactHandler{sessions: sessions}
}

func (h *ContactHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.sessions)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"contacts": s.Mailbox.Contacts()})
}

// AddContacts imports a batch of contacts. Entries that duplicate an
// existing (name, handle) pair are skipped; invalid entries reject the batch.
func (h *ContactHandler) AddContacts(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.sessions)
	if !ok {
		return
	}
	var req struct {
		Contacts []models.Contact `json:"contacts"`
	}
	if !decode(w, r, &req) {
		return
	}
	for _, c := range req.Contacts {
		if err := c.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	added := s.Mailbox.AddContacts(r.Context(), req.Contacts)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"added":   added,
		"skipped": len(req.Contacts) - len(added),
	})
}

func (h *ContactHandler) EditContact(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.sessions)
	if !ok {
		return
	}
	var c models.Contact
	if !decode(w, r, &c) {
		return
	}
	c.ID = mux.Vars(r)["contactId"]
	if err := c.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := s.Mailbox.EditContact(r.Context(), c)
	if err != nil {
		writeMailboxError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *ContactHandler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.sessions)
	if !ok {
		return
	}
	if !s.Mailbox.DeleteContact(r.Context(), mux.Vars(r)["contactId"]) {
		http.Error(w, "Contact not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// SetBlocked blocks or unblocks a contact
func (h *ContactHandler) SetBlocked(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.sessions)
	if !ok {
		return
	}
	var req struct {
		Blocked bool `json:"blocked"`
	}
	if !decode(w, r, &req) {
		return
	}
	updated, err := s.Mailbox.SetContactBlocked(r.Context(), mux.Vars(r)["contactId"], req.Blocked)
	if err != nil {
		writeMailboxError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
