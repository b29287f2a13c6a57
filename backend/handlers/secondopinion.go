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

type SecondOpinionHandler struct {
	sessions *session.Registry
}

func NewSecondOpinionHandler(sessions *session.Registry) *SecondOpinionHandler {
	return &SecondOpinionHandler{sessions: sessions}
}

// RequestOpinions sends a second-opinion request to each named contact.
// Unknown contact ids are skipped.
func (h *SecondOpinionHandler) RequestOpinions(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.sessions)
	if !ok {
		return
	}
	var req struct {
		ContactIDs []string `json:"contactIds"`
	}
	if !decode(w, r, &req) {
		return
	}

	byID := make(map[string]models.Contact)
	for _, c := range s.Mailbox.Contacts() {
		byID[c.ID] = c
	}
	var contacts []models.Contact
	for _, id := range req.ContactIDs {
		if c, found := byID[id]; found {
			contacts = append(contacts, c)
		}
	}

	requests := s.Mailbox.SendSecondOpinionRequests(r.Context(), mux.Vars(r)["winkId"], contacts)
	if requests == nil {
		requests = []*models.Message{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"requests": requests,
		"count":    len(requests),
	})
}

// Respond records an agree or disagree answer to a request
func (h *SecondOpinionHandler) Respond(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.sessions)
	if !ok {
		return
	}
	var req struct {
		WinkID   string                 `json:"winkId"`
		Response models.OpinionResponse `json:"response"`
	}
	if !decode(w, r, &req) {
		return
	}

	outcome, err := s.Mailbox.RespondToSecondOpinion(mux.Vars(r)["requestId"], req.WinkID, req.Response)
	if err != nil {
		writeMailboxError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(outcome)})
}
