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
	jww "github.com/spf13/jwalterweatherman"

	"github.com/efchatnet/winkdrops/backend/models"
	"github.com/efchatnet/winkdrops/backend/session"
)

type MessageHandler struct {
	sessions *session.Registry
}

func NewMessageHandler(sessions *session.Registry) *MessageHandler {
	return &MessageHandler{sessions: sessions}
}

// GetInbox lists received messages, most recent first
func (h *MessageHandler) GetInbox(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.sessions)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"messages": s.Mailbox.Inbox(),
		"unread":   s.Mailbox.UnreadCount(),
	})
}

// GetOutbox lists sent messages, most recent first
func (h *MessageHandler) GetOutbox(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.sessions)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"messages": s.Mailbox.Outbox(),
	})
}

func (h *MessageHandler) GetMessage(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.sessions)
	if !ok {
		return
	}
	msg, found := s.Mailbox.Get(mux.Vars(r)["messageId"])
	if !found {
		http.Error(w, "Message not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

// Receive delivers a message into the caller's inbox
func (h *MessageHandler) Receive(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.sessions)
	if !ok {
		return
	}
	var msg models.Message
	if !decode(w, r, &msg) {
		return
	}
	stored, err := s.Mailbox.Receive(r.Context(), &msg)
	if err != nil {
		writeMailboxError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

// MarkRead is a no-op for unknown ids
func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.sessions)
	if !ok {
		return
	}
	s.Mailbox.MarkRead(mux.Vars(r)["messageId"])
	writeJSON(w, http.StatusOK, map[string]string{"status": "marked_read"})
}

// DeleteMessage removes a message from both the inbox and the outbox
func (h *MessageHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.sessions)
	if !ok {
		return
	}
	s.Mailbox.DeleteItem(mux.Vars(r)["messageId"])
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *MessageHandler) SendWink(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.sessions)
	if !ok {
		return
	}
	var req struct {
		Recipient      string              `json:"recipient"`
		Observables    []models.Observable `json:"observables"`
		SenderLocation string              `json:"senderLocation"`
	}
	if !decode(w, r, &req) {
		return
	}
	for _, o := range req.Observables {
		if !o.Category.Valid() {
			http.Error(w, "Unknown observation category", http.StatusBadRequest)
			return
		}
	}

	msg, err := s.Mailbox.SendWink(r.Context(), req.Recipient, req.Observables, req.SenderLocation)
	if err != nil {
		writeMailboxError(w, err)
		return
	}
	jww.INFO.Printf("[MessageHandler] user %s sent wink %s", s.Mailbox.UserID(), msg.ID)
	writeJSON(w, http.StatusCreated, msg)
}

func (h *MessageHandler) SendNudge(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.sessions)
	if !ok {
		return
	}
	var req struct {
		Recipient string `json:"recipient"`
		Message   string `json:"message"`
	}
	if !decode(w, r, &req) {
		return
	}
	msg, err := s.Mailbox.SendNudge(req.Recipient, req.Message)
	if err != nil {
		writeMailboxError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// AddWinkUpdate appends positive follow-ups to a sent wink
func (h *MessageHandler) AddWinkUpdate(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.sessions)
	if !ok {
		return
	}
	var req struct {
		Updates []string `json:"updates"`
	}
	if !decode(w, r, &req) {
		return
	}
	status := "not_found"
	if s.Mailbox.AddWinkUpdate(r.Context(), mux.Vars(r)["winkId"], req.Updates) {
		status = "updated"
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

func (h *MessageHandler) UpdateSuggestions(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.sessions)
	if !ok {
		return
	}
	suggestions, err := s.Mailbox.UpdateSuggestions(r.Context(), mux.Vars(r)["winkId"])
	if err != nil {
		writeMailboxError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"suggestions": suggestions})
}

func (h *MessageHandler) FindLocalResources(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.sessions)
	if !ok {
		return
	}
	var loc models.Location
	if !decode(w, r, &loc) {
		return
	}
	found, err := s.Mailbox.AttachLocalResources(r.Context(), mux.Vars(r)["winkId"], loc)
	if err != nil {
		writeMailboxError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func (h *MessageHandler) FindSocialResources(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.sessions)
	if !ok {
		return
	}
	found, err := s.Mailbox.AttachSocialResources(r.Context(), mux.Vars(r)["winkId"])
	if err != nil {
		writeMailboxError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}
