// Copyright (C) 2025 efchat.net <tj@efchat.net>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efchatnet/winkdrops/backend/models"
)

func TestAddContactsSkipsDuplicates(t *testing.T) {
	env := newTestEnv(t, nil)
	h := NewContactHandler(env.sessions)

	batch := map[string][]models.Contact{"contacts": {
		{Name: "Jo", Method: models.MethodEmail, Handle: "jo@example.com"},
		{Name: "Jo", Method: models.MethodEmail, Handle: "jo@example.com"},
		{Name: "Sam", Method: models.MethodPhone, Handle: "(555) 123-4567"},
	}}
	rec := call(t, h.AddContacts, http.MethodPost, "u1", nil, batch)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Added   []models.Contact `json:"added"`
		Skipped int              `json:"skipped"`
	}
	decodeBody(t, rec, &resp)
	assert.Len(t, resp.Added, 2)
	assert.Equal(t, 1, resp.Skipped)
	for _, c := range resp.Added {
		assert.NotEmpty(t, c.ID)
	}

	// the snapshot reaches Redis
	stored, err := env.prefs.LoadContacts(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestAddContactsRejectsInvalidHandle(t *testing.T) {
	env := newTestEnv(t, nil)
	h := NewContactHandler(env.sessions)

	batch := map[string][]models.Contact{"contacts": {
		{Name: "Jo", Method: models.MethodEmail, Handle: "not-an-email"},
	}}
	rec := call(t, h.AddContacts, http.MethodPost, "u1", nil, batch)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, env.sessions.Get(context.Background(), "u1").Mailbox.Contacts())
}

func TestEditBlockAndDeleteContact(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	mb := env.sessions.Get(ctx, "u1").Mailbox
	mb.AddContacts(ctx, []models.Contact{
		{ID: "c1", Name: "Jo", Method: models.MethodInstagram, Handle: "jo"},
		{ID: "c2", Name: "Max", Method: models.MethodInstagram, Handle: "max"},
	})
	h := NewContactHandler(env.sessions)
	vars := map[string]string{"contactId": "c1"}

	rec := call(t, h.EditContact, http.MethodPut, "u1", vars,
		models.Contact{Name: "Max", Method: models.MethodInstagram, Handle: "max"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, h.EditContact, http.MethodPut, "u1", vars,
		models.Contact{Name: "Joanne", Method: models.MethodInstagram, Handle: "jo"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, h.SetBlocked, http.MethodPut, "u1", vars, map[string]bool{"blocked": true})
	require.Equal(t, http.StatusOK, rec.Code)
	var c models.Contact
	decodeBody(t, rec, &c)
	assert.True(t, c.IsBlocked)
	assert.Equal(t, "Joanne", c.Name)

	rec = call(t, h.DeleteContact, http.MethodDelete, "u1", vars, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = call(t, h.DeleteContact, http.MethodDelete, "u1", vars, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(t, h.SetBlocked, http.MethodPut, "u1", vars, map[string]bool{"blocked": true})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
