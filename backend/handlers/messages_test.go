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

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efchatnet/winkdrops/backend/models"
)

func TestInboxRequiresUser(t *testing.T) {
	env := newTestEnv(t, nil)
	h := NewMessageHandler(env.sessions)

	rec := call(t, h.GetInbox, http.MethodGet, "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReceiveThenReadAndDelete(t *testing.T) {
	env := newTestEnv(t, nil)
	h := NewMessageHandler(env.sessions)

	rec := call(t, h.Receive, http.MethodPost, "u1", nil, receivedWink("w1", "Alex"))
	require.Equal(t, http.StatusCreated, rec.Code)

	var inbox struct {
		Messages []models.Message `json:"messages"`
		Unread   int              `json:"unread"`
	}
	decodeBody(t, call(t, h.GetInbox, http.MethodGet, "u1", nil, nil), &inbox)
	require.Len(t, inbox.Messages, 1)
	assert.Equal(t, 1, inbox.Unread)

	rec = call(t, h.MarkRead, http.MethodPost, "u1", map[string]string{"messageId": "w1"}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var msg models.Message
	decodeBody(t, call(t, h.GetMessage, http.MethodGet, "u1", map[string]string{"messageId": "w1"}, nil), &msg)
	assert.True(t, msg.IsRead)

	call(t, h.DeleteMessage, http.MethodDelete, "u1", map[string]string{"messageId": "w1"}, nil)
	rec = call(t, h.GetMessage, http.MethodGet, "u1", map[string]string{"messageId": "w1"}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReceiveRejectsMismatchedPayload(t *testing.T) {
	env := newTestEnv(t, nil)
	h := NewMessageHandler(env.sessions)

	bad := &models.Message{ID: "n1", Type: models.TypeNudge, Wink: &models.Wink{Recipient: "Alex"}}
	rec := call(t, h.Receive, http.MethodPost, "u1", nil, bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReceiveRejectsInconsistentPoll(t *testing.T) {
	env := newTestEnv(t, nil)
	h := NewMessageHandler(env.sessions)

	body := map[string]interface{}{
		"id":   "w1",
		"type": models.TypeWink,
		"wink": map[string]interface{}{
			"recipient": "Alex",
			"secondOpinion": map[string]interface{}{
				"agreements":    5,
				"disagreements": 3,
				"totalRequests": 1,
				"respondedIds":  []string{"a", "a"},
			},
		},
	}
	rec := call(t, h.Receive, http.MethodPost, "u1", nil, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var inbox struct {
		Messages []models.Message `json:"messages"`
	}
	decodeBody(t, call(t, h.GetInbox, http.MethodGet, "u1", nil, nil), &inbox)
	assert.Empty(t, inbox.Messages)
}

func TestMarkReadUnknownIDIsNoop(t *testing.T) {
	env := newTestEnv(t, nil)
	h := NewMessageHandler(env.sessions)

	rec := call(t, h.MarkRead, http.MethodPost, "u1", map[string]string{"messageId": "missing"}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSendNudgeValidates(t *testing.T) {
	env := newTestEnv(t, nil)
	h := NewMessageHandler(env.sessions)

	rec := call(t, h.SendNudge, http.MethodPost, "u1", nil, map[string]string{"recipient": "Sam", "message": " "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, h.SendNudge, http.MethodPost, "u1", nil, map[string]string{"recipient": "Sam", "message": "Thinking of you"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var outbox struct {
		Messages []models.Message `json:"messages"`
	}
	decodeBody(t, call(t, h.GetOutbox, http.MethodGet, "u1", nil, nil), &outbox)
	require.Len(t, outbox.Messages, 1)
	assert.True(t, outbox.Messages[0].IsRead)
}

func sendWinkBody(observableID string) map[string]interface{} {
	return map[string]interface{}{
		"recipient": "Alex",
		"observables": []models.Observable{
			{ID: observableID, Text: "Skipping meals", Category: models.CategoryNutritional},
		},
	}
}

func TestSendWinkWithoutAdvisor(t *testing.T) {
	env := newTestEnv(t, nil)
	h := NewMessageHandler(env.sessions)

	rec := call(t, h.SendWink, http.MethodPost, "u1", nil, sendWinkBody("p1"))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSendWinkStoresInOutbox(t *testing.T) {
	env := newTestEnv(t, &fakeAdvisor{})
	h := NewMessageHandler(env.sessions)

	rec := call(t, h.SendWink, http.MethodPost, "u1", nil, sendWinkBody("p1"))
	require.Equal(t, http.StatusCreated, rec.Code)

	var msg models.Message
	decodeBody(t, rec, &msg)
	require.NotNil(t, msg.Wink)
	assert.Equal(t, "Stress", msg.Wink.AIContent.PossibleConditions[0].Name)

	rec = call(t, h.UpdateSuggestions, http.MethodPost, "u1", map[string]string{"winkId": msg.ID}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, h.FindLocalResources, http.MethodPost, "u1", map[string]string{"winkId": msg.ID},
		models.Location{Latitude: 51.5, Longitude: -0.1})
	require.Equal(t, http.StatusOK, rec.Code)

	stored, ok := env.sessions.Get(context.Background(), "u1").Mailbox.Get(msg.ID)
	require.True(t, ok)
	assert.Equal(t, "A clinic nearby.", stored.Wink.AIContent.LocalResources.Text)
}

func TestSendWinkRejectedByModeration(t *testing.T) {
	env := newTestEnv(t, &fakeAdvisor{unsafe: true})
	h := NewMessageHandler(env.sessions)

	rec := call(t, h.SendWink, http.MethodPost, "u1", nil, sendWinkBody(""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please keep it kind.")
	assert.Empty(t, env.sessions.Get(context.Background(), "u1").Mailbox.Outbox())
}

func TestSendWinkRemoteFailure(t *testing.T) {
	env := newTestEnv(t, &fakeAdvisor{contentErr: errors.New("Failed to generate AI content. Please try again.")})
	h := NewMessageHandler(env.sessions)

	rec := call(t, h.SendWink, http.MethodPost, "u1", nil, sendWinkBody("p1"))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please try again.")
}

func TestSendWinkUnknownCategory(t *testing.T) {
	env := newTestEnv(t, &fakeAdvisor{})
	h := NewMessageHandler(env.sessions)

	body := map[string]interface{}{
		"recipient":   "Alex",
		"observables": []models.Observable{{ID: "p1", Text: "x", Category: "Astrological"}},
	}
	rec := call(t, h.SendWink, http.MethodPost, "u1", nil, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddWinkUpdateOnlyTouchesOutbox(t *testing.T) {
	env := newTestEnv(t, nil)
	h := NewMessageHandler(env.sessions)
	call(t, h.Receive, http.MethodPost, "u1", nil, receivedWink("w1", "Alex"))

	var resp map[string]string
	rec := call(t, h.AddWinkUpdate, http.MethodPost, "u1", map[string]string{"winkId": "w1"},
		map[string][]string{"updates": {"Looks better"}})
	decodeBody(t, rec, &resp)
	assert.Equal(t, "not_found", resp["status"])

	msg, _ := env.sessions.Get(context.Background(), "u1").Mailbox.Get("w1")
	assert.Empty(t, msg.Wink.Updates)
}
