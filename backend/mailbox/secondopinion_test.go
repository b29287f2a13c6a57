// Copyright (C) 2025 efchat.net <tj@efchat.net>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package mailbox

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efchatnet/winkdrops/backend/models"
)

var (
	c1 = models.Contact{ID: "c1", Name: "Jo", Method: models.MethodWinkDrops, Handle: "jo"}
	c2 = models.Contact{ID: "c2", Name: "Max", Method: models.MethodEmail, Handle: "max@example.com"}
)

func pollOf(t *testing.T, s *Store, winkID string) *models.SecondOpinionPoll {
	t.Helper()
	m, ok := s.Get(winkID)
	require.True(t, ok)
	require.NotNil(t, m.Wink.SecondOpinion)
	return m.Wink.SecondOpinion
}

func TestSecondOpinionScenario(t *testing.T) {
	s, n := newTestStore(t)
	ctx := context.Background()
	_, err := s.AddToOutbox(wink("W", "Alex"))
	require.NoError(t, err)

	requests := s.SendSecondOpinionRequests(ctx, "W", []models.Contact{c1, c2})
	require.Len(t, requests, 2)

	poll := pollOf(t, s, "W")
	assert.Equal(t, 2, poll.TotalRequests)
	assert.Zero(t, poll.Agreements)
	assert.Zero(t, poll.Disagreements)

	inbox := s.Inbox()
	require.Len(t, inbox, 2)
	assert.Equal(t, requests[0].ID, inbox[0].ID)
	assert.Equal(t, requests[1].ID, inbox[1].ID)
	for _, m := range inbox {
		assert.Equal(t, models.TypeSecondOpinionRequest, m.Type)
		assert.Equal(t, "W", m.SecondOpinionRequest.WinkID)
		assert.Equal(t, "Alex", m.SecondOpinionRequest.OriginalRecipientName)
		assert.Len(t, m.SecondOpinionRequest.WinkObservables, 1)
	}
	require.Len(t, n.sent, 1)
	assert.Equal(t, "Your opinion is requested for a Wink about Alex.", n.sent[0].body)

	outcome, err := s.RespondToSecondOpinion(requests[0].ID, "W", models.Agree)
	require.NoError(t, err)
	assert.Equal(t, ResponseApplied, outcome)
	assert.Equal(t, 1, pollOf(t, s, "W").Agreements)

	outcome, err = s.RespondToSecondOpinion(requests[0].ID, "W", models.Agree)
	require.NoError(t, err)
	assert.Equal(t, ResponseDuplicate, outcome)
	poll = pollOf(t, s, "W")
	assert.Equal(t, 1, poll.Agreements)
	assert.Equal(t, []string{requests[0].ID}, poll.RespondedIDs)

	req, ok := s.Get(requests[0].ID)
	require.True(t, ok)
	assert.True(t, req.IsRead)
}

func TestSendSecondOpinionRequestsGrowsExistingPoll(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	_, err := s.AddToOutbox(wink("W", "Alex"))
	require.NoError(t, err)

	first := s.SendSecondOpinionRequests(ctx, "W", []models.Contact{c1})
	_, err = s.RespondToSecondOpinion(first[0].ID, "W", models.Disagree)
	require.NoError(t, err)

	second := s.SendSecondOpinionRequests(ctx, "W", []models.Contact{c1, c2})
	require.Len(t, second, 2)

	poll := pollOf(t, s, "W")
	assert.Equal(t, 3, poll.TotalRequests)
	assert.Equal(t, 1, poll.Disagreements)
	assert.Equal(t, []string{first[0].ID}, poll.RespondedIDs)

	// same contact, same clock tick: ids still differ
	assert.NotEqual(t, first[0].ID, second[0].ID)
	assert.Equal(t, []string{second[0].ID, second[1].ID, first[0].ID}, ids(s.Inbox()))
}

func TestSendSecondOpinionRequestsForInboxWink(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Receive(context.Background(), wink("W", "me"))
	require.NoError(t, err)

	requests := s.SendSecondOpinionRequests(context.Background(), "W", []models.Contact{c1})
	require.Len(t, requests, 1)
	assert.Equal(t, 1, pollOf(t, s, "W").TotalRequests)
}

func TestSendSecondOpinionRequestsNoops(t *testing.T) {
	s, n := newTestStore(t)
	_, err := s.AddToOutbox(wink("W", "Alex"))
	require.NoError(t, err)

	assert.Nil(t, s.SendSecondOpinionRequests(context.Background(), "missing", []models.Contact{c1}))
	assert.Nil(t, s.SendSecondOpinionRequests(context.Background(), "W", nil))

	m, _ := s.Get("W")
	assert.Nil(t, m.Wink.SecondOpinion)
	assert.Empty(t, s.Inbox())
	assert.Empty(t, n.sent)
}

func TestRespondToSecondOpinionOutcomes(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	_, err := s.AddToOutbox(wink("W", "Alex"))
	require.NoError(t, err)
	_, err = s.AddToOutbox(wink("bare", "Sam"))
	require.NoError(t, err)

	outcome, err := s.RespondToSecondOpinion("r1", "bare", models.Agree)
	require.NoError(t, err)
	assert.Equal(t, ResponseNoPoll, outcome)

	outcome, err = s.RespondToSecondOpinion("r1", "missing", models.Agree)
	require.NoError(t, err)
	assert.Equal(t, ResponseNotFound, outcome)

	requests := s.SendSecondOpinionRequests(ctx, "W", []models.Contact{c1})
	outcome, err = s.RespondToSecondOpinion(requests[0].ID, "W", models.Agree)
	require.NoError(t, err)
	assert.Equal(t, ResponseApplied, outcome)

	outcome, err = s.RespondToSecondOpinion("forged", "W", models.Disagree)
	require.NoError(t, err)
	assert.Equal(t, ResponsePollFull, outcome)

	_, err = s.RespondToSecondOpinion(requests[0].ID, "W", "maybe")
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestPollNeverExceedsTotalRequests(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	_, err := s.AddToOutbox(wink("W", "Alex"))
	require.NoError(t, err)

	var requestIDs []string
	for _, r := range s.SendSecondOpinionRequests(ctx, "W", []models.Contact{c1, c2}) {
		requestIDs = append(requestIDs, r.ID)
	}
	requestIDs = append(requestIDs, "stray-1", "stray-2")

	rng := rand.New(rand.NewSource(7))
	responses := []models.OpinionResponse{models.Agree, models.Disagree}
	for i := 0; i < 200; i++ {
		if i == 100 {
			for _, r := range s.SendSecondOpinionRequests(ctx, "W", []models.Contact{{ID: fmt.Sprint("late-", i)}}) {
				requestIDs = append(requestIDs, r.ID)
			}
		}
		id := requestIDs[rng.Intn(len(requestIDs))]
		before := pollOf(t, s, "W").Responses()

		_, err := s.RespondToSecondOpinion(id, "W", responses[rng.Intn(2)])
		require.NoError(t, err)

		poll := pollOf(t, s, "W")
		assert.LessOrEqual(t, poll.Responses(), poll.TotalRequests)
		assert.LessOrEqual(t, poll.Responses()-before, 1)
		assert.Len(t, poll.RespondedIDs, poll.Responses())

		_, err = s.RespondToSecondOpinion(id, "W", responses[rng.Intn(2)])
		require.NoError(t, err)
		assert.LessOrEqual(t, pollOf(t, s, "W").Responses()-before, 1)
	}
}

func TestAgreementPercent(t *testing.T) {
	assert.Zero(t, (&models.SecondOpinionPoll{}).AgreementPercent())
	assert.InDelta(t, 75.0, (&models.SecondOpinionPoll{Agreements: 3, Disagreements: 1, TotalRequests: 4}).AgreementPercent(), 0.001)
}
