// Copyright (C) 2025 efchat.net <tj@efchat.net>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package mailbox

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"

	"github.com/efchatnet/winkdrops/backend/models"
)

var ErrInvalidResponse = errors.New("response must be agree or disagree")

// ResponseOutcome says what RespondToSecondOpinion did with a response
type ResponseOutcome string

const (
	ResponseApplied   ResponseOutcome = "applied"
	ResponseDuplicate ResponseOutcome = "duplicate"
	ResponseNoPoll    ResponseOutcome = "no_poll"
	ResponseNotFound  ResponseOutcome = "not_found"
	ResponsePollFull  ResponseOutcome = "poll_full"
)

// SendSecondOpinionRequests asks each contact for a second opinion on the
// wink. One request per contact is put at the head of the inbox, in the
// order the contacts were given, and the wink's poll grows by the number
// of contacts. Unknown winks and empty contact lists are no-ops.
func (s *Store) SendSecondOpinionRequests(ctx context.Context, winkID string, contacts []models.Contact) []*models.Message {
	if len(contacts) == 0 {
		return nil
	}

	s.mu.Lock()
	wink := s.winkLocked(winkID)
	if wink == nil {
		s.mu.Unlock()
		operationsTotal.WithLabelValues("second_opinion_request", "not_found").Inc()
		return nil
	}

	now := s.now()
	requests := make([]*models.Message, 0, len(contacts))
	ids := make([]string, 0, len(contacts))
	for _, contact := range contacts {
		req := &models.Message{
			ID:        s.requestIDLocked(winkID, contact.ID, now.UnixNano()),
			Type:      models.TypeSecondOpinionRequest,
			Timestamp: now,
			SecondOpinionRequest: &models.SecondOpinionRequest{
				WinkID:                wink.ID,
				OriginalRecipientName: wink.Wink.Recipient,
				WinkObservables:       append([]models.Observable(nil), wink.Wink.Observables...),
			},
		}
		s.records[req.ID] = req
		ids = append(ids, req.ID)
		requests = append(requests, req.Clone())
	}
	s.inbox = prepend(s.inbox, ids...)

	poll := wink.Wink.SecondOpinion
	if poll == nil {
		poll = &models.SecondOpinionPoll{RespondedIDs: []string{}}
		wink.Wink.SecondOpinion = poll
	}
	poll.TotalRequests += len(contacts)
	recipient := wink.Wink.Recipient
	s.mu.Unlock()

	operationsTotal.WithLabelValues("second_opinion_request", "applied").Inc()
	jww.INFO.Printf("[Mailbox] sent %d second opinion requests for wink %s", len(requests), winkID)

	s.notify(ctx, "New Second Opinion Request",
		"Your opinion is requested for a Wink about "+recipient+".",
		models.NotifySecondOpinionRequest)
	return requests
}

// requestIDLocked builds a request id from the wink, the contact and the
// creation time. Repeated calls within the same clock tick get a sequence
// suffix so ids never collide.
func (s *Store) requestIDLocked(winkID, contactID string, nanos int64) string {
	id := fmt.Sprintf("sor-%s-%s-%d", winkID, contactID, nanos)
	for {
		if _, taken := s.records[id]; !taken {
			return id
		}
		s.seq++
		id = fmt.Sprintf("sor-%s-%s-%d-%d", winkID, contactID, nanos, s.seq)
	}
}

// RespondToSecondOpinion records a contact's answer to a request. The
// request is marked read in every case. The answer is counted at most once
// per request id, only when the wink has a poll that still has room.
func (s *Store) RespondToSecondOpinion(requestID, winkID string, response models.OpinionResponse) (ResponseOutcome, error) {
	if !response.Valid() {
		return "", errors.Wrapf(ErrInvalidResponse, "%q", response)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.markReadLocked(requestID)

	outcome := s.applyResponseLocked(requestID, winkID, response)
	operationsTotal.WithLabelValues("second_opinion_response", string(outcome)).Inc()
	return outcome, nil
}

func (s *Store) applyResponseLocked(requestID, winkID string, response models.OpinionResponse) ResponseOutcome {
	wink := s.winkLocked(winkID)
	if wink == nil {
		return ResponseNotFound
	}
	poll := wink.Wink.SecondOpinion
	if poll == nil {
		return ResponseNoPoll
	}
	if poll.HasResponded(requestID) {
		return ResponseDuplicate
	}
	if poll.Responses() >= poll.TotalRequests {
		return ResponsePollFull
	}

	switch response {
	case models.Agree:
		poll.Agreements++
	case models.Disagree:
		poll.Disagreements++
	}
	poll.RespondedIDs = append(poll.RespondedIDs, requestID)
	return ResponseApplied
}
