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

package models

import (
	"time"
)

// MessageType discriminates the payload carried by a Message
type MessageType string

const (
	TypeWink                 MessageType = "Wink"
	TypeNudge                MessageType = "Nudge"
	TypeSecondOpinionRequest MessageType = "SecondOpinionRequest"
)

// Category groups observables by the area of well-being they describe
type Category string

const (
	CategoryPhysical    Category = "Physical"
	CategoryMental      Category = "Mental"
	CategoryNutritional Category = "Nutritional"
	CategoryHygiene     Category = "Hygiene"
	CategorySocial      Category = "Social"
	CategoryBehavioral  Category = "Behavioral"
)

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	switch c {
	case CategoryPhysical, CategoryMental, CategoryNutritional,
		CategoryHygiene, CategorySocial, CategoryBehavioral:
		return true
	}
	return false
}

// Observable is a single thing the sender noticed about the recipient.
// Preset observables carry an ID; custom ones typed by the sender don't
// and must pass moderation before they are used.
type Observable struct {
	ID               string   `json:"id,omitempty"`
	Text             string   `json:"text"`
	Category         Category `json:"category"`
	Keywords         []string `json:"keywords,omitempty"`
	NegativeKeywords []string `json:"negativeKeywords,omitempty"`
}

// IsCustom reports whether the observable was typed in by the sender
func (o Observable) IsCustom() bool {
	return o.ID == ""
}

// WinkUpdate is a timestamped follow-up the sender appends to a wink
type WinkUpdate struct {
	Timestamp time.Time `json:"timestamp"`
	Text      string    `json:"text"`
}

// Wink is an anonymous well-being observation
type Wink struct {
	Recipient      string               `json:"recipient"`
	SenderLocation string               `json:"senderLocation,omitempty"`
	Observables    []Observable         `json:"observables"`
	AIContent      *AIGeneratedContent  `json:"aiContent"`
	SecondOpinion  *SecondOpinionPoll   `json:"secondOpinion,omitempty"`
	Reactions      map[ReactionType]int `json:"reactions,omitempty"`
	Updates        []WinkUpdate         `json:"updates,omitempty"`
}

// Nudge is a short supportive message. Nudges are fire-and-forget on the
// sender side, so they are created already read.
type Nudge struct {
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
}

// SecondOpinionRequest asks a contact whether they agree with a wink.
// The recipient name and observables are copied so the request can be
// rendered without the original wink.
type SecondOpinionRequest struct {
	WinkID                string       `json:"winkId"`
	OriginalRecipientName string       `json:"originalRecipientName"`
	WinkObservables       []Observable `json:"winkObservables"`
}

// Message is an inbox or outbox entry. Exactly one payload is set and
// it matches Type.
type Message struct {
	ID        string      `json:"id"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	IsRead    bool        `json:"isRead"`

	Wink                 *Wink                 `json:"wink,omitempty"`
	Nudge                *Nudge                `json:"nudge,omitempty"`
	SecondOpinionRequest *SecondOpinionRequest `json:"secondOpinionRequest,omitempty"`
}

// Valid reports whether the payload matches the type tag. A wink that
// carries a poll must also carry a consistent one.
func (m *Message) Valid() bool {
	switch m.Type {
	case TypeWink:
		if m.Wink == nil || m.Nudge != nil || m.SecondOpinionRequest != nil {
			return false
		}
		return m.Wink.SecondOpinion == nil || m.Wink.SecondOpinion.Valid()
	case TypeNudge:
		return m.Nudge != nil && m.Wink == nil && m.SecondOpinionRequest == nil
	case TypeSecondOpinionRequest:
		return m.SecondOpinionRequest != nil && m.Wink == nil && m.Nudge == nil
	}
	return false
}

// IsWink reports whether m carries a wink payload
func (m *Message) IsWink() bool {
	return m != nil && m.Type == TypeWink && m.Wink != nil
}

// Recipient returns the recipient named by a wink or nudge
func (m *Message) Recipient() string {
	switch {
	case m.Wink != nil:
		return m.Wink.Recipient
	case m.Nudge != nil:
		return m.Nudge.Recipient
	case m.SecondOpinionRequest != nil:
		return m.SecondOpinionRequest.OriginalRecipientName
	}
	return ""
}

// Clone returns a deep copy so callers never share mutable state with the store
func (m *Message) Clone() *Message {
	if m == nil {
		return nil
	}
	c := *m
	if m.Wink != nil {
		c.Wink = m.Wink.clone()
	}
	if m.Nudge != nil {
		n := *m.Nudge
		c.Nudge = &n
	}
	if m.SecondOpinionRequest != nil {
		r := *m.SecondOpinionRequest
		r.WinkObservables = cloneObservables(m.SecondOpinionRequest.WinkObservables)
		c.SecondOpinionRequest = &r
	}
	return &c
}

func (w *Wink) clone() *Wink {
	c := *w
	c.Observables = cloneObservables(w.Observables)
	if w.AIContent != nil {
		c.AIContent = w.AIContent.Clone()
	}
	if w.SecondOpinion != nil {
		c.SecondOpinion = w.SecondOpinion.Clone()
	}
	if w.Reactions != nil {
		c.Reactions = make(map[ReactionType]int, len(w.Reactions))
		for k, v := range w.Reactions {
			c.Reactions[k] = v
		}
	}
	if w.Updates != nil {
		c.Updates = append([]WinkUpdate(nil), w.Updates...)
	}
	return &c
}

func cloneObservables(in []Observable) []Observable {
	if in == nil {
		return nil
	}
	out := make([]Observable, len(in))
	for i, o := range in {
		out[i] = o
		out[i].Keywords = append([]string(nil), o.Keywords...)
		out[i].NegativeKeywords = append([]string(nil), o.NegativeKeywords...)
	}
	return out
}
