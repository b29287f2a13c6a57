// Copyright (C) 2025 efchat.net <tj@efchat.net>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package models

import "time"

// ReactionType is one of the fixed reactions allowed on community winks
type ReactionType string

const (
	ReactionSupport  ReactionType = "support"
	ReactionThinking ReactionType = "thinking"
	ReactionSeen     ReactionType = "seen"
)

var ReactionTypes = []ReactionType{ReactionSupport, ReactionThinking, ReactionSeen}

func (r ReactionType) Valid() bool {
	for _, t := range ReactionTypes {
		if r == t {
			return true
		}
	}
	return false
}

// CommunityWink is a community-visible copy of a wink. SourceWinkID links
// the copy to the author's outbox wink when the author is this user.
type CommunityWink struct {
	Message      *Message `json:"message"`
	SourceWinkID string   `json:"sourceWinkId,omitempty"`
}

// CommunityExperience is an anonymous story shared with the community
type CommunityExperience struct {
	ID        string    `json:"id" db:"experience_id"`
	Text      string    `json:"text" db:"text"`
	Timestamp time.Time `json:"timestamp" db:"created_at"`
}
