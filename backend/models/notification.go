// Copyright (C) 2025 efchat.net <tj@efchat.net>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package models

import "time"

// NotificationCategory is the event class a notification belongs to.
// Each category can be switched off independently.
type NotificationCategory string

const (
	NotifyNewWink              NotificationCategory = "newWink"
	NotifyNewNudge             NotificationCategory = "newNudge"
	NotifySecondOpinionRequest NotificationCategory = "secondOpinionRequest"
	NotifyCommunityReaction    NotificationCategory = "communityReaction"
	NotifyWinkUpdate           NotificationCategory = "winkUpdate"
)

var NotificationCategories = []NotificationCategory{
	NotifyNewWink,
	NotifyNewNudge,
	NotifySecondOpinionRequest,
	NotifyCommunityReaction,
	NotifyWinkUpdate,
}

// NotificationSettings holds one switch per category
type NotificationSettings struct {
	NewWink              bool `json:"newWink"`
	NewNudge             bool `json:"newNudge"`
	SecondOpinionRequest bool `json:"secondOpinionRequest"`
	CommunityReaction    bool `json:"communityReaction"`
	WinkUpdate           bool `json:"winkUpdate"`
}

func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		NewWink:              true,
		NewNudge:             true,
		SecondOpinionRequest: true,
		CommunityReaction:    true,
		WinkUpdate:           true,
	}
}

// Enabled reports whether notifications of category c may be shown.
// Unknown categories are never shown.
func (s NotificationSettings) Enabled(c NotificationCategory) bool {
	switch c {
	case NotifyNewWink:
		return s.NewWink
	case NotifyNewNudge:
		return s.NewNudge
	case NotifySecondOpinionRequest:
		return s.SecondOpinionRequest
	case NotifyCommunityReaction:
		return s.CommunityReaction
	case NotifyWinkUpdate:
		return s.WinkUpdate
	}
	return false
}

// NotificationSettingsPatch is a partial update; nil fields are left alone
type NotificationSettingsPatch struct {
	NewWink              *bool `json:"newWink,omitempty"`
	NewNudge             *bool `json:"newNudge,omitempty"`
	SecondOpinionRequest *bool `json:"secondOpinionRequest,omitempty"`
	CommunityReaction    *bool `json:"communityReaction,omitempty"`
	WinkUpdate           *bool `json:"winkUpdate,omitempty"`
}

// Merge returns s with the set fields of p applied
func (s NotificationSettings) Merge(p NotificationSettingsPatch) NotificationSettings {
	if p.NewWink != nil {
		s.NewWink = *p.NewWink
	}
	if p.NewNudge != nil {
		s.NewNudge = *p.NewNudge
	}
	if p.SecondOpinionRequest != nil {
		s.SecondOpinionRequest = *p.SecondOpinionRequest
	}
	if p.CommunityReaction != nil {
		s.CommunityReaction = *p.CommunityReaction
	}
	if p.WinkUpdate != nil {
		s.WinkUpdate = *p.WinkUpdate
	}
	return s
}

// Notification is what gets surfaced to the user
type Notification struct {
	Title     string               `json:"title"`
	Body      string               `json:"body"`
	Category  NotificationCategory `json:"category"`
	Timestamp time.Time            `json:"timestamp"`
}
