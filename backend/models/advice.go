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

type Likelihood string

const (
	LikelihoodLow    Likelihood = "low"
	LikelihoodMedium Likelihood = "medium"
	LikelihoodHigh   Likelihood = "high"
)

type ResourceType string

const (
	ResourceArticle      ResourceType = "article"
	ResourceProduct      ResourceType = "product"
	ResourceClinic       ResourceType = "clinic"
	ResourceSupportGroup ResourceType = "support group"
)

type PossibleCondition struct {
	Name        string     `json:"name"`
	Likelihood  Likelihood `json:"likelihood"`
	Description string     `json:"description"`
}

type Resource struct {
	Title       string       `json:"title"`
	Type        ResourceType `json:"type"`
	Description string       `json:"description"`
}

// Source is a citation returned alongside grounded text
type Source struct {
	Title string `json:"title,omitempty"`
	URI   string `json:"uri,omitempty"`
	Kind  string `json:"kind,omitempty"` // "web" or "maps"
}

// GroundedContent is markdown-ish text plus the sources it was built from
type GroundedContent struct {
	Text    string   `json:"text"`
	Sources []Source `json:"sources"`
}

// AIGeneratedContent is the structured advice attached to a wink
type AIGeneratedContent struct {
	Disclaimer         string              `json:"disclaimer"`
	PossibleConditions []PossibleCondition `json:"possibleConditions"`
	Resources          []Resource          `json:"resources"`
	LocalResources     *GroundedContent    `json:"localResources,omitempty"`
	SocialResources    *GroundedContent    `json:"socialResources,omitempty"`
}

func (c *AIGeneratedContent) Clone() *AIGeneratedContent {
	out := *c
	out.PossibleConditions = append([]PossibleCondition(nil), c.PossibleConditions...)
	out.Resources = append([]Resource(nil), c.Resources...)
	if c.LocalResources != nil {
		g := *c.LocalResources
		g.Sources = append([]Source(nil), c.LocalResources.Sources...)
		out.LocalResources = &g
	}
	if c.SocialResources != nil {
		g := *c.SocialResources
		g.Sources = append([]Source(nil), c.SocialResources.Sources...)
		out.SocialResources = &g
	}
	return &out
}

// ModerationResult is the verdict on a custom observable
type ModerationResult struct {
	IsSafe bool   `json:"is_safe"`
	Reason string `json:"reason,omitempty"`
}

// Location is a latitude/longitude pair reported by the client
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type SocialMediaPost struct {
	Platform  string    `json:"platform"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type GiftCardSuggestion struct {
	Store     string `json:"store"`
	Category  string `json:"category"`
	Reasoning string `json:"reasoning"`
}
