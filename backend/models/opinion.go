// Copyright (C) 2025 efchat.net <tj@efchat.net>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package models

// OpinionResponse is a contact's answer to a second-opinion request
type OpinionResponse string

const (
	Agree    OpinionResponse = "agree"
	Disagree OpinionResponse = "disagree"
)

// Valid reports whether r is agree or disagree
func (r OpinionResponse) Valid() bool {
	return r == Agree || r == Disagree
}

// SecondOpinionPoll aggregates the responses to a wink's second-opinion
// requests. Agreements + Disagreements never exceeds TotalRequests and
// RespondedIDs holds each request id at most once.
type SecondOpinionPoll struct {
	Agreements    int      `json:"agreements"`
	Disagreements int      `json:"disagreements"`
	TotalRequests int      `json:"totalRequests"`
	RespondedIDs  []string `json:"respondedIds"`
}

// Valid reports whether the counts are consistent: nothing negative, no
// more responses than requests, and one distinct responded id per response.
func (p *SecondOpinionPoll) Valid() bool {
	if p.Agreements < 0 || p.Disagreements < 0 || p.TotalRequests < 0 {
		return false
	}
	if p.Responses() > p.TotalRequests || len(p.RespondedIDs) != p.Responses() {
		return false
	}
	seen := make(map[string]struct{}, len(p.RespondedIDs))
	for _, id := range p.RespondedIDs {
		if _, dup := seen[id]; dup {
			return false
		}
		seen[id] = struct{}{}
	}
	return true
}

// Responses is the number of requests answered so far
func (p *SecondOpinionPoll) Responses() int {
	return p.Agreements + p.Disagreements
}

// HasResponded reports whether requestID has already been counted
func (p *SecondOpinionPoll) HasResponded(requestID string) bool {
	for _, id := range p.RespondedIDs {
		if id == requestID {
			return true
		}
	}
	return false
}

// AgreementPercent is the share of responses that agreed, 0 with no responses
func (p *SecondOpinionPoll) AgreementPercent() float64 {
	total := p.Responses()
	if total == 0 {
		return 0
	}
	return float64(p.Agreements) / float64(total) * 100
}

func (p *SecondOpinionPoll) Clone() *SecondOpinionPoll {
	c := *p
	c.RespondedIDs = append([]string{}, p.RespondedIDs...)
	return &c
}
