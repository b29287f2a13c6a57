// Copyright (C) 2025 efchat.net <tj@efchat.net>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package advisor

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/efchatnet/winkdrops/backend/models"
)

type fakeGenerator struct {
	text    string
	chunks  []*genai.GroundingChunk
	err     error
	prompts []string
	configs []*genai.GenerateContentConfig
}

func (f *fakeGenerator) GenerateContent(_ context.Context, _ string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.prompts = append(f.prompts, contents[0].Parts[0].Text)
	f.configs = append(f.configs, cfg)
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:           &genai.Content{Parts: []*genai.Part{{Text: f.text}}},
			GroundingMetadata: &genai.GroundingMetadata{GroundingChunks: f.chunks},
		}},
	}, nil
}

var tired = models.Observable{ID: "p1", Text: "Looks unusually tired", Category: models.CategoryPhysical, NegativeKeywords: []string{"cancer"}}

func TestGenerateWinkContentDecodesStructuredAnswer(t *testing.T) {
	gen := &fakeGenerator{text: `{"disclaimer":"Not a diagnosis. Call 988.",
		"possibleConditions":[{"name":"Burnout","likelihood":"medium","description":"Stress."}],
		"resources":[{"title":"Sleep guide","type":"article","description":"Tips."}]}`}
	s := newService(gen, "")

	content, err := s.GenerateWinkContent(context.Background(), []models.Observable{tired})
	require.NoError(t, err)

	assert.Equal(t, DefaultModel, s.Model())
	assert.Equal(t, models.LikelihoodMedium, content.PossibleConditions[0].Likelihood)
	assert.Equal(t, models.ResourceArticle, content.Resources[0].Type)
	assert.Contains(t, gen.prompts[0], "Looks unusually tired")
	assert.Contains(t, gen.prompts[0], "cancer")
	assert.Equal(t, "application/json", gen.configs[0].ResponseMIMEType)
	assert.Equal(t, float32(0.5), *gen.configs[0].Temperature)
}

func TestGenerateWinkContentFailureIsUserFacing(t *testing.T) {
	s := newService(&fakeGenerator{err: errors.New("quota exceeded")}, "")
	_, err := s.GenerateWinkContent(context.Background(), []models.Observable{tired})
	assert.EqualError(t, err, "Failed to generate AI content. Please try again.")

	s = newService(&fakeGenerator{text: "not json"}, "")
	_, err = s.GenerateWinkContent(context.Background(), []models.Observable{tired})
	assert.Error(t, err)
}

func TestModerateFailsClosed(t *testing.T) {
	s := newService(&fakeGenerator{err: errors.New("unavailable")}, "")
	verdict, err := s.Moderate(context.Background(), "anything")
	require.NoError(t, err)
	assert.False(t, verdict.IsSafe)
	assert.NotEmpty(t, verdict.Reason)

	s = newService(&fakeGenerator{text: "{"}, "")
	verdict, _ = s.Moderate(context.Background(), "anything")
	assert.False(t, verdict.IsSafe)

	s = newService(&fakeGenerator{text: `{"is_safe":true}`}, "")
	verdict, _ = s.Moderate(context.Background(), "seems tired")
	assert.True(t, verdict.IsSafe)
}

func TestReverseGeocodeFallback(t *testing.T) {
	loc := models.Location{Latitude: 38.72, Longitude: -9.14}

	gen := &fakeGenerator{text: "Lisbon, Portugal\n"}
	assert.Equal(t, "Lisbon, Portugal", newService(gen, "").ReverseGeocode(context.Background(), loc))
	assert.Equal(t, -9.14, *gen.configs[0].ToolConfig.RetrievalConfig.LatLng.Longitude)

	long := &fakeGenerator{text: strings.Repeat("x", 50)}
	assert.Equal(t, "A location", newService(long, "").ReverseGeocode(context.Background(), loc))

	failing := &fakeGenerator{err: errors.New("boom")}
	assert.Equal(t, "A location", newService(failing, "").ReverseGeocode(context.Background(), loc))
}

func TestFindSocialResourcesCollectsSources(t *testing.T) {
	gen := &fakeGenerator{
		text: "Some **forums**",
		chunks: []*genai.GroundingChunk{
			{Web: &genai.GroundingChunkWeb{Title: "Forum", URI: "https://forum.example"}},
			nil,
		},
	}
	g, err := newService(gen, "").FindSocialResources(context.Background(), []models.PossibleCondition{{Name: "Burnout"}})
	require.NoError(t, err)

	assert.Equal(t, "Some **forums**", g.Text)
	require.Len(t, g.Sources, 1)
	assert.Equal(t, models.Source{Title: "Forum", URI: "https://forum.example", Kind: "web"}, g.Sources[0])
	assert.NotNil(t, gen.configs[0].Tools[0].GoogleSearch)
}

func TestGenerateUpdateSuggestions(t *testing.T) {
	gen := &fakeGenerator{text: `{"suggestions":["You seem rested."]}`}
	got, err := newService(gen, "").GenerateUpdateSuggestions(context.Background(), []models.Observable{tired})
	require.NoError(t, err)
	assert.Equal(t, []string{"You seem rested."}, got)

	_, err = newService(&fakeGenerator{err: errors.New("x")}, "").GenerateUpdateSuggestions(context.Background(), nil)
	assert.EqualError(t, err, "Failed to generate AI update suggestions.")
}

func TestGenerateGiftCardIdeas(t *testing.T) {
	gen := &fakeGenerator{text: `{"gift_cards":[{"store":"Headspace","category":"Mindfulness App","reasoning":"Calm."}]}`}
	got, err := newService(gen, "").GenerateGiftCardIdeas(context.Background(), "loves quiet mornings")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Headspace", got[0].Store)
	assert.Equal(t, float32(0.8), *gen.configs[0].Temperature)
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrNoAPIKey)
}
