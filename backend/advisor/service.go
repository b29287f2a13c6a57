// Copyright (C) 2025 efchat.net <tj@efchat.net>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package advisor is the Gemini-backed AI content service: advice for new
// winks, follow-up suggestions, grounded resource lookups and moderation
// of custom observations.
//
// Every remote failure is logged and replaced with a short message that is
// safe to show to the user. Moderation fails closed.
package advisor

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"google.golang.org/genai"

	"github.com/efchatnet/winkdrops/backend/models"
)

const (
	DefaultModel     = "gemini-2.5-flash"
	fallbackLocation = "A location"
	maxLocationLen   = 50
)

var (
	ErrNoAPIKey = errors.New("gemini API key is not configured")

	errContent     = errors.New("Failed to generate AI content. Please try again.")
	errSuggestions = errors.New("Failed to generate AI update suggestions.")
	errLocal       = errors.New("Failed to find local resources.")
	errSocial      = errors.New("Failed to find social media resources.")
	errPosts       = errors.New("Failed to generate social media posts.")
	errGifts       = errors.New("Failed to generate gift card ideas.")

	unverified = models.ModerationResult{IsSafe: false, Reason: "Could not verify the content's safety. Please try rephrasing."}
)

// generator is the part of the genai client the service uses
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Service struct {
	gen   generator
	model string
	now   func() time.Time
}

// New connects to the Gemini API with apiKey. An empty model selects
// DefaultModel.
func New(ctx context.Context, apiKey, model string) (*Service, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create gemini client")
	}
	return newService(client.Models, model), nil
}

func newService(gen generator, model string) *Service {
	if model == "" {
		model = DefaultModel
	}
	return &Service{gen: gen, model: model, now: time.Now}
}

func (s *Service) Model() string {
	return s.model
}

func jsonConfig(instruction string, schema *genai.Schema, temperature float32) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
		Temperature:      genai.Ptr(temperature),
	}
	if instruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(instruction, genai.RoleUser)
	}
	return cfg
}

func mapsConfig(loc models.Location) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleMaps: &genai.GoogleMaps{}}},
		ToolConfig: &genai.ToolConfig{
			RetrievalConfig: &genai.RetrievalConfig{
				LatLng: &genai.LatLng{
					Latitude:  genai.Ptr(loc.Latitude),
					Longitude: genai.Ptr(loc.Longitude),
				},
			},
		},
	}
}

// generateJSON runs prompt and decodes the JSON answer into out
func (s *Service) generateJSON(ctx context.Context, prompt string, cfg *genai.GenerateContentConfig, out interface{}) error {
	resp, err := s.gen.GenerateContent(ctx, s.model, genai.Text(prompt), cfg)
	if err != nil {
		return err
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return errors.New("empty response")
	}
	return errors.Wrap(json.Unmarshal([]byte(text), out), "failed to decode response")
}

func (s *Service) GenerateWinkContent(ctx context.Context, observables []models.Observable) (*models.AIGeneratedContent, error) {
	var content models.AIGeneratedContent
	err := s.generateJSON(ctx, contentPrompt(observables), jsonConfig(contentInstruction, winkContentSchema, 0.5), &content)
	if err != nil {
		jww.ERROR.Printf("[Advisor] failed to generate wink content: %v", err)
		return nil, errContent
	}
	return &content, nil
}

func (s *Service) GenerateUpdateSuggestions(ctx context.Context, observables []models.Observable) ([]string, error) {
	var out struct {
		Suggestions []string `json:"suggestions"`
	}
	err := s.generateJSON(ctx, suggestionsPrompt(observables), jsonConfig(suggestionsInstruction, suggestionsSchema, 0.7), &out)
	if err != nil {
		jww.ERROR.Printf("[Advisor] failed to generate update suggestions: %v", err)
		return nil, errSuggestions
	}
	if out.Suggestions == nil {
		return []string{}, nil
	}
	return out.Suggestions, nil
}

func (s *Service) FindLocalResources(ctx context.Context, conditions []models.PossibleCondition, loc models.Location) (*models.GroundedContent, error) {
	g, err := s.grounded(ctx, localResourcesPrompt(conditions), mapsConfig(loc))
	if err != nil {
		jww.ERROR.Printf("[Advisor] failed to find local resources: %v", err)
		return nil, errLocal
	}
	return g, nil
}

func (s *Service) FindSocialResources(ctx context.Context, conditions []models.PossibleCondition) (*models.GroundedContent, error) {
	cfg := &genai.GenerateContentConfig{Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}}
	g, err := s.grounded(ctx, socialResourcesPrompt(conditions), cfg)
	if err != nil {
		jww.ERROR.Printf("[Advisor] failed to find social resources: %v", err)
		return nil, errSocial
	}
	return g, nil
}

func (s *Service) grounded(ctx context.Context, prompt string, cfg *genai.GenerateContentConfig) (*models.GroundedContent, error) {
	resp, err := s.gen.GenerateContent(ctx, s.model, genai.Text(prompt), cfg)
	if err != nil {
		return nil, err
	}
	return &models.GroundedContent{Text: resp.Text(), Sources: sources(resp)}, nil
}

// sources flattens the grounding chunks of the first candidate
func sources(resp *genai.GenerateContentResponse) []models.Source {
	out := []models.Source{}
	if len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return out
	}
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		switch {
		case chunk == nil:
		case chunk.Web != nil:
			out = append(out, models.Source{Title: chunk.Web.Title, URI: chunk.Web.URI, Kind: "web"})
		case chunk.Maps != nil:
			out = append(out, models.Source{Title: chunk.Maps.Title, URI: chunk.Maps.URI, Kind: "maps"})
		}
	}
	return out
}

// ReverseGeocode names the city and country at loc. It never fails: any
// error or implausible answer yields a generic placeholder.
func (s *Service) ReverseGeocode(ctx context.Context, loc models.Location) string {
	resp, err := s.gen.GenerateContent(ctx, s.model, genai.Text(geocodePrompt), mapsConfig(loc))
	if err != nil {
		jww.WARN.Printf("[Advisor] reverse geocode failed: %v", err)
		return fallbackLocation
	}
	name := strings.TrimSpace(resp.Text())
	if name == "" || len(name) >= maxLocationLen {
		return fallbackLocation
	}
	return name
}

func (s *Service) GenerateSocialPosts(ctx context.Context, conditions []models.PossibleCondition, resources []models.Resource, keywords string) ([]models.SocialMediaPost, error) {
	var out struct {
		Posts []models.SocialMediaPost `json:"posts"`
	}
	err := s.generateJSON(ctx, socialPostsPrompt(conditions, resources, keywords), jsonConfig("", socialPostSchema, 0.7), &out)
	if err != nil {
		jww.ERROR.Printf("[Advisor] failed to generate social posts: %v", err)
		return nil, errPosts
	}
	now := s.now()
	for i := range out.Posts {
		out.Posts[i].Timestamp = now
	}
	if out.Posts == nil {
		return []models.SocialMediaPost{}, nil
	}
	return out.Posts, nil
}

func (s *Service) GenerateGiftCardIdeas(ctx context.Context, description string) ([]models.GiftCardSuggestion, error) {
	var out struct {
		GiftCards []models.GiftCardSuggestion `json:"gift_cards"`
	}
	err := s.generateJSON(ctx, giftPrompt(description), jsonConfig(giftInstruction, giftCardSchema, 0.8), &out)
	if err != nil {
		jww.ERROR.Printf("[Advisor] failed to generate gift card ideas: %v", err)
		return nil, errGifts
	}
	if out.GiftCards == nil {
		return []models.GiftCardSuggestion{}, nil
	}
	return out.GiftCards, nil
}

// Moderate decides whether a custom observation is safe to send. When the
// verdict cannot be obtained the text is treated as unsafe.
func (s *Service) Moderate(ctx context.Context, text string) (models.ModerationResult, error) {
	var verdict models.ModerationResult
	if err := s.generateJSON(ctx, moderationPrompt(text), jsonConfig(moderationInstruction, moderationSchema, 0.2), &verdict); err != nil {
		jww.ERROR.Printf("[Advisor] moderation failed: %v", err)
		return unverified, nil
	}
	return verdict, nil
}
