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
	"strings"

	jww "github.com/spf13/jwalterweatherman"

	"github.com/efchatnet/winkdrops/backend/middleware"
	"github.com/efchatnet/winkdrops/backend/models"
)

// AdviceService covers the AI helpers that don't touch the mailbox
type AdviceService interface {
	GenerateSocialPosts(ctx context.Context, conditions []models.PossibleCondition, resources []models.Resource, keywords string) ([]models.SocialMediaPost, error)
	GenerateGiftCardIdeas(ctx context.Context, description string) ([]models.GiftCardSuggestion, error)
	ReverseGeocode(ctx context.Context, loc models.Location) string
}

type AdviceHandler struct {
	service AdviceService
}

// NewAdviceHandler accepts a nil service; every endpoint then answers 503
func NewAdviceHandler(service AdviceService) *AdviceHandler {
	return &AdviceHandler{service: service}
}

func (h *AdviceHandler) available(w http.ResponseWriter, r *http.Request) bool {
	if _, ok := middleware.GetUserID(r); !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return false
	}
	if h.service == nil {
		http.Error(w, "AI features are not available", http.StatusServiceUnavailable)
		return false
	}
	return true
}

// SocialPosts generates illustrative posts that match the given conditions
func (h *AdviceHandler) SocialPosts(w http.ResponseWriter, r *http.Request) {
	if !h.available(w, r) {
		return
	}
	var req struct {
		Conditions []models.PossibleCondition `json:"conditions"`
		Resources  []models.Resource          `json:"resources"`
		Keywords   string                     `json:"keywords"`
	}
	if !decode(w, r, &req) {
		return
	}

	posts, err := h.service.GenerateSocialPosts(r.Context(), req.Conditions, req.Resources, req.Keywords)
	if err != nil {
		jww.WARN.Printf("[AdviceHandler] social posts failed: %v", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"posts": posts})
}

func (h *AdviceHandler) GiftIdeas(w http.ResponseWriter, r *http.Request) {
	if !h.available(w, r) {
		return
	}
	var req struct {
		Description string `json:"description"`
	}
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		http.Error(w, "Description is required", http.StatusBadRequest)
		return
	}

	ideas, err := h.service.GenerateGiftCardIdeas(r.Context(), req.Description)
	if err != nil {
		jww.WARN.Printf("[AdviceHandler] gift ideas failed: %v", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"suggestions": ideas})
}

// ReverseGeocode names the place at a coordinate. It always succeeds.
func (h *AdviceHandler) ReverseGeocode(w http.ResponseWriter, r *http.Request) {
	if !h.available(w, r) {
		return
	}
	var loc models.Location
	if !decode(w, r, &loc) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"location": h.service.ReverseGeocode(r.Context(), loc)})
}
