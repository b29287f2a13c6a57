// Copyright (C) 2025 efchat.net <tj@efchat.net>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/efchatnet/winkdrops/backend/mailbox"
	"github.com/efchatnet/winkdrops/backend/middleware"
	"github.com/efchatnet/winkdrops/backend/models"
	"github.com/efchatnet/winkdrops/backend/session"
	"github.com/efchatnet/winkdrops/backend/storage"
	redisStore "github.com/efchatnet/winkdrops/backend/storage/redis"
)

// memoryStore stands in for Postgres in handler tests
type memoryStore struct {
	mu          sync.Mutex
	accounts    map[string]models.Account
	experiences []models.CommunityExperience
}

func newMemoryStore() *memoryStore {
	return &memoryStore{accounts: make(map[string]models.Account)}
}

func (m *memoryStore) CreateAccount(_ context.Context, a models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.accounts {
		if strings.EqualFold(existing.Email, a.Email) {
			return storage.ErrEmailExists
		}
	}
	a.Email = strings.ToLower(a.Email)
	m.accounts[a.ID] = a
	return nil
}

func (m *memoryStore) GetAccountByEmail(_ context.Context, email string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Email == strings.ToLower(email) {
			return &a, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *memoryStore) GetAccount(_ context.Context, userID string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &a, nil
}

func (m *memoryStore) UpdateConsents(_ context.Context, userID string, c models.Consents) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[userID]
	if !ok {
		return storage.ErrNotFound
	}
	a.Consents = c
	m.accounts[userID] = a
	return nil
}

func (m *memoryStore) AddCommunityExperience(_ context.Context, exp models.CommunityExperience) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.experiences = append(m.experiences, exp)
	return nil
}

func (m *memoryStore) ListCommunityExperiences(_ context.Context, limit int) ([]models.CommunityExperience, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]models.CommunityExperience(nil), m.experiences...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type testEnv struct {
	mr        *miniredis.Miniredis
	rdb       *redis.Client
	prefs     *redisStore.PreferenceStore
	publisher *redisStore.Publisher
	store     *memoryStore
	sessions  *session.Registry
}

func newTestEnv(t *testing.T, advisor mailbox.Advisor) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	prefs := redisStore.NewPreferenceStore(rdb)
	publisher := redisStore.NewPublisher(rdb)
	return &testEnv{
		mr:        mr,
		rdb:       rdb,
		prefs:     prefs,
		publisher: publisher,
		store:     newMemoryStore(),
		sessions:  session.NewRegistry(prefs, publisher, advisor),
	}
}

// call runs h for userID with the given path variables and JSON body
func call(t *testing.T, h http.HandlerFunc, method, userID string, vars map[string]string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, "/", &buf)
	if userID != "" {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

// fakeAdvisor returns canned AI content
type fakeAdvisor struct {
	unsafe     bool
	contentErr error
}

func (f *fakeAdvisor) GenerateWinkContent(context.Context, []models.Observable) (*models.AIGeneratedContent, error) {
	if f.contentErr != nil {
		return nil, f.contentErr
	}
	return &models.AIGeneratedContent{
		Disclaimer:         "Not a diagnosis.",
		PossibleConditions: []models.PossibleCondition{{Name: "Stress", Likelihood: models.LikelihoodLow}},
	}, nil
}

func (f *fakeAdvisor) GenerateUpdateSuggestions(context.Context, []models.Observable) ([]string, error) {
	return []string{"Seems brighter lately."}, nil
}

func (f *fakeAdvisor) FindLocalResources(context.Context, []models.PossibleCondition, models.Location) (*models.GroundedContent, error) {
	return &models.GroundedContent{Text: "A clinic nearby."}, nil
}

func (f *fakeAdvisor) FindSocialResources(context.Context, []models.PossibleCondition) (*models.GroundedContent, error) {
	return &models.GroundedContent{Text: "An online group."}, nil
}

func (f *fakeAdvisor) Moderate(context.Context, string) (models.ModerationResult, error) {
	if f.unsafe {
		return models.ModerationResult{IsSafe: false, Reason: "Please keep it kind."}, nil
	}
	return models.ModerationResult{IsSafe: true}, nil
}

func receivedWink(id, recipient string) *models.Message {
	return &models.Message{
		ID:   id,
		Type: models.TypeWink,
		Wink: &models.Wink{
			Recipient:   recipient,
			Observables: []models.Observable{{ID: "p1", Text: "Seems tired", Category: models.CategoryPhysical}},
		},
	}
}
