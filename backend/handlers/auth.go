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

	"github.com/badoux/checkmail"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"golang.org/x/crypto/bcrypt"

	"github.com/efchatnet/winkdrops/backend/middleware"
	"github.com/efchatnet/winkdrops/backend/models"
	"github.com/efchatnet/winkdrops/backend/session"
	"github.com/efchatnet/winkdrops/backend/storage"
)

const (
	DemoEmail    = "user@winkdrops.com"
	DemoPassword = "password123"
)

var demoUser = models.User{
	ID:       "user-123",
	Name:     "Demo User",
	Email:    DemoEmail,
	Consents: models.DefaultConsents(),
}

var googleUser = models.User{
	ID:         "google-user-456",
	Name:       "Google User",
	Email:      "google.user@example.com",
	MFAEnabled: true,
	Consents:   models.DefaultConsents(),
}

const invalidCredentials = "Invalid email or password."

type AuthHandler struct {
	accounts storage.AccountStore
	prefs    storage.PreferenceStore
	sessions *session.Registry
	jwt      *middleware.JWTConfig
}

func NewAuthHandler(accounts storage.AccountStore, prefs storage.PreferenceStore, sessions *session.Registry, jwt *middleware.JWTConfig) *AuthHandler {
	return &AuthHandler{accounts: accounts, prefs: prefs, sessions: sessions, jwt: jwt}
}

// EnsureDemoAccounts seeds the password demo account and the account
// behind the mocked Google sign-in. Existing accounts are left alone.
func EnsureDemoAccounts(ctx context.Context, accounts storage.AccountStore) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "failed to hash demo password")
	}
	seed := []models.Account{
		{User: demoUser, PasswordHash: hash},
		{User: googleUser},
	}
	for _, a := range seed {
		err := accounts.CreateAccount(ctx, a)
		if err != nil && !errors.Is(err, storage.ErrEmailExists) {
			return errors.Wrapf(err, "failed to seed account %s", a.Email)
		}
	}
	return nil
}

type authResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func (h *AuthHandler) issue(w http.ResponseWriter, status int, u models.User) {
	token, err := middleware.SignJWT(middleware.Claims{UserID: u.ID, Email: u.Email, Name: u.Name}, h.jwt)
	if err != nil {
		jww.ERROR.Printf("[AuthHandler] failed to sign token for user %s: %v", u.ID, err)
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, status, authResponse{Token: token, User: u})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}

	account, err := h.accounts.GetAccountByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			jww.ERROR.Printf("[AuthHandler] account lookup failed: %v", err)
			http.Error(w, "Login failed", http.StatusInternalServerError)
			return
		}
		http.Error(w, invalidCredentials, http.StatusUnauthorized)
		return
	}
	// accounts without a password hash sign in through a provider only
	if len(account.PasswordHash) == 0 ||
		bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(req.Password)) != nil {
		http.Error(w, invalidCredentials, http.StatusUnauthorized)
		return
	}

	jww.INFO.Printf("[AuthHandler] user %s logged in", account.ID)
	h.issue(w, http.StatusOK, account.User)
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Password == "" {
		http.Error(w, "Name, email and password are required", http.StatusBadRequest)
		return
	}
	if err := checkmail.ValidateFormat(req.Email); err != nil {
		http.Error(w, "Please enter a valid email address", http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Password cannot be used", http.StatusBadRequest)
		return
	}
	account := models.Account{
		User: models.User{
			ID:       "user-" + uuid.New().String(),
			Name:     req.Name,
			Email:    req.Email,
			Consents: models.DefaultConsents(),
		},
		PasswordHash: hash,
	}

	err = h.accounts.CreateAccount(r.Context(), account)
	if errors.Is(err, storage.ErrEmailExists) {
		http.Error(w, "An account with this email already exists.", http.StatusConflict)
		return
	}
	if err != nil {
		jww.ERROR.Printf("[AuthHandler] failed to create account: %v", err)
		http.Error(w, "Signup failed", http.StatusInternalServerError)
		return
	}

	jww.INFO.Printf("[AuthHandler] created account %s", account.ID)
	h.issue(w, http.StatusCreated, account.User)
}

// GoogleSignIn stands in for an OAuth flow and always signs in the same
// provider account
func (h *AuthHandler) GoogleSignIn(w http.ResponseWriter, r *http.Request) {
	h.issue(w, http.StatusOK, googleUser)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	account, err := h.accounts.GetAccount(r.Context(), userID)
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "Account not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jww.ERROR.Printf("[AuthHandler] failed to load account %s: %v", userID, err)
		http.Error(w, "Failed to load account", http.StatusInternalServerError)
		return
	}

	onboarded, err := h.prefs.OnboardingCompleted(r.Context(), userID)
	if err != nil {
		jww.WARN.Printf("[AuthHandler] failed to read onboarding flag for %s: %v", userID, err)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":                account.User,
		"onboardingCompleted": onboarded,
	})
}

func (h *AuthHandler) UpdateConsents(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var consents models.Consents
	if !decode(w, r, &consents) {
		return
	}

	err := h.accounts.UpdateConsents(r.Context(), userID, consents)
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "Account not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jww.ERROR.Printf("[AuthHandler] failed to update consents for %s: %v", userID, err)
		http.Error(w, "Failed to update consents", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, consents)
}

// CompleteOnboarding records that the user finished the intro flow
func (h *AuthHandler) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if err := h.prefs.SetOnboardingCompleted(r.Context(), userID, true); err != nil {
		jww.WARN.Printf("[AuthHandler] failed to persist onboarding flag for %s: %v", userID, err)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"onboardingCompleted": true})
}

// Logout drops the user's live session. Tokens stay valid until they expire.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	h.sessions.Close(userID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}
