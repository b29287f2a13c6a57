// Copyright (C) 2025 efchat.net <tj@efchat.net>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package config reads server settings from flags, WINKDROPS_* environment
// variables and an optional .env file, in that order of precedence.
package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const EnvPrefix = "WINKDROPS"

// Keys shared by the flag set and the environment
const (
	KeyPort           = "port"
	KeyDatabaseURL    = "database_url"
	KeyRedisURL       = "redis_url"
	KeyJWTSecret      = "jwt_secret"
	KeyJWTIssuer      = "jwt_issuer"
	KeyJWTTTL         = "jwt_ttl"
	KeyGeminiAPIKey   = "gemini_api_key"
	KeyGeminiModel    = "gemini_model"
	KeyLogLevel       = "log_level"
	KeyAIRate         = "ai_rps"
	KeyAIBurst        = "ai_burst"
	KeyAllowedOrigins = "allowed_origins"
)

var ErrMissingJWTSecret = errors.New("jwt_secret is required (set WINKDROPS_JWT_SECRET)")

type Config struct {
	Port           string
	DatabaseURL    string
	RedisURL       string
	JWTSecret      string
	JWTIssuer      string
	JWTTTL         time.Duration
	GeminiAPIKey   string
	GeminiModel    string
	LogLevel       uint
	AIRate         float64
	AIBurst        int
	AllowedOrigins []string
}

// SetDefaults registers defaults and environment bindings on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyPort, "8081")
	v.SetDefault(KeyDatabaseURL, "postgres://localhost/winkdrops?sslmode=disable")
	v.SetDefault(KeyRedisURL, "localhost:6379")
	v.SetDefault(KeyJWTIssuer, "winkdrops")
	v.SetDefault(KeyJWTTTL, 24*time.Hour)
	v.SetDefault(KeyGeminiModel, "gemini-2.5-flash")
	v.SetDefault(KeyLogLevel, 0)
	v.SetDefault(KeyAIRate, 1.0)
	v.SetDefault(KeyAIBurst, 5)
	v.SetDefault(KeyAllowedOrigins, "*")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// LoadDotEnv reads .env files into the process environment. Missing files
// are ignored and variables already set are kept.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// Load reads the settings from v
func Load(v *viper.Viper) (*Config, error) {
	c := &Config{
		Port:         v.GetString(KeyPort),
		DatabaseURL:  v.GetString(KeyDatabaseURL),
		RedisURL:     v.GetString(KeyRedisURL),
		JWTSecret:    v.GetString(KeyJWTSecret),
		JWTIssuer:    v.GetString(KeyJWTIssuer),
		JWTTTL:       v.GetDuration(KeyJWTTTL),
		GeminiAPIKey: v.GetString(KeyGeminiAPIKey),
		GeminiModel:  v.GetString(KeyGeminiModel),
		LogLevel:     v.GetUint(KeyLogLevel),
		AIRate:       v.GetFloat64(KeyAIRate),
		AIBurst:      v.GetInt(KeyAIBurst),
	}
	for _, o := range strings.Split(v.GetString(KeyAllowedOrigins), ",") {
		if o = strings.TrimSpace(o); o != "" {
			c.AllowedOrigins = append(c.AllowedOrigins, o)
		}
	}

	if c.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}
	if c.AIRate <= 0 || c.AIBurst <= 0 {
		return nil, errors.Errorf("ai_rps and ai_burst must be positive, got %v and %d", c.AIRate, c.AIBurst)
	}
	return c, nil
}
