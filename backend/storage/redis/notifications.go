// Copyright (C) 2025 efchat.net <tj@efchat.net>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package redis

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/efchatnet/winkdrops/backend/models"
)

// Publisher delivers notifications over a per-user pub/sub channel
type Publisher struct {
	rdb *redis.Client
}

func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb}
}

// Show publishes n for real-time delivery to the user's open clients
func (p *Publisher) Show(ctx context.Context, userID string, n models.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return errors.Wrap(err, "failed to marshal notification")
	}
	if err := p.rdb.Publish(ctx, notifyChannelPrefix+userID, data).Err(); err != nil {
		return errors.Wrap(err, "failed to publish notification")
	}
	return nil
}

// Subscribe opens the user's notification channel. The caller closes it.
func (p *Publisher) Subscribe(ctx context.Context, userID string) *redis.PubSub {
	return p.rdb.Subscribe(ctx, notifyChannelPrefix+userID)
}
