// Copyright (C) 2025 efchat.net <tj@efchat.net>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package postgres

import (
	"context"

	"github.com/efchatnet/winkdrops/backend/models"
)

func (s *Store) AddCommunityExperience(ctx context.Context, exp models.CommunityExperience) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO community_experiences (experience_id, text, created_at)
		VALUES ($1, $2, $3)`,
		exp.ID, exp.Text, exp.Timestamp)
	return err
}

// ListCommunityExperiences returns the newest experiences first
func (s *Store) ListCommunityExperiences(ctx context.Context, limit int) ([]models.CommunityExperience, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT experience_id, text, created_at
		FROM community_experiences
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	experiences := []models.CommunityExperience{}
	for rows.Next() {
		var exp models.CommunityExperience
		if err := rows.Scan(&exp.ID, &exp.Text, &exp.Timestamp); err != nil {
			return nil, err
		}
		experiences = append(experiences, exp)
	}
	return experiences, rows.Err()
}
