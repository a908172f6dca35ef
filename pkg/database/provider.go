/*
 * iptv-aggregator is a project to proxy and aggregate IPTV providers behind a single identity.
 * Copyright (C) 2025  Lucas Duport
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lucasduport/iptv-aggregator/pkg/models"
)

// ErrNotFound is returned by single-row lookups that find nothing (§7 NotFound).
var ErrNotFound = errors.New("not found")

// InsertProvider inserts a new Provider row. created_at/modified_at default
// to now() and are never mutated afterwards (§3).
func InsertProvider(ctx context.Context, q querier, p models.Provider) (uint64, error) {
	var id uint64
	err := q.QueryRowContext(ctx, `
		INSERT INTO providers (name, source, groups_count, channels_count)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, p.Name, p.Source, p.GroupsCount, p.ChannelsCount).Scan(&id)
	return id, err
}

// GetProvider fetches one Provider by id.
func GetProvider(ctx context.Context, q querier, id uint64) (models.Provider, error) {
	var p models.Provider
	row := q.QueryRowContext(ctx, `
		SELECT id, COALESCE(name, ''), source, groups_count, channels_count, created_at, modified_at
		FROM providers WHERE id = $1
	`, id)
	err := row.Scan(&p.ID, &p.Name, &p.Source, &p.GroupsCount, &p.ChannelsCount, &p.CreatedAt, &p.ModifiedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	return p, err
}

// ListProviders returns all Providers, used by RefreshProviders (§4.3) and
// the Scheduler's obsolete-version purge (§4.6).
func ListProviders(ctx context.Context, q querier) ([]models.Provider, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, COALESCE(name, ''), source, groups_count, channels_count, created_at, modified_at
		FROM providers ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Provider
	for rows.Next() {
		var p models.Provider
		if err := rows.Scan(&p.ID, &p.Name, &p.Source, &p.GroupsCount, &p.ChannelsCount, &p.CreatedAt, &p.ModifiedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetLatestProviderBySource returns the newest-by-created_at Provider row
// whose source equals sourceURL, or ErrNotFound (§4.3 GetLatestProviderEntry).
func GetLatestProviderBySource(ctx context.Context, q querier, sourceURL string) (models.Provider, error) {
	var p models.Provider
	row := q.QueryRowContext(ctx, `
		SELECT id, COALESCE(name, ''), source, groups_count, channels_count, created_at, modified_at
		FROM providers WHERE source = $1
		ORDER BY created_at DESC LIMIT 1
	`, sourceURL)
	err := row.Scan(&p.ID, &p.Name, &p.Source, &p.GroupsCount, &p.ChannelsCount, &p.CreatedAt, &p.ModifiedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	return p, err
}

// DeleteProvider removes exactly the provider row; cascade order is the
// caller's responsibility (see Service.DeleteProvider in
// pkg/catalog/service.go).
func DeleteProvider(ctx context.Context, q querier, id uint64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM providers WHERE id = $1`, id)
	return err
}
