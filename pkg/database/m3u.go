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

// InsertM3u inserts a new M3u version row for a provider.
func InsertM3u(ctx context.Context, q querier, m models.M3u) (uint64, error) {
	var id uint64
	err := q.QueryRowContext(ctx, `
		INSERT INTO m3us (provider_id, domain, port)
		VALUES ($1, $2, $3)
		RETURNING id
	`, m.ProviderID, m.Domain, m.Port).Scan(&id)
	return id, err
}

// GetM3u fetches one M3u by id.
func GetM3u(ctx context.Context, q querier, id uint64) (models.M3u, error) {
	var m models.M3u
	row := q.QueryRowContext(ctx, `
		SELECT id, provider_id, domain, COALESCE(port, ''), created_at, modified_at
		FROM m3us WHERE id = $1
	`, id)
	err := row.Scan(&m.ID, &m.ProviderID, &m.Domain, &m.Port, &m.CreatedAt, &m.ModifiedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return m, ErrNotFound
	}
	return m, err
}

// GetLatestM3uByProvider returns the newest M3u version belonging to a
// provider, used to rehydrate the current playlist for GetProvider (§4.3).
func GetLatestM3uByProvider(ctx context.Context, q querier, providerID uint64) (models.M3u, error) {
	var m models.M3u
	row := q.QueryRowContext(ctx, `
		SELECT id, provider_id, domain, COALESCE(port, ''), created_at, modified_at
		FROM m3us WHERE provider_id = $1
		ORDER BY created_at DESC LIMIT 1
	`, providerID)
	err := row.Scan(&m.ID, &m.ProviderID, &m.Domain, &m.Port, &m.CreatedAt, &m.ModifiedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return m, ErrNotFound
	}
	return m, err
}

// DeleteM3usByProvider removes every M3u version belonging to a provider.
func DeleteM3usByProvider(ctx context.Context, q querier, providerID uint64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM m3us WHERE provider_id = $1`, providerID)
	return err
}
