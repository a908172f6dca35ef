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

// GetAttribute fetches one attribute by id, used by the `/attr/{id}` proxy
// lookup (§4.5 render-time proxification of URL-typed attribute values).
func GetAttribute(ctx context.Context, q querier, id uint64) (models.Attribute, error) {
	var a models.Attribute
	row := q.QueryRowContext(ctx, `SELECT id, extinf_id, key, value FROM attributes WHERE id = $1`, id)
	err := row.Scan(&a.ID, &a.ExtInfID, &a.Key, &a.Value)
	if errors.Is(err, sql.ErrNoRows) {
		return a, ErrNotFound
	}
	return a, err
}

// InsertAttribute inserts one EXTINF tag for an already-inserted ExtInf.
func InsertAttribute(ctx context.Context, q querier, a models.Attribute) (uint64, error) {
	var id uint64
	err := q.QueryRowContext(ctx, `
		INSERT INTO attributes (extinf_id, key, value)
		VALUES ($1, $2, $3)
		RETURNING id
	`, a.ExtInfID, a.Key, a.Value).Scan(&id)
	return id, err
}

// ListAttributesByExtInf returns every attribute attached to one ExtInf.
func ListAttributesByExtInf(ctx context.Context, q querier, extInfID uint64) ([]models.Attribute, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, extinf_id, key, value FROM attributes WHERE extinf_id = $1 ORDER BY id ASC
	`, extInfID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Attribute
	for rows.Next() {
		var a models.Attribute
		if err := rows.Scan(&a.ID, &a.ExtInfID, &a.Key, &a.Value); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListAttributesByM3u returns every attribute attached to any ExtInf under
// m3uID, keyed by extinf_id — used to batch-rehydrate a whole
// playlist version without an N+1 query per channel (§4.3 GetProvider).
func ListAttributesByM3u(ctx context.Context, q querier, m3uID uint64) (map[uint64][]models.Attribute, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT a.id, a.extinf_id, a.key, a.value
		FROM attributes a
		JOIN extinfs e ON e.id = a.extinf_id
		WHERE e.m3u_id = $1
		ORDER BY a.extinf_id ASC, a.id ASC
	`, m3uID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[uint64][]models.Attribute{}
	for rows.Next() {
		var a models.Attribute
		if err := rows.Scan(&a.ID, &a.ExtInfID, &a.Key, &a.Value); err != nil {
			return nil, err
		}
		out[a.ExtInfID] = append(out[a.ExtInfID], a)
	}
	return out, rows.Err()
}

// DeleteAttributesByM3u removes every attribute attached to any ExtInf under
// m3uID, used as one step of the cascade delete in DeleteProvider.
func DeleteAttributesByM3u(ctx context.Context, q querier, m3uID uint64) error {
	_, err := q.ExecContext(ctx, `
		DELETE FROM attributes WHERE extinf_id IN (SELECT id FROM extinfs WHERE m3u_id = $1)
	`, m3uID)
	return err
}
