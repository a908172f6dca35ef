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

// InsertExtInf inserts one channel entry and returns its id.
func InsertExtInf(ctx context.Context, q querier, e models.ExtInf) (uint64, error) {
	var id uint64
	err := q.QueryRowContext(ctx, `
		INSERT INTO extinfs (m3u_id, name, url, track_id, prefix, extension, exclude)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, e.M3uID, e.Name, e.URL, e.TrackID, e.Prefix, e.Extension, e.Exclude).Scan(&id)
	return id, err
}

// GetExtInf fetches one ExtInf by id, without its attributes.
func GetExtInf(ctx context.Context, q querier, id uint64) (models.ExtInf, error) {
	var e models.ExtInf
	row := q.QueryRowContext(ctx, `
		SELECT id, m3u_id, name, url, COALESCE(track_id, ''), prefix, COALESCE(extension, ''), exclude
		FROM extinfs WHERE id = $1
	`, id)
	err := row.Scan(&e.ID, &e.M3uID, &e.Name, &e.URL, &e.TrackID, &e.Prefix, &e.Extension, &e.Exclude)
	if errors.Is(err, sql.ErrNoRows) {
		return e, ErrNotFound
	}
	return e, err
}

// ListExtInfsByM3u returns every ExtInf belonging to a playlist version, in
// insertion order, without attributes loaded.
func ListExtInfsByM3u(ctx context.Context, q querier, m3uID uint64) ([]models.ExtInf, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, m3u_id, name, url, COALESCE(track_id, ''), prefix, COALESCE(extension, ''), exclude
		FROM extinfs WHERE m3u_id = $1 ORDER BY id ASC
	`, m3uID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ExtInf
	for rows.Next() {
		var e models.ExtInf
		if err := rows.Scan(&e.ID, &e.M3uID, &e.Name, &e.URL, &e.TrackID, &e.Prefix, &e.Extension, &e.Exclude); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListExcludeEligibleTrackIDs returns the track_ids of ExtInfs under m3uID
// that are both marked excluded and match prefix (§4.3
// GetExcludeEligibleByM3uId, consumed by §4.4 stream-list filtering).
func ListExcludeEligibleTrackIDs(ctx context.Context, q querier, m3uID uint64, prefix string) ([]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT COALESCE(track_id, '') FROM extinfs
		WHERE m3u_id = $1 AND prefix = $2 AND exclude = TRUE ORDER BY id ASC
	`, m3uID, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var trackID string
		if err := rows.Scan(&trackID); err != nil {
			return nil, err
		}
		out = append(out, trackID)
	}
	return out, rows.Err()
}

// SetExtInfExclude flips the exclude flag for one channel entry.
func SetExtInfExclude(ctx context.Context, q querier, id uint64, exclude bool) error {
	_, err := q.ExecContext(ctx, `UPDATE extinfs SET exclude = $2 WHERE id = $1`, id, exclude)
	return err
}

// DeleteExtInfsByM3u removes every ExtInf belonging to a playlist version.
func DeleteExtInfsByM3u(ctx context.Context, q querier, m3uID uint64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM extinfs WHERE m3u_id = $1`, m3uID)
	return err
}
