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

	"github.com/lib/pq"
	"github.com/lucasduport/iptv-aggregator/pkg/models"
)

// InsertGroup inserts a deduplicated group-title for one m3u version.
// A repeat of an existing (m3u_id, name) pair is not an error: the
// ON CONFLICT clause leaves that row unchanged and returns its id.
func InsertGroup(ctx context.Context, q querier, g models.Group) (uint64, error) {
	var id uint64
	var xtreamCatID interface{}
	if g.XtreamCatID != "" {
		xtreamCatID = g.XtreamCatID
	}
	err := q.QueryRowContext(ctx, `
		INSERT INTO groups (m3u_id, name, exclude, xtream_cat_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (m3u_id, name) DO UPDATE SET name = groups.name
		RETURNING id
	`, g.M3uID, g.Name, g.Exclude, xtreamCatID).Scan(&id)
	return id, err
}

// ListGroupsByM3u returns every group for one playlist version.
func ListGroupsByM3u(ctx context.Context, q querier, m3uID uint64) ([]models.Group, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, m3u_id, name, exclude, COALESCE(xtream_cat_id, '') FROM groups WHERE m3u_id = $1 ORDER BY name ASC
	`, m3uID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Group
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.M3uID, &g.Name, &g.Exclude, &g.XtreamCatID); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// UpdateGroupXtreamCatID persists the Xtream category id discovered during
// enrichment (§4.2).
func UpdateGroupXtreamCatID(ctx context.Context, q querier, id uint64, xtreamCatID string) error {
	_, err := q.ExecContext(ctx, `UPDATE groups SET xtream_cat_id = $2 WHERE id = $1`, id, xtreamCatID)
	return err
}

// SetGroupExclude flips the exclude flag for one group.
func SetGroupExclude(ctx context.Context, q querier, id uint64, exclude bool) error {
	_, err := q.ExecContext(ctx, `UPDATE groups SET exclude = $2 WHERE id = $1`, id, exclude)
	return err
}

// DeleteGroupsByM3u removes every group belonging to a playlist version.
func DeleteGroupsByM3u(ctx context.Context, q querier, m3uID uint64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM groups WHERE m3u_id = $1`, m3uID)
	return err
}

// duplicateKeyError reports whether err is a Postgres unique-violation,
// kept for callers that want to distinguish it from other write failures.
func duplicateKeyError(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == "23505"
}
