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
)

// InsertXtreamUrl records an opaque mapping to an original upstream URL
// discovered while deep-proxifying an Xtream JSON response (§4.4.5). Rows
// are immutable once written; repeated URLs under the same m3u simply get
// a new id, the Xtream Service is responsible for any caching it wants.
func InsertXtreamUrl(ctx context.Context, q querier, m3uID uint64, url string) (uint64, error) {
	var id uint64
	err := q.QueryRowContext(ctx, `
		INSERT INTO xtream_urls (m3u_id, url) VALUES ($1, $2) RETURNING id
	`, m3uID, url).Scan(&id)
	return id, err
}

// GetXtreamUrl resolves an opaque id back to its original URL.
func GetXtreamUrl(ctx context.Context, q querier, id uint64) (string, error) {
	var url string
	row := q.QueryRowContext(ctx, `SELECT url FROM xtream_urls WHERE id = $1`, id)
	err := row.Scan(&url)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return url, err
}

// DeleteXtreamUrlsByM3u removes every recorded mapping for a playlist
// version, used by the cascade delete in DeleteProvider.
func DeleteXtreamUrlsByM3u(ctx context.Context, q querier, m3uID uint64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM xtream_urls WHERE m3u_id = $1`, m3uID)
	return err
}
