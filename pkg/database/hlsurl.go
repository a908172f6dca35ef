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

// PinHlsUrl replaces the single pinned HLS origin with url (§4.4.4: at most
// one row exists at a time, truncate-then-insert semantics).
func PinHlsUrl(ctx context.Context, q querier, url string) (uint64, error) {
	if _, err := q.ExecContext(ctx, `DELETE FROM hls_urls`); err != nil {
		return 0, err
	}
	var id uint64
	err := q.QueryRowContext(ctx, `INSERT INTO hls_urls (url) VALUES ($1) RETURNING id`, url).Scan(&id)
	return id, err
}

// GetPinnedHlsUrl returns the currently pinned HLS origin, if any.
func GetPinnedHlsUrl(ctx context.Context, q querier) (string, error) {
	var url string
	err := q.QueryRowContext(ctx, `SELECT url FROM hls_urls ORDER BY id DESC LIMIT 1`).Scan(&url)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return url, err
}
