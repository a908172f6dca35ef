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

// InsertXmltvUrl records an opaque mapping to an original XMLTV icon URL
// (§4.4.6). The Xtream Service forwards xmltv.php bodies unchanged and does
// not call it.
func InsertXmltvUrl(ctx context.Context, q querier, url string) (uint64, error) {
	var id uint64
	err := q.QueryRowContext(ctx, `INSERT INTO xmltv_urls (url) VALUES ($1) RETURNING id`, url).Scan(&id)
	return id, err
}

// GetXmltvUrl resolves an opaque id back to its original URL.
func GetXmltvUrl(ctx context.Context, q querier, id uint64) (string, error) {
	var url string
	row := q.QueryRowContext(ctx, `SELECT url FROM xmltv_urls WHERE id = $1`, id)
	err := row.Scan(&url)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return url, err
}
