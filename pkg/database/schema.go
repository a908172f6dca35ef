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
	"fmt"

	"github.com/lucasduport/iptv-aggregator/pkg/utils"
)

func (s *Store) initSchema(ctx context.Context) error {
	utils.InfoLog("initializing catalog schema")

	statements := []string{
		`CREATE TABLE IF NOT EXISTS providers (
			id SERIAL PRIMARY KEY,
			name TEXT,
			source TEXT NOT NULL,
			groups_count INTEGER NOT NULL DEFAULT 0,
			channels_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			modified_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_providers_source ON providers (source)`,
		`CREATE TABLE IF NOT EXISTS m3us (
			id SERIAL PRIMARY KEY,
			provider_id INTEGER NOT NULL REFERENCES providers(id),
			domain TEXT NOT NULL DEFAULT '',
			port TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			modified_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_m3us_provider ON m3us (provider_id)`,
		`CREATE TABLE IF NOT EXISTS extinfs (
			id SERIAL PRIMARY KEY,
			m3u_id INTEGER NOT NULL REFERENCES m3us(id),
			name TEXT NOT NULL,
			url TEXT NOT NULL,
			track_id TEXT,
			prefix TEXT NOT NULL DEFAULT '',
			extension TEXT,
			exclude BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_extinfs_m3u ON extinfs (m3u_id)`,
		`CREATE INDEX IF NOT EXISTS idx_extinfs_m3u_prefix_exclude ON extinfs (m3u_id, prefix, exclude)`,
		`CREATE TABLE IF NOT EXISTS attributes (
			id SERIAL PRIMARY KEY,
			extinf_id INTEGER NOT NULL REFERENCES extinfs(id),
			key TEXT NOT NULL,
			value TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_attributes_extinf ON attributes (extinf_id)`,
		`CREATE TABLE IF NOT EXISTS groups (
			id SERIAL PRIMARY KEY,
			m3u_id INTEGER NOT NULL REFERENCES m3us(id),
			name TEXT NOT NULL,
			exclude BOOLEAN NOT NULL DEFAULT FALSE,
			xtream_cat_id TEXT,
			UNIQUE (m3u_id, name)
		)`,
		`CREATE TABLE IF NOT EXISTS hls_urls (
			id SERIAL PRIMARY KEY,
			url TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS xtream_urls (
			id SERIAL PRIMARY KEY,
			m3u_id INTEGER NOT NULL REFERENCES m3us(id),
			url TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS xmltv_urls (
			id SERIAL PRIMARY KEY,
			url TEXT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}

	utils.InfoLog("catalog schema ready")
	return nil
}
