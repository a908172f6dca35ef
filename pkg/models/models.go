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

// Package models holds the catalog domain entities (§3 of the design) shared
// between the Catalog Store, Catalog Service, Playlist Parser/Renderer and
// Xtream Service.
package models

import "time"

// Provider is one ingest snapshot of an upstream source. Multiple Providers
// may share the same Source; each row represents catalog state at a point
// in time, never mutated after insert.
type Provider struct {
	ID             uint64    `json:"id"`
	Name           string    `json:"name,omitempty"`
	Source         string    `json:"source"`
	GroupsCount    int       `json:"groups_count"`
	ChannelsCount  int       `json:"channels_count"`
	CreatedAt      time.Time `json:"created_at"`
	ModifiedAt     time.Time `json:"modified_at"`
}

// M3u is one playlist version belonging to a Provider. It also carries the
// upstream domain/port used to reconstruct Xtream streaming URLs (§4.4.4).
type M3u struct {
	ID         uint64    `json:"id"`
	ProviderID uint64    `json:"provider_id"`
	Domain     string    `json:"domain"`
	Port       string    `json:"port,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// ExtInf is a single parsed playlist channel entry.
type ExtInf struct {
	ID        uint64 `json:"id"`
	M3uID     uint64 `json:"m3u_id"`
	Name      string `json:"name"`
	URL       string `json:"url"`
	TrackID   string `json:"track_id,omitempty"`
	Prefix    string `json:"prefix,omitempty"` // live | movie | series | ""
	Extension string `json:"extension,omitempty"`
	Exclude   bool   `json:"exclude"`

	Attributes []Attribute `json:"attributes,omitempty"`
}

// Attribute is an opaque EXTINF tag (tvg-id, tvg-logo, group-title, ...).
type Attribute struct {
	ID       uint64 `json:"id"`
	ExtInfID uint64 `json:"extinf_id"`
	Key      string `json:"key"`
	Value    string `json:"value"`
}

// Group is a deduplicated group-title, one per m3u version.
type Group struct {
	ID          uint64 `json:"id"`
	M3uID       uint64 `json:"m3u_id"`
	Name        string `json:"name"`
	Exclude     bool   `json:"exclude"`
	XtreamCatID string `json:"xtream_cat_id,omitempty"`
}

// HlsUrl is the single-slot pinned origin of the most recently redirected
// HLS stream (§4.4.4). At most one row exists at a time.
type HlsUrl struct {
	ID  uint64 `json:"id"`
	URL string `json:"url"`
}

// XtreamUrl maps an opaque id to an original upstream URL discovered during
// deep JSON proxification (§4.4.5). Rows are immutable once written.
type XtreamUrl struct {
	ID    uint64 `json:"id"`
	M3uID uint64 `json:"m3u_id"`
	URL   string `json:"url"`
}

// XmltvUrl maps an opaque id to an original XMLTV icon URL.
type XmltvUrl struct {
	ID  uint64 `json:"id"`
	URL string `json:"url"`
}

// ParsedM3u is the Playlist Parser's output: a flat, deduplicated slice of
// extinfs and groups ready for transactional insertion.
type ParsedM3u struct {
	ExtInfs []ExtInf
	Groups  []Group

	TotalLines             int
	InvalidLines           int
	InvalidExtinfEntries   int
}

// ProviderDTO is the rehydrated view returned by GetProvider (§4.3).
type ProviderDTO struct {
	Provider Provider `json:"provider"`
	M3u      M3u      `json:"m3u"`
	ExtInfs  []ExtInf `json:"extinfs"`
}
