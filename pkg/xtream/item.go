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

package xtream

import "encoding/json"

// HasId is the capability every filterable Xtream shape implements (§9
// "Dynamic JSON shapes"): live/vod streams compare by stream_id, series and
// series info compare by category_id. Discharged via this interface instead
// of deep inheritance.
type HasId interface {
	ID() string
}

// Item is one element of a dynamic Xtream JSON response: known fields used
// for filtering, plus the full original object preserved verbatim so every
// vendor-specific field the proxy doesn't understand survives a round-trip.
// Grounded on the teacher's FFMPEGStreamInfo.Fields raw-bytes retention,
// generalized into a reusable shape instead of one ad hoc struct.
type Item struct {
	StreamID   json.Number `json:"-"`
	CategoryID json.Number `json:"-"`

	raw json.RawMessage
}

type itemKnownFields struct {
	StreamID   json.Number `json:"stream_id"`
	CategoryID json.Number `json:"category_id"`
}

// UnmarshalJSON decodes both the known comparison fields and the full raw
// object, so MarshalJSON can later re-emit every field unchanged.
func (it *Item) UnmarshalJSON(data []byte) error {
	it.raw = append(json.RawMessage(nil), data...)

	var known itemKnownFields
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	it.StreamID = known.StreamID
	it.CategoryID = known.CategoryID
	return nil
}

// MarshalJSON re-emits the original object verbatim (the opaque remainder),
// including any field the proxy never inspected.
func (it Item) MarshalJSON() ([]byte, error) {
	if it.raw == nil {
		return []byte("null"), nil
	}
	return it.raw, nil
}

// ID implements HasId: stream_id when present (live/vod), else category_id
// (series, series info).
func (it Item) ID() string {
	if it.StreamID != "" {
		return it.StreamID.String()
	}
	return it.CategoryID.String()
}

// FilterOut returns items whose ID is not in excluded.
func FilterOut(items []Item, excluded map[string]bool) []Item {
	if len(excluded) == 0 {
		return items
	}
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if !excluded[it.ID()] {
			out = append(out, it)
		}
	}
	return out
}

// category is the known shape of one *_categories response entry.
type category struct {
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
	raw          json.RawMessage
}

func (c *category) UnmarshalJSON(data []byte) error {
	c.raw = append(json.RawMessage(nil), data...)
	type alias category
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	c.CategoryID, c.CategoryName = a.CategoryID, a.CategoryName
	return nil
}

func (c category) MarshalJSON() ([]byte, error) {
	if c.raw == nil {
		return []byte("null"), nil
	}
	return c.raw, nil
}

// FilterCategoriesByName retains only categories whose name is in included.
func FilterCategoriesByName(raw []byte, included map[string]bool) ([]byte, error) {
	var cats []category
	if err := json.Unmarshal(raw, &cats); err != nil {
		return nil, err
	}
	out := make([]category, 0, len(cats))
	for _, c := range cats {
		if included[c.CategoryName] {
			out = append(out, c)
		}
	}
	return json.Marshal(out)
}
