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

package playlist

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/jamesnetherton/m3u"
	"github.com/lucasduport/iptv-aggregator/pkg/models"
	"github.com/lucasduport/iptv-aggregator/pkg/utils"
)

// RenderConfig carries everything the Renderer needs to build proxified
// URLs (§4.5) without depending on the HTTP surface package.
type RenderConfig struct {
	ProxyDomain     string
	XtreamUsername  string
	XtreamPassword  string
	WorkingDir      string
}

// Variant identifies one of the three rendered playlist flavors.
type Variant string

const (
	VariantCustom Variant = "custom"
	VariantTs     Variant = "ts"
	VariantM3u8   Variant = "m3u8"
)

// RenderResult reports the outcome of one variant's render.
type RenderResult struct {
	Variant  Variant
	Path     string
	Excluded int
	Err      error
}

// RenderAll fans out the three variants concurrently (§4.5, §5): each
// write is independent, one failing never aborts its peers.
func RenderAll(dto models.ProviderDTO, cfg RenderConfig) []RenderResult {
	variants := []Variant{VariantCustom, VariantTs, VariantM3u8}
	results := make([]RenderResult, len(variants))

	var wg sync.WaitGroup
	for i, v := range variants {
		wg.Add(1)
		go func(i int, v Variant) {
			defer wg.Done()
			path, excluded, err := renderVariant(dto, cfg, v)
			results[i] = RenderResult{Variant: v, Path: path, Excluded: excluded, Err: err}
			if err != nil {
				utils.ErrorLog("render %s failed: %v", v, err)
			}
		}(i, v)
	}
	wg.Wait()

	return results
}

// fileName builds "{variant}_{unix_ts}_{utc_iso}.m3u" (§4.5).
func fileName(v Variant, now time.Time) string {
	return fmt.Sprintf("%s_%d_%s.m3u", v, now.Unix(), now.UTC().Format("2006-01-02T15:04:05Z"))
}

func renderVariant(dto models.ProviderDTO, cfg RenderConfig, v Variant) (string, int, error) {
	playlist := &m3u.Playlist{Tracks: make([]m3u.Track, 0, len(dto.ExtInfs))}
	excluded := 0

	for _, e := range dto.ExtInfs {
		if e.Exclude {
			excluded++
			continue
		}

		track := m3u.Track{Name: e.Name, Length: -1}
		for _, attr := range e.Attributes {
			track.Tags = append(track.Tags, m3u.Tag{Name: attr.Key, Value: proxifyAttributeValue(attr, cfg)})
		}
		track.URI = streamURLForVariant(e, cfg, v)

		playlist.Tracks = append(playlist.Tracks, track)
	}

	now := time.Now()
	name := fileName(v, now)
	fullPath := name
	if cfg.WorkingDir != "" {
		fullPath = cfg.WorkingDir + string(os.PathSeparator) + name
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return "", excluded, err
	}
	defer f.Close()

	if err := marshalInto(f, playlist); err != nil {
		return "", excluded, err
	}

	return fullPath, excluded, nil
}

// proxifyAttributeValue echoes non-URL attribute values verbatim and
// rewrites URL-typed ones to http://{proxy_domain}/attr/{attribute_id}.
func proxifyAttributeValue(attr models.Attribute, cfg RenderConfig) string {
	if _, err := url.ParseRequestURI(attr.Value); err != nil {
		return attr.Value
	}
	if u, err := url.Parse(attr.Value); err != nil || u.Scheme == "" || u.Host == "" {
		return attr.Value
	}
	return fmt.Sprintf("http://%s/attr/%d", cfg.ProxyDomain, attr.ID)
}

func streamURLForVariant(e models.ExtInf, cfg RenderConfig, v Variant) string {
	switch v {
	case VariantCustom:
		return fmt.Sprintf("http://%s/stream/%d", cfg.ProxyDomain, e.ID)
	case VariantTs:
		prefix := e.Prefix
		if prefix == "" || prefix == "live" {
			return fmt.Sprintf("http://%s/%s/%s/%s", cfg.ProxyDomain, cfg.XtreamUsername, cfg.XtreamPassword, withExtension(e.TrackID, e.Extension, ""))
		}
		return fmt.Sprintf("http://%s/%s/%s/%s/%s", cfg.ProxyDomain, prefix, cfg.XtreamUsername, cfg.XtreamPassword, withExtension(e.TrackID, e.Extension, ""))
	case VariantM3u8:
		prefix := e.Prefix
		if prefix == "" {
			prefix = "live"
		}
		return fmt.Sprintf("http://%s/%s/%s/%s/%s", cfg.ProxyDomain, prefix, cfg.XtreamUsername, cfg.XtreamPassword, withExtension(e.TrackID, "", "m3u8"))
	}
	return ""
}

func withExtension(trackID, originalExt, forcedExt string) string {
	if forcedExt != "" {
		return trackID + "." + forcedExt
	}
	if originalExt != "" {
		return trackID + "." + originalExt
	}
	return trackID
}

// marshalInto writes the `#EXTM3U` header and one `#EXTINF`/URI pair per
// track, following the same buffer-per-track approach as the teacher's
// Config.marshallInto.
func marshalInto(f *os.File, playlist *m3u.Playlist) error {
	if _, err := f.WriteString("#EXTM3U\n"); err != nil {
		return err
	}

	for _, track := range playlist.Tracks {
		var buf bytes.Buffer
		buf.WriteString("#EXTINF:")
		fmt.Fprintf(&buf, "%d ", track.Length)
		for i, tag := range track.Tags {
			if i == len(track.Tags)-1 {
				fmt.Fprintf(&buf, "%s=%q", tag.Name, tag.Value)
				continue
			}
			fmt.Fprintf(&buf, "%s=%q ", tag.Name, tag.Value)
		}

		if _, err := fmt.Fprintf(f, "%s, %s\n%s\n", buf.String(), track.Name, track.URI); err != nil {
			return err
		}
	}

	return f.Sync()
}
