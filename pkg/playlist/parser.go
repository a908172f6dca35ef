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

// Package playlist implements the Playlist Parser (§4.2) and Playlist
// Renderer (§4.5). The parsing algorithm is grounded on
// _examples/original_source's server/iptv/src/m3u/parser.rs, translated to
// idiomatic Go: line-oriented scanning with the same canonical regex, the
// same attribute-capture regex, and the same prefix/track_id/extension
// derivation from the URL's path segments.
package playlist

import (
	"bufio"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/lucasduport/iptv-aggregator/pkg/models"
	"github.com/lucasduport/iptv-aggregator/pkg/utils"
)

var (
	validExtinfLine = regexp.MustCompile(`^(#\S+(?:\s+[^\s="]+=".*")+),(.*)\s*(.*)`)
	attributePairs  = regexp.MustCompile(`[^\s"]+(?:"[^"]*")`)

	validPrefixes = map[string]bool{"live": true, "movie": true, "series": true}
)

// ParseOptions carries the exclude-groups configuration (§4.2 Input).
type ParseOptions struct {
	GroupExcludes []string
}

// Parse consumes a textual M3U body line by line and produces a ParsedM3u.
// It never fails on a malformed line (§7 ParseInvalid is recovered
// locally): invalid lines and dangling EXTINF entries are only counted.
func Parse(body string, opts ParseOptions) models.ParsedM3u {
	scanner := bufio.NewScanner(strings.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		extinfs []models.ExtInf
		groups  []models.Group
		seen    = map[string]bool{}

		totalLines   int
		invalidLines int
		invalidExtinf int
	)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	i := 0
	for i < len(lines) {
		line := lines[i]

		if !isValidLine(line) {
			totalLines++
			invalidLines++
			utils.DebugLog("invalid line ignored: %s", line)
			i++
			continue
		}

		if !validExtinfLine.MatchString(line) {
			// #EXTM3U header or an EXTINF line that doesn't match the
			// canonical shape: nothing to pair, not counted towards
			// total_lines (only EXTINF attempts and invalid lines are).
			i++
			continue
		}

		totalLines++

		if i+1 >= len(lines) {
			invalidExtinf++
			invalidLines++
			utils.DebugLog("dangling extinf with no following line: %s", line)
			i++
			continue
		}

		urlLine := lines[i+1]
		i += 2

		parsedURL, err := url.Parse(strings.TrimSpace(urlLine))
		if err != nil || !parsedURL.IsAbs() {
			invalidExtinf++
			invalidLines++
			utils.DebugLog("skipped invalid extinf entry: %s\n%s", line, urlLine)
			continue
		}

		attrs := parseAttributes(line)
		groupTitle := attrs["group-title"]
		exclude := shouldExclude(groupTitle, opts.GroupExcludes)

		segments := pathSegments(parsedURL)
		lastSegment := lastPathSegment(segments)

		extinf := models.ExtInf{
			Name:      parseName(line),
			URL:       parsedURL.String(),
			TrackID:   parseTrackID(lastSegment),
			Prefix:    parsePrefix(segments),
			Extension: parseExtension(lastSegment),
			Exclude:   exclude,
		}
		for k, v := range attrs {
			extinf.Attributes = append(extinf.Attributes, models.Attribute{Key: k, Value: v})
		}
		extinfs = append(extinfs, extinf)

		if !seen[groupTitle] {
			seen[groupTitle] = true
			groups = append(groups, models.Group{Name: groupTitle, Exclude: exclude})
		}

		utils.DebugLog("parsed extinf: %s / %s", line, urlLine)
	}

	utils.InfoLog("ignored %d invalid extinf entries", invalidExtinf)
	utils.InfoLog("ignored %d invalid lines out of %d total lines", invalidLines, totalLines)

	return models.ParsedM3u{
		ExtInfs:              extinfs,
		Groups:               groups,
		TotalLines:           totalLines,
		InvalidLines:         invalidLines,
		InvalidExtinfEntries: invalidExtinf,
	}
}

func isValidLine(line string) bool {
	return strings.HasPrefix(line, "#EXTINF") || strings.HasPrefix(line, "#EXTM3U")
}

// parseName extracts the display name: the substring after the final `",`.
func parseName(extinfLine string) string {
	parts := strings.Split(extinfLine, "\",")
	return strings.TrimSpace(parts[len(parts)-1])
}

// parseAttributes scans `key="value"` captures from the EXTINF line.
func parseAttributes(extinfLine string) map[string]string {
	attrs := map[string]string{}
	for _, m := range attributePairs.FindAllString(extinfLine, -1) {
		eq := strings.Index(m, "=")
		if eq < 0 {
			continue
		}
		key := m[:eq]
		rest := m[eq+1:]
		first := strings.Index(rest, "\"")
		if first < 0 {
			continue
		}
		second := strings.Index(rest[first+1:], "\"")
		if second < 0 {
			continue
		}
		value := rest[first+1 : first+1+second]
		attrs[key] = value
	}
	return attrs
}

func shouldExclude(groupTitle string, excludes []string) bool {
	if groupTitle == "" {
		return false
	}
	lowerGroup := strings.ToLower(groupTitle)
	for _, pattern := range excludes {
		if strings.Contains(lowerGroup, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}

func pathSegments(u *url.URL) []string {
	trimmed := strings.Trim(u.EscapedPath(), "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func lastPathSegment(segments []string) string {
	if len(segments) == 0 {
		return ""
	}
	return segments[len(segments)-1]
}

func parsePrefix(segments []string) string {
	if len(segments) == 0 {
		return ""
	}
	first := segments[0]
	if validPrefixes[first] {
		return first
	}
	return ""
}

func parseTrackID(lastSegment string) string {
	if lastSegment == "" {
		return ""
	}
	if idx := strings.Index(lastSegment, "."); idx >= 0 {
		return lastSegment[:idx]
	}
	return lastSegment
}

func parseExtension(lastSegment string) string {
	ext := path.Ext(lastSegment)
	return strings.TrimPrefix(ext, ".")
}
