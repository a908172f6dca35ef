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

import "testing"

const threeLineM3u = `#EXTM3U
#EXTINF:-1 tvg-id="x" group-title="News",Channel A
http://upstream/live/u/p/123.m3u8
`

func TestParseThreeLineM3u(t *testing.T) {
	parsed := Parse(threeLineM3u, ParseOptions{})

	if len(parsed.ExtInfs) != 1 {
		t.Fatalf("ExtInfs len = %d, want 1", len(parsed.ExtInfs))
	}
	e := parsed.ExtInfs[0]
	if e.Name != "Channel A" || e.Prefix != "live" || e.TrackID != "123" || e.Extension != "m3u8" || e.Exclude {
		t.Errorf("unexpected extinf: %+v", e)
	}

	wantAttrs := map[string]string{"tvg-id": "x", "group-title": "News"}
	if len(e.Attributes) != len(wantAttrs) {
		t.Fatalf("attributes len = %d, want %d", len(e.Attributes), len(wantAttrs))
	}
	for _, a := range e.Attributes {
		if wantAttrs[a.Key] != a.Value {
			t.Errorf("attribute %s = %q, want %q", a.Key, a.Value, wantAttrs[a.Key])
		}
	}

	if len(parsed.Groups) != 1 || parsed.Groups[0].Name != "News" || parsed.Groups[0].Exclude {
		t.Errorf("unexpected groups: %+v", parsed.Groups)
	}
}

func TestParseExcludeFilter(t *testing.T) {
	parsed := Parse(threeLineM3u, ParseOptions{GroupExcludes: []string{"news"}})

	if !parsed.ExtInfs[0].Exclude {
		t.Error("expected ExtInf.Exclude = true")
	}
	if !parsed.Groups[0].Exclude {
		t.Error("expected Group.Exclude = true")
	}
}

func TestParseDanglingExtinf(t *testing.T) {
	body := "#EXTM3U\n#EXTINF:-1 tvg-id=\"x\" group-title=\"News\",Channel A\n"
	parsed := Parse(body, ParseOptions{})

	if len(parsed.ExtInfs) != 0 {
		t.Fatalf("ExtInfs len = %d, want 0", len(parsed.ExtInfs))
	}
	if parsed.InvalidExtinfEntries != 1 {
		t.Errorf("InvalidExtinfEntries = %d, want 1", parsed.InvalidExtinfEntries)
	}
}

func TestParseUnparseableURLLine(t *testing.T) {
	body := "#EXTM3U\n#EXTINF:-1 tvg-id=\"x\" group-title=\"News\",Channel A\nnot a url\n"
	parsed := Parse(body, ParseOptions{})

	if len(parsed.ExtInfs) != 0 {
		t.Fatalf("ExtInfs len = %d, want 0", len(parsed.ExtInfs))
	}
	if parsed.InvalidExtinfEntries != 1 {
		t.Errorf("InvalidExtinfEntries = %d, want 1", parsed.InvalidExtinfEntries)
	}
}

func TestParseGroupDedup(t *testing.T) {
	body := `#EXTM3U
#EXTINF:-1 tvg-id="a" group-title="News",Channel A
http://upstream/live/u/p/1.m3u8
#EXTINF:-1 tvg-id="b" group-title="News",Channel B
http://upstream/live/u/p/2.m3u8
`
	parsed := Parse(body, ParseOptions{GroupExcludes: []string{"news"}})

	if len(parsed.Groups) != 1 {
		t.Fatalf("Groups len = %d, want 1", len(parsed.Groups))
	}
	if !parsed.Groups[0].Exclude {
		t.Error("expected deduped Group.Exclude = true (first occurrence's flag)")
	}
	if len(parsed.ExtInfs) != 2 {
		t.Fatalf("ExtInfs len = %d, want 2", len(parsed.ExtInfs))
	}
}

func TestParseTotalLinesInvariant(t *testing.T) {
	// §8: total_lines = parsed_extinfs + invalid_lines.
	parsed := Parse(threeLineM3u, ParseOptions{})
	if parsed.TotalLines != len(parsed.ExtInfs)+parsed.InvalidLines {
		t.Errorf("total_lines = %d, want parsed_extinfs(%d) + invalid_lines(%d)", parsed.TotalLines, len(parsed.ExtInfs), parsed.InvalidLines)
	}
}

func TestParseTotalLinesInvariantWithDanglingAndInvalid(t *testing.T) {
	body := "#EXTM3U\nnot a valid line\n#EXTINF:-1 tvg-id=\"x\" group-title=\"News\",Channel A\n"
	parsed := Parse(body, ParseOptions{})
	if parsed.TotalLines != len(parsed.ExtInfs)+parsed.InvalidLines {
		t.Errorf("total_lines = %d, want parsed_extinfs(%d) + invalid_lines(%d)", parsed.TotalLines, len(parsed.ExtInfs), parsed.InvalidLines)
	}
}
