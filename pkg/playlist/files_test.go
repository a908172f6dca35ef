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
	"os"
	"path/filepath"
	"testing"
)

func TestListVariantFilesFiltersByPrefixAndSortsLexically(t *testing.T) {
	dir := t.TempDir()

	for _, n := range []string{
		"custom_2_2020-01-02T00:00:00Z.m3u",
		"custom_1_2020-01-01T00:00:00Z.m3u",
		"ts_1_2020-01-01T00:00:00Z.m3u",
		"notes.txt",
	} {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("#EXTM3U\n"), 0644); err != nil {
			t.Fatalf("seed file %s: %v", n, err)
		}
	}

	got, err := ListVariantFiles(dir, VariantCustom)
	if err != nil {
		t.Fatalf("ListVariantFiles() error = %v", err)
	}

	want := []string{"custom_1_2020-01-01T00:00:00Z.m3u", "custom_2_2020-01-02T00:00:00Z.m3u"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLatestVariantFileReturnsEmptyWhenNoneExist(t *testing.T) {
	dir := t.TempDir()

	path, err := LatestVariantFile(dir, VariantM3u8)
	if err != nil {
		t.Fatalf("LatestVariantFile() error = %v", err)
	}
	if path != "" {
		t.Errorf("LatestVariantFile() = %q, want empty", path)
	}
}

func TestLatestVariantFilePicksNewestByName(t *testing.T) {
	dir := t.TempDir()

	for _, n := range []string{
		"ts_1_2020-01-01T00:00:00Z.m3u",
		"ts_2_2020-01-02T00:00:00Z.m3u",
	} {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("#EXTM3U\n"), 0644); err != nil {
			t.Fatalf("seed file %s: %v", n, err)
		}
	}

	path, err := LatestVariantFile(dir, VariantTs)
	if err != nil {
		t.Fatalf("LatestVariantFile() error = %v", err)
	}
	want := filepath.Join(dir, "ts_2_2020-01-02T00:00:00Z.m3u")
	if path != want {
		t.Errorf("LatestVariantFile() = %q, want %q", path, want)
	}
}
