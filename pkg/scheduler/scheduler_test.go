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

package scheduler

import (
	"os"
	"testing"
	"time"

	"github.com/lucasduport/iptv-aggregator/pkg/playlist"
)

func TestRefreshInterval(t *testing.T) {
	tests := []struct {
		name  string
		hours int
		want  time.Duration
	}{
		{name: "configured value", hours: 6, want: 6 * time.Hour},
		{name: "zero falls back to one hour", hours: 0, want: time.Hour},
		{name: "negative falls back to one hour", hours: -3, want: time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Scheduler{cfg: Config{HourlyUpdateFrequency: tt.hours}}
			if got := s.refreshInterval(); got != tt.want {
				t.Errorf("refreshInterval() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRunFilePurgeRetainsTwoNewestPerVariant(t *testing.T) {
	dir := t.TempDir()

	names := []string{
		"custom_1_2020-01-01T00:00:00Z.m3u",
		"custom_2_2020-01-02T00:00:00Z.m3u",
		"custom_3_2020-01-03T00:00:00Z.m3u",
		"ts_1_2020-01-01T00:00:00Z.m3u",
		"ts_2_2020-01-02T00:00:00Z.m3u",
	}
	for _, n := range names {
		if err := os.WriteFile(dir+"/"+n, []byte("#EXTM3U\n"), 0644); err != nil {
			t.Fatalf("seed file %s: %v", n, err)
		}
	}

	s := &Scheduler{cfg: Config{WorkingDir: dir}}
	s.runFilePurge(nil)

	remainingCustom, err := playlist.ListVariantFiles(dir, playlist.VariantCustom)
	if err != nil {
		t.Fatalf("list custom files: %v", err)
	}
	if len(remainingCustom) != 2 {
		t.Fatalf("want 2 remaining custom files, got %d: %v", len(remainingCustom), remainingCustom)
	}
	if remainingCustom[0] != "custom_2_2020-01-02T00:00:00Z.m3u" || remainingCustom[1] != "custom_3_2020-01-03T00:00:00Z.m3u" {
		t.Errorf("unexpected surviving custom files: %v", remainingCustom)
	}

	remainingTs, err := playlist.ListVariantFiles(dir, playlist.VariantTs)
	if err != nil {
		t.Fatalf("list ts files: %v", err)
	}
	if len(remainingTs) != 2 {
		t.Errorf("want 2 remaining ts files (nothing to purge), got %d", len(remainingTs))
	}
}
