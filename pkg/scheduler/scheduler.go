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

// Package scheduler is the Scheduler (§4.6): three periodic jobs running as
// independent goroutines alongside the HTTP Surface, each single-instance
// with a tick skipped rather than queued if the previous run is still
// active. Grounded on the teacher's background-refresh intent expressed in
// cmd/root.go's startup log, generalized here into its own standing loop
// since the teacher never scheduled work beyond process start.
package scheduler

import (
	"context"
	"os"
	"sort"
	"sync/atomic"
	"time"

	"github.com/lucasduport/iptv-aggregator/pkg/catalog"
	"github.com/lucasduport/iptv-aggregator/pkg/database"
	"github.com/lucasduport/iptv-aggregator/pkg/models"
	"github.com/lucasduport/iptv-aggregator/pkg/playlist"
	"github.com/lucasduport/iptv-aggregator/pkg/utils"
)

// Config carries everything the three jobs need, independent of the HTTP
// Surface.
type Config struct {
	M3U                   string
	HourlyUpdateFrequency int
	Development           bool
	IngestConfig          catalog.IngestConfig
	RenderConfig          playlist.RenderConfig
	WorkingDir            string
}

// Scheduler owns the three periodic jobs over a Catalog Service.
type Scheduler struct {
	catalog *catalog.Service
	cfg     Config

	refreshBusy int32
	filesBusy   int32
	catalogBusy int32
}

// New builds a Scheduler. It does not start any job; call Start for that.
func New(c *catalog.Service, cfg Config) *Scheduler {
	return &Scheduler{catalog: c, cfg: cfg}
}

// Start launches the three jobs as independent goroutines (§5: "the
// Scheduler runs as an independent task per job"). It returns immediately;
// jobs run until ctx is canceled.
func (s *Scheduler) Start(ctx context.Context) {
	go s.loop(ctx, s.refreshInterval(), &s.refreshBusy, s.runRefresh)
	go s.loop(ctx, 6*time.Hour, &s.filesBusy, s.runFilePurge)
	go s.loop(ctx, 24*time.Hour, &s.catalogBusy, s.runCatalogPurge)
}

func (s *Scheduler) refreshInterval() time.Duration {
	hours := s.cfg.HourlyUpdateFrequency
	if hours <= 0 {
		hours = 1
	}
	return time.Duration(hours) * time.Hour
}

// loop ticks every interval, skipping a tick entirely if the previous run
// of this same job is still in flight (§4.6: "no overlap allowed").
func (s *Scheduler) loop(ctx context.Context, interval time.Duration, busy *int32, run func(context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !atomic.CompareAndSwapInt32(busy, 0, 1) {
				utils.DebugLog("scheduler: skipping tick, previous run still active")
				continue
			}
			run(ctx)
			atomic.StoreInt32(busy, 0)
		}
	}
}

// runRefresh implements the Refresh job (§4.6): re-ingest the configured
// m3u source when its latest snapshot has aged past the threshold, or
// unconditionally in development, then regenerate the three playlists.
func (s *Scheduler) runRefresh(ctx context.Context) {
	stale, err := s.refreshIsStale(ctx)
	if err != nil {
		utils.ErrorLog("scheduler refresh: check staleness: %v", err)
		return
	}
	if !stale {
		return
	}

	id, err := s.catalog.CreateProvider(ctx, s.cfg.M3U, s.cfg.IngestConfig)
	if err != nil {
		utils.ErrorLog("scheduler refresh: ingest %s: %v", s.cfg.M3U, err)
		return
	}

	dto, err := s.catalog.GetProvider(ctx, id)
	if err != nil {
		utils.ErrorLog("scheduler refresh: rehydrate new provider %d: %v", id, err)
		return
	}

	for _, res := range playlist.RenderAll(dto, s.cfg.RenderConfig) {
		if res.Err != nil {
			utils.ErrorLog("scheduler refresh: render %s failed: %v", res.Variant, res.Err)
		}
	}
}

func (s *Scheduler) refreshIsStale(ctx context.Context) (bool, error) {
	if s.cfg.Development {
		return true, nil
	}

	latest, err := s.catalog.GetLatestProviderEntry(ctx, s.cfg.M3U)
	if err != nil {
		if err == database.ErrNotFound {
			return true, nil
		}
		return false, err
	}
	return time.Since(latest.CreatedAt) >= s.refreshInterval(), nil
}

// runFilePurge implements the Obsolete file purge job (§4.6): for each
// rendered variant, keep only the two lexicographically-newest files.
func (s *Scheduler) runFilePurge(_ context.Context) {
	for _, v := range []playlist.Variant{playlist.VariantCustom, playlist.VariantTs, playlist.VariantM3u8} {
		names, err := playlist.ListVariantFiles(s.cfg.WorkingDir, v)
		if err != nil {
			utils.ErrorLog("scheduler file purge: list %s files: %v", v, err)
			continue
		}
		if len(names) <= 2 {
			continue
		}

		for _, name := range names[:len(names)-2] {
			path := name
			if s.cfg.WorkingDir != "" {
				path = s.cfg.WorkingDir + "/" + name
			}
			if err := os.Remove(path); err != nil {
				utils.ErrorLog("scheduler file purge: remove %s: %v", path, err)
			}
		}
	}
}

// runCatalogPurge implements the Obsolete catalog version purge job (§4.6):
// for every source in the catalog, keep only its newest Provider snapshot.
func (s *Scheduler) runCatalogPurge(ctx context.Context) {
	providers, err := s.catalog.ListProviders(ctx)
	if err != nil {
		utils.ErrorLog("scheduler catalog purge: list providers: %v", err)
		return
	}

	bySource := map[string][]models.Provider{}
	for _, p := range providers {
		bySource[p.Source] = append(bySource[p.Source], p)
	}

	for source, ps := range bySource {
		if len(ps) <= 1 {
			continue
		}
		sort.Slice(ps, func(i, j int) bool { return ps[i].CreatedAt.Before(ps[j].CreatedAt) })
		for _, obsolete := range ps[:len(ps)-1] {
			if err := s.catalog.DeleteProvider(ctx, obsolete.ID); err != nil {
				utils.ErrorLog("scheduler catalog purge: delete stale %s provider %d: %v", source, obsolete.ID, err)
			}
		}
	}
}
