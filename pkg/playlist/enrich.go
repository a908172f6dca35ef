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
	"context"
	"fmt"
	"sync"

	"github.com/lucasduport/iptv-aggregator/pkg/fetcher"
	"github.com/lucasduport/iptv-aggregator/pkg/models"
	"github.com/lucasduport/iptv-aggregator/pkg/utils"
)

// XtreamConfig carries the upstream credentials needed to enrich groups
// with Xtream category ids (§4.2 Xtream enrichment).
type XtreamConfig struct {
	BaseDomain string
	Username   string
	Password   string
}

type xtreamCategory struct {
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
}

// EnrichWithXtreamCategories concurrently fetches the three Xtream category
// endpoints, concatenates the results and assigns xtream_cat_id to every
// Group whose name matches a category_name. Grounded on the teacher's
// xtreamGenerateM3u, which drives the same three live/vod/series category
// calls through the Xtream API client.
func EnrichWithXtreamCategories(ctx context.Context, f *fetcher.Fetcher, cfg XtreamConfig, groups []models.Group) {
	actions := []string{"get_live_categories", "get_vod_categories", "get_series_categories"}

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		byName = map[string]string{}
	)

	for _, action := range actions {
		action := action
		wg.Add(1)
		go func() {
			defer wg.Done()

			url := fmt.Sprintf("http://%s/player_api.php?username=%s&password=%s&action=%s",
				cfg.BaseDomain, cfg.Username, cfg.Password, action)

			cats, _, _, err := fetcher.GetJSON[[]xtreamCategory](ctx, f, url)
			if err != nil {
				utils.WarnLog("xtream category enrichment: %s failed: %v", action, err)
				return
			}

			mu.Lock()
			for _, c := range cats {
				byName[c.CategoryName] = c.CategoryID
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	for i := range groups {
		if id, ok := byName[groups[i].Name]; ok {
			groups[i].XtreamCatID = id
		}
	}
}
