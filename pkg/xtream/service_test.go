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

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/lucasduport/iptv-aggregator/pkg/catalog"
	"github.com/lucasduport/iptv-aggregator/pkg/database"
	"github.com/lucasduport/iptv-aggregator/pkg/fetcher"
)

func newTestService(t *testing.T, upstream *httptest.Server) (*Service, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := database.NewStore(db)
	cat := catalog.New(store, fetcher.New())

	host := upstream.Listener.Addr().String()
	svc := New(cat, fetcher.New(), Config{
		BaseDomain:      host,
		Username:        "realuser",
		Password:        "realpass",
		ProxiedDomain:   "proxy.example",
		ProxiedUsername: "proxyuser",
		ProxiedPassword: "proxypass",
		ProxyPort:       3001,
	})
	return svc, mock
}

// TestProxyStreamsFiltersExcluded covers scenario 3 (§8): the live-stream
// set minus excluded track_ids, preserving upstream order.
func TestProxyStreamsFiltersExcluded(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"stream_id":"7","name":"A"},{"stream_id":"42","name":"B"},{"stream_id":"99","name":"C"}]`))
	}))
	defer upstream.Close()

	svc, mock := newTestService(t, upstream)

	now := time.Now()
	mock.ExpectQuery("SELECT id, .* FROM providers WHERE source = ").
		WithArgs("http://source/get.php").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "source", "groups_count", "channels_count", "created_at", "modified_at"}).
			AddRow(1, "", "http://source/get.php", 1, 1, now, now))
	mock.ExpectQuery("SELECT id, provider_id, domain, .* FROM m3us WHERE provider_id = ").
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "provider_id", "domain", "port", "created_at", "modified_at"}).
			AddRow(5, 1, "source", "", now, now))
	mock.ExpectQuery("SELECT COALESCE.* FROM extinfs").
		WithArgs(uint64(5), "live").
		WillReturnRows(sqlmock.NewRows([]string{"track_id"}).AddRow("42"))

	body, err := svc.PlayerAPI(context.Background(), "http://source/get.php", "get_live_streams", url.Values{})
	if err != nil {
		t.Fatalf("PlayerAPI() error = %v", err)
	}

	var items []map[string]interface{}
	if err := json.Unmarshal(body, &items); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if items[0]["stream_id"] != "7" || items[1]["stream_id"] != "99" {
		t.Errorf("unexpected stream ids: %+v", items)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestBuildStreamURLTwoSegment(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer upstream.Close()

	svc, mock := newTestService(t, upstream)
	now := time.Now()
	mock.ExpectQuery("SELECT id, .* FROM providers WHERE source = ").
		WithArgs("http://source/get.php").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "source", "groups_count", "channels_count", "created_at", "modified_at"}).
			AddRow(1, "", "http://source/get.php", 1, 1, now, now))
	mock.ExpectQuery("SELECT id, provider_id, domain, .* FROM m3us WHERE provider_id = ").
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "provider_id", "domain", "port", "created_at", "modified_at"}).
			AddRow(5, 1, "cdn.example", "8080", now, now))

	got, err := svc.BuildStreamURL(context.Background(), "http://source/get.php", []string{"u", "p"}, "123")
	if err != nil {
		t.Fatalf("BuildStreamURL() error = %v", err)
	}
	want := "http://cdn.example:8080/realuser/realpass/123"
	if got != want {
		t.Errorf("BuildStreamURL() = %q, want %q", got, want)
	}
}

func TestPersistFinalResponseUrl(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer upstream.Close()

	svc, mock := newTestService(t, upstream)
	mock.ExpectExec("DELETE FROM hls_urls").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("INSERT INTO hls_urls").
		WithArgs("https://cdn.example").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	if err := svc.PersistFinalResponseUrl(context.Background(), "https://cdn.example/abc/playlist.m3u8"); err != nil {
		t.Fatalf("PersistFinalResponseUrl() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestLoginRewrite(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"user_info":{"username":"UP","password":"UP","auth":1},"server_info":{"url":"10.0.0.1","port":"8080","https_port":"8443","protocol":"http","rtmp_port":"1935","timezone":"UTC","timestamp_now":1,"time_now":"now"}}`))
	}))
	defer upstream.Close()

	svc, _ := newTestService(t, upstream)

	body, err := svc.PlayerAPI(context.Background(), "http://source/get.php", "", url.Values{})
	if err != nil {
		t.Fatalf("PlayerAPI() error = %v", err)
	}

	var got loginResponse
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.UserInfo.Username != "proxyuser" {
		t.Errorf("UserInfo.Username = %q, want proxyuser", got.UserInfo.Username)
	}
	if got.ServerInfo.URL != "proxy.example" {
		t.Errorf("ServerInfo.URL = %q, want proxy.example", got.ServerInfo.URL)
	}
}

func TestCheckCredentials(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer upstream.Close()

	svc, _ := newTestService(t, upstream)

	if !svc.CheckCredentials("proxyuser", "proxypass") {
		t.Error("expected matching proxied credentials to pass")
	}
	if svc.CheckCredentials("wrong", "wrong") {
		t.Error("expected mismatched credentials to fail")
	}
}
