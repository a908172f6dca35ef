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
	"net/url"
	"strings"
	"testing"
)

func TestValidateGetPhpOutput(t *testing.T) {
	tests := []struct {
		name    string
		typ     string
		output  string
		wantErr bool
	}{
		{name: "m3u8 accepted", typ: "m3u_plus", output: "m3u8", wantErr: false},
		{name: "ts accepted", typ: "m3u_plus", output: "ts", wantErr: false},
		{name: "rmtp accepted", typ: "m3u_plus", output: "rmtp", wantErr: false},
		{name: "wrong type rejected", typ: "m3u", output: "m3u8", wantErr: true},
		{name: "unsupported output rejected", typ: "m3u_plus", output: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGetPhpOutput(tt.typ, tt.output)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGetPhpOutput(%q, %q) error = %v, wantErr %v", tt.typ, tt.output, err, tt.wantErr)
			}
		})
	}
}

func TestGetAutoForwardsSourceQueryWhenClientOnlyPassesCredentials(t *testing.T) {
	clientQuery := url.Values{"username": {"u"}, "password": {"p"}}

	forwarded, err := GetAuto("http://upstream.example/get.php?username=real&password=secret&type=m3u_plus&output=ts", clientQuery)
	if err != nil {
		t.Fatalf("GetAuto() error = %v", err)
	}
	if forwarded.Get("type") != "m3u_plus" || forwarded.Get("output") != "ts" {
		t.Errorf("GetAuto() = %v, want source's type/output forwarded", forwarded)
	}
	if forwarded.Get("username") != "u" || forwarded.Get("password") != "p" {
		t.Errorf("GetAuto() should keep client credentials, got %v", forwarded)
	}
}

func TestGetAutoRespectsExplicitClientQuery(t *testing.T) {
	clientQuery := url.Values{"username": {"u"}, "password": {"p"}, "type": {"m3u_plus"}, "output": {"m3u8"}}

	forwarded, err := GetAuto("http://upstream.example/get.php?username=real&password=secret&type=m3u_plus&output=ts", clientQuery)
	if err != nil {
		t.Fatalf("GetAuto() error = %v", err)
	}
	if forwarded.Get("output") != "m3u8" {
		t.Errorf("GetAuto() should respect explicit client output, got %v", forwarded)
	}
}

func TestIsHLSManifest(t *testing.T) {
	if !IsHLSManifest("http://origin.example/live/123.m3u8") {
		t.Error("IsHLSManifest() = false, want true for .m3u8 suffix")
	}
	if IsHLSManifest("http://origin.example/live/123.ts") {
		t.Error("IsHLSManifest() = true, want false for .ts suffix")
	}
}

func TestExtensionlessID(t *testing.T) {
	tests := []struct{ id, want string }{
		{"123.mp4", "123"},
		{"123.ts", "123"},
		{"123", "123"},
	}
	for _, tt := range tests {
		if got := ExtensionlessID(tt.id); got != tt.want {
			t.Errorf("ExtensionlessID(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestRewriteCredentialsInBody(t *testing.T) {
	s := &Service{cfg: Config{
		Username:        "realuser",
		Password:        "realpass",
		ProxiedUsername: "proxyuser",
		ProxiedPassword: "proxypass",
	}}

	body := []byte("#EXTM3U\nhttp://origin.example/realuser/realpass/segment1.ts\n")
	rewritten := string(s.RewriteCredentialsInBody(body))

	if want := "http://origin.example/proxyuser/proxypass/segment1.ts"; !strings.Contains(rewritten, want) {
		t.Errorf("RewriteCredentialsInBody() = %q, want it to contain %q", rewritten, want)
	}
	if strings.Contains(rewritten, "realuser") || strings.Contains(rewritten, "realpass") {
		t.Errorf("RewriteCredentialsInBody() leaked real credentials: %q", rewritten)
	}
}
