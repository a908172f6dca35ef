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

// Package cmd is the process entrypoint (§6 Configuration): cobra/viper
// flag binding exactly as the teacher's cmd/root.go does it, wiring the
// bound Config into the Catalog Service, Xtream Service, Scheduler and
// HTTP Surface.
package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lucasduport/iptv-aggregator/pkg/catalog"
	"github.com/lucasduport/iptv-aggregator/pkg/config"
	"github.com/lucasduport/iptv-aggregator/pkg/database"
	"github.com/lucasduport/iptv-aggregator/pkg/fetcher"
	"github.com/lucasduport/iptv-aggregator/pkg/playlist"
	"github.com/lucasduport/iptv-aggregator/pkg/scheduler"
	"github.com/lucasduport/iptv-aggregator/pkg/server"
	"github.com/lucasduport/iptv-aggregator/pkg/utils"
	"github.com/lucasduport/iptv-aggregator/pkg/xtream"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "iptv-aggregator",
	Short: "Reverse proxy and aggregator for IPTV providers",
	Long: `iptv-aggregator ingests one or more upstream m3u/Xtream providers
behind a single set of proxy credentials.

It supports:
- M3U ingest, parsing and group-based exclusion
- Three rendered playlist variants (custom, ts, m3u8)
- Xtream Codes API proxying with deep URL rewriting
- Periodic refresh and catalog/file retention`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := buildConfig()
		if err := cfg.Validate(); err != nil {
			return err
		}

		config.CacheFolder = viper.GetString("cache-folder")
		if config.CacheFolder != "" && !strings.HasSuffix(config.CacheFolder, "/") {
			config.CacheFolder += "/"
		}
		utils.DebugLoggingEnabled = viper.GetBool("debug-logging")

		store, err := database.Open(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}

		f := fetcher.New()
		catalogSvc := catalog.New(store, f)

		var xtreamSvc *xtream.Service
		if cfg.XtreamEnabled {
			xtreamSvc = xtream.New(catalogSvc, f, xtream.Config{
				BaseDomain:      cfg.XtreamBaseDomain,
				Username:        cfg.XtreamUsername,
				Password:        cfg.XtreamPassword,
				ProxiedDomain:   cfg.XtreamProxiedDomain,
				ProxiedUsername: cfg.XtreamProxiedUsername,
				ProxiedPassword: cfg.XtreamProxiedPassword,
				ProxyPort:       cfg.Port,
			})
		}

		ic := catalog.IngestConfig{GroupExcludes: cfg.GroupExcludes}
		if cfg.XtreamEnabled {
			ic.Xtream = &playlist.XtreamConfig{
				BaseDomain: cfg.XtreamBaseDomain,
				Username:   cfg.XtreamUsername,
				Password:   cfg.XtreamPassword,
			}
		}

		sched := scheduler.New(catalogSvc, scheduler.Config{
			M3U:                   cfg.M3U,
			HourlyUpdateFrequency: cfg.HourlyUpdateFrequency,
			Development:           cfg.IsDevelopment(),
			IngestConfig:          ic,
			RenderConfig: playlist.RenderConfig{
				ProxyDomain:    cfg.ProxyDomain,
				XtreamUsername: cfg.XtreamUsername,
				XtreamPassword: cfg.XtreamPassword,
				WorkingDir:     ".",
			},
			WorkingDir: ".",
		})

		if cfg.InitApp {
			runStartupIngest(catalogSvc, cfg, ic)
		}

		srv := server.New(cfg, catalogSvc, xtreamSvc, sched, f)
		utils.InfoLog("iptv-aggregator starting, env=%s", cfg.Env)
		return srv.Run()
	},
}

// runStartupIngest implements init_app/backend_mode_only (§6): run the
// ingest/generate path once before the HTTP Surface starts listening,
// rather than waiting for the Scheduler's first tick.
func runStartupIngest(catalogSvc *catalog.Service, cfg *config.Config, ic catalog.IngestConfig) {
	ctx := context.Background()

	id, err := catalogSvc.CreateProvider(ctx, cfg.M3U, ic)
	if err != nil {
		utils.ErrorLog("startup ingest failed: %v", err)
		return
	}

	dto, err := catalogSvc.GetProvider(ctx, id)
	if err != nil {
		utils.ErrorLog("startup ingest: rehydrate provider %d: %v", id, err)
		return
	}

	for _, res := range playlist.RenderAll(dto, playlist.RenderConfig{
		ProxyDomain:    cfg.ProxyDomain,
		XtreamUsername: cfg.XtreamUsername,
		XtreamPassword: cfg.XtreamPassword,
		WorkingDir:     ".",
	}) {
		if res.Err != nil {
			utils.ErrorLog("startup ingest: render %s failed: %v", res.Variant, res.Err)
		}
	}
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default is $HOME/.iptv-aggregator.yaml)")

	rootCmd.Flags().Int("port", 8080, "Listening port")
	rootCmd.Flags().String("m3u", "", "M3U source URL")
	rootCmd.Flags().String("database-url", "", "Postgres connection string")
	rootCmd.Flags().Bool("init-app", false, "Run the ingest/generate path once at startup (backend_mode_only)")
	rootCmd.Flags().String("env", "production", "Deployment environment: development or production")
	rootCmd.Flags().Int("hourly-update-frequency", 24, "Refresh interval in hours")
	rootCmd.Flags().StringSlice("group-excludes", nil, "Case-insensitive substrings; channels whose group title contains one are left out of every rendered playlist")
	rootCmd.Flags().String("proxy-domain", "", "Public host:port this proxy is reachable at")
	rootCmd.Flags().Int("m3u-cache-expiration-hours", 1, "get.php TTL in hours")
	rootCmd.Flags().String("cache-folder", "", "Stored as config.CacheFolder; not read by any component (raw Xtream dumps go to the system temp directory)")
	rootCmd.Flags().Bool("debug-logging", false, "Enable verbose debug logging")

	rootCmd.Flags().Bool("xtream-enabled", false, "Enable the Xtream Service")
	rootCmd.Flags().String("xtream-base-domain", "", "Real upstream Xtream host:port")
	rootCmd.Flags().String("xtream-username", "", "Real upstream Xtream username")
	rootCmd.Flags().String("xtream-password", "", "Real upstream Xtream password")
	rootCmd.Flags().String("xtream-proxied-domain", "", "Public Xtream host advertised to clients")
	rootCmd.Flags().String("xtream-proxied-username", "", "Client-facing Xtream username")
	rootCmd.Flags().String("xtream-proxied-password", "", "Client-facing Xtream password")

	if err := viper.BindPFlags(rootCmd.Flags()); err != nil {
		log.Fatal("error binding pflags to viper")
	}
}

// buildConfig assembles a config.Config from whatever viper resolved
// (flags, env, config file), the same shape the teacher's rootCmd.Run
// builds a ProxyConfig from.
func buildConfig() *config.Config {
	return &config.Config{
		Port:                  viper.GetInt("port"),
		M3U:                   viper.GetString("m3u"),
		DatabaseURL:           viper.GetString("database-url"),
		InitApp:               viper.GetBool("init-app"),
		Env:                   viper.GetString("env"),
		HourlyUpdateFrequency: viper.GetInt("hourly-update-frequency"),
		GroupExcludes:         viper.GetStringSlice("group-excludes"),
		ProxyDomain:           viper.GetString("proxy-domain"),
		XtreamEnabled:         viper.GetBool("xtream-enabled"),
		XtreamBaseDomain:      viper.GetString("xtream-base-domain"),
		XtreamUsername:        viper.GetString("xtream-username"),
		XtreamPassword:        viper.GetString("xtream-password"),
		XtreamProxiedDomain:     viper.GetString("xtream-proxied-domain"),
		XtreamProxiedUsername:   viper.GetString("xtream-proxied-username"),
		XtreamProxiedPassword:   viper.GetString("xtream-proxied-password"),
		M3UCacheExpirationHours: viper.GetInt("m3u-cache-expiration-hours"),
	}
}

// initConfig reads in config file and ENV variables if set, matching the
// teacher's initConfig exactly.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".iptv-aggregator")
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}
