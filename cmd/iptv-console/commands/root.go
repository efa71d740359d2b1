// Package commands implements the iptv-console CLI.
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.etcd.io/bbolt"

	"github.com/alorle/iptv-console/cache"
	"github.com/alorle/iptv-console/circuitbreaker"
	"github.com/alorle/iptv-console/config"
	"github.com/alorle/iptv-console/fetcher"
	"github.com/alorle/iptv-console/internal/adapter/driven"
	"github.com/alorle/iptv-console/internal/application"
	"github.com/alorle/iptv-console/logging"
)

// app holds the configuration and lazily-built services shared by all
// commands. One app lives for the duration of a single CLI invocation.
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	db *bbolt.DB
}

// scanAPI builds the backend scan client.
func (a *app) scanAPI() *driven.ScanHTTPAdapter {
	return driven.NewScanHTTPAdapter(a.cfg.Backend.URL, a.logger)
}

// scanService builds the polling scan service backed by the local history
// database. The database file is opened on first use.
func (a *app) scanService(onSnapshot application.SnapshotObserver, onError application.PollErrorObserver) (*application.ScanService, error) {
	history, err := a.history()
	if err != nil {
		return nil, err
	}

	pollerCfg := application.PollerConfig{
		Interval: a.cfg.Poll.Interval,
		Breaker: circuitbreaker.Config{
			FailureThreshold: a.cfg.Resilience.CBFailureThreshold,
			Timeout:          a.cfg.Resilience.CBTimeout,
			HalfOpenRequests: a.cfg.Resilience.CBHalfOpenRequests,
		},
	}

	return application.NewScanService(a.scanAPI(), history, pollerCfg, a.logger, onSnapshot, onError), nil
}

func (a *app) history() (*driven.HistoryBoltDBRepository, error) {
	if a.db == nil {
		path := a.cfg.History.Path
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}

		db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
		if err != nil {
			return nil, fmt.Errorf("failed to open history database: %w", err)
		}
		a.db = db
	}

	return driven.NewHistoryBoltDBRepository(a.db)
}

func (a *app) channelService() *application.ChannelService {
	return application.NewChannelService(driven.NewChannelHTTPAdapter(a.cfg.Backend.URL, a.logger), a.logger)
}

func (a *app) groupService() *application.GroupService {
	return application.NewGroupService(driven.NewGroupHTTPAdapter(a.cfg.Backend.URL, a.logger), a.logger)
}

func (a *app) playlistService() (*application.PlaylistService, error) {
	storage, err := cache.NewFileStorage(a.cfg.Cache.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize playlist cache: %w", err)
	}

	fetch := fetcher.New(a.cfg.Backend.RequestTimeout, storage, a.cfg.Cache.TTL, a.logger)

	return application.NewPlaylistService(driven.NewPlaylistHTTPAdapter(a.cfg.Backend.URL, a.logger), fetch, a.logger), nil
}

func (a *app) close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close history database", "error", err)
		}
		a.db = nil
	}
}

// NewCommand constructs the top-level iptv-console command with its global
// flags and all subcommands.
func NewCommand() *cobra.Command {
	var (
		configFile string
		backendURL string
		logLevel   string
		a          = &app{}
	)

	cmd := &cobra.Command{
		Use:           "iptv-console",
		Short:         "Admin console for an IPTV channel-discovery backend",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				if err := os.Setenv("CONFIG_FILE", configFile); err != nil {
					return err
				}
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			// Flags beat file and environment.
			if backendURL != "" {
				cfg.Backend.URL = backendURL
			}
			if logLevel != "" {
				cfg.Resilience.LogLevel = logLevel
			}

			a.cfg = cfg
			a.logger = logging.New(cfg.Resilience.LogLevel, os.Stderr)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "path to the configuration file")
	cmd.PersistentFlags().StringVar(&backendURL, "backend-url", "", "backend base URL (overrides config)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: DEBUG, INFO, WARN, ERROR")

	cmd.AddCommand(newScanCommand(a))
	cmd.AddCommand(newChannelsCommand(a))
	cmd.AddCommand(newGroupsCommand(a))
	cmd.AddCommand(newPlaylistCommand(a))

	return cmd
}

// Execute runs the CLI.
func Execute() error {
	return NewCommand().Execute()
}
