package cmd

import (
	"fmt"
	"runtime"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fulmenhq/gofulmen/crucible"

	"github.com/draftmill/draftmill/internal/config"
	"github.com/draftmill/draftmill/internal/observability"
)

var envInfoCmd = &cobra.Command{
	Use:   "envinfo",
	Short: "Display environment information",
	Long:  "Display comprehensive environment, configuration, and version information.",
	Run: func(cmd *cobra.Command, args []string) {
		version := crucible.GetVersion()

		observability.CLILogger.Info("=== Draftmill Environment Information ===")
		observability.CLILogger.Info("")

		// Application Info
		identity := GetAppIdentity()
		observability.CLILogger.Info("Application:")
		observability.CLILogger.Info("  Name:       " + identity.BinaryName)
		observability.CLILogger.Info("  Version:    " + versionInfo.Version)
		observability.CLILogger.Info("  Commit:     " + versionInfo.Commit)
		observability.CLILogger.Info("  Built:      " + versionInfo.BuildDate)
		observability.CLILogger.Info("")

		// SSOT Info
		observability.CLILogger.Info("SSOT:")
		observability.CLILogger.Info("  Gofulmen:   "+version.Gofulmen, zap.String("gofulmen_version", version.Gofulmen))
		observability.CLILogger.Info("  Crucible:   "+version.Crucible, zap.String("crucible_version", version.Crucible))
		observability.CLILogger.Info("")

		// Runtime Info
		observability.CLILogger.Info("Runtime:")
		observability.CLILogger.Info("  Go Version: "+runtime.Version(), zap.String("go_version", runtime.Version()))
		observability.CLILogger.Info("  GOOS:       "+runtime.GOOS, zap.String("goos", runtime.GOOS))
		observability.CLILogger.Info("  GOARCH:     "+runtime.GOARCH, zap.String("goarch", runtime.GOARCH))
		observability.CLILogger.Info(fmt.Sprintf("  NumCPU:     %d", runtime.NumCPU()), zap.Int("num_cpu", runtime.NumCPU()))
		observability.CLILogger.Info("")

		cfg, err := loadConfig(cmd.Context())
		if err != nil {
			observability.CLILogger.Warn("Config load failed", zap.Error(err))
			return
		}

		// Configuration
		observability.CLILogger.Info("Configuration:")
		observability.CLILogger.Info("  Server Host:    "+cfg.Server.Host, zap.String("host", cfg.Server.Host))
		observability.CLILogger.Info(fmt.Sprintf("  Server Port:    %d", cfg.Server.Port), zap.Int("port", cfg.Server.Port))
		observability.CLILogger.Info("  Log Level:      "+cfg.Logging.Level, zap.String("log_level", cfg.Logging.Level))
		observability.CLILogger.Info("  Log Profile:    "+cfg.Logging.Profile, zap.String("log_profile", cfg.Logging.Profile))
		observability.CLILogger.Info("  DB Driver:      "+cfg.Store.Driver, zap.String("db_driver", cfg.Store.Driver))
		if strings.TrimSpace(cfg.Store.URL) != "" {
			observability.CLILogger.Info("  DB URL:         "+cfg.Store.URL, zap.String("db_url", cfg.Store.URL))
		} else {
			observability.CLILogger.Info("  DB Path:        "+cfg.Store.Path, zap.String("db_path", cfg.Store.Path))
		}
		observability.CLILogger.Info(fmt.Sprintf("  Metrics Port:   %d", cfg.Metrics.Port), zap.Int("metrics_port", cfg.Metrics.Port))
		observability.CLILogger.Info("  Config File:    "+config.DefaultConfigPath(), zap.String("config_file", config.DefaultConfigPath()))
		observability.CLILogger.Info("")

		// Provider Configuration
		observability.CLILogger.Info("Providers:")
		observability.CLILogger.Info("  Content Base URL:  " + orUnset(cfg.Providers.Content.BaseURL))
		observability.CLILogger.Info("  Content Model:     " + orUnset(cfg.Providers.Content.Model))
		observability.CLILogger.Info("  Content API Key:   " + secretStatus(cfg.Providers.Content.APIKey))
		observability.CLILogger.Info("  Research Base URL: " + orUnset(cfg.Providers.Research.BaseURL))
		observability.CLILogger.Info("  Research API Key:  " + secretStatus(cfg.Providers.Research.APIKey))
		observability.CLILogger.Info("  Forum Base URL:    " + orUnset(cfg.Providers.Forum.BaseURL))
		observability.CLILogger.Info("  Forum User Agent:  " + orUnset(cfg.Providers.Forum.UserAgent))
		observability.CLILogger.Info("")

		// Throttle Configuration
		observability.CLILogger.Info("Throttle:")
		observability.CLILogger.Info(fmt.Sprintf("  Persist Windows: %t", cfg.Throttle.PersistWindows), zap.Bool("persist_windows", cfg.Throttle.PersistWindows))
		services := make([]string, 0, len(cfg.Throttle.Services))
		for name := range cfg.Throttle.Services {
			services = append(services, name)
		}
		sort.Strings(services)
		for _, name := range services {
			sc := cfg.Throttle.Services[name]
			observability.CLILogger.Info(fmt.Sprintf("  %s: %d req / %s (max retries %d)", name, sc.MaxRequests, sc.Window, sc.MaxRetries))
		}
		observability.CLILogger.Info("")

		// Pipeline Configuration
		observability.CLILogger.Info("Pipeline:")
		observability.CLILogger.Info("  Author:   " + cfg.Pipeline.Author)
		observability.CLILogger.Info("  Category: " + cfg.Pipeline.Category)
		observability.CLILogger.Info("")

		observability.CLILogger.Info("=== End Environment Information ===")
	},
}

func orUnset(value string) string {
	if strings.TrimSpace(value) == "" {
		return "(unset)"
	}
	return value
}

func secretStatus(value string) string {
	if strings.TrimSpace(value) == "" {
		return "(not set)"
	}
	return "(set)"
}

func init() {
	rootCmd.AddCommand(envInfoCmd)
}
