// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the research-portal CLI: the HTTP
// API server plus operator commands for migrations, accounts, statistics,
// and CV export.
package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/research-portal/internal/logging"
	"github.com/pdiddy/research-portal/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	logger        = zap.NewNop()
	loadedSecrets secrets.Secrets
)

var rootCmd = &cobra.Command{
	Use:   "research-portal",
	Short: "University researcher portal",
	Long: `research-portal serves the researcher portal API: research records,
field visits and volunteering, collaboration projects with researcher
suggestions, CVs, and dashboards.

Operator subcommands apply migrations, bootstrap accounts, print statistics,
and export CVs against the same SQLite database.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logCfg := configLog()
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			logCfg.Level = "debug"
		}
		l, err := logging.New(logCfg)
		if err != nil {
			return err
		}
		logger = l
		if used := viper.ConfigFileUsed(); used != "" {
			logger.Info("using config file", zap.String("path", used))
		}

		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir, logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if keys := s.Keys(); len(keys) > 0 {
			logger.Debug("loaded secrets", zap.Strings("keys", keys))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./research-portal.yaml or ~/.config/research-portal/research-portal.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets/", "directory of secret files (jwt-secret, openalex-email)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("research-portal")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "research-portal"))
		}
	}

	setDefaults(viper.GetViper())
	viper.SetEnvPrefix("RESEARCH_PORTAL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	_ = viper.ReadInConfig()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
