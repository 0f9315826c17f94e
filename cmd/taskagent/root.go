package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"taskagent-portal/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "taskagent",
	Short: "Task Systems Agent Portal - chat front end for an n8n workflow webhook",
	Long: `taskagent serves a browser chat portal whose messages are relayed to an
external workflow-automation webhook, and includes a terminal chat client for
the same portal.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "settings file (yaml or toml) with port, webhook_url, webhook_mode, webhook_timeout, max_body_bytes, catalog")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (json, text)")
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(serveCmd, chatCmd)
}

func initConfig() {
	if cfgFile == "" {
		return
	}
	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		slog.Error("failed to read settings file", "file", cfgFile, "error", err)
		os.Exit(1)
	}
}

// loadConfig reads the environment (and .env), then applies the settings file
// and command line flags on top.
func loadConfig() config.Config {
	return overlayConfig(config.Load(), viper.GetViper())
}

// overlayConfig applies the keys set in v over cfg. Empty strings and unknown
// webhook modes leave cfg alone.
func overlayConfig(cfg config.Config, v *viper.Viper) config.Config {
	if s := v.GetString("log_level"); s != "" {
		cfg.LogLevel = s
	}
	if s := v.GetString("log_format"); s != "" {
		cfg.LogFormat = s
	}
	if s := v.GetString("port"); s != "" {
		cfg.Port = s
	}
	if s := v.GetString("webhook_url"); s != "" {
		cfg.WebhookURL = strings.TrimSpace(s)
	}
	if s := v.GetString("webhook_mode"); s == config.ModeQuery || s == config.ModeBody {
		cfg.WebhookMode = s
	}
	if v.IsSet("webhook_timeout") {
		if d := v.GetDuration("webhook_timeout"); d >= 0 {
			cfg.WebhookTimeout = d
		}
	}
	if v.IsSet("max_body_bytes") {
		if n := v.GetInt64("max_body_bytes"); n >= 0 {
			cfg.MaxBodyBytes = n
		}
	}
	if s := v.GetString("catalog"); s != "" {
		cfg.CatalogFile = s
	}
	return cfg
}

func newLogger(cfg config.Config) *slog.Logger {
	logger := cfg.Logger()
	slog.SetDefault(logger)
	return logger
}

func exitOnError(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
