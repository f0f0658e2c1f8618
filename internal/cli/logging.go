package cli

import (
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"gpem17-evo/internal/config"
)

// ConfigSummaryLines returns human readable lines describing the loaded app config.
func ConfigSummaryLines(cfg *config.Config) []string {
	if cfg == nil {
		return []string{"Configuration: <nil>"}
	}

	timeout := "none"
	if cfg.Barrier.Timeout > 0 {
		timeout = cfg.Barrier.Timeout.String()
	}
	source := cfg.MainPath()
	if source == "" {
		source = "<inline>"
	}
	lines := []string{
		fmt.Sprintf("Config file: %s", source),
		fmt.Sprintf("Environment: %s", cfg.Env),
		fmt.Sprintf("Results root: %s", cfg.ResultsRoot),
		fmt.Sprintf("Config source: %s", cfg.ConfigSource),
		fmt.Sprintf("Barrier (poll/timeout): %s / %s", cfg.Barrier.PollInterval, timeout),
		fmt.Sprintf("Postgres: %s", presence(cfg.Postgres.DSN != "")),
		fmt.Sprintf("Redis: %s", presence(strings.TrimSpace(cfg.Redis.Host) != "")),
		fmt.Sprintf("Archive: %s", presence(cfg.Archive.Enabled())),
		scenarioLine(cfg),
	}
	return lines
}

// LogConfigSummary emits the configuration summary using logx.
func LogConfigSummary(cfg *config.Config) {
	lines := ConfigSummaryLines(cfg)
	if len(lines) == 0 {
		return
	}
	logx.Info("configuration summary")
	for _, line := range lines {
		logx.Infof("config • %s", line)
	}
}

func presence(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func scenarioLine(cfg *config.Config) string {
	if strings.TrimSpace(cfg.Scenarios.File) != "" {
		return fmt.Sprintf("Scenario catalog: %s (%d selectors)", cfg.Scenarios.File, len(cfg.Catalog().Scenarios))
	}
	return fmt.Sprintf("Scenario catalog: built-in (%d selectors)", len(cfg.Catalog().Scenarios))
}
