package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hxnx/aboutbot/config"
	"github.com/hxnx/aboutbot/internal/bot"
	"github.com/hxnx/aboutbot/internal/logger"
	"github.com/hxnx/aboutbot/internal/version"
)

func main() {
	logger.Infof("%s %s - Discord about bot", version.AppName, version.Version)

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf("Failed to load configuration: %v", err)
		logger.Infof("Required environment variables:")
		logger.Infof("  DISCORD_TOKEN          - Your Discord bot token")
		logger.Infof("  DISCORD_APPLICATION_ID - Your Discord application ID")
		logger.Infof("  OWNER_ID               - User ID of the bot owner")
		logger.Infof("Optional environment variables:")
		logger.Infof("  DISCORD_GUILD_ID       - Guild ID for development (registers commands to specific guild)")
		logger.Infof("  SHARD_COUNT            - Number of shards (0 = auto-detect)")
		logger.Infof("  SHARD_IDS              - Shards run by this process, e.g. 0,1 (requires SHARD_COUNT)")
		logger.Infof("  LOG_LEVEL              - Log level (debug, info, warn, error)")
		logger.Infof("  COMMAND_PREFIX, HELP_WORD, SERVER_INVITE")
		logger.Infof("  SUCCESS_EMOJI, WARNING_EMOJI, COMMAND_COOLDOWN")
		logger.Infof("  ABOUT_COLOR, ABOUT_DESCRIPTION, ABOUT_FEATURES, ABOUT_IS_AUTHOR, ABOUT_REPLACEMENT_ICON, ABOUT_PERMISSIONS")
		logger.Infof("  DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME, DB_SSLMODE")
		logger.Infof("  REDIS_HOST, REDIS_PORT, REDIS_PASSWORD, REDIS_DB")
		os.Exit(1)
	}

	logger.Init(os.Stdout, cfg.LogLevel)

	if cfg.IsDevelopment() {
		logger.Infof("Mode: Development (Guild ID: %s)", cfg.GuildID)
	} else {
		logger.Infof("Mode: Production (global commands)")
	}
	logger.Infof("Log Level: %s", cfg.LogLevel)
	logger.Infof("Prefix: %s (help: %s%s)", cfg.CommandPrefix, cfg.CommandPrefix, cfg.HelpWord)
	logger.Infof("Features: %s", strings.Join(cfg.AboutFeatures, ", "))

	if len(cfg.ShardIDs) > 0 {
		logger.Infof("Shard Count: %d (running %v)", cfg.ShardCount, cfg.ShardIDs)
	} else if cfg.ShardCount > 0 {
		logger.Infof("Shard Count: %d (manual)", cfg.ShardCount)
	} else {
		logger.Infof("Shard Count: auto-detect")
	}

	if cfg.DatabaseEnabled() {
		logger.Infof("Database: %s:%d/%s (user %s, sslmode %s)", cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBUser, cfg.DBSSLMode)
	} else {
		logger.Infof("Database: not configured (command usage is not recorded)")
	}

	if cfg.RedisEnabled() {
		logger.Infof("Redis: %s:%d (db %d)", cfg.RedisHost, cfg.RedisPort, cfg.RedisDB)
	} else {
		logger.Infof("Redis: not configured (fleet totals use local shards)")
	}

	b, err := bot.New(cfg)
	if err != nil {
		logger.Errorf("Failed to create bot: %v", err)
		os.Exit(1)
	}

	logger.Infof("Starting bot...")
	if err := b.Start(); err != nil {
		logger.Errorf("Bot error: %v", err)
		os.Exit(1)
	}

	logger.Infof("Bot is running. Press CTRL+C to exit.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Infof("Shutting down...")
	if err := b.Stop(); err != nil {
		logger.Errorf("Failed to stop bot: %v", err)
	}
}
