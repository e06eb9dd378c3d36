package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/joho/godotenv"
)

const (
	defaultAboutColor  = 0xC8A2C8
	featuresSeparator  = "|"
	defaultDescription = "a small bot that tells you about itself."
)

// DefaultAboutPermissions are requested by the invite link unless
// ABOUT_PERMISSIONS is set.
const DefaultAboutPermissions int64 = discordgo.PermissionViewChannel |
	discordgo.PermissionSendMessages |
	discordgo.PermissionEmbedLinks |
	discordgo.PermissionReadMessageHistory |
	discordgo.PermissionAddReactions

type Config struct {
	DiscordToken  string
	ApplicationID string

	GuildID string

	ShardCount int
	// ShardIDs are the shards this process runs, all of them when empty.
	ShardIDs []int

	LogLevel string

	CommandPrefix   string
	HelpWord        string
	OwnerID         string
	ServerInvite    string
	SuccessEmoji    string
	WarningEmoji    string
	CommandCooldown int

	AboutColor           int
	AboutDescription     string
	AboutFeatures        []string
	AboutIsAuthor        bool
	AboutReplacementIcon string
	AboutPermissions     int64

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisHost     string
	RedisPort     int
	RedisPassword string
	RedisDB       int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	color, err := getEnvAsColorWithDefault("ABOUT_COLOR", defaultAboutColor)
	if err != nil {
		return nil, err
	}

	perms, err := getEnvAsPermissionsWithDefault("ABOUT_PERMISSIONS", DefaultAboutPermissions)
	if err != nil {
		return nil, err
	}

	shardIDs, err := getEnvAsIntList("SHARD_IDS", ",")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DiscordToken:  os.Getenv("DISCORD_TOKEN"),
		ApplicationID: os.Getenv("DISCORD_APPLICATION_ID"),

		GuildID: os.Getenv("DISCORD_GUILD_ID"),

		ShardCount: getEnvAsIntWithDefault("SHARD_COUNT", 0),
		ShardIDs:   shardIDs,

		LogLevel: getEnvWithDefault("LOG_LEVEL", "info"),

		CommandPrefix:   getEnvWithDefault("COMMAND_PREFIX", "!"),
		HelpWord:        getEnvWithDefault("HELP_WORD", "help"),
		OwnerID:         os.Getenv("OWNER_ID"),
		ServerInvite:    os.Getenv("SERVER_INVITE"),
		SuccessEmoji:    getEnvWithDefault("SUCCESS_EMOJI", "✅"),
		WarningEmoji:    getEnvWithDefault("WARNING_EMOJI", "⚠️"),
		CommandCooldown: getEnvAsIntWithDefault("COMMAND_COOLDOWN", 5),

		AboutColor:           color,
		AboutDescription:     getEnvWithDefault("ABOUT_DESCRIPTION", defaultDescription),
		AboutFeatures:        getEnvAsList("ABOUT_FEATURES", featuresSeparator),
		AboutIsAuthor:        getEnvAsBoolWithDefault("ABOUT_IS_AUTHOR", true),
		AboutReplacementIcon: getEnvWithDefault("ABOUT_REPLACEMENT_ICON", "+"),
		AboutPermissions:     perms,

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     getEnvAsInt("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  getEnvWithDefault("DB_SSLMODE", "disable"),

		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     getEnvAsIntWithDefault("REDIS_PORT", 6379),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvAsIntWithDefault("REDIS_DB", 0),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DiscordToken == "" {
		return errors.New("DISCORD_TOKEN is required")
	}

	if c.ApplicationID == "" {
		return errors.New("DISCORD_APPLICATION_ID is required")
	}

	if c.OwnerID == "" {
		return errors.New("OWNER_ID is required")
	}

	ids := []struct {
		key   string
		value string
	}{
		{"DISCORD_APPLICATION_ID", c.ApplicationID},
		{"DISCORD_GUILD_ID", c.GuildID},
		{"OWNER_ID", c.OwnerID},
	}
	for _, id := range ids {
		if id.value == "" {
			continue
		}
		if _, err := snowflake.Parse(id.value); err != nil {
			return fmt.Errorf("%s must be a valid snowflake: %w", id.key, err)
		}
	}

	if strings.TrimSpace(c.CommandPrefix) == "" {
		return errors.New("COMMAND_PREFIX must not be empty")
	}

	if c.HelpWord == "" {
		return errors.New("HELP_WORD must not be empty")
	}

	if c.CommandCooldown < 0 {
		return errors.New("COMMAND_COOLDOWN must not be negative")
	}

	if c.AboutPermissions < 0 {
		return errors.New("ABOUT_PERMISSIONS must not be negative")
	}

	if err := c.validateShards(); err != nil {
		return err
	}

	return nil
}

func (c *Config) validateShards() error {
	if c.ShardCount < 0 {
		return errors.New("SHARD_COUNT must not be negative")
	}
	if len(c.ShardIDs) == 0 {
		return nil
	}
	if c.ShardCount == 0 {
		return errors.New("SHARD_IDS requires SHARD_COUNT")
	}

	seen := make(map[int]struct{}, len(c.ShardIDs))
	for _, id := range c.ShardIDs {
		if id < 0 || id >= c.ShardCount {
			return fmt.Errorf("shard %d is outside SHARD_COUNT %d", id, c.ShardCount)
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("shard %d is listed twice in SHARD_IDS", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// LocalShards are the shard IDs to identify with, given the fleet size.
func (c *Config) LocalShards(shardCount int) []int {
	if len(c.ShardIDs) > 0 {
		return c.ShardIDs
	}
	ids := make([]int, shardCount)
	for i := range ids {
		ids[i] = i
	}
	return ids
}

func (c *Config) IsDevelopment() bool {
	return c.GuildID != ""
}

// DatabaseEnabled reports whether enough settings are present to try PostgreSQL.
func (c *Config) DatabaseEnabled() bool {
	return c.DBHost != "" && c.DBName != ""
}

// RedisEnabled reports whether a Redis host is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

func getEnvAsInt(key string) int {
	return getEnvAsIntWithDefault(key, 0)
}

func getEnvAsIntWithDefault(key string, defaultValue int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvWithDefault(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsList(key, sep string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}

	parts := strings.Split(value, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvAsIntList(key, sep string) ([]int, error) {
	var out []int
	for _, v := range getEnvAsList(key, sep) {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid number %q", key, v)
		}
		out = append(out, n)
	}
	return out, nil
}

func getEnvAsPermissionsWithDefault(key string, defaultValue int64) (int64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid permission bitset %q", key, value)
	}
	return n, nil
}

func getEnvAsColorWithDefault(key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	return ParseColor(value)
}

// ParseColor accepts "#RRGGBB", "0xRRGGBB" or "RRGGBB".
func ParseColor(value string) (int, error) {
	hex := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(value), "#"), "0x")
	n, err := strconv.ParseInt(hex, 16, 32)
	if err != nil || n < 0 || n > 0xFFFFFF {
		return 0, fmt.Errorf("invalid color %q", value)
	}
	return int(n), nil
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (c *Config) GetDBConfig() *DBConfig {
	return &DBConfig{
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		Name:     c.DBName,
		SSLMode:  c.DBSSLMode,
	}
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (c *Config) GetRedisConfig() *RedisConfig {
	return &RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}
