package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	multierror "github.com/hashicorp/go-multierror"
	"github.com/hxnx/aboutbot/config"
	"github.com/hxnx/aboutbot/internal/database"
	commands "github.com/hxnx/aboutbot/internal/features"
	"github.com/hxnx/aboutbot/internal/features/about"
	"github.com/hxnx/aboutbot/internal/features/client"
	"github.com/hxnx/aboutbot/internal/features/shared"
	"github.com/hxnx/aboutbot/internal/logger"
	"github.com/hxnx/aboutbot/internal/redis"
)

type Bot struct {
	config       *config.Config
	sessions     []*discordgo.Session
	fleet        *Fleet
	router       *commands.Router
	cooldowns    *shared.Cooldowns
	started      bool
	presenceStop chan struct{}
}

func New(cfg *config.Config) (*Bot, error) {
	startTime := time.Now()

	usage := database.NewUsageRepository(nil)
	if cfg.DatabaseEnabled() {
		dbc := cfg.GetDBConfig()
		dbConfig := &database.Config{
			Host:     dbc.Host,
			Port:     dbc.Port,
			User:     dbc.User,
			Password: dbc.Password,
			DBName:   dbc.Name,
			SSLMode:  dbc.SSLMode,
		}
		if err := database.Initialize(dbConfig); err != nil {
			logger.Warnf("Database initialization failed: %v", err)
		} else {
			usage = database.NewUsageRepository(database.GetDB())
		}
	}

	registry := redis.NewShardRegistry(nil)
	if cfg.RedisEnabled() {
		rc := cfg.GetRedisConfig()
		rdb, err := redis.Init(redis.Config{
			Host:     rc.Host,
			Port:     rc.Port,
			Password: rc.Password,
			DB:       rc.DB,
		})
		if err != nil {
			logger.Warnf("Redis initialization failed, fleet totals use local shards: %v", err)
		} else {
			registry = redis.NewShardRegistry(rdb)
		}
	}

	shardCount := cfg.ShardCount
	if shardCount < 1 {
		s, err := discordgo.New("Bot " + cfg.DiscordToken)
		if err != nil {
			return nil, err
		}

		if gw, err := s.GatewayBot(); err == nil && gw.Shards > 0 {
			shardCount = gw.Shards
		} else {
			logger.Warnf("failed to auto-detect shard count, defaulting to 1: %v", err)
			shardCount = 1
		}
	}

	if shardCount < 1 {
		shardCount = 1
	}

	shardIDs := cfg.LocalShards(shardCount)
	sessions := make([]*discordgo.Session, 0, len(shardIDs))
	for _, shard := range shardIDs {
		s, err := discordgo.New("Bot " + cfg.DiscordToken)
		if err != nil {
			return nil, err
		}

		s.Identify.Intents = discordgo.IntentsGuilds |
			discordgo.IntentsGuildMembers |
			discordgo.IntentsGuildMessages |
			discordgo.IntentsDirectMessages |
			discordgo.IntentsMessageContent

		if shardCount > 1 {
			s.Identify.Shard = &[2]int{shard, shardCount}
			s.ShardID = shard
			s.ShardCount = shardCount
		}

		sessions = append(sessions, s)
	}

	fleet := NewFleet(sessions, shardCount, registry)
	cooldowns := shared.NewCooldowns(time.Duration(cfg.CommandCooldown) * time.Second)

	aboutCmd := about.New(about.Options{
		Color:       cfg.AboutColor,
		Description: cfg.AboutDescription,
		Features:    cfg.AboutFeatures,
		Permissions: cfg.AboutPermissions,
	},
		about.WithIsAuthor(cfg.AboutIsAuthor),
		about.WithReplacementIcon(cfg.AboutReplacementIcon),
	)

	router := commands.NewRouter(commands.Deps{
		ApplicationID: cfg.ApplicationID,
		Client:        client.New(cfg, startTime),
		About:         aboutCmd,
		Fleet:         fleet,
		Usage:         usage,
		Cooldowns:     cooldowns,
	})

	return &Bot{
		config:    cfg,
		sessions:  sessions,
		fleet:     fleet,
		router:    router,
		cooldowns: cooldowns,
	}, nil
}

func (b *Bot) Start() error {
	if b.started {
		return nil
	}

	if len(b.sessions) == 0 {
		return nil
	}

	for _, s := range b.sessions {
		b.registerHandlers(s)
		b.router.AddHandlers(s)
	}

	if _, err := b.router.RegisterCommands(b.sessions[0], b.config.GuildID); err != nil {
		logger.Warnf("failed to register slash commands: %v", err)
	}

	conns := make([]shardConn, len(b.sessions))
	for i, s := range b.sessions {
		conns[i] = s
	}
	if failed, err := openShards(conns); err != nil {
		return fmt.Errorf("cannot open shard %d: %w", b.sessions[failed].ShardID, err)
	}

	b.startPresenceUpdater()
	b.started = true
	logger.Infof("Bot session opened (%d shard(s))", len(b.sessions))
	return nil
}

type shardConn interface {
	Open() error
	Close() error
}

// openShards opens the shards in order. When one fails, the shards opened
// before it are closed again and the index of the failed shard is returned.
func openShards(shards []shardConn) (int, error) {
	for i, s := range shards {
		if err := s.Open(); err != nil {
			var closeErr error
			for j := i - 1; j >= 0; j-- {
				if cerr := shards[j].Close(); cerr != nil {
					closeErr = multierror.Append(closeErr, cerr)
				}
			}
			if closeErr != nil {
				logger.Warnf("failed to close shards after open error: %v", closeErr)
			}
			return i, err
		}
	}
	return 0, nil
}

func (b *Bot) registerHandlers(s *discordgo.Session) {
	s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		if r.User != nil {
			logger.Infof("Bot ready as %s on shard %d (%d guilds)", r.User.Username, s.ShardID, len(r.Guilds))
		} else {
			logger.Infof("Bot ready on shard %d", s.ShardID)
		}
	})
}

func (b *Bot) Stop() error {
	if !b.started {
		return nil
	}

	b.started = false
	b.stopPresenceUpdater()

	var result error

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := b.fleet.Forget(ctx); err != nil {
		logger.Warnf("failed to remove shards from registry: %v", err)
	}

	for _, s := range b.sessions {
		if err := s.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("shard %d: %w", s.ShardID, err))
		}
	}

	if err := database.Close(); err != nil {
		logger.Warnf("failed to close database: %v", err)
	}

	if err := redis.Close(); err != nil {
		logger.Warnf("failed to close redis: %v", err)
	}

	logger.Infof("Bot session closed (%d shard(s))", len(b.sessions))
	return result
}
