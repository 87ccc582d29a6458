package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port                          string   `mapstructure:"PORT"`
	DatabasePath                  string   `mapstructure:"DATABASE_PATH"`
	DiscordClientID               string   `mapstructure:"DISCORD_CLIENT_ID"`
	DiscordClientSecret           string   `mapstructure:"DISCORD_CLIENT_SECRET"`
	DiscordRedirectURL            string   `mapstructure:"DISCORD_REDIRECT_URL"`
	DiscordGuildID                string   `mapstructure:"DISCORD_GUILD_ID"`
	DiscordBotToken               string   `mapstructure:"DISCORD_BOT_TOKEN"`
	DiscordNotificationsChannelID string   `mapstructure:"DISCORD_NOTIFICATIONS_CHANNEL_ID"`
	AdminDiscordIDs               []string `mapstructure:"ADMIN_DISCORD_IDS"`
	JWTSecret                     string   `mapstructure:"JWT_SECRET"`
	AdminURL                      string   `mapstructure:"ADMIN_URL"`
	PerPage                       int      `mapstructure:"PER_PAGE"`
	LandingPagePath               string   `mapstructure:"LANDING_PAGE_PATH"`
	DigestSchedule                string   `mapstructure:"DIGEST_SCHEDULE"`
	LogLevel                      string   `mapstructure:"LOG_LEVEL"`
}

func LoadConfig() *Config {
	// A missing .env is fine, the process environment still applies.
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_PATH", "registrations.db")
	v.SetDefault("DISCORD_REDIRECT_URL", "http://127.0.0.1:8080/auth/discord/callback")
	v.SetDefault("ADMIN_URL", "/admin/registrations")
	v.SetDefault("PER_PAGE", 8)
	v.SetDefault("DIGEST_SCHEDULE", "0 8 * * *")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ADMIN_DISCORD_IDS", []string{})

	v.BindEnv("DISCORD_CLIENT_ID")
	v.BindEnv("DISCORD_CLIENT_SECRET")
	v.BindEnv("DISCORD_GUILD_ID")
	v.BindEnv("DISCORD_BOT_TOKEN")
	v.BindEnv("DISCORD_NOTIFICATIONS_CHANNEL_ID")
	v.BindEnv("ADMIN_DISCORD_IDS")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("LANDING_PAGE_PATH")

	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	if config.PerPage <= 0 {
		config.PerPage = 8
	}
	config.AdminDiscordIDs = cleanIDs(config.AdminDiscordIDs)

	return &config
}

// cleanIDs trims list entries such as "111, 222" and drops empty ones.
func cleanIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// IsAdmin reports whether the Discord user id is on the admin allow-list.
func (c *Config) IsAdmin(discordID string) bool {
	for _, id := range c.AdminDiscordIDs {
		if id == discordID {
			return true
		}
	}
	return false
}
