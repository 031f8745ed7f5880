package services

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	ModeWebhook = "webhook"
	ModePolling = "polling"
)

type Config struct {
	BotToken   string
	Admins     []string
	SiteUrl    string
	WebhookUrl string
	Port       string
	Mode       string
	DataDir    string
}

// LoadConfig reads the environment, with .env as a best-effort overlay for
// local runs.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	c := &Config{
		BotToken:   os.Getenv("BOT_TOKEN"),
		SiteUrl:    strings.TrimRight(os.Getenv("SITE_URL"), "/"),
		WebhookUrl: strings.TrimRight(os.Getenv("WEBHOOK_URL"), "/"),
		Port:       os.Getenv("PORT"),
		Mode:       os.Getenv("BOT_MODE"),
		DataDir:    os.Getenv("DATA_DIR"),
	}

	if c.BotToken == "" {
		return nil, errors.New("BOT_TOKEN is not set")
	}

	for _, name := range strings.Split(os.Getenv("ADMIN_USERNAMES"), ",") {
		name = strings.TrimPrefix(strings.TrimSpace(name), "@")
		if name != "" {
			c.Admins = append(c.Admins, name)
		}
	}

	if c.Port == "" {
		c.Port = "8080"
	}
	if c.Mode == "" {
		c.Mode = ModePolling
	}
	if c.Mode != ModePolling && c.Mode != ModeWebhook {
		return nil, errors.New("BOT_MODE must be polling or webhook")
	}
	if c.Mode == ModeWebhook && c.WebhookUrl == "" {
		return nil, errors.New("WEBHOOK_URL must be set in webhook mode")
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}

	return c, nil
}

func (c *Config) IsAdmin(username string) bool {
	for _, admin := range c.Admins {
		if strings.EqualFold(admin, username) {
			return true
		}
	}
	return false
}
