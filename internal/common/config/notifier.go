package config

import "time"

type (
	// NotifierConfig configures the delivery channels of the notification dispatcher
	NotifierConfig struct {
		Email EmailConfig `yaml:"email"`
		SMS   SMSConfig   `yaml:"sms"`
		Redis RedisConfig `yaml:"redis"`
		Inbox InboxConfig `yaml:"inbox"`
	}

	// EmailConfig represents an SMTP relay
	EmailConfig struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		From     string `yaml:"from"`
		FromName string `yaml:"from_name"`
	}

	// SMSConfig represents a Twilio compatible SMS gateway
	SMSConfig struct {
		Enabled    bool          `yaml:"enabled"`
		BaseURL    string        `yaml:"base_url"`
		AccountSID string        `yaml:"account_sid"`
		AuthToken  string        `yaml:"auth_token"`
		From       string        `yaml:"from"`
		Timeout    time.Duration `yaml:"timeout"`
	}

	// RedisConfig represents the Redis stream that in-app clients subscribe to
	RedisConfig struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Topic    string `yaml:"topic"`
	}

	// InboxConfig toggles the persisted per-user notification inbox
	InboxConfig struct {
		Enabled bool `yaml:"enabled"`
	}
)
