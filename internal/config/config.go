package config

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v8"
)

type Firebase struct {
	// ServiceAccount is the service-account JSON, raw or base64 encoded.
	ServiceAccount     string        `env:"FIREBASE_SERVICE_ACCOUNT,required"`
	WriteTimeoutSecond time.Duration `env:"FIREBASE_WRITE_TIMEOUT" envDefault:"30s"`
}

type Server struct {
	Port string `env:"PORT" envDefault:"8080"`
}

type Watcher struct {
	RetryDelay          time.Duration `env:"WATCHER_RETRY_DELAY" envDefault:"5s"`
	DispatchConcurrency int           `env:"DISPATCH_CONCURRENCY" envDefault:"8"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Pretty bool   `env:"LOG_PRETTY" envDefault:"false"`
}

type Config struct {
	Firebase
	Server
	Watcher
	Log
}

func LoadConfig() (Config, error) {
	return parse(env.Options{})
}

func parse(opts env.Options) (Config, error) {
	var config *Config = new(Config)
	if err := env.ParseWithOptions(config, opts); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := config.normalize(); err != nil {
		return Config{}, err
	}
	return *config, nil
}

// Credentials returns the service-account JSON.
func (f Firebase) Credentials() []byte {
	return []byte(f.ServiceAccount)
}

func (c *Config) normalize() error {

	sa := strings.TrimSpace(c.Firebase.ServiceAccount)
	if sa == "" {
		return fmt.Errorf("normalize config: FIREBASE_SERVICE_ACCOUNT is empty")
	}

	if !strings.HasPrefix(sa, "{") {
		decodedBytes, err := base64.StdEncoding.DecodeString(sa)
		if err != nil {
			return fmt.Errorf("normalize config: decode service account: %w", err)
		}
		sa = string(decodedBytes)
	}

	if !json.Valid([]byte(sa)) {
		return fmt.Errorf("normalize config: service account is not valid json")
	}
	c.Firebase.ServiceAccount = sa

	if c.WriteTimeoutSecond <= 0 {
		c.WriteTimeoutSecond = time.Second * 30
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = time.Second * 5
	}
	if c.DispatchConcurrency <= 0 {
		c.DispatchConcurrency = 1
	}
	return nil
}
