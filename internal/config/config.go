// internal/config/config.go
//
// Runtime settings for the Wordleboard service, read from the environment
// (main loads `.env` first via godotenv).
//
// Environment variables:
//   PORT                  listen port (5175)
//   PUBLIC_ORIGIN         origin the proxy endpoint is reachable at (http://localhost:$PORT)
//   CLIENT_ORIGIN         CORS origin for the host page (http://localhost:5173)
//   DEV_DOMAIN            host page domain that selects the dev board (localhost)
//   DISPATCH_MODE         proxy | direct (proxy)
//   CREDENTIALS_SOURCE    credentials file path or http(s) URL (credentials.json)
//   VESTABOARD_API_URL    vendor API base (https://platform.vestaboard.com)
//   VESTABOARD_TIMEOUT    proxy endpoint outbound timeout (5s)
//   DIRECT_TIMEOUT        direct mode timeout, 0 = transport default (0)
//   TIMEZONE              zone for puzzle dates (Local)
//   LOG_LEVEL             zerolog level (info)
//   LOG_PRETTY            console output instead of JSON (false)
//   HTTP_SHUTDOWN_TIMEOUT graceful shutdown budget (10s)

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

const (
	ModeProxy  = "proxy"
	ModeDirect = "direct"
)

// Config describes all runtime settings.
type Config struct {
	Log struct {
		Level  string
		Pretty bool
	}

	HTTP struct {
		Addr            string
		PublicOrigin    string
		ClientOrigin    string
		ShutdownTimeout time.Duration
	}

	Board struct {
		DevDomain    string
		DispatchMode string
		TimeZone     string
		Location     *time.Location
	}

	Vestaboard struct {
		APIURL            string
		CredentialsSource string
		ProxyTimeout      time.Duration
		DirectTimeout     time.Duration
	}
}

// LoadFromEnv reads and validates the configuration.
func LoadFromEnv() (Config, error) {
	var c Config

	c.Log.Level = getEnv("LOG_LEVEL", "info")
	c.Log.Pretty = envBool("LOG_PRETTY", false)

	port := getEnv("PORT", "5175")
	c.HTTP.Addr = ":" + port
	c.HTTP.PublicOrigin = getEnv("PUBLIC_ORIGIN", "http://localhost:"+port)
	c.HTTP.ClientOrigin = getEnv("CLIENT_ORIGIN", "http://localhost:5173")
	c.HTTP.ShutdownTimeout = envDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second)

	c.Board.DevDomain = getEnv("DEV_DOMAIN", "localhost")
	c.Board.DispatchMode = getEnv("DISPATCH_MODE", ModeProxy)
	c.Board.TimeZone = getEnv("TIMEZONE", "Local")

	c.Vestaboard.APIURL = getEnv("VESTABOARD_API_URL", "https://platform.vestaboard.com")
	c.Vestaboard.CredentialsSource = getEnv("CREDENTIALS_SOURCE", "credentials.json")
	c.Vestaboard.ProxyTimeout = envDuration("VESTABOARD_TIMEOUT", 5*time.Second)
	c.Vestaboard.DirectTimeout = envDuration("DIRECT_TIMEOUT", 0)

	loc, err := time.LoadLocation(c.Board.TimeZone)
	if err != nil {
		return Config{}, fmt.Errorf("unknown TIMEZONE=%q: %w", c.Board.TimeZone, err)
	}
	c.Board.Location = loc

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks values that would otherwise fail later at dispatch time.
func (c Config) Validate() error {
	if c.Board.DispatchMode != ModeProxy && c.Board.DispatchMode != ModeDirect {
		return fmt.Errorf("unsupported DISPATCH_MODE=%q (want proxy|direct)", c.Board.DispatchMode)
	}
	if c.Board.DevDomain == "" {
		return errors.New("DEV_DOMAIN is empty")
	}
	u, err := url.Parse(c.HTTP.PublicOrigin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid PUBLIC_ORIGIN=%q", c.HTTP.PublicOrigin)
	}
	if c.Vestaboard.CredentialsSource == "" {
		return errors.New("CREDENTIALS_SOURCE is empty")
	}
	return nil
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}
