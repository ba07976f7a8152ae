// Package config provides configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/kyiku/jigsaw-puzzle-back/internal/puzzle"
)

// Config holds the application configuration.
type Config struct {
	Port             string
	AllowedOrigin    string
	AWSRegion        string
	S3Bucket         string
	CloudfrontDomain string

	// Puzzle layout
	PieceSize       int
	MinPuzzleWidth  int
	MinPuzzleHeight int

	IdleTimeout    time.Duration // closes idle WebSocket connections
	SessionExpiry  time.Duration // 0 means sessions never expire
	BedrockEnabled bool
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		AllowedOrigin:    getEnv("ALLOWED_ORIGIN", "http://localhost:5173"),
		AWSRegion:        getEnv("AWS_REGION", "ap-northeast-1"),
		S3Bucket:         getEnv("S3_BUCKET", "jigsaw-puzzle-assets"),
		CloudfrontDomain: getEnv("CLOUDFRONT_DOMAIN", "https://test.cloudfront.net"),
	}

	var err error
	if cfg.PieceSize, err = getEnvInt("PIECE_SIZE", puzzle.DefaultPieceSize); err != nil {
		return nil, err
	}
	if cfg.MinPuzzleWidth, err = getEnvInt("MIN_PUZZLE_WIDTH", puzzle.DefaultMinPuzzleWidth); err != nil {
		return nil, err
	}
	if cfg.MinPuzzleHeight, err = getEnvInt("MIN_PUZZLE_HEIGHT", puzzle.DefaultMinPuzzleHeight); err != nil {
		return nil, err
	}
	if cfg.IdleTimeout, err = getEnvDuration("IDLE_TIMEOUT", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.SessionExpiry, err = getEnvDuration("SESSION_EXPIRY", time.Hour); err != nil {
		return nil, err
	}
	if cfg.BedrockEnabled, err = getEnvBool("BEDROCK_ENABLED", true); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	// Validate port is a number
	if _, err := strconv.Atoi(c.Port); err != nil {
		return errors.New("invalid port: must be a number")
	}
	if c.PieceSize <= 0 {
		return errors.New("invalid piece size: must be positive")
	}
	if c.MinPuzzleWidth < c.PieceSize || c.MinPuzzleHeight < c.PieceSize {
		return errors.New("invalid puzzle size: must fit at least one piece")
	}
	if c.IdleTimeout <= 0 {
		return errors.New("invalid idle timeout: must be positive")
	}

	return nil
}

// Layout returns the puzzle layout described by the configuration.
func (c *Config) Layout() puzzle.Layout {
	return puzzle.Layout{
		PieceSize:       c.PieceSize,
		MinPuzzleWidth:  c.MinPuzzleWidth,
		MinPuzzleHeight: c.MinPuzzleHeight,
	}
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
