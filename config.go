package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Addr          string `validate:"required"`
	DBDriver      string `validate:"oneof=sqlite postgres"`
	DBPath        string `validate:"required_if=DBDriver sqlite"`
	DatabaseURL   string `validate:"required_if=DBDriver postgres"`
	AdminUser     string `validate:"required,max=150"`
	AdminPass     string
	SecureCookies bool
	LogLevel      string `validate:"oneof=trace debug info warn error"`
	LogFormat     string `validate:"oneof=console json"`
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration
}

// environ returns the process environment as a map.
func environ() map[string]string {
	env := os.Environ()
	envAsMap := make(map[string]string, len(env))
	for _, entry := range env {
		if entry == "" {
			continue
		}
		key, value, _ := strings.Cut(entry, "=")
		envAsMap[key] = value
	}
	return envAsMap
}

func configString(env map[string]string, key, defaultValue string) string {
	if val, ok := env[key]; ok && val != "" {
		return val
	}
	return defaultValue
}

func configInt(env map[string]string, key string, defaultValue int) int {
	s, ok := env[key]
	if !ok {
		return defaultValue
	}
	asInt, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return asInt
}

func configBool(env map[string]string, key string, defaultValue bool) bool {
	s, ok := env[key]
	if !ok {
		return defaultValue
	}
	asBool, err := strconv.ParseBool(s)
	if err != nil {
		return defaultValue
	}
	return asBool
}

func loadConfig(env map[string]string) (Config, error) {
	cfg := Config{
		Addr:          configString(env, "ADDR", ":8080"),
		DBDriver:      strings.ToLower(configString(env, "DB_DRIVER", "sqlite")),
		DBPath:        configString(env, "DB_PATH", "blog.db"),
		DatabaseURL:   configString(env, "DATABASE_URL", ""),
		AdminUser:     configString(env, "ADMIN_USER", "admin"),
		AdminPass:     configString(env, "ADMIN_PASS", ""),
		SecureCookies: configBool(env, "SECURE_COOKIES", false),
		LogLevel:      strings.ToLower(configString(env, "LOG_LEVEL", "info")),
		LogFormat:     strings.ToLower(configString(env, "LOG_FORMAT", "console")),
		ReadTimeout:   time.Duration(configInt(env, "READ_TIMEOUT_SECONDS", 5)) * time.Second,
		WriteTimeout:  time.Duration(configInt(env, "WRITE_TIMEOUT_SECONDS", 10)) * time.Second,
		IdleTimeout:   time.Duration(configInt(env, "IDLE_TIMEOUT_SECONDS", 60)) * time.Second,
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
