package app

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"
)

type Config struct {
	Env       string
	HTTPAddr  string
	CORSAllow []string

	StaticDir string // browser client assets

	RoomCapacity int // max occupants per world
	SendBuffer   int // per-connection outbound queue

	PingPeriod time.Duration // keepalive ping interval
	PongWait   time.Duration // read deadline; must exceed PingPeriod
	WriteWait  time.Duration // per-frame write deadline
}

func LoadConfig() Config {
	cfg := Config{
		Env:       getEnv("APP_ENV", "dev"),
		HTTPAddr:  getEnv("HTTP_ADDR", ":3000"),
		StaticDir: getEnv("STATIC_DIR", "static"),
	}
	cfg.RoomCapacity = getEnvInt("ROOM_CAPACITY", 3)
	cfg.SendBuffer = getEnvInt("SEND_BUFFER", 256)
	cfg.PingPeriod = getEnvDuration("PING_PERIOD", 20*time.Second)
	cfg.PongWait = getEnvDuration("PONG_WAIT", 60*time.Second)
	cfg.WriteWait = getEnvDuration("WRITE_WAIT", 10*time.Second)
	// CORS allowlist
	allow := getEnv("CORS_ALLOW", "http://localhost:3000")
	cfg.CORSAllow = splitCSV(allow)
	log.Printf("config: %+v\n", cfg)
	return cfg
}

// getEnv returns the env var or a default
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// getEnvInt parses an int env var with a fallback
func getEnvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		var i int
		_, _ = fmt.Sscanf(v, "%d", &i)
		if i > 0 {
			return i
		}
	}
	return def
}

// getEnvDuration parses a duration env var with a fallback
func getEnvDuration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}

// splitCSV trims and filters a comma-separated list
func splitCSV(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
