package app

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	if cfg.HTTPAddr != ":3000" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.RoomCapacity != 3 {
		t.Errorf("RoomCapacity = %d, want 3", cfg.RoomCapacity)
	}
	if cfg.PingPeriod >= cfg.PongWait {
		t.Errorf("PingPeriod %v must be below PongWait %v", cfg.PingPeriod, cfg.PongWait)
	}
	if len(cfg.CORSAllow) == 0 {
		t.Error("CORSAllow empty")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("ROOM_CAPACITY", "5")
	t.Setenv("PING_PERIOD", "7s")
	t.Setenv("CORS_ALLOW", "https://a.example, https://b.example")

	cfg := LoadConfig()

	if cfg.HTTPAddr != ":9999" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.RoomCapacity != 5 {
		t.Errorf("RoomCapacity = %d, want 5", cfg.RoomCapacity)
	}
	if cfg.PingPeriod != 7*time.Second {
		t.Errorf("PingPeriod = %v, want 7s", cfg.PingPeriod)
	}
	if len(cfg.CORSAllow) != 2 || cfg.CORSAllow[1] != "https://b.example" {
		t.Errorf("CORSAllow = %v", cfg.CORSAllow)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Setenv("ROOM_CAPACITY", "zero")
	t.Setenv("PONG_WAIT", "-3s")

	cfg := LoadConfig()

	if cfg.RoomCapacity != 3 {
		t.Errorf("RoomCapacity = %d, want default 3", cfg.RoomCapacity)
	}
	if cfg.PongWait != 60*time.Second {
		t.Errorf("PongWait = %v, want default 60s", cfg.PongWait)
	}
}
