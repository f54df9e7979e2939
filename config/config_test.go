package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if cfg.Game.MaxRetries != 3 {
		t.Fatalf("expected default max retries 3, got %d", cfg.Game.MaxRetries)
	}
	if cfg.Game.TickTimeout != 5*time.Second {
		t.Fatalf("expected default tick timeout 5s, got %v", cfg.Game.TickTimeout)
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  http_port: 9090
database:
  driver: sqlite
  path: /tmp/test.db
game:
  tick_timeout: 2s
  tick_workers: 4
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("HOMEDEFENSE_GAME_MAX_RETRIES", "7")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server.HTTPPort != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.HTTPPort)
	}
	if cfg.Database.Driver != DriverSQLite || cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("unexpected database config: %+v", cfg.Database)
	}
	if cfg.Game.TickTimeout != 2*time.Second || cfg.Game.TickWorkers != 4 {
		t.Errorf("unexpected game config: %+v", cfg.Game)
	}
	if cfg.Game.MaxRetries != 7 {
		t.Errorf("expected env override max retries 7, got %d", cfg.Game.MaxRetries)
	}
	if cfg.Game.AttackLogLimit != 10 {
		t.Errorf("expected default attack log limit 10, got %d", cfg.Game.AttackLogLimit)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"driver", func(c *Config) { c.Database.Driver = "mysql" }, "数据库驱动"},
		{"port", func(c *Config) { c.Server.HTTPPort = 0 }, "HTTP端口"},
		{"timeout", func(c *Config) { c.Game.TickTimeout = 0 }, "tick_timeout"},
		{"workers", func(c *Config) { c.Game.TickWorkers = 0 }, "tick_workers"},
		{"retries", func(c *Config) { c.Game.MaxRetries = -1 }, "max_retries"},
		{"scheduler", func(c *Config) {
			c.Game.SchedulerEnabled = true
			c.Game.CombatInterval = 0
		}, "combat_interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestDSNAndRedisAddr(t *testing.T) {
	db := DatabaseConfig{Host: "h", Port: 1, User: "u", Password: "p", DBName: "d", SSLMode: "disable"}
	if got := db.GetDSN(); got != "host=h port=1 user=u password=p dbname=d sslmode=disable" {
		t.Fatalf("unexpected dsn: %s", got)
	}
	r := RedisConfig{Host: "r", Port: 6379}
	if got := r.GetRedisAddr(); got != "r:6379" {
		t.Fatalf("unexpected redis addr: %s", got)
	}
}
