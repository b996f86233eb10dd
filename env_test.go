package connkit

import (
	"testing"
	"time"
)

func TestFromEnv_DSN(t *testing.T) {
	t.Setenv("CONNKIT_DSN", "postgresql://u:p@h:5432/d")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Connection.DSN != "postgresql://u:p@h:5432/d" {
		t.Errorf("expected DSN from environment, got %q", cfg.Connection.DSN)
	}
}

func TestFromEnv_StructuredFields(t *testing.T) {
	t.Setenv("CONNKIT_HOST", "db.internal")
	t.Setenv("CONNKIT_PORT", "6432")
	t.Setenv("CONNKIT_USER", "app")
	t.Setenv("CONNKIT_PASSWORD", "secret")
	t.Setenv("CONNKIT_DATABASE", "orders")
	t.Setenv("CONNKIT_SSL", "true")
	t.Setenv("CONNKIT_CONNECTION_TYPE", "google-cloud-sql")
	t.Setenv("CONNKIT_MAX_OPEN_CONNS", "12")
	t.Setenv("CONNKIT_DIAL_TIMEOUT", "2s")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	conn := cfg.Connection
	if conn.Host != "db.internal" || conn.Port != "6432" ||
		conn.User != "app" || conn.Password != "secret" || conn.Database != "orders" {
		t.Errorf("unexpected connection fields: %+v", conn)
	}
	if conn.Port != "6432" {
		t.Errorf("expected port kept as string, got %q", conn.Port)
	}
	if conn.SSL == nil || !*conn.SSL {
		t.Error("expected SSL true")
	}
	if conn.Type != "google-cloud-sql" {
		t.Errorf("expected connection type, got %q", conn.Type)
	}
	if cfg.MaxOpenConns != 12 {
		t.Errorf("expected 12 max open conns, got %d", cfg.MaxOpenConns)
	}
	if cfg.DialTimeout != 2*time.Second {
		t.Errorf("expected 2s dial timeout, got %v", cfg.DialTimeout)
	}
}

func TestFromEnv_Empty(t *testing.T) {
	// Make sure no leftovers from the process environment leak in.
	for _, key := range []string{"CONNKIT_DSN", "CONNKIT_HOST", "CONNKIT_USER", "CONNKIT_DATABASE"} {
		t.Setenv(key, "")
	}

	_, err := FromEnv()
	if err == nil {
		t.Fatal("expected error without connection settings")
	}
}
