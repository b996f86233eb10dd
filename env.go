package connkit

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// envSettings mirrors Config for environment parsing. Either DSN or the
// discrete HOST/USER/... fields describe the connection.
type envSettings struct {
	Client string `env:"CLIENT"`

	DSN      string `env:"DSN"`
	Host     string `env:"HOST"`
	Port     string `env:"PORT"`
	User     string `env:"USER"`
	Password string `env:"PASSWORD"`
	Database string `env:"DATABASE"`
	SSL      *bool  `env:"SSL"`
	Type     string `env:"CONNECTION_TYPE"`

	MaxOpenConns    int           `env:"MAX_OPEN_CONNS"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME"`
	ConnMaxIdleTime time.Duration `env:"CONN_MAX_IDLE_TIME"`

	DialTimeout  time.Duration `env:"DIAL_TIMEOUT"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT"`
}

// FromEnv loads a Config from CONNKIT_-prefixed environment variables.
// CONNKIT_DSN takes a raw connection string; alternatively CONNKIT_HOST,
// CONNKIT_PORT, CONNKIT_USER, CONNKIT_PASSWORD, CONNKIT_DATABASE,
// CONNKIT_SSL and CONNKIT_CONNECTION_TYPE describe the connection field by
// field. Unset pool and timeout variables fall back to the usual defaults
// when the config is opened.
func FromEnv() (Config, error) {
	s, err := env.ParseAsWithOptions[envSettings](env.Options{Prefix: "CONNKIT_"})
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Client: s.Client,
		Connection: ConnectionSpec{
			DSN:      s.DSN,
			Host:     s.Host,
			Port:     s.Port,
			User:     s.User,
			Password: s.Password,
			Database: s.Database,
			SSL:      s.SSL,
			Type:     s.Type,
		},
		MaxOpenConns:    s.MaxOpenConns,
		MaxIdleConns:    s.MaxIdleConns,
		ConnMaxLifetime: s.ConnMaxLifetime,
		ConnMaxIdleTime: s.ConnMaxIdleTime,
		DialTimeout:     s.DialTimeout,
		ReadTimeout:     s.ReadTimeout,
		WriteTimeout:    s.WriteTimeout,
	}

	if cfg.Connection.IsZero() {
		return Config{}, &Error{
			Code:    CodeConnectionFailed,
			Message: "no connection settings in environment, set CONNKIT_DSN or CONNKIT_HOST",
			Op:      "FromEnv",
		}
	}

	return cfg, nil
}
