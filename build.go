package connkit

import "time"

// DefaultClient is the SQL client tag resolved configs are built for when
// the source config does not name one.
const DefaultClient = "pg"

// PoolConfig holds connection pool sizing copied into a resolved config.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// ClientConfig is the fully resolved configuration handed to the database
// client. It is a value object: building never mutates its inputs and every
// call produces a fresh one.
type ClientConfig struct {
	// Client is the SQL client tag, copied from the source config.
	Client string

	// Connection is the resolved connection, raw or structured.
	Connection ConnectionSpec

	// UseNullAsDefault is always true for the Postgres client; missing
	// insert values bind as NULL rather than DEFAULT.
	UseNullAsDefault bool

	// SearchPath, Pool and Debug are copied through verbatim from the
	// overrides, replacing rather than merging.
	SearchPath []string
	Pool       *PoolConfig
	Debug      bool
}

// ConnectionOverride is a partial connection merged on top of the resolved
// connection, its non-zero fields winning.
type ConnectionOverride struct {
	Host     string
	User     string
	Password string
	Database string
	Port     string
	SSL      *bool
	Type     string
	Extra    map[string]string
}

// isEmpty reports whether the override carries no fields to merge.
func (o *ConnectionOverride) isEmpty() bool {
	return o.Host == "" && o.User == "" && o.Password == "" &&
		o.Database == "" && o.Port == "" && o.SSL == nil &&
		o.Type == "" && len(o.Extra) == 0
}

// Overrides adjusts a resolved client config without touching the source
// configuration.
type Overrides struct {
	Connection *ConnectionOverride
	SearchPath []string
	Pool       *PoolConfig
	Debug      bool
}

// BuildClientConfig resolves a Config plus optional Overrides into a
// ClientConfig.
//
// A raw connection string is preserved verbatim unless connection override
// fields are present, in which case it is parsed first so the fields can be
// merged. The merge is shallow at the connection level: override fields win,
// everything else from the original survives. A Type tag on the merged
// connection is carried through untouched; transformer existence is enforced
// at dispatch time, not here.
func BuildClientConfig(cfg Config, ov *Overrides) (ClientConfig, error) {
	mergeFields := ov != nil && ov.Connection != nil && !ov.Connection.isEmpty()

	conn, err := ConnectionFromConfig(cfg, mergeFields)
	if err != nil {
		return ClientConfig{}, err
	}

	if mergeFields {
		conn = mergeConnection(conn, ov.Connection)
	}

	client := cfg.Client
	if client == "" {
		client = DefaultClient
	}

	out := ClientConfig{
		Client:           client,
		Connection:       conn,
		UseNullAsDefault: true,
	}

	if ov != nil {
		out.SearchPath = ov.SearchPath
		out.Pool = ov.Pool
		out.Debug = ov.Debug
	}

	return out, nil
}

// mergeConnection applies override fields on top of a structured connection.
func mergeConnection(base ConnectionSpec, o *ConnectionOverride) ConnectionSpec {
	out := base.clone()

	if o.Host != "" {
		out.Host = o.Host
	}
	if o.User != "" {
		out.User = o.User
	}
	if o.Password != "" {
		out.Password = o.Password
	}
	if o.Database != "" {
		out.Database = o.Database
	}
	if o.Port != "" {
		out.Port = o.Port
	}
	if o.SSL != nil {
		ssl := *o.SSL
		out.SSL = &ssl
	}
	if o.Type != "" {
		out.Type = o.Type
	}
	if len(o.Extra) > 0 {
		if out.Extra == nil {
			out.Extra = make(map[string]string, len(o.Extra))
		}
		for k, v := range o.Extra {
			out.Extra[k] = v
		}
	}

	return out
}
