/*
Package connkit resolves PostgreSQL connection configuration for Go
applications.

A connection is described either as a raw connection string or as structured
fields. Connkit resolves it in three decoupled steps:

  - build: parse the connection string when field-level merging is needed,
    merge overrides (override fields win, everything else survives), and
    compose the final client config
  - transform: dispatch the connection to a pluggable transformer selected
    by its type tag, the seam where non-standard connectivity schemes such
    as Google Cloud SQL managed sockets plug in
  - open: hand the final connection to the driver and wrap it in a Bun DB
    with pooling and configurable observability

# Basic Usage

	cfg := connkit.DefaultConfig(os.Getenv("DATABASE_URL"))
	cfg.Logger = slog.Default()
	cfg.LogSlowQueries = 100 * time.Millisecond

	db, err := connkit.Open(ctx, cfg, nil)
	if err != nil {
	    log.Fatal(err)
	}
	defer db.Close()

# Overrides

Overrides adjust a resolved config per call without touching the source
configuration. Overriding connection fields on a raw connection string
forces it to be parsed and merged into structured form:

	db, err := connkit.Open(ctx, cfg, &connkit.Overrides{
	    Connection: &connkit.ConnectionOverride{Database: "tenant_42"},
	    SearchPath: []string{"tenant_42", "public"},
	})

# Connection Transformers

A connection carrying a type tag is rewritten by the transformer registered
under that tag before the driver sees it. An absent tag, or "default", is an
explicit no-op; a tag with no registered transformer fails resolution:

	cfg := connkit.DefaultConfig("").WithTransformer(
	    connkit.CloudSQLType, connkit.NewCloudSQLTransformer(),
	)
	cfg.Connection = connkit.ConnectionSpec{
	    User:     "sa@project.iam",
	    Database: "orders",
	    Type:     connkit.CloudSQLType,
	    Extra:    map[string]string{"instance": "project:region:instance"},
	}

Pure resolution is available without opening a connection:

	resolved, err := connkit.BuildClientConfig(cfg, overrides)

# Error Handling

Resolution is all-or-nothing and errors carry classification:

	if err != nil {
	    if connkit.IsNoTransformerForType(err) {
	        tag, _ := connkit.UnresolvedType(err)
	        // register a transformer for tag
	    }

	    var kitErr *connkit.Error
	    if errors.As(err, &kitErr) {
	        fmt.Println(kitErr.Code) // MALFORMED_CONNECTION_STRING, ...
	    }
	}
*/
package connkit
