package connkit

import (
	"context"
	"fmt"
	"net"
	"sync"

	"cloud.google.com/go/cloudsqlconn"
)

// CloudSQLType is the connection type tag the Cloud SQL transformer is
// conventionally registered under.
const CloudSQLType = "google-cloud-sql"

// Extra keys consumed by the Cloud SQL transformer.
const (
	// CloudSQLInstanceKey names the instance connection name
	// ("project:region:instance"). Required.
	CloudSQLInstanceKey = "instance"

	// CloudSQLIPAddressTypeKey selects the instance IP to dial:
	// PUBLIC (default), PRIVATE, or PSC.
	CloudSQLIPAddressTypeKey = "ipAddressType"
)

// NewCloudSQLTransformer returns a Transformer that swaps password-based
// connectivity for a Google Cloud SQL managed socket. Authentication is
// IAM-based; socket creation, TLS, and certificate rotation are handled by
// the Cloud SQL connector. The dialer is created lazily on first use and
// shared across calls.
//
// The transformed connection keeps user, port, database and any remaining
// Extra entries; the password is dropped and DialFunc carries the managed
// stream.
func NewCloudSQLTransformer(opts ...cloudsqlconn.Option) Transformer {
	var (
		once      sync.Once
		dialer    *cloudsqlconn.Dialer
		dialerErr error
	)

	return func(ctx context.Context, conn ConnectionSpec) (ConnectionSpec, error) {
		instance := conn.Extra[CloudSQLInstanceKey]
		if instance == "" {
			return ConnectionSpec{}, &Error{
				Code:    CodeTransformerFailed,
				Message: "missing instance connection name for Google Cloud SQL",
				Op:      "CloudSQL",
			}
		}

		ipType := conn.Extra[CloudSQLIPAddressTypeKey]
		if ipType == "" {
			ipType = "PUBLIC"
		}

		var dialOpt cloudsqlconn.DialOption
		switch ipType {
		case "PUBLIC":
			dialOpt = cloudsqlconn.WithPublicIP()
		case "PRIVATE":
			dialOpt = cloudsqlconn.WithPrivateIP()
		case "PSC":
			dialOpt = cloudsqlconn.WithPSC()
		default:
			return ConnectionSpec{}, &Error{
				Code:    CodeTransformerFailed,
				Message: fmt.Sprintf("unsupported Cloud SQL ip address type %q", ipType),
				Op:      "CloudSQL",
			}
		}

		once.Do(func() {
			all := append([]cloudsqlconn.Option{cloudsqlconn.WithIAMAuthN()}, opts...)
			dialer, dialerErr = cloudsqlconn.NewDialer(ctx, all...)
		})
		if dialerErr != nil {
			return ConnectionSpec{}, &Error{
				Code:    CodeTransformerFailed,
				Message: "failed to initialize Cloud SQL dialer",
				Op:      "CloudSQL",
				Cause:   dialerErr,
			}
		}

		out := conn.clone()
		out.Password = ""
		delete(out.Extra, CloudSQLInstanceKey)
		delete(out.Extra, CloudSQLIPAddressTypeKey)
		out.DialFunc = func(ctx context.Context, _, _ string) (net.Conn, error) {
			return dialer.Dial(ctx, instance, dialOpt)
		}

		return out, nil
	}
}
