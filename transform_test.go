package connkit

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestRegistry_Apply_Identity(t *testing.T) {
	calls := 0
	reg := Registry{
		"cloud": func(ctx context.Context, conn ConnectionSpec) (ConnectionSpec, error) {
			calls++
			return conn, nil
		},
	}

	conn := ConnectionSpec{Host: "h", Database: "d"}

	tests := []struct {
		name string
		typ  string
	}{
		{"absent type", ""},
		{"default type", DefaultType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := conn
			in.Type = tt.typ

			out, err := reg.Apply(context.Background(), in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(out, in) {
				t.Errorf("expected connection unchanged, got %+v", out)
			}
		})
	}

	if calls != 0 {
		t.Errorf("expected no transformer invocations, got %d", calls)
	}
}

func TestRegistry_Apply_Unregistered(t *testing.T) {
	reg := Registry{}
	conn := ConnectionSpec{Host: "h", Database: "d", Type: "rotating-creds"}

	_, err := reg.Apply(context.Background(), conn)
	if err == nil {
		t.Fatal("expected error for unregistered type")
	}
	if !IsNoTransformerForType(err) {
		t.Errorf("expected no-transformer error, got %v", err)
	}
	if !strings.Contains(err.Error(), "rotating-creds") {
		t.Errorf("expected error to name the type, got %q", err.Error())
	}
	if tag, ok := UnresolvedType(err); !ok || tag != "rotating-creds" {
		t.Errorf("expected unresolved type 'rotating-creds', got %q", tag)
	}
}

func TestRegistry_Apply_NilRegistry(t *testing.T) {
	var reg Registry

	// Untagged connections pass through even without a registry.
	out, err := reg.Apply(context.Background(), ConnectionSpec{Host: "h"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Host != "h" {
		t.Errorf("expected connection unchanged, got %+v", out)
	}

	// A tagged one fails.
	_, err = reg.Apply(context.Background(), ConnectionSpec{Host: "h", Type: "x"})
	if !IsNoTransformerForType(err) {
		t.Errorf("expected no-transformer error, got %v", err)
	}
}

func TestRegistry_Apply_CaseSensitive(t *testing.T) {
	reg := Registry{
		"CloudSQL": func(ctx context.Context, conn ConnectionSpec) (ConnectionSpec, error) {
			return conn, nil
		},
	}

	_, err := reg.Apply(context.Background(), ConnectionSpec{Host: "h", Type: "cloudsql"})
	if !IsNoTransformerForType(err) {
		t.Errorf("expected case-sensitive lookup to miss, got %v", err)
	}
}

func TestRegistry_Apply_InvokesOnce(t *testing.T) {
	calls := 0
	var seen ConnectionSpec
	replacement := ConnectionSpec{User: "sa", Port: "5432"}

	reg := Registry{
		"managed": func(ctx context.Context, conn ConnectionSpec) (ConnectionSpec, error) {
			calls++
			seen = conn
			return replacement, nil
		},
	}

	in := ConnectionSpec{
		Host:     "h",
		User:     "u",
		Password: "p",
		Database: "d",
		Type:     "managed",
		Extra:    map[string]string{"instance": "i"},
	}

	out, err := reg.Apply(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if calls != 1 {
		t.Errorf("expected exactly one invocation, got %d", calls)
	}
	if seen.Type != "" {
		t.Errorf("expected type tag cleared before invocation, got %q", seen.Type)
	}
	if seen.Host != "h" || seen.Extra["instance"] != "i" {
		t.Errorf("expected remaining fields passed through, got %+v", seen)
	}
	if !reflect.DeepEqual(out, replacement) {
		t.Errorf("expected transformer output returned verbatim, got %+v", out)
	}
}

func TestRegistry_Apply_TransformerError(t *testing.T) {
	cause := errors.New("token exchange failed")
	reg := Registry{
		"managed": func(ctx context.Context, conn ConnectionSpec) (ConnectionSpec, error) {
			return ConnectionSpec{}, cause
		},
	}

	_, err := reg.Apply(context.Background(), ConnectionSpec{Host: "h", Type: "managed"})
	if err == nil {
		t.Fatal("expected transformer error to propagate")
	}
	if !IsTransformer(err) {
		t.Errorf("expected transformer failure classification, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Error("expected underlying cause preserved in the chain")
	}
	if tag, ok := UnresolvedType(err); !ok || tag != "managed" {
		t.Errorf("expected type tag on error, got %q", tag)
	}
}

func TestRegistry_Apply_RichErrorPassthrough(t *testing.T) {
	want := &Error{
		Code:    CodeTransformerFailed,
		Message: "missing instance connection name",
		Op:      "CloudSQL",
	}
	reg := Registry{
		"managed": func(ctx context.Context, conn ConnectionSpec) (ConnectionSpec, error) {
			return ConnectionSpec{}, want
		},
	}

	_, err := reg.Apply(context.Background(), ConnectionSpec{Host: "h", Type: "managed"})

	var got *Error
	if !errors.As(err, &got) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if got != want {
		t.Error("expected already-classified error returned as-is, not re-wrapped")
	}
}
