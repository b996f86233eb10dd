package connkit

import (
	"context"
	"strings"
	"testing"
)

// These tests exercise the transformer's input validation, which runs before
// any dialer is created, so no Google credentials or network are needed.

func TestCloudSQLTransformer_MissingInstance(t *testing.T) {
	fn := NewCloudSQLTransformer()

	tests := []struct {
		name string
		conn ConnectionSpec
	}{
		{"no extra", ConnectionSpec{User: "sa", Database: "d"}},
		{"empty instance", ConnectionSpec{User: "sa", Database: "d", Extra: map[string]string{"instance": ""}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fn(context.Background(), tt.conn)
			if err == nil {
				t.Fatal("expected error without instance connection name")
			}
			if !IsTransformer(err) {
				t.Errorf("expected transformer failure, got %v", err)
			}
			if !strings.Contains(err.Error(), "instance") {
				t.Errorf("expected error to mention the instance name, got %q", err.Error())
			}
		})
	}
}

func TestCloudSQLTransformer_UnsupportedIPAddressType(t *testing.T) {
	fn := NewCloudSQLTransformer()

	_, err := fn(context.Background(), ConnectionSpec{
		User:     "sa",
		Database: "d",
		Extra: map[string]string{
			"instance":      "proj:region:db",
			"ipAddressType": "DIRECT",
		},
	})
	if err == nil {
		t.Fatal("expected error for unsupported ip address type")
	}
	if !IsTransformer(err) {
		t.Errorf("expected transformer failure, got %v", err)
	}
	if !strings.Contains(err.Error(), "DIRECT") {
		t.Errorf("expected error to name the value, got %q", err.Error())
	}
}

func TestCloudSQLTransformer_DispatchThroughRegistry(t *testing.T) {
	reg := Registry{CloudSQLType: NewCloudSQLTransformer()}

	// Validation failures surface through dispatch without being swallowed.
	_, err := reg.Apply(context.Background(), ConnectionSpec{
		User:     "sa",
		Database: "d",
		Type:     CloudSQLType,
	})
	if !IsTransformer(err) {
		t.Errorf("expected transformer failure through dispatch, got %v", err)
	}
}
