package connkit

import (
	"context"
	"errors"
	"fmt"
)

// DefaultType is the connection type tag that means "no transformation".
const DefaultType = "default"

// Transformer rewrites a connection based on its declared type. It receives
// the connection with the Type tag already cleared and its result replaces
// the connection wholesale, so it is free to strip or add fields (for
// example swapping credentials for a managed dial function).
type Transformer func(ctx context.Context, conn ConnectionSpec) (ConnectionSpec, error)

// Registry maps connection type tags to transformers. Keys are
// case-sensitive.
type Registry map[string]Transformer

// Apply dispatches a connection to the transformer registered for its Type
// tag and returns the transformer's output.
//
// An absent tag and the literal "default" are an explicit no-op: the
// connection is returned unchanged and no transformer is consulted. A tag
// with no registered transformer fails; the unresolved tag is recoverable
// from the error via UnresolvedType. Transformer failures propagate with
// their cause intact.
func (r Registry) Apply(ctx context.Context, conn ConnectionSpec) (ConnectionSpec, error) {
	if conn.Type == "" || conn.Type == DefaultType {
		return conn, nil
	}

	fn, ok := r[conn.Type]
	if !ok {
		return ConnectionSpec{}, &Error{
			Code:    CodeNoTransformerForType,
			Message: fmt.Sprintf("no connection transformer registered for type %q", conn.Type),
			Op:      "Apply",
			Type:    conn.Type,
		}
	}

	tag := conn.Type
	in := conn.clone()
	in.Type = ""

	out, err := fn(ctx, in)
	if err != nil {
		var kitErr *Error
		if errors.As(err, &kitErr) {
			return ConnectionSpec{}, err
		}
		return ConnectionSpec{}, &Error{
			Code:    CodeTransformerFailed,
			Message: fmt.Sprintf("connection transformer for type %q failed", tag),
			Op:      "Apply",
			Type:    tag,
			Cause:   err,
		}
	}

	return out, nil
}
