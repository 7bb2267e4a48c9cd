package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/MKhiriev/go-pass-sphere/internal/adapter"
	"github.com/MKhiriev/go-pass-sphere/internal/crypto"
	"github.com/stretchr/testify/assert"
)

func TestMapAdapterError(t *testing.T) {
	other := errors.New("boom")

	tests := []struct {
		name   string
		err    error
		want   error
		keeps  error
		passes bool
	}{
		{name: "nil", err: nil},
		{name: "unauthorized", err: fmt.Errorf("list: %w", adapter.ErrUnauthorized), want: ErrNotAuthenticated, keeps: adapter.ErrRemote},
		{name: "no identity", err: adapter.ErrNoIdentity, want: ErrNotAuthenticated, keeps: adapter.ErrNoIdentity},
		{name: "destroyed key", err: fmt.Errorf("field 0: %w", crypto.ErrKeyDestroyed), want: ErrKeyUnavailable, keeps: crypto.ErrKeyDestroyed},
		{name: "server error passes through", err: adapter.ErrServerInternal, passes: true},
		{name: "unknown passes through", err: other, passes: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapAdapterError(tt.err)
			switch {
			case tt.err == nil:
				assert.NoError(t, got)
			case tt.passes:
				assert.Same(t, tt.err, got)
			default:
				assert.ErrorIs(t, got, tt.want)
				assert.ErrorIs(t, got, tt.keeps)
			}
		})
	}
}
