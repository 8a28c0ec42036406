package datasource

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbase-hq/openbase-engine/pkg/apperrors"
)

func TestClampLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "in range", limit: 50, want: 50},
		{name: "zero floors to one", limit: 0, want: 1},
		{name: "negative floors to one", limit: -5, want: 1},
		{name: "over cap clamped", limit: 5000, want: MaxQueryLimit},
		{name: "exactly one", limit: 1, want: 1},
		{name: "exactly cap", limit: MaxQueryLimit, want: MaxQueryLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampLimit(tt.limit))
		})
	}
}

func TestRegistry(t *testing.T) {
	Register(Registration{
		Info: AdapterInfo{Type: "fake", DisplayName: "Fake"},
		Factory: func(ctx context.Context, connection map[string]any, opts Options) (Adapter, error) {
			return nil, errors.New("not a real backend")
		},
	})

	assert.True(t, IsRegistered("fake"))
	assert.False(t, IsRegistered("telepathy"))
	assert.NotNil(t, GetFactory("fake"))
	assert.Nil(t, GetFactory("telepathy"))

	var found bool
	for _, info := range RegisteredAdapters() {
		if info.Type == "fake" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestFactoryUnknownType(t *testing.T) {
	factory := NewFactory(Options{})

	_, err := factory.Open(context.Background(), "telepathy", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrBadRequest))
}
