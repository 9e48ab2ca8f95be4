package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntoContext(t *testing.T) {
	tests := []struct {
		name     string
		settings *Run
	}{
		{
			name:     "empty_settings",
			settings: &Run{},
		},
		{
			name: "settings_with_values",
			settings: &Run{
				NoColor:    true,
				InputPath:  "data.json",
				Theme:      "light",
				ConfigPath: "/tmp/jvx.yaml",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := IntoContext(context.Background(), tt.settings)
			require.NotNil(t, ctx)

			got, ok := FromContext(ctx)
			require.True(t, ok)
			assert.Same(t, tt.settings, got)
		})
	}
}

func TestFromContextMissing(t *testing.T) {
	got, ok := FromContext(context.Background())
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestFromContextWrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), settingsContextKey, "not settings")
	got, ok := FromContext(ctx)
	assert.False(t, ok)
	assert.Nil(t, got)
}
