package resources

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIconsAreEmbedded(t *testing.T) {
	t.Parallel()

	for _, name := range []string{IconLogo, IconOffline, IconTrayIdle, IconTrayRecording} {
		resource, err := Icon(name)
		require.NoError(t, err, name)
		require.Equal(t, name, resource.Name())
		require.NotEmpty(t, resource.Content())

		again := MustIcon(name)
		require.Same(t, resource, again)
	}
}

func TestMissingIcon(t *testing.T) {
	t.Parallel()

	_, err := Icon("missing.svg")
	require.Error(t, err)
	require.Panics(t, func() { MustIcon("missing.svg") })
}
