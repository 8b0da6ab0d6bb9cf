package browser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	require.True(t, opts.headless())
	require.Equal(t, 60*time.Second, opts.navigateTimeout())
	require.Equal(t, 15*time.Second, opts.actionTimeout())
}

func TestOptionsHeadlessOff(t *testing.T) {
	off := false
	opts := Options{Headless: &off, NavigateTimeoutSeconds: 5, ActionTimeoutSeconds: 2}
	require.False(t, opts.headless())
	require.Equal(t, 5*time.Second, opts.navigateTimeout())
	require.Equal(t, 2*time.Second, opts.actionTimeout())
}

func TestNotFoundError(t *testing.T) {
	err := NotFoundError{Selector: "#Login"}
	require.Equal(t, "element not found: #Login", err.Error())
}
