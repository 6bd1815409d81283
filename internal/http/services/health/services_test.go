package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReady(t *testing.T) {
	okPing := PingFunc(func(context.Context) error { return nil })
	badPing := PingFunc(func(context.Context) error { return errors.New("connection refused") })

	s := NewHealthService(Deps{
		Components: map[string]Pinger{"store": okPing, "cache": nil},
		Providers:  func() []string { return []string{"gmail"} },
	})
	resp, ok := s.Ready(context.Background())
	require.True(t, ok)
	require.Equal(t, "ready", resp.Status)
	require.Equal(t, "disabled", resp.Components["cache"].Status)
	require.Equal(t, []string{"gmail"}, resp.Providers)

	s = NewHealthService(Deps{Components: map[string]Pinger{"store": badPing}})
	resp, ok = s.Ready(context.Background())
	require.False(t, ok)
	require.Equal(t, "unavailable", resp.Status)
	require.Equal(t, "connection refused", resp.Components["store"].Message)

	require.Equal(t, "ok", s.Live().Status)
}
