package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestTokenPresence_NeverLogsValue(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := zap.New(core)

	l.Info("stored", TokenPresence("access_token", "EAAB-very-secret")...)

	entries := logs.All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	require.Equal(t, true, ctx["access_token_present"])
	require.EqualValues(t, len("EAAB-very-secret"), ctx["access_token_len"])
	for _, v := range ctx {
		require.NotEqual(t, "EAAB-very-secret", v)
	}
}

func TestStatePrefix_Truncates(t *testing.T) {
	f := StatePrefix("abcdefghijkl")
	require.Equal(t, "abcdef", f.String)

	f = StatePrefix("abc")
	require.Equal(t, "abc", f.String)
}

func TestParseLevel_Defaults(t *testing.T) {
	require.Equal(t, "info", parseLevel("").String())
	require.Equal(t, "debug", parseLevel(" DEBUG ").String())
	require.Equal(t, "warn", parseLevel("warning").String())
}
