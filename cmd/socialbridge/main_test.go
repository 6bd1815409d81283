package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootCommands(t *testing.T) {
	root := newRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	require.Subset(t, names, []string{"serve", "migrate", "user", "token"})
}

func TestUserCreateThenTokenIssue(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "sb.db")
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("STORAGE_DSN", dsn)
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("APP_ENV", "test")
	cfgPath := filepath.Join(t.TempDir(), "none.yaml")

	run := func(args ...string) (string, error) {
		root := newRootCmd()
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetErr(&out)
		root.SetArgs(append([]string{"--config", cfgPath}, args...))
		err := root.Execute()
		return out.String(), err
	}

	_, err := run("migrate")
	require.NoError(t, err)

	_, err = run("user", "create", "--email", "ops@example.com", "--password", "weak")
	require.Error(t, err)

	_, err = run("user", "create", "--email", "ops@example.com", "--password", "l0ng-enough-pass", "--role", "admin")
	require.NoError(t, err)

	_, err = run("user", "create", "--email", "ops@example.com", "--password", "l0ng-enough-pass")
	require.Error(t, err)

	out, err := run("token", "issue", "--email", "ops@example.com")
	require.NoError(t, err)
	require.Contains(t, out, "expires_at=")

	_, err = run("user", "delete", "--email", "ops@example.com")
	require.NoError(t, err)
}
