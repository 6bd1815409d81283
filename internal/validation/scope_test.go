package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidScopeName_Valid(t *testing.T) {
	valids := []string{
		"a",
		"email",
		"user.info.basic",
		"pages_show_list",
		"instagram_business_content_publish",
		"https://www.googleapis.com/auth/gmail.send",
		"a" + strings.Repeat("b", 254) + "c", // 256
	}
	for _, v := range valids {
		require.True(t, ValidScopeName(v), v)
	}
}

func TestValidScopeName_Invalid(t *testing.T) {
	invalids := []string{
		"",
		":lead",
		"trail/",
		"bad space",
		"UPPER",
		"a,b",
		"semicolon;hack",
		strings.Repeat("a", 257),
	}
	for _, v := range invalids {
		require.False(t, ValidScopeName(v), v)
	}
}

func TestCheckScopes(t *testing.T) {
	require.NoError(t, CheckScopes(nil))
	require.NoError(t, CheckScopes([]string{"video.publish", "video.list"}))
	err := CheckScopes([]string{"video.publish", "Video List"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "Video List")
}
