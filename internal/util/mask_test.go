package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		" Ana@Example.com ": "a…@e….com",
		"x@mail.example.co": "x@m….e….co",
		"":                  "",
		"abc":               "***",
		"abcxyz":            "a…z",
		"@nouser.com":       "@…m",
	}
	for in, want := range cases {
		require.Equal(t, want, MaskEmail(in), in)
	}
}
