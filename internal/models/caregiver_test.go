package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"+14155550123", "+14155550123"},
		{"+1 (415) 555-0123", "+14155550123"},
		{"415 555 0123", "4155550123"},
		{"+44 20 7946 0958", "+442079460958"},
	}
	for _, tc := range cases {
		got, err := NormalizePhone(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}
}

func TestNormalizePhoneRejectsInvalid(t *testing.T) {
	for _, in := range []string{"", "abc", "+1", "12345", "+1415555012345678", "555-CALL"} {
		_, err := NormalizePhone(in)
		assert.Error(t, err, in)
	}
}
