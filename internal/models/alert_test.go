package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlertStatusCanTransition(t *testing.T) {
	cases := []struct {
		from, to AlertStatus
		want     bool
	}{
		{AlertOpen, AlertAcknowledged, true},
		{AlertOpen, AlertResolved, true},
		{AlertAcknowledged, AlertResolved, true},
		{AlertAcknowledged, AlertOpen, false},
		{AlertAcknowledged, AlertAcknowledged, false},
		{AlertResolved, AlertOpen, false},
		{AlertResolved, AlertAcknowledged, false},
		{AlertResolved, AlertResolved, false},
		{AlertOpen, AlertOpen, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestValidSentVia(t *testing.T) {
	for _, v := range []SentVia{SentViaApp, SentViaVoice, SentViaButton, SentViaAuto} {
		assert.True(t, ValidSentVia(v), string(v))
	}
	assert.False(t, ValidSentVia("sms"))
	assert.False(t, ValidSentVia(""))
}

func TestLocationHasCoords(t *testing.T) {
	var nilLoc *Location
	assert.False(t, nilLoc.HasCoords())
	assert.False(t, (&Location{Address: "12 Elm St"}).HasCoords())
	assert.True(t, (&Location{Lat: 40.7, Lng: -74.0}).HasCoords())
}
