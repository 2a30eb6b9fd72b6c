package gateway

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGatewayTimeIsJakartaLocal(t *testing.T) {
	parsed, err := ParseGatewayTime("2025-12-10 20:10:00")
	require.NoError(t, err)

	// 20:10 WIB is 13:10 UTC, not 20:10 UTC
	assert.Equal(t, time.Date(2025, 12, 10, 13, 10, 0, 0, time.UTC), parsed.UTC())
	_, offset := parsed.Zone()
	assert.Equal(t, 7*60*60, offset)
}

func TestParseGatewayTimeRejectsGarbage(t *testing.T) {
	_, err := ParseGatewayTime("not a timestamp")
	assert.Error(t, err)
}
