package database

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConnectPostgresRequiresDSN(t *testing.T) {
	_, err := ConnectPostgres("")
	require.Error(t, err)
}

func TestConnectRedisRequiresURL(t *testing.T) {
	_, err := ConnectRedis("")
	require.Error(t, err)
}

func TestConnectRedisRejectsMalformedURL(t *testing.T) {
	_, err := ConnectRedis("http://localhost:6379")
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to parse redis url")
}
