package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig(t *testing.T) {
	var (
		addr = "localhost:8080"
		dsn  = "host=localhost user=postgres password=postgres dbname=postgres sslmode=disable"
		key  = "c29tZV9zZWNyZXQ="
		dir  = "db/migrations"
		orig = []string{"http://localhost:3000"}
	)

	tcases := []struct {
		name string
		addr string
		dsn  string
		key  string
		err  bool
	}{
		{
			name: "valid config",
			addr: addr,
			dsn:  dsn,
			key:  key,
			err:  false,
		},
		{
			name: "empty address",
			addr: "",
			dsn:  dsn,
			key:  key,
			err:  true,
		},
		{
			name: "empty DSN",
			addr: addr,
			dsn:  "",
			key:  key,
			err:  true,
		},
		{
			name: "empty signing key",
			addr: addr,
			dsn:  dsn,
			key:  "",
			err:  true,
		},
		{
			name: "signing key is not base64",
			addr: addr,
			dsn:  dsn,
			key:  "not_base64!",
			err:  true,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			config, err := NewConfig(tc.addr, tc.dsn, tc.key, dir, orig)
			if tc.err {
				assert.Error(t, err, "expected error for config: %s", tc.name)
				return
			}
			assert.NoError(t, err, "expected no error for config: %s", tc.name)

			assert.Equal(t, tc.addr, config.ServerAddr, "expected server address to match")
			assert.Equal(t, tc.dsn, config.DatabaseDSN, "expected database DSN to match")
			assert.Equal(t, dir, config.MigrationsDir, "expected migrations dir to match")
			assert.Equal(t, orig, config.AllowedOrigins, "expected allowed origins to match")
			assert.Equal(t, []byte("some_secret"), config.SigningKey, "expected signing key to be decoded")
			assert.Equal(t, 120*time.Minute, config.TokenTTL, "expected default token TTL")
		})
	}
}

func Test_decodeSigningSecret(t *testing.T) {
	key, err := decodeSigningSecret("c29tZV9zZWNyZXQ=")
	assert.NoError(t, err, "expected no error for valid base64 secret")
	assert.Equal(t, []byte("some_secret"), key, "expected decoded key to match")

	_, err = decodeSigningSecret("invalid_base64")
	assert.Error(t, err, "expected error for invalid base64 secret")
}
