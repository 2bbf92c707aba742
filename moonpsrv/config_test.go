package moonpsrv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Config_FillDefaults(t *testing.T) {
	assert := assert.New(t)

	cfg := Config{}.FillDefaults()
	assert.Equal("localhost:8080", cfg.Listen)
	assert.Equal("inmem", cfg.Cache.Type)
	assert.Equal(1000, cfg.UnauthDelayMillis)
	assert.NotEmpty(cfg.TokenSecret)
}

func Test_Config_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "filled defaults is valid",
			cfg:     Config{}.FillDefaults(),
			wantErr: false,
		},
		{
			name:    "short secret is invalid",
			cfg:     Config{TokenSecret: "short", Cache: CacheConfig{Type: "inmem"}, UnauthDelayMillis: 1000},
			wantErr: true,
		},
		{
			name:    "sqlite cache with no path is invalid",
			cfg:     Config{TokenSecret: "01234567890123456789012345678901", Cache: CacheConfig{Type: "sqlite"}},
			wantErr: true,
		},
		{
			name:    "unknown cache type is invalid",
			cfg:     Config{TokenSecret: "01234567890123456789012345678901", Cache: CacheConfig{Type: "redis"}},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			err := tc.cfg.Validate()
			if tc.wantErr {
				assert.Error(err)
			} else {
				assert.NoError(err)
			}
		})
	}
}
