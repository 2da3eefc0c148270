package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/student-roster/pkg/config"
)

func TestOptions(t *testing.T) {
	opts := Options(config.RedisConfig{Host: "cache", Port: 6380, Password: "pw", DB: 2}, 2*time.Second)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, "student-roster", opts.ClientName)
	assert.Equal(t, 2*time.Second, opts.ReadTimeout)
}

func TestOptionsDefaultTimeout(t *testing.T) {
	opts := Options(config.RedisConfig{Host: "localhost", Port: 6379}, 0)
	assert.Equal(t, 5*time.Second, opts.DialTimeout)
	assert.Equal(t, 5*time.Second, opts.WriteTimeout)
}

func TestNewRedisFailsWhenUnreachable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRedis(ctx, config.RedisConfig{Host: "127.0.0.1", Port: 1}, 100*time.Millisecond)
	assert.Error(t, err)
}
