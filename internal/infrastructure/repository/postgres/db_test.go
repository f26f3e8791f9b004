package postgres

import (
	"testing"
	"time"
)

func TestPoolOptionsDefaults(t *testing.T) {
	opts := PoolOptions{MaxOpenConns: 4, MaxIdleConns: 20}.withDefaults()
	if opts.MaxOpenConns != 4 || opts.MaxIdleConns != 4 {
		t.Fatalf("idle conns must not exceed open conns: %+v", opts)
	}
	if opts.ConnMaxLifetime != 30*time.Minute || opts.PingTimeout != 5*time.Second {
		t.Fatalf("unexpected defaults: %+v", opts)
	}

	if zero := (PoolOptions{}).withDefaults(); zero.MaxOpenConns != 10 || zero.MaxIdleConns != 10 {
		t.Fatalf("unexpected zero-value defaults: %+v", zero)
	}
}
