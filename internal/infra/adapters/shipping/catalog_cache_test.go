//go:build !integration

package shipping

import (
	"testing"
	"time"
)

func TestCacheConfigBoundsStaleness(t *testing.T) {
	ttl := 10 * time.Minute
	cfg := cacheConfig(ttl)
	if cfg.LifeWindow != ttl {
		t.Fatalf("LifeWindow = %v", cfg.LifeWindow)
	}
	// an entry may survive until the next clean after it expires
	if worst := cfg.LifeWindow + cfg.CleanWindow; worst > ttl+ttl/10 {
		t.Fatalf("entries may live %v, want at most %v", worst, ttl+ttl/10)
	}
	if cfg.CleanWindow <= 0 {
		t.Fatal("cleaning disabled")
	}
}
