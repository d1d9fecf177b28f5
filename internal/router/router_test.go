package router

import (
	"reflect"
	"testing"
)

func TestCORSConfigFromEnv(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://pos.example.com, https://kds.example.com")

	cfg := corsConfig()
	want := []string{"https://pos.example.com", "https://kds.example.com"}
	if !reflect.DeepEqual(cfg.AllowOrigins, want) {
		t.Errorf("AllowOrigins = %v, want %v", cfg.AllowOrigins, want)
	}
	if !cfg.AllowCredentials {
		t.Error("explicit origin list should allow credentials")
	}
}

func TestCORSConfigDefaultsToWildcard(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg := corsConfig()
	if !reflect.DeepEqual(cfg.AllowOrigins, []string{"*"}) {
		t.Errorf("AllowOrigins = %v, want wildcard", cfg.AllowOrigins)
	}
	if cfg.AllowCredentials {
		t.Error("wildcard origin must not allow credentials")
	}
}
