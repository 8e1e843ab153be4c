package config

import (
	"os"
	"testing"
	"time"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("setenv %s failed: %v", key, err)
	}
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		} else {
			_ = os.Unsetenv(key)
		}
	})
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	_ = os.Unsetenv(key)
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		}
	})
}

func TestLoadRequiresMySQLDSN(t *testing.T) {
	unsetEnv(t, "MYSQL_DSN")
	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing MYSQL_DSN")
	}
}

func TestLoadCacheTTLDefaults(t *testing.T) {
	setEnv(t, "MYSQL_DSN", "root:root@tcp(localhost:3306)/billing?parseTime=true")
	unsetEnv(t, "SUBSCRIPTION_CACHE_TTL_SECONDS")
	unsetEnv(t, "USAGE_CACHE_TTL_SECONDS")
	unsetEnv(t, "BILLING_HISTORY_CACHE_TTL_SECONDS")
	unsetEnv(t, "PAYMENT_METHOD_CACHE_TTL_SECONDS")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Cache.SubscriptionTTL != 30*time.Second {
		t.Fatalf("unexpected subscription TTL: %v", cfg.Cache.SubscriptionTTL)
	}
	if cfg.Cache.UsageTTL != 5*time.Minute {
		t.Fatalf("unexpected usage TTL: %v", cfg.Cache.UsageTTL)
	}
	if cfg.Cache.BillingHistoryTTL != 10*time.Minute {
		t.Fatalf("unexpected billing history TTL: %v", cfg.Cache.BillingHistoryTTL)
	}
	if cfg.Cache.PaymentMethodTTL != time.Hour {
		t.Fatalf("unexpected payment method TTL: %v", cfg.Cache.PaymentMethodTTL)
	}
	if cfg.Cache.PlanChangeTTL != 24*time.Hour {
		t.Fatalf("unexpected plan change TTL: %v", cfg.Cache.PlanChangeTTL)
	}
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	setEnv(t, "MYSQL_DSN", "root:root@tcp(localhost:3306)/billing?parseTime=true")
	setEnv(t, "APP_SERVICE_NAME", "billing-test")
	setEnv(t, "HTTP_PORT", "8181")
	setEnv(t, "MYSQL_MAX_OPEN_CONNS", "20")
	setEnv(t, "MYSQL_MAX_IDLE_CONNS", "8")
	setEnv(t, "MYSQL_CONN_MAX_LIFETIME_MINUTES", "40")
	setEnv(t, "SUBSCRIPTION_CACHE_TTL_SECONDS", "45")
	setEnv(t, "USAGE_CACHE_TTL_SECONDS", "120")
	setEnv(t, "THRESHOLD_SWEEP_INTERVAL_MINUTES", "15")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.App.ServiceName != "billing-test" {
		t.Fatalf("unexpected app service name: %s", cfg.App.ServiceName)
	}
	if cfg.HTTP.Port != "8181" {
		t.Fatalf("unexpected http port: %s", cfg.HTTP.Port)
	}
	if cfg.MySQL.MaxOpenConns != 20 || cfg.MySQL.MaxIdleConns != 8 {
		t.Fatalf("unexpected mysql pool config: %+v", cfg.MySQL)
	}
	if cfg.MySQL.ConnMaxLifetime != 40*time.Minute {
		t.Fatalf("unexpected mysql lifetime: %v", cfg.MySQL.ConnMaxLifetime)
	}
	if cfg.Cache.SubscriptionTTL != 45*time.Second {
		t.Fatalf("unexpected subscription TTL: %v", cfg.Cache.SubscriptionTTL)
	}
	if cfg.Cache.UsageTTL != 2*time.Minute {
		t.Fatalf("unexpected usage TTL: %v", cfg.Cache.UsageTTL)
	}
	if cfg.Jobs.ThresholdSweepInterval != 15*time.Minute {
		t.Fatalf("unexpected sweep interval: %v", cfg.Jobs.ThresholdSweepInterval)
	}
}
