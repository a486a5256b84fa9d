package config

import (
	"strings"
	"testing"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	c := FromEnv(env(nil))
	if c.Env != "dev" || c.HTTPPort != "8080" || c.StoreDriver != DriverPostgres {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.AdminOverride {
		t.Fatal("admin override must be off by default")
	}
	if c.ViewCountMode != ViewsSync || c.LoginPerMin != 5 {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if len(c.CORSOrigins) != 1 || c.CORSOrigins[0] != "*" {
		t.Fatalf("cors origins = %v", c.CORSOrigins)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults should validate in dev: %v", err)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	c := FromEnv(env(map[string]string{
		"STORE_DRIVER":          "Memory",
		"APP_MIGRATE":           "true",
		"RATE_RPS":              "7",
		"RATE_BURST":            "nope",
		"CORS_ALLOWED_ORIGINS":  "http://a.test, ,http://b.test",
		"POLICY_ADMIN_OVERRIDE": "1",
		"VIEW_COUNT_MODE":       "async",
		"WORKER_COUNT":          "2",
	}))
	if c.StoreDriver != DriverMemory || !c.Migrate || !c.AdminOverride {
		t.Fatalf("overrides not applied: %+v", c)
	}
	if c.RateRPS != 7 || c.RateBurst != 200 {
		t.Fatalf("rate = %d/%d", c.RateRPS, c.RateBurst)
	}
	if len(c.CORSOrigins) != 2 || c.CORSOrigins[1] != "http://b.test" {
		t.Fatalf("cors origins = %v", c.CORSOrigins)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		vars map[string]string
		want string
	}{
		{"default secret in prod", map[string]string{"APP_ENV": "prod"}, "JWT_SECRET"},
		{"unknown driver", map[string]string{"STORE_DRIVER": "mongo"}, "STORE_DRIVER"},
		{"unknown view mode", map[string]string{"VIEW_COUNT_MODE": "lazy"}, "VIEW_COUNT_MODE"},
		{"async without workers", map[string]string{"VIEW_COUNT_MODE": "async", "WORKER_COUNT": "0"}, "WORKER_COUNT"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := FromEnv(env(tc.vars)).Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want mention of %s", err, tc.want)
			}
		})
	}

	ok := FromEnv(env(map[string]string{"APP_ENV": "prod", "JWT_SECRET": "s3cret"}))
	if err := ok.Validate(); err != nil {
		t.Fatalf("prod with secret: %v", err)
	}
}
