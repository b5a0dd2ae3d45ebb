package config

import (
	"os"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	os.Setenv("GRPC_ADDR", ":8080")
	os.Setenv("TOKEN_SECRET", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GRPCAddr != ":8080" {
		t.Errorf("GRPCAddr = %q, want %q", cfg.GRPCAddr, ":8080")
	}
	if cfg.TokenIssuer != "biblio-auth" {
		t.Errorf("TokenIssuer = %q, want %q", cfg.TokenIssuer, "biblio-auth")
	}
	if cfg.AccessTTLRaw != "30m" {
		t.Errorf("AccessTTLRaw = %q, want %q", cfg.AccessTTLRaw, "30m")
	}
	if cfg.RefreshTTLRaw != "168h" {
		t.Errorf("RefreshTTLRaw = %q, want %q", cfg.RefreshTTLRaw, "168h")
	}
	if cfg.OTPTTLMinutes != 10 {
		t.Errorf("OTPTTLMinutes = %d, want 10", cfg.OTPTTLMinutes)
	}
	if cfg.OTPDigits != 6 {
		t.Errorf("OTPDigits = %d, want 6", cfg.OTPDigits)
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if cfg.SweepInterval() != 10*time.Minute {
		t.Errorf("SweepInterval = %v, want 10m", cfg.SweepInterval())
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("GRPC_ADDR", ":9090")
	os.Setenv("TOKEN_SECRET", testSecret)
	os.Setenv("TOKEN_ISSUER", "custom-issuer")
	os.Setenv("BCRYPT_COST", "14")
	os.Setenv("ACCESS_TOKEN_TTL", "15m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GRPCAddr != ":9090" {
		t.Errorf("GRPCAddr = %q, want %q", cfg.GRPCAddr, ":9090")
	}
	if cfg.TokenIssuer != "custom-issuer" {
		t.Errorf("TokenIssuer = %q, want %q", cfg.TokenIssuer, "custom-issuer")
	}
	if cfg.BcryptCost != 14 {
		t.Errorf("BcryptCost = %d, want 14", cfg.BcryptCost)
	}
	if cfg.AccessTTL() != 15*time.Minute {
		t.Errorf("AccessTTL = %v, want 15m", cfg.AccessTTL())
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	os.Clearenv()
	os.Setenv("GRPC_ADDR", ":8080")

	if _, err := Load(); err == nil {
		t.Fatal("Load should fail without TOKEN_SECRET")
	}
}

func TestLoad_ShortSecret(t *testing.T) {
	os.Clearenv()
	os.Setenv("GRPC_ADDR", ":8080")
	os.Setenv("TOKEN_SECRET", "too-short")

	if _, err := Load(); err == nil {
		t.Fatal("Load should fail for a short TOKEN_SECRET")
	}
}

func TestLoad_InvalidBcryptCost(t *testing.T) {
	os.Clearenv()
	os.Setenv("GRPC_ADDR", ":8080")
	os.Setenv("TOKEN_SECRET", testSecret)
	os.Setenv("BCRYPT_COST", "99")

	if _, err := Load(); err == nil {
		t.Fatal("Load should fail for out-of-range BCRYPT_COST")
	}
}

func TestTTLFallbacks(t *testing.T) {
	cfg := &Config{AccessTTLRaw: "bogus", RefreshTTLRaw: "", MailTokenTTLRaw: "-5m"}
	if cfg.AccessTTL() != 30*time.Minute {
		t.Errorf("AccessTTL fallback = %v, want 30m", cfg.AccessTTL())
	}
	if cfg.RefreshTTL() != 168*time.Hour {
		t.Errorf("RefreshTTL fallback = %v, want 168h", cfg.RefreshTTL())
	}
	if cfg.MailTokenTTL() != 24*time.Hour {
		t.Errorf("MailTokenTTL fallback = %v, want 24h", cfg.MailTokenTTL())
	}
	if cfg.SweepInterval() != 0 {
		t.Errorf("SweepInterval fallback = %v, want 0", cfg.SweepInterval())
	}
}
