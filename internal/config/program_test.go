package config

import (
    "testing"
    "time"
)

func TestLoadProgramDefaults(t *testing.T) {
    cfg, err := LoadProgram()
    if err != nil {
        t.Fatalf("LoadProgram: %v", err)
    }
    if cfg.Tiers.Silver != 100 || cfg.Tiers.Gold != 500 || cfg.Tiers.Platinum != 1000 {
        t.Fatalf("default thresholds = %+v", cfg.Tiers)
    }
    if cfg.PointsPerDollar != 10 {
        t.Fatalf("PointsPerDollar = %d, want 10", cfg.PointsPerDollar)
    }
    if cfg.SignupBonusPoints != 50 {
        t.Fatalf("SignupBonusPoints = %d, want 50", cfg.SignupBonusPoints)
    }
    if cfg.SessionTTL != 10*time.Minute {
        t.Fatalf("SessionTTL = %s, want 10m", cfg.SessionTTL)
    }
    if cfg.DisplayInterval != 4*time.Second {
        t.Fatalf("DisplayInterval = %s, want 4s", cfg.DisplayInterval)
    }
}

func TestLoadProgramOverrides(t *testing.T) {
    t.Setenv("TIER_SILVER_POINTS", "200")
    t.Setenv("TIER_GOLD_POINTS", "800")
    t.Setenv("TIER_PLATINUM_POINTS", "2000")
    t.Setenv("EARN_POINTS_PER_DOLLAR", "5")
    t.Setenv("SIGNUP_BONUS_POINTS", "0")
    t.Setenv("REDEMPTION_SESSION_TTL", "5m")
    cfg, err := LoadProgram()
    if err != nil {
        t.Fatalf("LoadProgram: %v", err)
    }
    if cfg.Tiers.Silver != 200 || cfg.Tiers.Gold != 800 || cfg.Tiers.Platinum != 2000 {
        t.Fatalf("thresholds = %+v", cfg.Tiers)
    }
    if cfg.PointsPerDollar != 5 {
        t.Fatalf("PointsPerDollar = %d, want 5", cfg.PointsPerDollar)
    }
    if cfg.SignupBonusPoints != 0 {
        t.Fatalf("SignupBonusPoints = %d, want 0", cfg.SignupBonusPoints)
    }
    if cfg.SessionTTL != 5*time.Minute {
        t.Fatalf("SessionTTL = %s, want 5m", cfg.SessionTTL)
    }
}

func TestLoadProgramRejectsBrokenLadder(t *testing.T) {
    t.Setenv("TIER_SILVER_POINTS", "500")
    t.Setenv("TIER_GOLD_POINTS", "100")
    if _, err := LoadProgram(); err == nil {
        t.Fatal("LoadProgram accepted non-increasing thresholds")
    }
}
