package config

import (
    "time"

    "github.com/okanerk/restaurant-loyalty/internal/loyalty"
)

// ProgramConfig holds the loyalty-program tunables: the tier ladder, how
// purchases convert to points, the enrollment bonus and the lifetime of
// redemption sessions.  All values default sensibly so the server can run
// without any PROGRAM_* environment variables set.
type ProgramConfig struct {
    Tiers             loyalty.Thresholds // lifetime-point thresholds per tier
    PointsPerDollar   int64              // points earned per whole dollar spent
    SignupBonusPoints int64              // points granted on enrollment
    SessionTTL        time.Duration      // how long an issued redemption session stays addressable
    DisplayInterval   time.Duration      // how long the staff-confirmed state stays visible before teardown
}

// LoadProgram reads the program tunables from environment variables,
// falling back to defaults.  It returns an error when the configured tier
// thresholds are not strictly increasing; a broken ladder would make tier
// progress undefined, so startup must refuse it.
func LoadProgram() (ProgramConfig, error) {
    def := loyalty.DefaultThresholds()
    cfg := ProgramConfig{
        Tiers: loyalty.Thresholds{
            Silver:   int64(envInt("TIER_SILVER_POINTS", int(def.Silver))),
            Gold:     int64(envInt("TIER_GOLD_POINTS", int(def.Gold))),
            Platinum: int64(envInt("TIER_PLATINUM_POINTS", int(def.Platinum))),
        },
        PointsPerDollar:   int64(envInt("EARN_POINTS_PER_DOLLAR", 10)),
        SignupBonusPoints: int64(envInt("SIGNUP_BONUS_POINTS", 50)),
        SessionTTL:        envDur("REDEMPTION_SESSION_TTL", 10*time.Minute),
        DisplayInterval:   time.Duration(envInt("REDEMPTION_DISPLAY_SECONDS", 4)) * time.Second,
    }
    if err := cfg.Tiers.Validate(); err != nil {
        return ProgramConfig{}, err
    }
    if cfg.PointsPerDollar < 0 {
        cfg.PointsPerDollar = 0
    }
    if cfg.SignupBonusPoints < 0 {
        cfg.SignupBonusPoints = 0
    }
    return cfg, nil
}
