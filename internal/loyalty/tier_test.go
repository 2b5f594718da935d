package loyalty

import "testing"

func TestClassify(t *testing.T) {
    th := Thresholds{Silver: 100, Gold: 500, Platinum: 1000}
    cases := []struct {
        name     string
        lifetime int64
        tier     string
        progress uint8
    }{
        {"zero points is bronze", 0, TierBronze, 0},
        {"halfway to silver", 50, TierBronze, 50},
        {"just below silver", 99, TierBronze, 99},
        {"exactly silver threshold", 100, TierSilver, 0},
        {"silver with progress", 300, TierSilver, 50},
        {"just below gold", 499, TierSilver, 99},
        {"exactly gold threshold", 500, TierGold, 0},
        {"gold with progress", 750, TierGold, 50},
        {"exactly platinum threshold", 1000, TierPlatinum, 0},
        {"far above platinum", 50000, TierPlatinum, 0},
        {"negative input clamps to zero", -5, TierBronze, 0},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            tier, prog := Classify(th, tc.lifetime)
            if tier != tc.tier {
                t.Fatalf("Classify(%d) tier = %s, want %s", tc.lifetime, tier, tc.tier)
            }
            if prog != tc.progress {
                t.Fatalf("Classify(%d) progress = %d, want %d", tc.lifetime, prog, tc.progress)
            }
        })
    }
}

func TestClassifyProgressFloors(t *testing.T) {
    // floor(100*(100-100)/(500-100)) = 0: a customer exactly at a threshold
    // has zero progress toward the next tier.
    th := Thresholds{Silver: 100, Gold: 500, Platinum: 1000}
    tier, prog := Classify(th, 100)
    if tier != TierSilver || prog != 0 {
        t.Fatalf("got (%s, %d), want (silver, 0)", tier, prog)
    }
    // floor(100*(101-100)/400) = 0, not rounded up.
    if _, prog = Classify(th, 101); prog != 0 {
        t.Fatalf("progress at 101 = %d, want 0", prog)
    }
    // floor(100*(499-100)/400) = 99, never reaches 100 below the threshold.
    if _, prog = Classify(th, 499); prog != 99 {
        t.Fatalf("progress at 499 = %d, want 99", prog)
    }
}

func TestThresholdsValidate(t *testing.T) {
    cases := []struct {
        name    string
        th      Thresholds
        wantErr bool
    }{
        {"defaults are valid", DefaultThresholds(), false},
        {"strictly increasing", Thresholds{Silver: 1, Gold: 2, Platinum: 3}, false},
        {"zero silver", Thresholds{Silver: 0, Gold: 500, Platinum: 1000}, true},
        {"gold equals silver", Thresholds{Silver: 100, Gold: 100, Platinum: 1000}, true},
        {"platinum below gold", Thresholds{Silver: 100, Gold: 500, Platinum: 400}, true},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            err := tc.th.Validate()
            if (err != nil) != tc.wantErr {
                t.Fatalf("Validate() error = %v, wantErr = %v", err, tc.wantErr)
            }
        })
    }
}

func TestMeetsTier(t *testing.T) {
    cases := []struct {
        customer string
        min      string
        want     bool
    }{
        {TierBronze, TierBronze, true},
        {TierBronze, TierGold, false},
        {TierSilver, TierBronze, true},
        {TierSilver, TierGold, false},
        {TierGold, TierGold, true},
        {TierPlatinum, TierBronze, true},
        {TierPlatinum, TierPlatinum, true},
    }
    for _, tc := range cases {
        ok, err := MeetsTier(tc.customer, tc.min)
        if err != nil {
            t.Fatalf("MeetsTier(%s, %s) error: %v", tc.customer, tc.min, err)
        }
        if ok != tc.want {
            t.Fatalf("MeetsTier(%s, %s) = %v, want %v", tc.customer, tc.min, ok, tc.want)
        }
    }
    if _, err := MeetsTier("diamond", TierBronze); err != ErrUnknownTier {
        t.Fatalf("unknown customer tier error = %v, want ErrUnknownTier", err)
    }
    if _, err := MeetsTier(TierBronze, "diamond"); err != ErrUnknownTier {
        t.Fatalf("unknown min tier error = %v, want ErrUnknownTier", err)
    }
}
