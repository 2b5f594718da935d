package loyalty

import (
    "errors"
    "testing"
    "time"
)

func TestSessionHappyPath(t *testing.T) {
    s := NewSession(7, 3)
    if s.State != StateConfirm {
        t.Fatalf("initial state = %s, want confirm", s.State)
    }
    if err := s.Begin(); err != nil {
        t.Fatalf("Begin: %v", err)
    }
    if s.State != StateProcessing {
        t.Fatalf("state after Begin = %s, want processing", s.State)
    }
    if err := s.Issue("RDM-ABCDEF1234"); err != nil {
        t.Fatalf("Issue: %v", err)
    }
    if s.State != StateIssued || s.Code != "RDM-ABCDEF1234" {
        t.Fatalf("state after Issue = %s code = %q", s.State, s.Code)
    }
    if err := s.StaffConfirm(); err != nil {
        t.Fatalf("StaffConfirm: %v", err)
    }
    if s.State != StateStaffConfirmed {
        t.Fatalf("state after StaffConfirm = %s, want staffConfirmed", s.State)
    }
}

func TestSessionFailureReturnsToConfirm(t *testing.T) {
    s := NewSession(7, 3)
    if err := s.Begin(); err != nil {
        t.Fatalf("Begin: %v", err)
    }
    engineErr := errors.New("insufficient points")
    if err := s.Fail(engineErr); err != nil {
        t.Fatalf("Fail: %v", err)
    }
    if s.State != StateConfirm {
        t.Fatalf("state after Fail = %s, want confirm", s.State)
    }
    if s.LastErr != engineErr {
        t.Fatalf("LastErr = %v, want engine error", s.LastErr)
    }
    // The flow may be retried: confirm -> processing again.
    if err := s.Begin(); err != nil {
        t.Fatalf("Begin after Fail: %v", err)
    }
    if s.LastErr != nil {
        t.Fatalf("LastErr not cleared on retry")
    }
}

func TestSessionIllegalTransitions(t *testing.T) {
    // No transition may skip processing, and issued cannot go back to
    // confirm once points are deducted.
    t.Run("issue from confirm", func(t *testing.T) {
        s := NewSession(1, 1)
        if err := s.Issue("RDM-X"); !errors.Is(err, ErrInvalidTransition) {
            t.Fatalf("Issue from confirm error = %v, want ErrInvalidTransition", err)
        }
    })
    t.Run("staff confirm from confirm", func(t *testing.T) {
        s := NewSession(1, 1)
        if err := s.StaffConfirm(); !errors.Is(err, ErrInvalidTransition) {
            t.Fatalf("StaffConfirm from confirm error = %v, want ErrInvalidTransition", err)
        }
    })
    t.Run("fail from issued", func(t *testing.T) {
        s := NewSession(1, 1)
        _ = s.Begin()
        _ = s.Issue("RDM-X")
        if err := s.Fail(errors.New("late failure")); !errors.Is(err, ErrInvalidTransition) {
            t.Fatalf("Fail from issued error = %v, want ErrInvalidTransition", err)
        }
    })
    t.Run("begin from issued", func(t *testing.T) {
        s := NewSession(1, 1)
        _ = s.Begin()
        _ = s.Issue("RDM-X")
        if err := s.Begin(); !errors.Is(err, ErrInvalidTransition) {
            t.Fatalf("Begin from issued error = %v, want ErrInvalidTransition", err)
        }
    })
    t.Run("staff confirm twice", func(t *testing.T) {
        s := NewSession(1, 1)
        _ = s.Begin()
        _ = s.Issue("RDM-X")
        _ = s.StaffConfirm()
        if err := s.StaffConfirm(); !errors.Is(err, ErrInvalidTransition) {
            t.Fatalf("second StaffConfirm error = %v, want ErrInvalidTransition", err)
        }
    })
}

func TestSessionStore(t *testing.T) {
    st := NewSessionStore(time.Minute)
    s := NewSession(7, 3)
    _ = s.Begin()
    _ = s.Issue("RDM-1234567890")
    st.Put(s)
    if got := st.Get("RDM-1234567890"); got != s {
        t.Fatalf("Get returned %v, want the stored session", got)
    }
    if got := st.Get("RDM-UNKNOWN"); got != nil {
        t.Fatalf("Get for unknown code returned %v, want nil", got)
    }
    st.Remove("RDM-1234567890")
    if got := st.Get("RDM-1234567890"); got != nil {
        t.Fatalf("Get after Remove returned %v, want nil", got)
    }
}

func TestSessionStoreExpiry(t *testing.T) {
    st := NewSessionStore(10 * time.Millisecond)
    s := NewSession(7, 3)
    _ = s.Begin()
    _ = s.Issue("RDM-EXPIRING01")
    st.Put(s)
    if st.Len() != 1 {
        t.Fatalf("Len = %d, want 1", st.Len())
    }
    time.Sleep(20 * time.Millisecond)
    if got := st.Get("RDM-EXPIRING01"); got != nil {
        t.Fatalf("expired session still returned")
    }
    if st.Len() != 0 {
        t.Fatalf("Len after expiry = %d, want 0", st.Len())
    }
}

func TestSessionStoreIgnoresUnissued(t *testing.T) {
    st := NewSessionStore(time.Minute)
    st.Put(NewSession(1, 1)) // no code yet
    if st.Len() != 0 {
        t.Fatalf("store accepted a session without a code")
    }
}
