package loyalty

import (
    "errors"
    "sync"
    "time"
)

// SessionState enumerates the steps of the customer-facing redemption
// flow.  A session always starts in StateConfirm and can only advance
// forward; once points are deducted the flow cannot be navigated back.
type SessionState string

const (
    StateConfirm        SessionState = "confirm"        // customer reviews reward and cost
    StateProcessing     SessionState = "processing"     // engine call in flight
    StateIssued         SessionState = "issued"         // code displayed for staff verification
    StateStaffConfirmed SessionState = "staffConfirmed" // staff accepted the code; terminal
)

// ErrInvalidTransition is returned when a session is asked to move to a
// state its current state does not permit.
var ErrInvalidTransition = errors.New("invalid session transition")

// Session tracks one redemption attempt for a (customer, reward) pair.
// It is ephemeral: the durable record of a redemption is the ledger entry
// and redemptions row the engine writes.  A session has no concurrency of
// its own, since transitions are sequential per client interaction, but
// the registry below is shared, so Session methods take the store lock
// when accessed through it.
type Session struct {
    CustomerID uint64       // customer driving the flow
    RewardID   uint64       // reward being redeemed
    State      SessionState // current step
    Code       string       // redemption code, set when issued
    LastErr    error        // engine failure surfaced on return to confirm
    CreatedAt  time.Time    // when the session was opened
    UpdatedAt  time.Time    // last transition time
}

// NewSession opens a session in the confirm state for one reward selection.
func NewSession(customerID, rewardID uint64) *Session {
    now := time.Now().UTC()
    return &Session{
        CustomerID: customerID,
        RewardID:   rewardID,
        State:      StateConfirm,
        CreatedAt:  now,
        UpdatedAt:  now,
    }
}

// Begin moves confirm -> processing when the customer explicitly confirms.
func (s *Session) Begin() error {
    if s.State != StateConfirm {
        return ErrInvalidTransition
    }
    s.State = StateProcessing
    s.LastErr = nil
    s.UpdatedAt = time.Now().UTC()
    return nil
}

// Issue moves processing -> issued carrying the receipt's redemption code.
func (s *Session) Issue(code string) error {
    if s.State != StateProcessing {
        return ErrInvalidTransition
    }
    s.State = StateIssued
    s.Code = code
    s.UpdatedAt = time.Now().UTC()
    return nil
}

// Fail moves processing back to confirm, retaining the engine error so the
// caller can surface it.  The engine is authoritative; the session does
// not re-validate balance or eligibility itself.
func (s *Session) Fail(err error) error {
    if s.State != StateProcessing {
        return ErrInvalidTransition
    }
    s.State = StateConfirm
    s.LastErr = err
    s.UpdatedAt = time.Now().UTC()
    return nil
}

// StaffConfirm moves issued -> staffConfirmed.  This is the terminal state;
// the session is torn down shortly after by the store.
func (s *Session) StaffConfirm() error {
    if s.State != StateIssued {
        return ErrInvalidTransition
    }
    s.State = StateStaffConfirmed
    s.UpdatedAt = time.Now().UTC()
    return nil
}

// SessionStore is an in-memory registry of issued sessions keyed by their
// redemption code, so the staff confirmation endpoint can locate the
// session a customer is presenting.  Entries expire after a TTL to avoid
// leaking abandoned sessions; expiry only discards the transient view,
// never the durable redemption record.
type SessionStore struct {
    mu       sync.Mutex
    ttl      time.Duration
    sessions map[string]*storedSession
}

type storedSession struct {
    session   *Session
    expiresAt time.Time
}

// NewSessionStore returns a store whose entries live for ttl after being
// put.  A non-positive ttl falls back to ten minutes.
func NewSessionStore(ttl time.Duration) *SessionStore {
    if ttl <= 0 {
        ttl = 10 * time.Minute
    }
    return &SessionStore{
        ttl:      ttl,
        sessions: make(map[string]*storedSession),
    }
}

// Put registers an issued session under its redemption code.
func (st *SessionStore) Put(s *Session) {
    if s == nil || s.Code == "" {
        return
    }
    st.mu.Lock()
    defer st.mu.Unlock()
    st.sweepLocked(time.Now().UTC())
    st.sessions[s.Code] = &storedSession{
        session:   s,
        expiresAt: time.Now().UTC().Add(st.ttl),
    }
}

// Get returns the live session registered under code, or nil when the code
// is unknown or the entry has expired.
func (st *SessionStore) Get(code string) *Session {
    st.mu.Lock()
    defer st.mu.Unlock()
    now := time.Now().UTC()
    st.sweepLocked(now)
    entry, ok := st.sessions[code]
    if !ok {
        return nil
    }
    return entry.session
}

// Remove tears a session down, typically after the staff-confirmed state
// has been displayed for its fixed interval.
func (st *SessionStore) Remove(code string) {
    st.mu.Lock()
    defer st.mu.Unlock()
    delete(st.sessions, code)
}

// RemoveAfter tears the session down once the display interval elapses.
func (st *SessionStore) RemoveAfter(code string, d time.Duration) {
    if d <= 0 {
        st.Remove(code)
        return
    }
    time.AfterFunc(d, func() { st.Remove(code) })
}

// Len reports the number of live entries.  Used by tests.
func (st *SessionStore) Len() int {
    st.mu.Lock()
    defer st.mu.Unlock()
    st.sweepLocked(time.Now().UTC())
    return len(st.sessions)
}

// sweepLocked drops expired entries.  Callers must hold mu.
func (st *SessionStore) sweepLocked(now time.Time) {
    for code, entry := range st.sessions {
        if !entry.expiresAt.After(now) {
            delete(st.sessions, code)
        }
    }
}
