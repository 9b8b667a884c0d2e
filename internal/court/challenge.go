package court

import (
	"sync"
	"time"

	"github.com/quietbay/chesscourt/internal/domain"
)

// ChallengeTTL is how long a pending challenge stays acceptable. Expiry is
// enforced by the periodic sweep, not by reads.
const ChallengeTTL = 30 * time.Second

// Challenge is an immutable proposal: challenger invites invitee to play on
// a board, claiming ChallengerColor for themselves.
type Challenge struct {
	Board           *Board
	Challenger      domain.Player
	Invitee         domain.Player
	ChallengerColor domain.Color
	CreatedAt       time.Time
}

// Seats returns the white and black players the challenge resolves to.
func (c Challenge) Seats() (white, black domain.Player) {
	if c.ChallengerColor == domain.Black {
		return c.Invitee, c.Challenger
	}
	return c.Challenger, c.Invitee
}

// ChallengeCache holds at most one pending challenge per invitee. All
// operations share one lock, so an acceptance's take and the sweep's delete
// of the same key are mutually exclusive and exactly one of them wins.
type ChallengeCache struct {
	mu      sync.Mutex
	entries map[string]Challenge
	clock   func() time.Time
}

func NewChallengeCache(clock func() time.Time) *ChallengeCache {
	if clock == nil {
		clock = time.Now
	}
	return &ChallengeCache{
		entries: make(map[string]Challenge),
		clock:   clock,
	}
}

// Put stores the challenge for the invitee, overwriting any earlier one.
// Notifying the invitee is the caller's concern.
func (c *ChallengeCache) Put(inviteeID string, ch Challenge) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[inviteeID] = ch
}

// GetIfPresent returns the pending challenge without consuming it. It does
// not re-check age: an entry past its TTL is still returned until the sweep
// evicts it.
func (c *ChallengeCache) GetIfPresent(inviteeID string) (Challenge, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch, ok := c.entries[inviteeID]
	return ch, ok
}

// Invalidate removes the invitee's entry. Removing an absent key is a no-op.
func (c *ChallengeCache) Invalidate(inviteeID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, inviteeID)
}

// Take returns and removes the invitee's entry in one step. At most one
// caller can take a given challenge.
func (c *ChallengeCache) Take(inviteeID string) (Challenge, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch, ok := c.entries[inviteeID]
	if ok {
		delete(c.entries, inviteeID)
	}
	return ch, ok
}

// CleanUp evicts every entry older than ChallengeTTL and reports how many
// were removed.
func (c *ChallengeCache) CleanUp() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clock()
	evicted := 0
	for id, ch := range c.entries {
		if now.Sub(ch.CreatedAt) > ChallengeTTL {
			delete(c.entries, id)
			evicted++
		}
	}
	return evicted
}

func (c *ChallengeCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Pending returns a snapshot of all pending challenges.
func (c *ChallengeCache) Pending() []Challenge {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Challenge, 0, len(c.entries))
	for _, ch := range c.entries {
		out = append(out, ch)
	}
	return out
}
