package stealth

import (
	"context"
	"math/rand/v2"
	"time"
)

// DelayProfile names a pacing configuration.
type DelayProfile string

const (
	ProfileCautious   DelayProfile = "cautious"
	ProfileNormal     DelayProfile = "normal"
	ProfileAggressive DelayProfile = "aggressive"
	ProfileOff        DelayProfile = "off"
)

// HumanDelay pauses for a random duration before each request so that page
// and XHR fetches do not arrive in a machine-regular rhythm.
type HumanDelay struct {
	MinDelay time.Duration
	MaxDelay time.Duration
}

// NewHumanDelay returns the delay for profile; unknown names get "normal".
func NewHumanDelay(profile DelayProfile) *HumanDelay {
	switch profile {
	case ProfileCautious:
		return &HumanDelay{MinDelay: 2 * time.Second, MaxDelay: 5 * time.Second}
	case ProfileAggressive:
		return &HumanDelay{MinDelay: 200 * time.Millisecond, MaxDelay: 800 * time.Millisecond}
	case ProfileOff:
		return &HumanDelay{}
	default:
		return &HumanDelay{MinDelay: 500 * time.Millisecond, MaxDelay: 2 * time.Second}
	}
}

// Wait sleeps for Next() or until ctx is done.
func (h *HumanDelay) Wait(ctx context.Context) error {
	return sleep(ctx, h.Next())
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Next returns a duration in [MinDelay, MaxDelay).
func (h *HumanDelay) Next() time.Duration {
	if h.MinDelay >= h.MaxDelay {
		return h.MinDelay
	}
	return h.MinDelay + time.Duration(rand.Int64N(int64(h.MaxDelay-h.MinDelay)))
}
