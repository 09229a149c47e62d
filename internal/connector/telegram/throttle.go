package telegram

import (
	"log"
	"time"
)

// throttle counts quota-consuming upstream calls and pauses for a cooldown
// once the threshold is reached, resetting the counter afterwards.
//
// The counter is unsynchronized on purpose: a connector issues calls one at
// a time (the orchestrator awaits each call before starting the next), so
// the single-flight invariant is the only thing keeping this safe.
type throttle struct {
	count     int
	threshold int
	cooldown  time.Duration
	sleep     func(time.Duration)
	log       *log.Logger
}

func newThrottle(threshold int, cooldown time.Duration, logger *log.Logger) *throttle {
	return &throttle{
		threshold: threshold,
		cooldown:  cooldown,
		sleep:     time.Sleep,
		log:       logger,
	}
}

// tick is called before every quota-consuming upstream call.
func (t *throttle) tick() {
	if t.count >= t.threshold {
		t.log.Printf("telegram: request threshold (%d) reached, cooling down for %s", t.threshold, t.cooldown)
		t.sleep(t.cooldown)
		t.count = 0
	}
	t.count++
}
