package ratelimit

import "time"

func (p *MemoryPolicy) EvictIdle(now time.Time) {
	p.evictIdle(now)
}

func (p *MemoryPolicy) IdleTTL() time.Duration {
	return p.idleTTL
}
