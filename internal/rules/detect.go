package rules

import "slices"

// Detect returns the first declared provider whose detect_any_header set
// intersects the frame's headers. Declaration order is the tie-break:
// headers matching several providers always resolve to the earliest one.
// The second return is false when no rule matches, a frame-level condition
// the caller reports without aborting the batch.
func (c *Config) Detect(headers []string) (*ProviderRule, bool) {
	for i := range c.Providers {
		p := &c.Providers[i]
		for _, key := range p.DetectAnyHeader {
			if slices.Contains(headers, key) {
				return p, true
			}
		}
	}
	return nil, false
}
