package netmon

import (
	"context"
	"net/http"
	"time"
)

// Prober drives a Manual monitor by probing a backend URL on a fixed
// interval. It only decides Connected/Reachable; the link technology
// comes from a hint callback supplied by platform glue (a static value
// is fine on wired installations).
type Prober struct {
	monitor  *Manual
	client   *http.Client
	probeURL string
	interval time.Duration
	techHint func() Technology
}

func NewProber(monitor *Manual, probeURL string, interval time.Duration, techHint func() Technology) *Prober {
	if techHint == nil {
		techHint = func() Technology { return TechEthernet }
	}
	return &Prober{
		monitor:  monitor,
		client:   &http.Client{Timeout: 5 * time.Second},
		probeURL: probeURL,
		interval: interval,
		techHint: techHint,
	}
}

// Run probes until ctx is cancelled. It probes once immediately so the
// engine starts with a real observation instead of the zero state.
func (p *Prober) Run(ctx context.Context) {
	p.probe(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.probe(ctx)
		}
	}
}

func (p *Prober) probe(ctx context.Context) {
	reachable := false
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.probeURL, nil)
	if err == nil {
		resp, err := p.client.Do(req)
		if err == nil {
			resp.Body.Close()
			reachable = resp.StatusCode < 500
		}
	}

	tech := p.techHint()
	p.monitor.Set(State{
		Connected:  reachable || tech != TechNone,
		Reachable:  reachable,
		Technology: tech,
	})
}
