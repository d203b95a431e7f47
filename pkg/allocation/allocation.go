// Package allocation implements virtual bucket filling: a pure projection of a
// time-ordered contribution stream onto ordered phases of finite USD capacity.
//
// Phase i owns the half-open interval [cumPrev(i), cumTarget(i)) of cumulative USD.
// Contribution j owns [runningPrev(j), running(j)). The USD contribution j gives to
// phase i is the overlap length of the two intervals, so a contribution can be split
// across adjacent phases and nothing is lost or counted twice.
package allocation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/chainsafe/phase-distributor/pkg/distribution"
)

const fillPrecision = 8

// PhaseFill is the virtual fill of one phase.
type PhaseFill struct {
	PhaseID      int64           `json:"phase_id"`
	PhaseNo      int64           `json:"phase_no"`
	TargetUSD    decimal.Decimal `json:"target_usd"`
	CumPrevUSD   decimal.Decimal `json:"cum_prev_usd"`
	CumTargetUSD decimal.Decimal `json:"cum_target_usd"`
	UsedUSD      decimal.Decimal `json:"used_usd"`
	// FillPct is the ratio used/target in [0, 1].
	FillPct      decimal.Decimal `json:"fill_pct"`
	Contributors int             `json:"contributors"`
}

// Share is the USD a contribution places inside one phase. PhaseID 0 marks USD
// beyond the capacity of the last phase.
type Share struct {
	ContributionID int64           `json:"contribution_id"`
	PhaseID        int64           `json:"phase_id"`
	WalletAddress  string          `json:"wallet_address"`
	USD            decimal.Decimal `json:"usd"`
	// Partial is true when the contribution also has USD outside this phase.
	Partial bool `json:"partial"`
}

// Result is the virtual allocation of a contribution stream.
type Result struct {
	Phases         []PhaseFill     `json:"phases"`
	Shares         []Share         `json:"shares"`
	Overflow       []Share         `json:"overflow"`
	TotalUSD       decimal.Decimal `json:"total_usd"`
	UnallocatedUSD decimal.Decimal `json:"unallocated_usd"`
}

// Allocator partitions contributions across phases. Only contributions eligible on Network take part.
type Allocator struct {
	Network string
}

// New returns an Allocator for the given canonical network.
func New(network string) *Allocator {
	if network == "" {
		network = distribution.NetworkSolana
	}
	return &Allocator{Network: network}
}

type interval struct {
	lo, hi decimal.Decimal
}

// overlap returns max(0, min(a.hi, b.hi) - max(a.lo, b.lo)).
func overlap(a, b interval) decimal.Decimal {
	lo := decimal.Max(a.lo, b.lo)
	hi := decimal.Min(a.hi, b.hi)
	if hi.LessThanOrEqual(lo) {
		return decimal.Zero
	}
	return hi.Sub(lo)
}

// Allocate computes the virtual allocation. The inputs are not modified.
func (a *Allocator) Allocate(phases []*distribution.Phase, contributions []*distribution.Contribution) *Result {
	ordered := SortPhases(phases)
	stream := a.eligible(contributions)

	res := &Result{
		Phases:         make([]PhaseFill, len(ordered)),
		TotalUSD:       decimal.Zero,
		UnallocatedUSD: decimal.Zero,
	}
	bounds := make([]interval, len(ordered))
	cum := decimal.Zero
	for i, p := range ordered {
		capacity := p.Capacity()
		bounds[i] = interval{lo: cum, hi: cum.Add(capacity)}
		res.Phases[i] = PhaseFill{
			PhaseID:      p.ID,
			PhaseNo:      p.PhaseNo,
			TargetUSD:    capacity,
			CumPrevUSD:   cum,
			CumTargetUSD: cum.Add(capacity),
			UsedUSD:      decimal.Zero,
			FillPct:      decimal.Zero,
		}
		cum = cum.Add(capacity)
	}
	totalCapacity := cum

	wallets := make([]map[string]struct{}, len(ordered))
	running := decimal.Zero
	first := 0
	for _, c := range stream {
		span := interval{lo: running, hi: running.Add(c.USDValue)}
		running = span.hi

		// Phases ending at or before the contribution start can never overlap later ones.
		for first < len(bounds) && bounds[first].hi.LessThanOrEqual(span.lo) {
			first++
		}

		var placed []Share
		for i := first; i < len(bounds) && bounds[i].lo.LessThan(span.hi); i++ {
			usd := overlap(span, bounds[i])
			if usd.IsZero() {
				continue
			}
			placed = append(placed, Share{
				ContributionID: c.ID,
				PhaseID:        ordered[i].ID,
				WalletAddress:  c.WalletAddress,
				USD:            usd,
			})
			res.Phases[i].UsedUSD = res.Phases[i].UsedUSD.Add(usd)
			if wallets[i] == nil {
				wallets[i] = make(map[string]struct{})
			}
			wallets[i][c.WalletAddress] = struct{}{}
		}

		if span.hi.GreaterThan(totalCapacity) {
			rest := span.hi.Sub(decimal.Max(span.lo, totalCapacity))
			res.Overflow = append(res.Overflow, Share{
				ContributionID: c.ID,
				WalletAddress:  c.WalletAddress,
				USD:            rest,
				Partial:        len(placed) > 0,
			})
			res.UnallocatedUSD = res.UnallocatedUSD.Add(rest)
		}

		partial := len(placed) > 1 || span.hi.GreaterThan(totalCapacity)
		for i := range placed {
			placed[i].Partial = partial
		}
		res.Shares = append(res.Shares, placed...)
	}
	res.TotalUSD = running

	for i := range res.Phases {
		res.Phases[i].Contributors = len(wallets[i])
		if res.Phases[i].TargetUSD.IsPositive() {
			res.Phases[i].FillPct = res.Phases[i].UsedUSD.DivRound(res.Phases[i].TargetUSD, fillPrecision)
		}
	}

	return res
}

func (a *Allocator) eligible(contributions []*distribution.Contribution) []*distribution.Contribution {
	out := make([]*distribution.Contribution, 0, len(contributions))
	for _, c := range contributions {
		if c != nil && c.Eligible(a.Network) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		if out[i].OrderID() != out[j].OrderID() {
			return out[i].OrderID() < out[j].OrderID()
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// SortPhases returns a copy of phases ordered by phase_no ascending.
func SortPhases(phases []*distribution.Phase) []*distribution.Phase {
	out := make([]*distribution.Phase, 0, len(phases))
	for _, p := range phases {
		if p != nil {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PhaseNo < out[j].PhaseNo })
	return out
}

// Phase returns the fill of the phase with the given id.
func (r *Result) Phase(phaseID int64) (PhaseFill, bool) {
	for _, p := range r.Phases {
		if p.PhaseID == phaseID {
			return p, true
		}
	}
	return PhaseFill{}, false
}

// SharesForPhase returns the shares placed inside the phase, in stream order.
func (r *Result) SharesForPhase(phaseID int64) []Share {
	var out []Share
	for _, s := range r.Shares {
		if s.PhaseID == phaseID {
			out = append(out, s)
		}
	}
	return out
}

// Straddling returns the ids of contributions that have USD inside the phase and outside it.
func (r *Result) Straddling(phaseID int64) []int64 {
	var out []int64
	for _, s := range r.Shares {
		if s.PhaseID == phaseID && s.Partial {
			out = append(out, s.ContributionID)
		}
	}
	return out
}

// ContributionPhases returns the phase ids a contribution has USD in.
func (r *Result) ContributionPhases(contributionID int64) []int64 {
	var out []int64
	for _, s := range r.Shares {
		if s.ContributionID == contributionID {
			out = append(out, s.PhaseID)
		}
	}
	return out
}

// WalletUSD sums the virtual USD per wallet inside the phase.
func (r *Result) WalletUSD(phaseID int64) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, s := range r.SharesForPhase(phaseID) {
		out[s.WalletAddress] = out[s.WalletAddress].Add(s.USD)
	}
	return out
}
