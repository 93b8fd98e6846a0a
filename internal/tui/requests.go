package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Azahorscak/nyxflare/internal/api"
	"github.com/Azahorscak/nyxflare/internal/logging"
)

// Slot is an independent request channel. Each slot has at most one pending
// request.
type Slot int

const (
	SlotAccounts Slot = iota
	SlotZones
	SlotRecords
	SlotMutation
	slotCount
)

func (s Slot) String() string {
	switch s {
	case SlotAccounts:
		return "accounts"
	case SlotZones:
		return "zones"
	case SlotRecords:
		return "records"
	case SlotMutation:
		return "mutation"
	}
	return "unknown"
}

var (
	// ErrSlotBusy is returned when the same request is already pending.
	ErrSlotBusy = errors.New("request already in progress")
	// ErrStaleResult marks a completion that no longer applies to the
	// current selection and must be discarded.
	ErrStaleResult = errors.New("stale result")
)

// Origin identifies the selection a request was issued for: the account
// name, the zone ID and, for mutations, the target record ID.
type Origin struct {
	Account string
	Zone    string
	Target  string
}

// Pending describes the in-flight request of a slot.
type Pending struct {
	Slot      Slot
	Seq       uint64
	Origin    Origin
	StartedAt time.Time
}

// operation names the provider call behind a request.
type operation int

const (
	opListAccounts operation = iota
	opListZones
	opListRecords
	opCreateRecord
	opUpdateRecord
	opDeleteRecord
)

// requestDoneMsg carries the outcome of a provider call back to the event loop.
type requestDoneMsg struct {
	slot   Slot
	seq    uint64
	origin Origin
	op     operation
	result any
	err    error
}

// Requests tracks pending provider calls per slot and turns them into
// Bubble Tea commands. It never blocks: the calls run inside the returned
// commands and report back with a requestDoneMsg.
type Requests struct {
	provider api.Provider
	pending  [slotCount]*Pending
	seq      uint64
	now      func() time.Time
}

// NewRequests creates an orchestrator over provider.
func NewRequests(provider api.Provider) Requests {
	return Requests{provider: provider, now: time.Now}
}

// submit registers a request for slot. A pending request with the same
// origin makes the call a no-op (ErrSlotBusy); one with a different origin
// is superseded and its result will be discarded on arrival.
func (r *Requests) submit(slot Slot, origin Origin, op operation, run func(context.Context, api.Provider) (any, error)) (tea.Cmd, error) {
	if p := r.pending[slot]; p != nil {
		if p.Origin == origin {
			logging.Debug("request dropped, slot busy",
				zap.Stringer("slot", slot),
				zap.Uint64("pending_seq", p.Seq),
			)
			return nil, ErrSlotBusy
		}
		logging.Debug("request superseded",
			zap.Stringer("slot", slot),
			zap.Uint64("seq", p.Seq),
		)
	}

	r.seq++
	seq := r.seq
	now := time.Now
	if r.now != nil {
		now = r.now
	}
	r.pending[slot] = &Pending{Slot: slot, Seq: seq, Origin: origin, StartedAt: now()}

	logging.Debug("request submitted",
		zap.Stringer("slot", slot),
		zap.Uint64("seq", seq),
		zap.String("account", origin.Account),
		zap.String("zone", origin.Zone),
		zap.String("target", origin.Target),
	)

	provider := r.provider
	return func() tea.Msg {
		result, err := run(context.Background(), provider)
		return requestDoneMsg{slot: slot, seq: seq, origin: origin, op: op, result: result, err: err}
	}, nil
}

// complete settles msg against the bookkeeping and the current selection.
// It returns ErrStaleResult when the result must be discarded.
func (r *Requests) complete(msg requestDoneMsg, current Origin) error {
	p := r.pending[msg.slot]
	if p == nil || p.Seq != msg.seq {
		logging.Debug("discarding superseded result", zap.Stringer("slot", msg.slot), zap.Uint64("seq", msg.seq))
		return ErrStaleResult
	}
	r.pending[msg.slot] = nil

	if !originMatches(msg.slot, msg.origin, current) {
		logging.Debug("discarding result for previous selection",
			zap.Stringer("slot", msg.slot),
			zap.String("account", msg.origin.Account),
			zap.String("zone", msg.origin.Zone),
		)
		return ErrStaleResult
	}
	if msg.err != nil {
		logging.Warn("request failed", zap.Stringer("slot", msg.slot), zap.Error(msg.err))
	}
	return nil
}

func originMatches(slot Slot, origin, current Origin) bool {
	switch slot {
	case SlotAccounts:
		return true
	case SlotZones:
		return origin.Account == current.Account
	default:
		return origin.Account == current.Account && origin.Zone == current.Zone
	}
}

// Pending returns the pending request of slot, if any.
func (r *Requests) Pending(slot Slot) (Pending, bool) {
	if p := r.pending[slot]; p != nil {
		return *p, true
	}
	return Pending{}, false
}

// Busy reports whether any slot has a pending request.
func (r *Requests) Busy() bool {
	for _, p := range r.pending {
		if p != nil {
			return true
		}
	}
	return false
}

// All returns the pending requests in slot order.
func (r *Requests) All() []Pending {
	var out []Pending
	for _, p := range r.pending {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out
}

// ListAccounts fetches the configured accounts.
func (r *Requests) ListAccounts() (tea.Cmd, error) {
	return r.submit(SlotAccounts, Origin{}, opListAccounts, func(ctx context.Context, p api.Provider) (any, error) {
		return p.ListAccounts(ctx)
	})
}

// ListZones fetches the zones of account.
func (r *Requests) ListZones(account api.Account) (tea.Cmd, error) {
	origin := Origin{Account: account.Name}
	return r.submit(SlotZones, origin, opListZones, func(ctx context.Context, p api.Provider) (any, error) {
		return p.ListZones(ctx, account)
	})
}

// ListRecords fetches the records of zone.
func (r *Requests) ListRecords(account api.Account, zone api.Zone) (tea.Cmd, error) {
	origin := Origin{Account: account.Name, Zone: zone.ID}
	return r.submit(SlotRecords, origin, opListRecords, func(ctx context.Context, p api.Provider) (any, error) {
		return p.ListRecords(ctx, zone, account)
	})
}

// CreateRecord creates a record from draft in zone.
func (r *Requests) CreateRecord(account api.Account, zone api.Zone, draft api.Draft) (tea.Cmd, error) {
	origin := Origin{Account: account.Name, Zone: zone.ID}
	return r.submit(SlotMutation, origin, opCreateRecord, func(ctx context.Context, p api.Provider) (any, error) {
		return p.CreateRecord(ctx, zone, account, draft)
	})
}

// UpdateRecord overwrites record id with draft.
func (r *Requests) UpdateRecord(account api.Account, zone api.Zone, id string, draft api.Draft) (tea.Cmd, error) {
	origin := Origin{Account: account.Name, Zone: zone.ID, Target: id}
	return r.submit(SlotMutation, origin, opUpdateRecord, func(ctx context.Context, p api.Provider) (any, error) {
		return p.UpdateRecord(ctx, zone, account, id, draft)
	})
}

// DeleteRecord deletes record id. The result payload is the deleted ID.
func (r *Requests) DeleteRecord(account api.Account, zone api.Zone, id string) (tea.Cmd, error) {
	origin := Origin{Account: account.Name, Zone: zone.ID, Target: id}
	return r.submit(SlotMutation, origin, opDeleteRecord, func(ctx context.Context, p api.Provider) (any, error) {
		return id, p.DeleteRecord(ctx, zone, account, id)
	})
}
