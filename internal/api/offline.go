package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DemoAccount is listed by the offline provider when no accounts are configured.
var DemoAccount = Account{Name: "demo", APIToken: "offline", AuthMode: AuthToken}

// Offline is a Provider serving deterministic fixture data from memory.
// Mutations are kept for the lifetime of the process.
type Offline struct {
	accounts AccountSource
	latency  time.Duration

	mu      sync.Mutex
	records map[fixtureKey][]Record
}

// fixtureKey scopes fixture records to the exact account name. Zone IDs are
// derived from a folded name, so two accounts can share them.
type fixtureKey struct {
	account string
	zone    string
}

func keyFor(account Account, zone Zone) fixtureKey {
	return fixtureKey{account: account.Name, zone: zone.ID}
}

var _ Provider = (*Offline)(nil)

// NewOffline creates an offline provider. When latency is non-zero every call
// sleeps for that long (or until ctx is done) before answering.
func NewOffline(accounts AccountSource, latency time.Duration) *Offline {
	return &Offline{
		accounts: accounts,
		latency:  latency,
		records:  make(map[fixtureKey][]Record),
	}
}

func (o *Offline) wait(ctx context.Context) error {
	if o.latency <= 0 {
		return nil
	}
	t := time.NewTimer(o.latency)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ListAccounts returns the configured accounts, or DemoAccount if there are none.
func (o *Offline) ListAccounts(ctx context.Context) ([]Account, error) {
	if err := o.wait(ctx); err != nil {
		return nil, err
	}
	var accounts []Account
	if o.accounts != nil {
		accounts = o.accounts.Accounts()
	}
	if len(accounts) == 0 {
		return []Account{DemoAccount}, nil
	}
	return accounts, nil
}

// ListZones derives two zones from the account name.
func (o *Offline) ListZones(ctx context.Context, account Account) ([]Zone, error) {
	if err := o.wait(ctx); err != nil {
		return nil, err
	}
	base := strings.ToLower(strings.ReplaceAll(account.Name, " ", ""))
	return []Zone{
		{ID: base + "-01", Name: base + ".example.com"},
		{ID: base + "-02", Name: base + ".services.io"},
	}, nil
}

// ListRecords returns the zone's records, seeding the fixture on first use.
func (o *Offline) ListRecords(ctx context.Context, zone Zone, account Account) ([]Record, error) {
	if err := o.wait(ctx); err != nil {
		return nil, err
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	k := o.ensureZone(account, zone)
	out := make([]Record, len(o.records[k]))
	copy(out, o.records[k])
	return out, nil
}

// CreateRecord appends a record with a fresh ID.
func (o *Offline) CreateRecord(ctx context.Context, zone Zone, account Account, draft Draft) (Record, error) {
	if err := o.wait(ctx); err != nil {
		return Record{}, err
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	k := o.ensureZone(account, zone)
	rec := recordFromDraft(zone.ID+"-"+uuid.NewString()[:8], draft)
	o.records[k] = append(o.records[k], rec)
	return rec, nil
}

// UpdateRecord replaces record id in place.
func (o *Offline) UpdateRecord(ctx context.Context, zone Zone, account Account, id string, draft Draft) (Record, error) {
	if err := o.wait(ctx); err != nil {
		return Record{}, err
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	records := o.records[o.ensureZone(account, zone)]
	for i := range records {
		if records[i].ID == id {
			records[i] = recordFromDraft(id, draft)
			return records[i], nil
		}
	}
	return Record{}, notFound(id)
}

// DeleteRecord removes record id.
func (o *Offline) DeleteRecord(ctx context.Context, zone Zone, account Account, id string) error {
	if err := o.wait(ctx); err != nil {
		return err
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	k := o.ensureZone(account, zone)
	records := o.records[k]
	for i := range records {
		if records[i].ID == id {
			o.records[k] = append(records[:i:i], records[i+1:]...)
			return nil
		}
	}
	return notFound(id)
}

// ensureZone seeds fixture records for the account's zone and returns its
// key. Callers hold o.mu.
func (o *Offline) ensureZone(account Account, zone Zone) fixtureKey {
	k := keyFor(account, zone)
	if _, ok := o.records[k]; ok {
		return k
	}
	o.records[k] = []Record{
		{ID: zone.ID + "-a", Type: "A", Name: "api." + zone.Name, Content: "203.0.113.10", TTL: 300, Proxied: true},
		{ID: zone.ID + "-b", Type: "CNAME", Name: "cdn." + zone.Name, Content: "edge.service.net", TTL: 120, Proxied: true},
		{ID: zone.ID + "-c", Type: "MX", Name: "mail." + zone.Name, Content: "mail." + zone.Name, TTL: 3600},
	}
	return k
}

func recordFromDraft(id string, d Draft) Record {
	return Record{
		ID:      id,
		Type:    d.Type,
		Name:    d.Name,
		Content: d.Content,
		TTL:     d.TTL,
		Proxied: d.Proxied,
	}
}

func notFound(id string) error {
	return &RemoteError{Status: http.StatusNotFound, Message: fmt.Sprintf("record %s not found", id)}
}
