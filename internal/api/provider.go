// Package api defines the DNS data provider used by the TUI layer and its two
// implementations: a live client backed by the Cloudflare SDK and a
// deterministic offline fixture.
package api

import (
	"context"
	"fmt"
)

// Provider is the data capability the TUI depends on. Implementations must be
// interchangeable; callers never inspect which one they hold.
type Provider interface {
	ListAccounts(ctx context.Context) ([]Account, error)
	ListZones(ctx context.Context, account Account) ([]Zone, error)
	ListRecords(ctx context.Context, zone Zone, account Account) ([]Record, error)
	CreateRecord(ctx context.Context, zone Zone, account Account, draft Draft) (Record, error)
	UpdateRecord(ctx context.Context, zone Zone, account Account, id string, draft Draft) (Record, error)
	DeleteRecord(ctx context.Context, zone Zone, account Account, id string) error
}

// AccountSource supplies the configured accounts.
type AccountSource interface {
	Accounts() []Account
}

// RemoteError is a failure reported by the remote API.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}
