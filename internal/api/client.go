package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudflare/cloudflare-go/v4"
	"github.com/cloudflare/cloudflare-go/v4/dns"
	"github.com/cloudflare/cloudflare-go/v4/option"
	"github.com/cloudflare/cloudflare-go/v4/zones"
)

// Client is the live Provider, a thin wrapper around the Cloudflare API.
type Client struct {
	accounts AccountSource
	timeout  time.Duration
	extra    []option.RequestOption
}

var _ Provider = (*Client)(nil)

// NewClient creates a live provider. Credentials are taken per call from the
// account being queried. A zero timeout leaves requests unbounded.
func NewClient(accounts AccountSource, timeout time.Duration) *Client {
	return newClient(accounts, timeout)
}

// newClient creates a Client with optional extra request options (used for testing).
func newClient(accounts AccountSource, timeout time.Duration, extra ...option.RequestOption) *Client {
	return &Client{accounts: accounts, timeout: timeout, extra: extra}
}

// sdk builds an SDK client authenticated as account.
func (c *Client) sdk(account Account) *cloudflare.Client {
	var opts []option.RequestOption
	if account.AuthMode == AuthGlobalKey {
		opts = append(opts,
			option.WithAPIEmail(account.Email),
			option.WithAPIKey(account.APIToken),
		)
	} else {
		opts = append(opts, option.WithAPIToken(account.APIToken))
	}
	if c.timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(c.timeout))
	}
	opts = append(opts, c.extra...)
	return cloudflare.NewClient(opts...)
}

// ListAccounts returns the configured accounts.
func (c *Client) ListAccounts(ctx context.Context) ([]Account, error) {
	if c.accounts == nil {
		return nil, nil
	}
	return c.accounts.Accounts(), nil
}

// ListZones returns all zones visible to the account's credentials.
func (c *Client) ListZones(ctx context.Context, account Account) ([]Zone, error) {
	var result []Zone

	params := zones.ZoneListParams{}
	if account.AccountID != "" {
		params.Account = cloudflare.F(zones.ZoneListParamsAccount{
			ID: cloudflare.F(account.AccountID),
		})
	}

	pager := c.sdk(account).Zones.ListAutoPaging(ctx, params)
	for pager.Next() {
		z := pager.Current()
		result = append(result, Zone{
			ID:   z.ID,
			Name: z.Name,
		})
	}
	if err := pager.Err(); err != nil {
		return nil, remoteError(fmt.Sprintf("listing zones for %s", account.Name), err)
	}

	return result, nil
}

// ListRecords returns all DNS records for the given zone.
func (c *Client) ListRecords(ctx context.Context, zone Zone, account Account) ([]Record, error) {
	var result []Record

	pager := c.sdk(account).DNS.Records.ListAutoPaging(ctx, dns.RecordListParams{
		ZoneID: cloudflare.F(zone.ID),
	})
	for pager.Next() {
		r := pager.Current()
		result = append(result, fromResponse(r))
	}
	if err := pager.Err(); err != nil {
		return nil, remoteError(fmt.Sprintf("listing DNS records for %s", zone.Name), err)
	}

	return result, nil
}

// CreateRecord creates a record in zone and returns it with its assigned ID.
func (c *Client) CreateRecord(ctx context.Context, zone Zone, account Account, draft Draft) (Record, error) {
	resp, err := c.sdk(account).DNS.Records.New(ctx, dns.RecordNewParams{
		ZoneID: cloudflare.F(zone.ID),
		Body: dns.RecordNewParamsBody{
			Type:    cloudflare.F(dns.RecordNewParamsBodyType(draft.Type)),
			Name:    cloudflare.F(draft.Name),
			Content: cloudflare.F(draft.Content),
			TTL:     cloudflare.F(dns.TTL(draft.TTL)),
			Proxied: cloudflare.F(draft.Proxied),
		},
	})
	if err != nil {
		return Record{}, remoteError(fmt.Sprintf("creating record %s", draft.Name), err)
	}
	return fromResponse(*resp), nil
}

// UpdateRecord overwrites record id in zone with draft.
func (c *Client) UpdateRecord(ctx context.Context, zone Zone, account Account, id string, draft Draft) (Record, error) {
	resp, err := c.sdk(account).DNS.Records.Update(ctx, id, dns.RecordUpdateParams{
		ZoneID: cloudflare.F(zone.ID),
		Body: dns.RecordUpdateParamsBody{
			Type:    cloudflare.F(dns.RecordUpdateParamsBodyType(draft.Type)),
			Name:    cloudflare.F(draft.Name),
			Content: cloudflare.F(draft.Content),
			TTL:     cloudflare.F(dns.TTL(draft.TTL)),
			Proxied: cloudflare.F(draft.Proxied),
		},
	})
	if err != nil {
		return Record{}, remoteError(fmt.Sprintf("updating record %s", draft.Name), err)
	}
	return fromResponse(*resp), nil
}

// DeleteRecord removes record id from zone.
func (c *Client) DeleteRecord(ctx context.Context, zone Zone, account Account, id string) error {
	_, err := c.sdk(account).DNS.Records.Delete(ctx, id, dns.RecordDeleteParams{
		ZoneID: cloudflare.F(zone.ID),
	})
	if err != nil {
		return remoteError(fmt.Sprintf("deleting record %s", id), err)
	}
	return nil
}

func fromResponse(r dns.RecordResponse) Record {
	ttl := int(r.TTL)
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return Record{
		ID:      r.ID,
		Type:    string(r.Type),
		Name:    r.Name,
		Content: r.Content,
		TTL:     ttl,
		Proxied: r.Proxied,
	}
}

// remoteError converts an SDK failure into a *RemoteError. The first
// Cloudflare error message is kept verbatim; transport failures carry no
// status.
func remoteError(action string, err error) error {
	var apiErr *cloudflare.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Error()
		if len(apiErr.Errors) > 0 && apiErr.Errors[0].Message != "" {
			msg = apiErr.Errors[0].Message
		}
		return &RemoteError{Status: apiErr.StatusCode, Message: msg}
	}
	return &RemoteError{Message: fmt.Sprintf("%s: %v", action, err)}
}
