package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloudflare/cloudflare-go/v4/option"
)

type staticAccounts []Account

func (s staticAccounts) Accounts() []Account { return s }

var testAccount = Account{Name: "demo", APIToken: "test-token", AuthMode: AuthToken}

var testZone = Zone{ID: "zone-1", Name: "example.com"}

// newTestClient creates a Client pointed at the given test server with retries disabled.
func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	return newClient(staticAccounts{testAccount}, 0,
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
	)
}

const emptyPage = `{"success":true,"errors":[],"messages":[],"result":[],"result_info":{"page":2,"per_page":20,"total_count":0,"total_pages":1}}`

func TestListAccounts(t *testing.T) {
	client := newTestClient(t, "http://unused")
	accounts, err := client.ListAccounts(context.Background())
	if err != nil {
		t.Fatalf("ListAccounts returned error: %v", err)
	}
	if len(accounts) != 1 || accounts[0].Name != "demo" {
		t.Errorf("unexpected accounts: %+v", accounts)
	}
}

func TestListZones(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/zones", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("unexpected Authorization header: %s", got)
		}
		w.Header().Set("Content-Type", "application/json")

		// The auto-pager fetches page 2 to check for more results.
		if r.URL.Query().Get("page") != "" && r.URL.Query().Get("page") != "1" {
			fmt.Fprint(w, emptyPage)
			return
		}

		fmt.Fprint(w, `{
			"success": true,
			"errors": [],
			"messages": [],
			"result": [
				{"id": "zone-1", "name": "example.com"},
				{"id": "zone-2", "name": "example.org"}
			],
			"result_info": {"page": 1, "per_page": 20, "total_count": 2, "total_pages": 1}
		}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	zones, err := client.ListZones(context.Background(), testAccount)
	if err != nil {
		t.Fatalf("ListZones returned error: %v", err)
	}

	want := []Zone{
		{ID: "zone-1", Name: "example.com"},
		{ID: "zone-2", Name: "example.org"},
	}
	if len(zones) != len(want) {
		t.Fatalf("expected %d zones, got %d", len(want), len(zones))
	}
	for i, z := range zones {
		if z != want[i] {
			t.Errorf("zone[%d] = %+v, want %+v", i, z, want[i])
		}
	}
}

func TestListZonesScopedToAccountID(t *testing.T) {
	var gotAccountID string
	mux := http.NewServeMux()
	mux.HandleFunc("/zones", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "" || r.URL.Query().Get("page") == "1" {
			gotAccountID = r.URL.Query().Get("account.id")
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, emptyPage)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	acct := testAccount
	acct.AccountID = "acc-123"
	client := newTestClient(t, srv.URL)
	if _, err := client.ListZones(context.Background(), acct); err != nil {
		t.Fatalf("ListZones returned error: %v", err)
	}
	if gotAccountID != "acc-123" {
		t.Errorf("expected account.id=acc-123, got %q", gotAccountID)
	}
}

func TestListZonesGlobalKeyAuth(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/zones", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Auth-Email"); got != "ops@example.com" {
			t.Errorf("unexpected X-Auth-Email header: %s", got)
		}
		if got := r.Header.Get("X-Auth-Key"); got != "global-key" {
			t.Errorf("unexpected X-Auth-Key header: %s", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, emptyPage)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	acct := Account{Name: "legacy", APIToken: "global-key", Email: "ops@example.com", AuthMode: AuthGlobalKey}
	client := newTestClient(t, srv.URL)
	if _, err := client.ListZones(context.Background(), acct); err != nil {
		t.Fatalf("ListZones returned error: %v", err)
	}
}

func TestListZonesError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/zones", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"success":false,"errors":[{"code":9109,"message":"Invalid access token"}],"messages":[],"result":null}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.ListZones(context.Background(), testAccount)
	if err == nil {
		t.Fatal("expected error from ListZones, got nil")
	}

	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("expected *RemoteError, got %T", err)
	}
	if remote.Status != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", remote.Status)
	}
	if remote.Message != "Invalid access token" {
		t.Errorf("expected verbatim message, got %q", remote.Message)
	}
}

func TestListRecords(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/zones/zone-1/dns_records", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("unexpected Authorization header: %s", got)
		}
		w.Header().Set("Content-Type", "application/json")

		if r.URL.Query().Get("page") != "" && r.URL.Query().Get("page") != "1" {
			fmt.Fprint(w, emptyPage)
			return
		}

		fmt.Fprint(w, `{
			"success": true,
			"errors": [],
			"messages": [],
			"result": [
				{"id": "rec-1", "type": "A", "name": "example.com", "content": "192.0.2.1", "ttl": 300, "proxied": true},
				{"id": "rec-2", "type": "CNAME", "name": "www.example.com", "content": "example.com", "ttl": 1, "proxied": false},
				{"id": "rec-3", "type": "MX", "name": "example.com", "content": "mail.example.com", "ttl": 3600, "proxied": false}
			],
			"result_info": {"page": 1, "per_page": 20, "total_count": 3, "total_pages": 1}
		}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	records, err := client.ListRecords(context.Background(), testZone, testAccount)
	if err != nil {
		t.Fatalf("ListRecords returned error: %v", err)
	}

	want := []Record{
		{ID: "rec-1", Type: "A", Name: "example.com", Content: "192.0.2.1", TTL: 300, Proxied: true},
		{ID: "rec-2", Type: "CNAME", Name: "www.example.com", Content: "example.com", TTL: 1},
		{ID: "rec-3", Type: "MX", Name: "example.com", Content: "mail.example.com", TTL: 3600},
	}
	if len(records) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(records))
	}
	for i, r := range records {
		if r != want[i] {
			t.Errorf("record[%d] = %+v, want %+v", i, r, want[i])
		}
	}
}

func TestListRecordsError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/zones/zone-1/dns_records", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"success":false,"errors":[{"code":7003,"message":"Could not route to /zones/zone-1/dns_records, perhaps your object identifier is invalid?"}],"messages":[],"result":null}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.ListRecords(context.Background(), testZone, testAccount)
	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("expected *RemoteError, got %v", err)
	}
	if remote.Status != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", remote.Status)
	}
}

func TestCreateUpdateDeleteRecord(t *testing.T) {
	var created, updated map[string]any
	deleted := false

	mux := http.NewServeMux()
	mux.HandleFunc("/zones/zone-1/dns_records", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &created); err != nil {
			t.Errorf("decoding create body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"success":true,"errors":[],"messages":[],"result":
			{"id":"rec-new","type":"A","name":"api.example.com","content":"192.0.2.10","ttl":1,"proxied":true}}`)
	})
	mux.HandleFunc("/zones/zone-1/dns_records/rec-new", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(body, &updated); err != nil {
				t.Errorf("decoding update body: %v", err)
			}
			fmt.Fprint(w, `{"success":true,"errors":[],"messages":[],"result":
				{"id":"rec-new","type":"A","name":"api.example.com","content":"192.0.2.20","ttl":300,"proxied":false}}`)
		case http.MethodDelete:
			deleted = true
			fmt.Fprint(w, `{"success":true,"errors":[],"messages":[],"result":{"id":"rec-new"}}`)
		default:
			http.NotFound(w, r)
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	ctx := context.Background()

	rec, err := client.CreateRecord(ctx, testZone, testAccount, Draft{
		Type: "A", Name: "api.example.com", Content: "192.0.2.10", TTL: TTLAuto, Proxied: true,
	})
	if err != nil {
		t.Fatalf("CreateRecord returned error: %v", err)
	}
	if rec.ID != "rec-new" {
		t.Errorf("expected assigned id rec-new, got %q", rec.ID)
	}
	if created["name"] != "api.example.com" || created["type"] != "A" || created["proxied"] != true {
		t.Errorf("unexpected create body: %v", created)
	}

	rec, err = client.UpdateRecord(ctx, testZone, testAccount, "rec-new", Draft{
		Type: "A", Name: "api.example.com", Content: "192.0.2.20", TTL: 300,
	})
	if err != nil {
		t.Fatalf("UpdateRecord returned error: %v", err)
	}
	if rec.Content != "192.0.2.20" || rec.TTL != 300 || rec.Proxied {
		t.Errorf("unexpected updated record: %+v", rec)
	}
	if updated["content"] != "192.0.2.20" {
		t.Errorf("unexpected update body: %v", updated)
	}

	if err := client.DeleteRecord(ctx, testZone, testAccount, "rec-new"); err != nil {
		t.Fatalf("DeleteRecord returned error: %v", err)
	}
	if !deleted {
		t.Error("expected DELETE request")
	}
}

func TestCreateRecordError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/zones/zone-1/dns_records", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"success":false,"errors":[{"code":9005,"message":"Content for A record is invalid. Must be a valid IPv4 address"}],"messages":[],"result":null}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.CreateRecord(context.Background(), testZone, testAccount, Draft{
		Type: "A", Name: "bad.example.com", Content: "not-an-ip", TTL: 300,
	})
	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("expected *RemoteError, got %v", err)
	}
	if remote.Status != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", remote.Status)
	}
	if remote.Message != "Content for A record is invalid. Must be a valid IPv4 address" {
		t.Errorf("unexpected message %q", remote.Message)
	}
}

func TestNewClient(t *testing.T) {
	client := NewClient(staticAccounts{}, 0)
	if client == nil {
		t.Fatal("NewClient returned nil")
	}
	if client.sdk(testAccount) == nil {
		t.Fatal("sdk returned nil cloudflare client")
	}
}
