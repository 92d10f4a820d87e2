package erpclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"bitbucket.org/mmdatafocus/pos_backend/cart"
	"github.com/shopspring/decimal"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	os.Setenv("ERP_API_BASE_URL", srv.URL)
	t.Cleanup(func() { os.Unsetenv("ERP_API_BASE_URL") })
	os.Setenv("ERP_RATE_LIMIT_PER_MIN", "60000")
	t.Cleanup(func() { os.Unsetenv("ERP_RATE_LIMIT_PER_MIN") })

	c, err := NewClient("test-key")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestNewClient_RejectsEmptyKey(t *testing.T) {
	if _, err := NewClient("   "); err == nil {
		t.Fatal("expected error for empty api key")
	}
}

func TestUpdateInvoice_SendsKeyHeaderAndDecodesBody(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != "test-key" {
			t.Errorf("missing api key header")
		}
		json.NewEncoder(w).Encode(cart.ConfirmedInvoice{Name: "ACC-SINV-2026-00001"})
	}))

	confirmed, err := c.UpdateInvoice(context.Background(), cart.NewDraftInvoice("Walk-in Customer", ""))
	if err != nil {
		t.Fatalf("UpdateInvoice: %v", err)
	}
	if confirmed.Name != "ACC-SINV-2026-00001" {
		t.Fatalf("expected server name, got %q", confirmed.Name)
	}
}

func TestDo_MapsConflictToStaleDocument(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))

	_, err := c.SubmitInvoice(context.Background(), cart.NewDraftInvoice("Walk-in Customer", ""))
	if !errors.Is(err, ErrStaleDocument) {
		t.Fatalf("expected ErrStaleDocument, got %v", err)
	}
}

func TestDo_MapsServerErrorToServiceUnavailable(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := c.GetOffers(context.Background(), "Main POS")
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestSyncDraft_ReloadsAndRetriesOnceOnConflict(t *testing.T) {
	cfg := cart.DefaultConfig()
	updates := 0
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/pos/invoice/update":
			updates++
			if updates == 1 {
				w.WriteHeader(http.StatusConflict)
				return
			}
			json.NewEncoder(w).Encode(cart.ConfirmedInvoice{Name: "SINV-1", GrandTotal: decimal.NewFromInt(180)})
		case "/api/pos/invoice/SINV-1":
			json.NewEncoder(w).Encode(cart.ConfirmedInvoice{Name: "SINV-1"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	draft := cart.NewDraftInvoice("Walk-in Customer", "")
	draft.Name = "SINV-1"
	if err := c.SyncDraft(context.Background(), draft, cfg); err != nil {
		t.Fatalf("SyncDraft: %v", err)
	}
	if updates != 2 {
		t.Fatalf("expected exactly 2 update attempts, got %d", updates)
	}
	if !draft.Totals.GrandTotal.Equal(decimal.NewFromInt(180)) {
		t.Fatalf("merge after retry missing, grand total %s", draft.Totals.GrandTotal.String())
	}
}

func TestSyncDraft_SecondConflictSurfaces(t *testing.T) {
	cfg := cart.DefaultConfig()
	updates := 0
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/pos/invoice/update" {
			updates++
			w.WriteHeader(http.StatusConflict)
			return
		}
		json.NewEncoder(w).Encode(cart.ConfirmedInvoice{Name: "SINV-1"})
	}))

	draft := cart.NewDraftInvoice("Walk-in Customer", "")
	draft.Name = "SINV-1"
	err := c.SyncDraft(context.Background(), draft, cfg)
	if !errors.Is(err, ErrStaleDocument) {
		t.Fatalf("expected ErrStaleDocument after retry, got %v", err)
	}
	if updates != 2 {
		t.Fatalf("expected exactly 2 update attempts, got %d", updates)
	}
}

func TestGetCustomerBalance(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("customer"); got != "CUST-0007" {
			t.Errorf("expected customer query, got %q", got)
		}
		w.Write([]byte(`{"balance":"1250.50"}`))
	}))

	balance, err := c.GetCustomerBalance(context.Background(), "CUST-0007")
	if err != nil {
		t.Fatalf("GetCustomerBalance: %v", err)
	}
	if !balance.Equal(decimal.RequireFromString("1250.50")) {
		t.Fatalf("expected 1250.50, got %s", balance.String())
	}
}
