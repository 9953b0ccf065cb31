package molit

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wonny/jini/internal/schema"
	"github.com/wonny/jini/internal/store"
	"github.com/wonny/jini/pkg/config"
	"github.com/wonny/jini/pkg/httputil"
	"github.com/wonny/jini/pkg/logger"
)

const emptyDealXML = `<response><header><resultCode>00</resultCode><resultMsg>NORMAL SERVICE.</resultMsg></header><body><items/><totalCount>0</totalCount></body></response>`

func newTestClient(t *testing.T, srvURL string) *Client {
	t.Helper()
	log := logger.NewWriter(io.Discard)
	cfg := &config.Config{}
	cfg.Molit.BaseURL = srvURL
	cfg.Molit.ServiceKey = "test-key"
	return NewClient(httputil.New(log).DisableRetry(), cfg, log)
}

func TestCollector_Collect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("LAWD_CD") {
		case "11110":
			io.WriteString(w, sampleDealXML)
		default:
			io.WriteString(w, emptyDealXML)
		}
	}))
	defer srv.Close()

	sink := store.NewMemory()
	c := NewCollector(newTestClient(t, srv.URL), sink, logger.NewWriter(io.Discard))

	report, err := c.Collect(context.Background(), schema.PropertyApartment, schema.KindSale,
		[]string{"201501"}, []string{"11110", "11140"})
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if report.RowsSaved != 2 {
		t.Errorf("RowsSaved = %d, want 2", report.RowsSaved)
	}
	if report.EmptyPages != 1 {
		t.Errorf("EmptyPages = %d, want 1", report.EmptyPages)
	}
	if report.FailedPages != 0 {
		t.Errorf("FailedPages = %d, want 0", report.FailedPages)
	}

	table, err := schema.TableName(schema.PropertyApartment, schema.KindSale)
	if err != nil {
		t.Fatalf("TableName() error = %v", err)
	}
	saved, err := sink.LoadTransactions(context.Background(), table)
	if err != nil {
		t.Fatalf("LoadTransactions() error = %v", err)
	}
	if saved.Len() != 2 {
		t.Errorf("saved rows = %d, want 2", saved.Len())
	}
	if got := saved.Rows[0]["거래금액"]; got != "10,000" {
		t.Errorf("거래금액 = %q, want %q", got, "10,000")
	}
}

func TestCollector_FailedPageContinues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("LAWD_CD") {
		case "11110":
			io.WriteString(w, `<response><header><resultCode>99</resultCode><resultMsg>LIMITED NUMBER OF SERVICE REQUESTS EXCEEDS ERROR.</resultMsg></header><body/></response>`)
		default:
			io.WriteString(w, sampleDealXML)
		}
	}))
	defer srv.Close()

	sink := store.NewMemory()
	c := NewCollector(newTestClient(t, srv.URL), sink, logger.NewWriter(io.Discard))

	report, err := c.Collect(context.Background(), schema.PropertyApartment, schema.KindSale,
		[]string{"201501"}, []string{"11110", "11140"})
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if report.FailedPages != 1 {
		t.Errorf("FailedPages = %d, want 1", report.FailedPages)
	}
	if report.RowsSaved != 2 {
		t.Errorf("RowsSaved = %d, want 2", report.RowsSaved)
	}
}

func TestCollector_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, emptyDealXML)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewCollector(newTestClient(t, srv.URL), store.NewMemory(), logger.NewWriter(io.Discard))
	if _, err := c.Collect(ctx, schema.PropertyApartment, schema.KindSale, []string{"201501"}, []string{"11110"}); err == nil {
		t.Fatal("Collect() expected context error, got nil")
	}
}
