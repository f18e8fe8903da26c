package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/atlas-ledger/atlas-ledger/internal/ledger"
	_ "github.com/atlas-ledger/atlas-ledger/testing"
)

type mockService struct {
	tbRows []ledger.TrialBalanceRow
	tbErr  error
	led    ledger.SubsidiaryLedger
	ledErr error
	bal    ledger.AccountBalance
	balErr error
}

func (m *mockService) TrialBalance(context.Context, time.Time, time.Time, ledger.TrialBalanceOptions) ([]ledger.TrialBalanceRow, error) {
	return m.tbRows, m.tbErr
}

func (m *mockService) SubsidiaryLedger(context.Context, int64, time.Time, time.Time, ledger.LedgerView) (ledger.SubsidiaryLedger, error) {
	return m.led, m.ledErr
}

func (m *mockService) AccountBalance(context.Context, int64, time.Time, time.Time) (ledger.AccountBalance, error) {
	return m.bal, m.balErr
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return v
}

func newTestRouter(svc ReportService) chi.Router {
	handler := NewHandler(slog.New(slog.NewTextHandler(&strings.Builder{}, nil)), svc, nil, nil)
	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r
}

func sampleRows(t *testing.T) []ledger.TrialBalanceRow {
	return []ledger.TrialBalanceRow{
		{
			AccountID: 10, Code: "1000", Name: "Cash", Level: 1, IsLeaf: true,
			Opening:     ledger.BalancePair{Debit: dec(t, "100.00")},
			PeriodDebit: dec(t, "50.00"), PeriodCredit: dec(t, "20.00"),
			Closing: ledger.BalancePair{Debit: dec(t, "130.00")},
		},
		{
			AccountID: 30, Code: "3000", Name: "Capital", Level: 1, IsLeaf: true,
			Opening: ledger.BalancePair{Credit: dec(t, "100.00")},
			Closing: ledger.BalancePair{Credit: dec(t, "130.00")},
		},
	}
}

func TestTrialBalanceEndpoint(t *testing.T) {
	router := newTestRouter(&mockService{tbRows: sampleRows(t)})
	req := httptest.NewRequest(http.MethodGet, "/reports/trial-balance?start=2025-01-01&end=2025-01-31", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var vm TrialBalanceVM
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &vm))
	require.Len(t, vm.Rows, 2)
	require.Equal(t, "130.00", vm.LeafClosingDebit)
	require.Equal(t, "130.00", vm.LeafClosingCredit)
	require.Equal(t, "1000", vm.Rows[0].Code)
	require.Equal(t, "130.00", vm.Rows[0].Closing.Debit)
}

func TestTrialBalanceValidation(t *testing.T) {
	router := newTestRouter(&mockService{})
	for _, url := range []string{
		"/reports/trial-balance",
		"/reports/trial-balance?start=2025-01-01",
		"/reports/trial-balance?start=bogus&end=2025-01-31",
		"/reports/trial-balance?start=2025-01-01&end=2025-01-31&level=x",
	} {
		req := httptest.NewRequest(http.MethodGet, url, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code, "url %s", url)
	}
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: id 9", ledger.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: not a leaf", ledger.ErrInvalidArgument), http.StatusBadRequest},
		{fmt.Errorf("%w: cycle", ledger.ErrCorruptHierarchy), http.StatusInternalServerError},
		{fmt.Errorf("%w: down", ledger.ErrStoreUnavailable), http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		router := newTestRouter(&mockService{ledErr: tc.err})
		req := httptest.NewRequest(http.MethodGet, "/reports/subsidiary-ledger?account_id=9&start=2025-01-01&end=2025-01-31", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, tc.want, rec.Code, "error %v", tc.err)
	}
}

func TestSubsidiaryLedgerEndpointDefaultsToAll(t *testing.T) {
	led := ledger.SubsidiaryLedger{
		AccountID: 20, Code: "2000", Name: "Accounts Payable", Side: ledger.SideCredit,
		Closing: ledger.BalancePair{Credit: dec(t, "30.00")},
	}
	router := newTestRouter(&mockService{led: led})
	req := httptest.NewRequest(http.MethodGet, "/reports/subsidiary-ledger?account_id=20&start=2025-01-01&end=2025-01-31", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var vm SubsidiaryLedgerVM
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &vm))
	require.Equal(t, "ALL", vm.View)
	require.Equal(t, "30.00", vm.Closing.Credit)
}

func TestAccountBalanceEndpoint(t *testing.T) {
	bal := ledger.AccountBalance{
		AccountID: 1, Code: "1", Name: "Assets", Side: ledger.SideDebit,
		Balance: ledger.PeriodBalance{
			Opening:     ledger.BalancePair{Debit: dec(t, "100.00")},
			PeriodDebit: dec(t, "50.00"), PeriodCredit: dec(t, "20.00"),
			Closing: ledger.BalancePair{Debit: dec(t, "130.00")},
		},
	}
	router := newTestRouter(&mockService{bal: bal})
	req := httptest.NewRequest(http.MethodGet, "/reports/balance?account_id=1&start=2025-01-01&end=2025-01-31", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var vm AccountBalanceVM
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &vm))
	require.Equal(t, "130.00", vm.Closing.Debit)
	require.Equal(t, "0.00", vm.Closing.Credit)
}

func TestTrialBalanceCSVExport(t *testing.T) {
	router := newTestRouter(&mockService{tbRows: sampleRows(t)})
	req := httptest.NewRequest(http.MethodGet, "/reports/trial-balance/export.csv?start=2025-01-01&end=2025-01-31", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	body := rec.Body.String()
	require.Contains(t, body, "code,name,level,leaf")
	require.Contains(t, body, "1000,Cash")
	require.Contains(t, body, "TOTAL (leaves)")
}

func TestCacheBumpWithoutRedis(t *testing.T) {
	router := newTestRouter(&mockService{})
	req := httptest.NewRequest(http.MethodPost, "/reports/cache/bump", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code)
}
