package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"spokoj/internal/budget"
	"spokoj/internal/core"
	"spokoj/internal/store/memory"
)

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()

	n := 0
	svc, err := budget.Load(context.Background(), memory.New(), nil, nil,
		budget.WithClock(func() time.Time {
			return time.Date(2025, time.November, 15, 12, 0, 0, 0, time.UTC)
		}),
		budget.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}))
	require.NoError(t, err)

	return New(svc, opts)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestCategoriesCRUDKeepsSavingsLast(t *testing.T) {
	s := newTestServer(t, Options{})
	h := s.Handler()

	rec := doJSON(t, h, http.MethodPost, "/v1/categories", createCategoryRequest{Name: "Wakacje", Limit: 1200, Icon: "Plane"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[core.Category](t, rec)
	require.Equal(t, "Wakacje", created.Name)

	rec = doJSON(t, h, http.MethodGet, "/v1/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cats := decodeBody[[]core.Category](t, rec)
	require.Equal(t, core.SavingsCategoryID, cats[len(cats)-1].ID)
	require.Equal(t, created.ID, cats[len(cats)-2].ID)

	rec = doJSON(t, h, http.MethodPost, "/v1/categories", createCategoryRequest{Name: "   "})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteSavingsCategoryIsSilentNoOp(t *testing.T) {
	s := newTestServer(t, Options{})
	h := s.Handler()

	rec := doJSON(t, h, http.MethodDelete, "/v1/categories/savings", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	cats := decodeBody[[]core.Category](t, doJSON(t, h, http.MethodGet, "/v1/categories", nil))
	require.Equal(t, core.SavingsCategoryID, cats[len(cats)-1].ID)
}

func TestPlanCommitRejectsOverallocation(t *testing.T) {
	s := newTestServer(t, Options{})
	h := s.Handler()

	rec := doJSON(t, h, http.MethodPost, "/v1/months/2025-11/plan", commitPlanRequest{
		Income: 1000,
		Limits: map[string]int64{"1": 900, core.SavingsCategoryID: 500},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	plan := decodeBody[planResponse](t, rec)
	require.Equal(t, core.PlanOverallocated, plan.Status)
	require.Negative(t, plan.Unassigned)

	// Rejection leaves the stored config untouched.
	cfg := decodeBody[core.MonthConfig](t, doJSON(t, h, http.MethodGet, "/v1/months/2025-11", nil))
	require.Equal(t, int64(core.DefaultMonthlyIncome), cfg.TotalIncome)
}

func TestPlanCommitBalanced(t *testing.T) {
	s := newTestServer(t, Options{})
	h := s.Handler()

	limits := map[string]int64{core.SavingsCategoryID: 2500}
	for _, c := range decodeBody[[]core.Category](t, doJSON(t, h, http.MethodGet, "/v1/categories", nil)) {
		if c.ID != core.SavingsCategoryID {
			limits[c.ID] = 0
		}
	}
	limits["1"] = 5000
	limits["2"] = 2000
	limits["3"] = 500

	rec := doJSON(t, h, http.MethodPost, "/v1/months/2025-11/plan", commitPlanRequest{Income: 10000, Limits: limits})
	require.Equal(t, http.StatusOK, rec.Code)
	plan := decodeBody[planResponse](t, rec)
	require.Equal(t, core.PlanBalanced, plan.Status)
	require.Zero(t, plan.Unassigned)
	require.Equal(t, int64(2500), plan.PotentialSavings)

	cfg := decodeBody[core.MonthConfig](t, doJSON(t, h, http.MethodGet, "/v1/months/2025-11", nil))
	require.Equal(t, int64(10000), cfg.TotalIncome)
}

func TestTransactionsEndpoints(t *testing.T) {
	s := newTestServer(t, Options{})
	h := s.Handler()

	rec := doJSON(t, h, http.MethodPost, "/v1/transactions", createTransactionRequest{
		Amount: 120, CategoryID: "2", Date: "2025-11-03", Note: "zakupy", CreatedBy: core.Artur,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	tx := decodeBody[core.Transaction](t, rec)
	require.NotEmpty(t, tx.ID)
	require.NotZero(t, tx.Timestamp)

	rec = doJSON(t, h, http.MethodPost, "/v1/transactions", createTransactionRequest{
		Amount: 50, CategoryID: "2", Date: "2025-10-28", CreatedBy: core.Marlena,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	txs := decodeBody[[]core.Transaction](t, doJSON(t, h, http.MethodGet, "/v1/transactions?month=2025-11", nil))
	require.Len(t, txs, 1)
	require.Equal(t, tx.ID, txs[0].ID)

	rec = doJSON(t, h, http.MethodPost, "/v1/transactions", createTransactionRequest{
		Amount: 10, CategoryID: "2", Date: "03-11-2025", CreatedBy: core.Artur,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPatch, "/v1/transactions/"+tx.ID, updateTransactionRequest{Date: ptr("bad")})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/v1/transactions/"+tx.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	txs = decodeBody[[]core.Transaction](t, doJSON(t, h, http.MethodGet, "/v1/transactions?month=2025-11", nil))
	require.Empty(t, txs)
}

func TestImportAutoCategorizes(t *testing.T) {
	s := newTestServer(t, Options{})
	h := s.Handler()

	rec := doJSON(t, h, http.MethodPut, "/v1/merchants", core.MerchantMapping{
		Pattern: "biedronka", CategoryID: "2", MerchantName: "Biedronka",
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/v1/transactions/import", importRequest{Items: []importItem{
		{MerchantText: "BIEDRONKA 4411 WARSZAWA", Amount: 83, Date: "2025-11-04", CreatedBy: core.Marlena},
		{MerchantText: "whatever", Amount: 40, Date: "2025-11-05", CreatedBy: core.Marlena, CategoryID: "4"},
	}})
	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeBody[importResponse](t, rec)
	require.Len(t, resp.Transactions, 2)
	require.Equal(t, 1, resp.Matched)
	require.Equal(t, "2", resp.Transactions[0].CategoryID)
	require.Equal(t, "BIEDRONKA 4411 WARSZAWA", resp.Transactions[0].Note)

	rec = doJSON(t, h, http.MethodPost, "/v1/transactions/import", importRequest{Items: []importItem{
		{MerchantText: "nieznany sklep", Amount: 10, Date: "2025-11-06", CreatedBy: core.Artur},
	}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestMerchantMatchEndpoint(t *testing.T) {
	s := newTestServer(t, Options{})
	h := s.Handler()

	doJSON(t, h, http.MethodPut, "/v1/merchants", core.MerchantMapping{Pattern: "orlen", CategoryID: "4", MerchantName: "Orlen"})

	rec := doJSON(t, h, http.MethodGet, "/v1/merchants/match?text=ORLEN+STACJA+123", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	match := decodeBody[matchResponse](t, rec)
	require.True(t, match.Matched)
	require.Equal(t, "4", match.CategoryID)

	rec = doJSON(t, h, http.MethodGet, "/v1/merchants/match?text=lidl", nil)
	match = decodeBody[matchResponse](t, rec)
	require.False(t, match.Matched)
}

func TestDashboardAndStatistics(t *testing.T) {
	s := newTestServer(t, Options{})
	h := s.Handler()

	doJSON(t, h, http.MethodPost, "/v1/transactions", createTransactionRequest{
		Amount: 120, CategoryID: "2", Date: "2025-11-03", CreatedBy: core.Artur,
	})
	doJSON(t, h, http.MethodPost, "/v1/transactions", createTransactionRequest{
		Amount: -50, CategoryID: "2", Date: "2025-11-07", Note: "zwrot", CreatedBy: core.Artur,
	})

	rec := doJSON(t, h, http.MethodGet, "/v1/dashboard?month=2025-11", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	dash := decodeBody[dashboardResponse](t, rec)
	require.Equal(t, int64(70), dash.TotalSpent)
	require.True(t, dash.Categories[len(dash.Categories)-1].IsSavings)

	rec = doJSON(t, h, http.MethodGet, "/v1/statistics?month=2025-11", nil)
	stats := decodeBody[statisticsResponse](t, rec)
	require.Equal(t, int64(70), stats.TotalSpent)
	require.Equal(t, int64(core.DefaultMonthlyIncome-70), stats.SavingsAmount)

	rec = doJSON(t, h, http.MethodGet, "/v1/dashboard?month=listopad", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAllowListMiddleware(t *testing.T) {
	s := newTestServer(t, Options{AllowedEmails: []string{"artur@example.com"}})
	h := s.Handler()

	req := httptest.NewRequest(http.MethodGet, "/v1/categories", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/categories", nil)
	req.Header.Set("X-User-Email", "Artur@Example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// Health endpoints stay open.
	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyReportsSyncState(t *testing.T) {
	online := false
	s := newTestServer(t, Options{Ready: func() bool { return online }})
	h := s.Handler()

	resp := decodeBody[readyResponse](t, doJSON(t, h, http.MethodGet, "/readyz", nil))
	require.False(t, resp.SyncOnline)

	online = true
	resp = decodeBody[readyResponse](t, doJSON(t, h, http.MethodGet, "/readyz", nil))
	require.True(t, resp.SyncOnline)
}

func ptr[T any](v T) *T { return &v }
