package v1_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"essenza/internal/core/tx"
	"essenza/internal/domain/auth"
	"essenza/internal/domain/batch"
	"essenza/internal/domain/document"
	"essenza/internal/domain/ledger"
	"essenza/internal/domain/lifecycle"
	"essenza/internal/domain/quality"
	v1 "essenza/internal/infrastructure/http/v1"
	"essenza/internal/infrastructure/http/v1/handlers"
	"essenza/internal/infrastructure/storage/memory"
	"essenza/pkg/logger"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	ledgerStore := memory.NewLedgerStore()
	docStore := memory.NewDocumentStore()
	checkStore := memory.NewCheckStore()
	numbers := memory.NewNumerator()

	ledgerService := ledger.NewService(ledgerStore)
	documentService := document.NewService(docStore, numbers)
	engine := lifecycle.NewEngine(docStore, ledgerService, tx.Noop{}, numbers, nil)
	orchestrator := batch.NewOrchestrator(ledgerService, docStore, numbers)
	qualityService := quality.NewService(checkStore, numbers, quality.NewPolicy(), ledgerService.Reader())

	jwtService := auth.NewJWTService(auth.DefaultJWTConfig("test-secret"))

	return v1.NewRouter(v1.RouterConfig{
		Logger: logger.Default(),
		JWT:    jwtService,
		AuthUsers: []handlers.Credential{
			{UserID: "u-admin", Email: "admin@test", Password: "secret", Roles: []string{"admin"}},
			{UserID: "u-clerk", Email: "clerk@test", Password: "secret"},
		},
		Documents: documentService,
		Engine:    engine,
		Quality:   qualityService,
		Batch:     orchestrator,
		Ledger:    ledgerService,
	})
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

func login(t *testing.T, router http.Handler, email string) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": "secret",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	token, _ := decode(t, rec)["accessToken"].(string)
	require.NotEmpty(t, token)
	return token
}

func seedUnit(t *testing.T, router http.Handler, token string, body map[string]any) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPut, "/api/v1/stock/units", token, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	unitID, _ := decode(t, rec)["id"].(string)
	require.NotEmpty(t, unitID)
	return unitID
}

func TestAPI_RequiresAuthentication(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/documents", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decode(t, rec)["code"])
}

func TestAPI_StockPutRequiresAdminRole(t *testing.T) {
	router := newTestRouter(t)
	clerk := login(t, router, "clerk@test")

	rec := doJSON(t, router, http.MethodPut, "/api/v1/stock/units", clerk, map[string]any{
		"sku": "GL-50", "name": "Bottle", "kind": "inventory", "available": 1,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAPI_PurchaseLifecycle(t *testing.T) {
	router := newTestRouter(t)
	token := login(t, router, "admin@test")

	unitID := seedUnit(t, router, token, map[string]any{
		"sku": "GL-100-CLR", "name": "Glass bottle 100ml", "kind": "inventory", "available": 5,
	})

	rec := doJSON(t, router, http.MethodPost, "/api/v1/documents", token, map[string]any{
		"kind":         "PURCHASE",
		"supplierName": "Vetro Supplies",
		"lines": []map[string]any{
			{"unitId": unitID, "quantity": 10, "unitPrice": "2.50"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	doc := decode(t, rec)
	docID, _ := doc["id"].(string)
	assert.Equal(t, "DRAFT", doc["status"])
	assert.Equal(t, "25", doc["total"])
	assert.Contains(t, doc["number"], "PI-")

	for _, target := range []string{"SUBMITTED", "APPROVED", "COMPLETED"} {
		rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/documents/%s/transition", docID), token, map[string]string{"target": target})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, target, decode(t, rec)["status"])
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/stock/units/"+unitID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(15), decode(t, rec)["available"])

	// completed documents reject further moves
	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/documents/%s/transition", docID), token, map[string]string{"target": "APPROVED"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "ILLEGAL_TRANSITION", decode(t, rec)["code"])

	rec = doJSON(t, router, http.MethodGet, "/api/v1/stock/movements/"+docID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["count"])
}

func TestAPI_MovementHistoryFilters(t *testing.T) {
	router := newTestRouter(t)
	token := login(t, router, "admin@test")

	unitID := seedUnit(t, router, token, map[string]any{
		"sku": "GL-50-CLR", "name": "Glass bottle 50ml", "kind": "inventory", "available": 0,
	})

	rec := doJSON(t, router, http.MethodPost, "/api/v1/documents", token, map[string]any{
		"kind":         "PURCHASE",
		"supplierName": "Vetro Supplies",
		"lines": []map[string]any{
			{"unitId": unitID, "quantity": 20, "unitPrice": "1.10"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	docID, _ := decode(t, rec)["id"].(string)

	for _, target := range []string{"SUBMITTED", "APPROVED", "COMPLETED"} {
		rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/documents/%s/transition", docID), token, map[string]string{"target": target})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/stock/movements?unitId="+unitID+"&recordType=receipt", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(1), decode(t, rec)["count"])

	rec = doJSON(t, router, http.MethodGet, "/api/v1/stock/movements?recordType=expense", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decode(t, rec)["count"])

	rec = doJSON(t, router, http.MethodGet, "/api/v1/stock/movements?unitId=not-a-uuid", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_SubmitInsufficientStockFailsValidation(t *testing.T) {
	router := newTestRouter(t)
	token := login(t, router, "admin@test")

	unitID := seedUnit(t, router, token, map[string]any{
		"sku": "GL-50", "name": "Glass bottle 50ml", "kind": "inventory", "available": 3,
	})

	rec := doJSON(t, router, http.MethodPost, "/api/v1/documents", token, map[string]any{
		"kind":      "GLASS_ONLY",
		"recipient": "Atelier Nord",
		"lines": []map[string]any{
			{"unitId": unitID, "quantity": 5, "unitPrice": "1.00"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	docID, _ := decode(t, rec)["id"].(string)

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/documents/%s/transition", docID), token, map[string]string{"target": "SUBMITTED"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "INSUFFICIENT_STOCK", decode(t, rec)["code"])

	rec = doJSON(t, router, http.MethodGet, "/api/v1/documents/"+docID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "DRAFT", decode(t, rec)["status"])
}

func TestAPI_BatchDeductionPartialSuccess(t *testing.T) {
	router := newTestRouter(t)
	token := login(t, router, "admin@test")

	okUnit := seedUnit(t, router, token, map[string]any{
		"sku": "CRT-STD", "name": "Carton", "kind": "inventory", "available": 8,
	})
	shortUnit := seedUnit(t, router, token, map[string]any{
		"sku": "ESS-1L", "name": "Essence drum", "kind": "inventory", "available": 1,
	})

	rec := doJSON(t, router, http.MethodPost, "/api/v1/batches", token, map[string]any{
		"kind":       "DEDUCTION",
		"reasonCode": "DAMAGED",
		"lines": []map[string]any{
			{"unitId": okUnit, "quantity": 3},
			{"unitId": shortUnit, "quantity": 5},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode(t, rec)
	assert.Equal(t, false, result["overallSuccess"])

	lines, ok := result["lines"].([]any)
	require.True(t, ok)
	require.Len(t, lines, 2)

	first := lines[0].(map[string]any)
	assert.Equal(t, true, first["success"])
	assert.Equal(t, float64(5), first["newQuantity"])

	second := lines[1].(map[string]any)
	assert.Equal(t, false, second["success"])
}

func TestAPI_QualityCheckOutcomes(t *testing.T) {
	router := newTestRouter(t)
	token := login(t, router, "admin@test")

	unitID := seedUnit(t, router, token, map[string]any{
		"sku": "GL-100-AMB", "name": "Glass bottle amber", "kind": "inventory", "available": 500,
	})

	rec := doJSON(t, router, http.MethodPost, "/api/v1/quality-checks", token, map[string]any{
		"unitId":            unitID,
		"checkedQuantity":   100,
		"defectiveQuantity": 8,
		"defectTags":        []string{"scratch"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	check := decode(t, rec)
	checkID, _ := check["id"].(string)
	assert.Equal(t, "REQUIRES_REWORK", check["status"])

	// rework without notes is rejected by binding
	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/quality-checks/%s/rework", checkID), token, map[string]any{
		"checkedQuantity":   100,
		"defectiveQuantity": 0,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/quality-checks/%s/rework", checkID), token, map[string]any{
		"checkedQuantity":   100,
		"defectiveQuantity": 0,
		"notes":             "re-polished and re-inspected",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "PASSED", decode(t, rec)["status"])

	rec = doJSON(t, router, http.MethodGet, "/api/v1/quality-checks", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["count"])
}
