package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erenulutas0/inventory-service/internal/domain"
	"github.com/erenulutas0/inventory-service/internal/service"
	"github.com/erenulutas0/inventory-service/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func setupServer(t *testing.T) *httptest.Server {
	logger := zaptest.NewLogger(t)
	engine := service.NewInventoryService(store.NewMemoryStore(), nil, nil, logger)
	srv := httptest.NewServer(NewHandler(engine, logger).Router())
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeRecord(t *testing.T, resp *http.Response) domain.InventoryRecord {
	defer resp.Body.Close()
	var record domain.InventoryRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&record))
	return record
}

func createInventory(t *testing.T, srv *httptest.Server, productID string, quantity int) domain.InventoryRecord {
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/inventories/", map[string]any{
		"product_id": productID,
		"quantity":   quantity,
		"location":   domain.LocationWarehouseA,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeRecord(t, resp)
}

func TestCreateInventory(t *testing.T) {
	srv := setupServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/inventories/", map[string]any{
		"product_id":      "product-1",
		"quantity":        100,
		"min_stock_level": 10,
		"location":        domain.LocationWarehouseA,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	record := decodeRecord(t, resp)
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "product-1", record.ProductID)
	assert.Equal(t, domain.StatusInStock, record.Status)
}

func TestCreateInventory_InvalidBody(t *testing.T) {
	srv := setupServer(t)

	resp, err := http.Post(srv.URL+"/api/inventories/", "application/json", bytes.NewBufferString("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateInventory_Duplicate(t *testing.T) {
	srv := setupServer(t)
	createInventory(t, srv, "product-1", 10)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/inventories/", map[string]any{
		"product_id": "product-1",
		"quantity":   5,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestGetInventory_ByIDAndProduct(t *testing.T) {
	srv := setupServer(t)
	created := createInventory(t, srv, "product-1", 100)

	resp, err := http.Get(srv.URL + "/api/inventories/" + created.ID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created.ID, decodeRecord(t, resp).ID)

	resp, err = http.Get(srv.URL + "/api/inventories/product/product-1")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created.ID, decodeRecord(t, resp).ID)
}

func TestGetInventory_NotFound(t *testing.T) {
	srv := setupServer(t)

	resp, err := http.Get(srv.URL + "/api/inventories/missing-id")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetAllInventories(t *testing.T) {
	srv := setupServer(t)
	createInventory(t, srv, "product-1", 10)
	createInventory(t, srv, "product-2", 20)

	resp, err := http.Get(srv.URL + "/api/inventories/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var records []domain.InventoryRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&records))
	assert.Len(t, records, 2)
}

func TestGetAvailableQuantity(t *testing.T) {
	srv := setupServer(t)
	created := createInventory(t, srv, "product-1", 100)

	resp := doJSON(t, http.MethodPatch,
		fmt.Sprintf("%s/api/inventories/%s/reserve?quantity=30", srv.URL, created.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err := http.Get(srv.URL + "/api/inventories/product/product-1/available")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body availableResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "product-1", body.ProductID)
	assert.Equal(t, 70, body.AvailableQuantity)
}

func TestReserve_Conflict(t *testing.T) {
	srv := setupServer(t)
	created := createInventory(t, srv, "product-1", 10)

	resp := doJSON(t, http.MethodPatch,
		fmt.Sprintf("%s/api/inventories/%s/reserve?quantity=11", srv.URL, created.ID), nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var body errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body.Error, "insufficient stock")
}

func TestReserve_MissingQuantityParam(t *testing.T) {
	srv := setupServer(t)
	created := createInventory(t, srv, "product-1", 10)

	resp := doJSON(t, http.MethodPatch,
		fmt.Sprintf("%s/api/inventories/%s/reserve", srv.URL, created.ID), nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReserveAndRelease(t *testing.T) {
	srv := setupServer(t)
	created := createInventory(t, srv, "product-1", 100)

	resp := doJSON(t, http.MethodPatch,
		fmt.Sprintf("%s/api/inventories/%s/reserve?quantity=40", srv.URL, created.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 40, decodeRecord(t, resp).ReservedQuantity)

	resp = doJSON(t, http.MethodPatch,
		fmt.Sprintf("%s/api/inventories/%s/release?quantity=15", srv.URL, created.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 25, decodeRecord(t, resp).ReservedQuantity)
}

func TestSetQuantity(t *testing.T) {
	srv := setupServer(t)
	created := createInventory(t, srv, "product-1", 100)

	resp := doJSON(t, http.MethodPatch,
		fmt.Sprintf("%s/api/inventories/%s/quantity?quantity=55", srv.URL, created.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 55, decodeRecord(t, resp).Quantity)

	resp = doJSON(t, http.MethodPatch,
		fmt.Sprintf("%s/api/inventories/%s/quantity?quantity=-1", srv.URL, created.ID), nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateInventory(t *testing.T) {
	srv := setupServer(t)
	created := createInventory(t, srv, "product-1", 100)

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/inventories/"+created.ID, map[string]any{
		"quantity": 5,
		"location": domain.LocationStoreFront,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	updated := decodeRecord(t, resp)
	assert.Equal(t, 5, updated.Quantity)
	assert.Equal(t, domain.LocationStoreFront, updated.Location)
	assert.Equal(t, "product-1", updated.ProductID)
}

func TestDeleteInventory(t *testing.T) {
	srv := setupServer(t)
	created := createInventory(t, srv, "product-1", 10)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/inventories/"+created.ID, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	getResp, err := http.Get(srv.URL + "/api/inventories/" + created.ID)
	require.NoError(t, err)
	defer getResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, getResp.StatusCode)
}

func TestListByStatusAndLocation(t *testing.T) {
	srv := setupServer(t)
	createInventory(t, srv, "product-1", 10)
	createInventory(t, srv, "product-2", 0)

	resp, err := http.Get(srv.URL + "/api/inventories/status/OUT_OF_STOCK")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var records []domain.InventoryRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&records))
	resp.Body.Close()
	require.Len(t, records, 1)
	assert.Equal(t, "product-2", records[0].ProductID)

	resp, err = http.Get(srv.URL + "/api/inventories/status/BACKORDER")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/inventories/location/WAREHOUSE_A")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	records = nil
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&records))
	resp.Body.Close()
	assert.Len(t, records, 2)

	resp, err = http.Get(srv.URL + "/api/inventories/location/garage")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCheckAvailability(t *testing.T) {
	srv := setupServer(t)
	createInventory(t, srv, "product-1", 10)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/inventories/check-availability", map[string]int{
		"product-1": 5,
		"product-2": 1,
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result map[string]bool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, map[string]bool{"product-1": true, "product-2": false}, result)
}
