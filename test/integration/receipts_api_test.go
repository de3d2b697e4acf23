package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestErrorResponse represents an error returned by the API
type TestErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// TestPurchase represents a parsed receipt
type TestPurchase struct {
	ID       string  `json:"id"`
	Date     string  `json:"date"`
	Total    float64 `json:"total"`
	Products []struct {
		Name       string  `json:"name"`
		Quantity   int     `json:"quantity"`
		TotalPrice float64 `json:"totalPrice"`
	} `json:"products"`
}

// TestProduct represents a canonical product
type TestProduct struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
}

// TestState represents the stored purchase history
type TestState struct {
	Purchases           []TestPurchase            `json:"purchases"`
	Products            []TestProduct             `json:"products"`
	ProductMetrics      map[string]map[string]any `json:"productMetrics"`
	ProductAssociations map[string]string         `json:"productAssociations"`
}

// TestShoppingList represents a shopping list
type TestShoppingList struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Items []struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
		Checked   bool   `json:"checked"`
	} `json:"items"`
}

type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(t *testing.T) *apiClient {
	t.Helper()

	// Configure base URL - use environment variable or default
	baseURL := os.Getenv("API_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080/v1"
	}

	client := &apiClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}

	resp, err := client.http.Get(baseURL + "/state")
	if err != nil {
		t.Skipf("API not reachable at %s: %v", baseURL, err)
	}
	resp.Body.Close()
	return client
}

func (c *apiClient) upload(t *testing.T, path, filename string, content []byte) *http.Response {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err, "Failed to create form file")
	_, err = part.Write(content)
	require.NoError(t, err, "Failed to write form file")
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, &body)
	require.NoError(t, err, "Failed to create request")
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	require.NoError(t, err, "Failed to execute request")
	return resp
}

func (c *apiClient) do(t *testing.T, method, path string, payload any) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err, "Failed to marshal request body")
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, body)
	require.NoError(t, err, "Failed to create request")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	require.NoError(t, err, "Failed to execute request")
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v), "Response body: %s", string(data))
}

// receiptFixture returns the receipt PDF named by RECEIPT_PDF, or skips
func receiptFixture(t *testing.T) ([]byte, string) {
	t.Helper()
	path := os.Getenv("RECEIPT_PDF")
	if path == "" {
		t.Skip("RECEIPT_PDF not set")
	}
	data, err := os.ReadFile(path)
	require.NoError(t, err, "Failed to read receipt fixture")
	return data, filepath.Base(path)
}

// TestReceiptUploads tests the receipt upload endpoints
func TestReceiptUploads(t *testing.T) {
	client := newAPIClient(t)

	t.Run("RejectsNonPDF", func(t *testing.T) {
		resp := client.upload(t, "/receipts/process", "notes.txt", []byte("not a receipt"))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var errResp TestErrorResponse
		decodeBody(t, resp, &errResp)
		assert.Equal(t, "Bad Request", errResp.Status)
		assert.NotEmpty(t, errResp.Message)
	})

	t.Run("RejectsMissingFile", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, client.baseURL+"/receipts/process", nil)
		require.NoError(t, err)
		resp, err := client.http.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("ProcessReceipt", func(t *testing.T) {
		pdf, name := receiptFixture(t)

		resp := client.upload(t, "/receipts/process", name, pdf)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var bundle TestState
		decodeBody(t, resp, &bundle)
		require.Len(t, bundle.Purchases, 1)
		assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, bundle.Purchases[0].Date)
		assert.NotEmpty(t, bundle.Products)
		assert.Len(t, bundle.ProductMetrics, len(bundle.Products))
	})
}

// TestPurchaseHistoryAPI imports a receipt and walks the history, product and
// shopping list endpoints
func TestPurchaseHistoryAPI(t *testing.T) {
	client := newAPIClient(t)
	pdf, name := receiptFixture(t)

	var purchaseID, productID, listID string

	t.Run("ImportReceipt", func(t *testing.T) {
		resp := client.upload(t, "/receipts/import", name, pdf)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var state TestState
		decodeBody(t, resp, &state)
		require.NotEmpty(t, state.Purchases)
		purchaseID = state.Purchases[len(state.Purchases)-1].ID
	})

	t.Run("CreateProduct", func(t *testing.T) {
		resp := client.do(t, http.MethodPost, "/products", map[string]string{
			"name": fmt.Sprintf("Produto de teste %d", time.Now().UnixNano()),
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var product TestProduct
		decodeBody(t, resp, &product)
		require.NotEmpty(t, product.ProductID)
		productID = product.ProductID
	})

	t.Run("GetMetricsAndForecast", func(t *testing.T) {
		resp := client.do(t, http.MethodGet, "/metrics", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var metrics []map[string]any
		decodeBody(t, resp, &metrics)
		assert.NotEmpty(t, metrics)

		resp = client.do(t, http.MethodGet, "/forecast", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var forecast map[string]any
		decodeBody(t, resp, &forecast)
		assert.Contains(t, forecast, "suggestions")
	})

	t.Run("ShoppingList", func(t *testing.T) {
		resp := client.do(t, http.MethodPost, "/shopping-lists", map[string]string{"name": "Integração"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var list TestShoppingList
		decodeBody(t, resp, &list)
		listID = list.ID

		resp = client.do(t, http.MethodPost, "/shopping-lists/"+listID+"/items", map[string]string{"productId": productID})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		decodeBody(t, resp, &list)
		require.Len(t, list.Items, 1)
		assert.Equal(t, 1, list.Items[0].Quantity)

		resp = client.do(t, http.MethodDelete, "/shopping-lists/"+listID, nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("ExportPurchases", func(t *testing.T) {
		resp := client.do(t, http.MethodGet, "/export/purchases.xlsx", nil)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")
	})

	t.Run("DeletePurchase", func(t *testing.T) {
		resp := client.do(t, http.MethodDelete, "/purchases/"+purchaseID, nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp = client.do(t, http.MethodDelete, "/purchases/"+purchaseID, nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
