package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ridwanfathin/market-receipts-service/internal/corpus"
	"github.com/ridwanfathin/market-receipts-service/internal/domain"
)

func TestPurchasesXLSX(t *testing.T) {
	weight, perKg := 1.5, 8.9
	substitute := "Feijão Preto"

	state, err := corpus.NewReducer().AddReceipt(corpus.Empty(),
		domain.Purchase{ID: "p1", Date: "2024-03-01", Total: 23.35, Products: []domain.LineItem{
			{ID: "i1", PurchaseID: "p1", Name: "Banana", Quantity: 1, TotalPrice: 13.35, Weight: &weight, PricePerKg: &perKg},
			{ID: "i2", PurchaseID: "p1", Name: "Feijão Carioca", Quantity: 1, TotalPrice: 10, Substituted: &substitute, OutOfStock: true},
		}},
		domain.Purchase{ID: "p2", Date: "2024-03-08", Total: 8.9, Products: []domain.LineItem{
			{ID: "i3", PurchaseID: "p2", Name: "Banana", Quantity: 1, TotalPrice: 8.9},
		}},
	)
	require.NoError(t, err)

	data, err := PurchasesXLSX(state)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{PurchasesSheet, MetricsSheet}, f.GetSheetList())

	rows, err := f.GetRows(PurchasesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, purchaseHeaders, rows[0])
	assert.Equal(t, []string{"2024-03-01", "Banana", "Banana", "1", "13.35", "1335", "", "1.5", "8.9"}, rows[1][:9])
	assert.Equal(t, "Feijão Preto", rows[2][9])
	assert.Equal(t, "sim", rows[2][10])

	metrics, err := f.GetRows(MetricsSheet)
	require.NoError(t, err)
	require.Len(t, metrics, 3)
	assert.Equal(t, metricHeaders, metrics[0])
	assert.Equal(t, "Banana", metrics[1][0])
	assert.Equal(t, "2", metrics[1][1])
	assert.Equal(t, "7", metrics[1][5])
	assert.Equal(t, "2024-03-08", metrics[1][6])
}

func TestPurchasesXLSX_EmptyCorpus(t *testing.T) {
	data, err := PurchasesXLSX(corpus.Empty())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(PurchasesSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
