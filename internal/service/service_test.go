package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridwanfathin/market-receipts-service/internal/corpus"
	"github.com/ridwanfathin/market-receipts-service/internal/domain"
	"github.com/ridwanfathin/market-receipts-service/internal/extract"
	"github.com/ridwanfathin/market-receipts-service/internal/repository"
	"github.com/ridwanfathin/market-receipts-service/internal/scanner"
)

type stubExtractor struct {
	text string
	err  error
}

func (s stubExtractor) ExtractText(context.Context, []byte) (string, error) {
	return s.text, s.err
}

type recordingArchiver struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (a *recordingArchiver) Archive(_ context.Context, key string, _ []byte) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.keys = append(a.keys, key)
	if a.err != nil {
		return "", a.err
	}
	return "s3://receipts/" + key, nil
}

type fixedRateConverter struct {
	rate float64
	err  error
}

func (c fixedRateConverter) Convert(_ context.Context, amount float64, _, _ string) (float64, error) {
	return amount * c.rate, c.err
}

type failingRepository struct {
	repository.DocumentRepository
}

func (failingRepository) Save(context.Context, string, any) error {
	return &repository.RepositoryError{Op: "save_document", Err: errors.New("disk full")}
}

const receiptText = `Pedido entregue em 15 de março de 2024
2
Arroz Tipo 1 R$ 10,00

R$ 5,00/pc
1
Banana R$ 4,45

Final 0,500 kg R$ 8,90/kg
TotalR$ 14,45`

func newFileRepo(t *testing.T) *repository.FileRepository {
	t.Helper()
	repo, err := repository.NewFileRepository(t.TempDir())
	require.NoError(t, err)
	return repo
}

func TestReceiptService_ProcessReceipt(t *testing.T) {
	archiver := &recordingArchiver{}
	svc := NewReceiptService(stubExtractor{text: receiptText}, archiver, nil, 2)

	bundle, err := svc.ProcessReceipt(context.Background(), []byte("%PDF-1.4"))
	require.NoError(t, err)

	require.Len(t, bundle.Purchases, 1)
	assert.Equal(t, "2024-03-15", bundle.Purchases[0].Date)
	assert.Len(t, bundle.Products, 2)
	assert.Len(t, bundle.PurchaseProducts, 2)
	assert.Len(t, bundle.ProductMetrics, 2)

	require.Len(t, archiver.keys, 1)
	assert.True(t, strings.HasPrefix(archiver.keys[0], "receipts/2024-03-15/"))
}

func TestReceiptService_ArchiveFailureDoesNotFailUpload(t *testing.T) {
	svc := NewReceiptService(stubExtractor{text: receiptText}, &recordingArchiver{err: errors.New("bucket missing")}, nil, 1)

	purchase, err := svc.ParseReceipt(context.Background(), []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Len(t, purchase.Products, 2)
}

func TestReceiptService_Failures(t *testing.T) {
	tests := []struct {
		name      string
		extractor stubExtractor
		wantErr   error
	}{
		{name: "extraction fails", extractor: stubExtractor{err: &extract.ExtractError{Op: "validate", Err: extract.ErrNotPDF}}, wantErr: extract.ErrNotPDF},
		{name: "empty text", extractor: stubExtractor{text: ""}, wantErr: scanner.ErrEmptyText},
		{name: "no total", extractor: stubExtractor{text: "15 de março de 2024"}, wantErr: scanner.ErrTotalNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			archiver := &recordingArchiver{}
			svc := NewReceiptService(tt.extractor, archiver, nil, 1)

			bundle, err := svc.ProcessReceipt(context.Background(), []byte("%PDF-1.4"))
			assert.Nil(t, bundle)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, IsUnreadableReceipt(err))
			assert.Empty(t, archiver.keys)
		})
	}
}

func TestReceiptService_WorkerPoolHonorsContext(t *testing.T) {
	svc := NewReceiptService(stubExtractor{text: receiptText}, nil, nil, 1)
	svc.workerPool <- struct{}{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.ParseReceipt(ctx, []byte("%PDF-1.4"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsUnreadableReceipt(err))
}

func parsePurchase(t *testing.T, text string) domain.Purchase {
	t.Helper()
	purchase, err := scanner.New().Parse(text)
	require.NoError(t, err)
	return *purchase
}

func TestCorpusService_ImportPersistsAndReloads(t *testing.T) {
	repo := newFileRepo(t)
	ctx := context.Background()

	svc := NewCorpusService(repo, nil, "BRL", nil)
	require.NoError(t, svc.Load(ctx))
	assert.Empty(t, svc.State().Purchases)

	state, err := svc.Import(ctx, parsePurchase(t, receiptText))
	require.NoError(t, err)
	assert.Len(t, state.Purchases, 1)

	reloaded := NewCorpusService(repo, nil, "BRL", nil)
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, svc.State().ProductMetrics, reloaded.State().ProductMetrics)
	assert.Equal(t, svc.State().Purchases, reloaded.State().Purchases)
}

func TestCorpusService_ValidationErrorsKeepState(t *testing.T) {
	svc := NewCorpusService(newFileRepo(t), nil, "BRL", nil)
	ctx := context.Background()

	_, err := svc.Import(ctx, parsePurchase(t, receiptText))
	require.NoError(t, err)
	before := svc.State()

	_, err = svc.RemovePurchase(ctx, "missing")
	assert.ErrorIs(t, err, corpus.ErrPurchaseNotFound)

	var serviceErr *ServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, "remove_purchase", serviceErr.Op)
	assert.Equal(t, before, svc.State())
}

func TestCorpusService_PersistenceFailureKeepsState(t *testing.T) {
	svc := NewCorpusService(failingRepository{}, nil, "BRL", nil)

	_, err := svc.AddProduct(context.Background(), "Café")
	require.Error(t, err)
	assert.Empty(t, svc.State().Products)
}

func TestCorpusService_ProductsAndAssociations(t *testing.T) {
	svc := NewCorpusService(newFileRepo(t), nil, "BRL", nil)
	ctx := context.Background()

	_, err := svc.Import(ctx, parsePurchase(t, receiptText))
	require.NoError(t, err)

	fruit, err := svc.AddProduct(ctx, "Frutas")
	require.NoError(t, err)

	state, err := svc.Associate(ctx, "Banana", fruit.ProductID)
	require.NoError(t, err)
	assert.Contains(t, state.ProductMetrics, fruit.ProductID)

	state, err = svc.RemoveAssociation(ctx, "Banana")
	require.NoError(t, err)
	assert.NotContains(t, state.ProductMetrics, fruit.ProductID)

	unassigned := svc.Unassigned()
	require.Len(t, unassigned, 1)
	assert.Equal(t, "Banana", unassigned[0].Name)

	_, err = svc.RenameProduct(ctx, fruit.ProductID, "Hortifruti")
	require.NoError(t, err)
	product, ok := svc.Product(fruit.ProductID)
	require.True(t, ok)
	assert.Equal(t, "Hortifruti", product.Name)
}

func importHistory(t *testing.T, svc *CorpusService) {
	t.Helper()
	for _, date := range []string{"1 de março de 2024", "8 de março de 2024", "15 de março de 2024"} {
		_, err := svc.Import(context.Background(), parsePurchase(t, date+"\n1\nCafé R$ 20,00\n\nR$ 20,00/pc\nTotalR$ 20,00"))
		require.NoError(t, err)
	}
}

func TestCorpusService_Forecast(t *testing.T) {
	svc := NewCorpusService(newFileRepo(t), fixedRateConverter{rate: 0.5}, "BRL", nil)
	importHistory(t, svc)

	forecast, err := svc.Forecast(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "BRL", forecast.Currency)
	require.Len(t, forecast.Suggestions, 1)
	assert.Equal(t, "Café", forecast.Suggestions[0].Name)
	assert.Equal(t, 20.0, forecast.Suggestions[0].Price)
	assert.Equal(t, "2024-03-22", forecast.Suggestions[0].NextPurchaseDate)
	assert.NotEmpty(t, forecast.Suggestions[0].DisplayPrice)

	converted, err := svc.Forecast(context.Background(), "usd")
	require.NoError(t, err)
	assert.Equal(t, "USD", converted.Currency)
	assert.Equal(t, 10.0, converted.Suggestions[0].Price)
	assert.Equal(t, "$10.00", converted.Suggestions[0].DisplayPrice)
}

func TestCorpusService_ForecastConversionFails(t *testing.T) {
	svc := NewCorpusService(newFileRepo(t), fixedRateConverter{err: errors.New("rates unavailable")}, "BRL", nil)
	importHistory(t, svc)

	_, err := svc.Forecast(context.Background(), "EUR")
	assert.Error(t, err)
}

func TestCorpusService_ConcurrentImports(t *testing.T) {
	svc := NewCorpusService(newFileRepo(t), nil, "BRL", nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Import(context.Background(), parsePurchase(t, receiptText))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	state := svc.State()
	assert.Len(t, state.Purchases, 8)
	assert.Len(t, state.Products, 2)
	assert.Equal(t, 8, state.ProductMetrics[state.ProductAssociations["Banana"]].PurchaseCount)
}

func TestShoppingListService(t *testing.T) {
	repo := newFileRepo(t)
	ctx := context.Background()

	corpusSvc := NewCorpusService(repo, nil, "BRL", nil)
	importHistory(t, corpusSvc)
	coffeeID := corpusSvc.State().ProductAssociations["Café"]

	svc := NewShoppingListService(repo, corpusSvc, nil)
	require.NoError(t, svc.Load(ctx))

	list, err := svc.AddList(ctx, "Semana")
	require.NoError(t, err)

	list, err = svc.AddSuggestions(ctx, list.ID)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, coffeeID, list.Items[0].ProductID)

	list, err = svc.AddItem(ctx, list.ID, coffeeID)
	require.NoError(t, err)
	assert.Equal(t, 2, list.Items[0].Quantity)

	_, err = svc.AddItem(ctx, list.ID, "missing")
	assert.ErrorIs(t, err, corpus.ErrProductNotFound)

	favorites, err := svc.ToggleFavorite(ctx, coffeeID)
	require.NoError(t, err)
	assert.Equal(t, []string{coffeeID}, favorites)

	reloaded := NewShoppingListService(repo, corpusSvc, nil)
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, svc.State(), reloaded.State())
}
