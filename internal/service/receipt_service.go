package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ridwanfathin/market-receipts-service/internal/corpus"
	"github.com/ridwanfathin/market-receipts-service/internal/domain"
	"github.com/ridwanfathin/market-receipts-service/internal/extract"
	"github.com/ridwanfathin/market-receipts-service/internal/scanner"
	"github.com/ridwanfathin/market-receipts-service/internal/storage"
)

// ReceiptService turns uploaded receipt PDFs into purchases
type ReceiptService interface {
	// ParseReceipt extracts the text of a PDF and scans it into a purchase
	ParseReceipt(ctx context.Context, pdf []byte) (*domain.Purchase, error)

	// ProcessReceipt parses a PDF and derives the full bundle for it alone,
	// without touching the stored corpus
	ProcessReceipt(ctx context.Context, pdf []byte) (*domain.Bundle, error)
}

// ReceiptServiceImpl implements the ReceiptService interface
type ReceiptServiceImpl struct {
	extractor  extract.TextExtractor
	scanner    *scanner.Scanner
	archiver   storage.Archiver
	log        *zap.Logger
	workerPool chan struct{}
}

// NewReceiptService creates a new ReceiptService. A nil archiver disables archiving.
func NewReceiptService(extractor extract.TextExtractor, archiver storage.Archiver, log *zap.Logger, maxWorkers int) *ReceiptServiceImpl {
	if archiver == nil {
		archiver = storage.NopArchiver{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &ReceiptServiceImpl{
		extractor:  extractor,
		scanner:    scanner.New(),
		archiver:   archiver,
		log:        log,
		workerPool: make(chan struct{}, maxWorkers),
	}
}

// ParseReceipt extracts and scans a PDF. Extraction is bounded by the worker pool.
func (s *ReceiptServiceImpl) ParseReceipt(ctx context.Context, pdf []byte) (*domain.Purchase, error) {
	// Acquire worker from pool
	select {
	case s.workerPool <- struct{}{}:
		defer func() {
			// Release worker back to pool
			<-s.workerPool
		}()
	case <-ctx.Done():
		return nil, &ServiceError{
			Op:  "acquire_worker",
			Err: ctx.Err(),
		}
	}

	text, err := s.extractor.ExtractText(ctx, pdf)
	if err != nil {
		return nil, &ServiceError{
			Op:  "extract_text",
			Err: err,
		}
	}

	purchase, err := s.scanner.Parse(text)
	if err != nil {
		return nil, &ServiceError{
			Op:  "parse_receipt",
			Err: err,
		}
	}

	s.log.Info("receipt parsed",
		zap.String("purchase_id", purchase.ID),
		zap.String("date", purchase.Date),
		zap.Float64("total", purchase.Total),
		zap.Int("items", len(purchase.Products)),
	)

	s.archive(ctx, purchase, pdf)
	return purchase, nil
}

// ProcessReceipt parses a PDF and normalizes it against an empty corpus
func (s *ReceiptServiceImpl) ProcessReceipt(ctx context.Context, pdf []byte) (*domain.Bundle, error) {
	purchase, err := s.ParseReceipt(ctx, pdf)
	if err != nil {
		return nil, err
	}

	state, err := corpus.NewReducer().AddReceipt(corpus.Empty(), *purchase)
	if err != nil {
		return nil, &ServiceError{
			Op:  "normalize_receipt",
			Err: err,
		}
	}

	bundle := state.Bundle()
	return &bundle, nil
}

// archive keeps a copy of the PDF. Failures are logged and never fail the upload.
func (s *ReceiptServiceImpl) archive(ctx context.Context, purchase *domain.Purchase, pdf []byte) {
	key := fmt.Sprintf("receipts/%s/%s.pdf", purchase.Date, purchase.ID)
	location, err := s.archiver.Archive(ctx, key, pdf)
	if err != nil {
		s.log.Warn("failed to archive receipt",
			zap.String("purchase_id", purchase.ID),
			zap.String("key", key),
			zap.Error(err),
		)
		return
	}
	if location != "" {
		s.log.Debug("receipt archived", zap.String("purchase_id", purchase.ID), zap.String("location", location))
	}
}
