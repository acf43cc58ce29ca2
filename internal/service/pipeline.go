// Package service drives one file's rows through resolution, coercion
// and the catalog writers inside a single all-or-nothing transaction.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stockflow-importer/internal/broker"
	"stockflow-importer/internal/coerce"
	"stockflow-importer/internal/models"
	"stockflow-importer/internal/resolver"
	"stockflow-importer/internal/store"
	"stockflow-importer/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// Payment type recorded for every imported purchase; the card
	// exports carry no payment column.
	defaultPaymentType = "Tarjeta de Crédito"

	// cancelMarker in the delivery-date field flags a cancelled order.
	cancelMarker = "CANCELED"

	// Fallbacks when the price list has no sale or offer price.
	profitMargin  = 0.30
	offerDiscount = 0.15

	productURLMaxLen = 500
)

// Txn is the file-scoped transaction surface the pipeline drives.
// *store.Tx satisfies it.
type Txn interface {
	resolver.Catalog
	InsertPurchase(ctx context.Context, p *models.Purchase) (int64, error)
	InsertOperation(ctx context.Context, op *models.Operation) error
	UpdatePrice(ctx context.Context, productID int64, price float64, offerPrice *float64) (int64, error)
	InsertPrice(ctx context.Context, productID int64, price float64, offerPrice *float64) error
	Commit() error
	Rollback() error
}

// DB opens file-scoped transactions.
type DB interface {
	Begin(ctx context.Context) (Txn, error)
}

type sqlDB struct {
	s *store.Store
}

func (d sqlDB) Begin(ctx context.Context) (Txn, error) {
	return d.s.Begin(ctx)
}

// NewStoreDB adapts the sqlx store to the pipeline's DB interface.
func NewStoreDB(s *store.Store) DB {
	return sqlDB{s: s}
}

// ImportService ingests spreadsheet rows file by file.
type ImportService struct {
	db        DB
	prober    resolver.Prober
	publisher *broker.EventPublisher
	logger    *zap.Logger
}

// NewImportService creates the import service. publisher may be nil
// when eventing is disabled.
func NewImportService(db DB, prober resolver.Prober, publisher *broker.EventPublisher) *ImportService {
	return &ImportService{
		db:        db,
		prober:    prober,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// Result summarizes one file's ingestion.
type Result struct {
	RowsIngested int
	RowsSkipped  int
}

// IngestFile processes all purchase rows of one file inside a single
// transaction. Any error rolls the whole file back; skip rules drop
// individual rows without failing the file.
func (s *ImportService) IngestFile(ctx context.Context, fileName string, purchases []models.PurchaseRow, prices []models.PriceRow) (Result, error) {
	ctx, span := util.StartSpan(ctx, "ImportService.IngestFile")
	defer span.End()

	res, err := s.ingest(ctx, purchases, prices)
	if err != nil {
		util.FilesFailedTotal.Inc()
		s.logger.Error("file ingestion failed",
			zap.String("file", fileName),
			zap.Int("rows_ingested", res.RowsIngested),
			zap.Error(err))
	} else {
		util.FilesProcessedTotal.Inc()
		s.logger.Info("file ingested",
			zap.String("file", fileName),
			zap.Int("rows_ingested", res.RowsIngested),
			zap.Int("rows_skipped", res.RowsSkipped))
	}

	s.publishResult(ctx, fileName, res, err)
	return res, err
}

func (s *ImportService) ingest(ctx context.Context, purchases []models.PurchaseRow, prices []models.PriceRow) (Result, error) {
	var res Result

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return res, err
	}
	defer tx.Rollback()

	rsv, err := resolver.New(ctx, tx, s.prober)
	if err != nil {
		return res, err
	}

	priceIndex := indexPrices(prices)

	previousLink := ""
	for _, row := range purchases {
		ingested, err := s.ingestRow(ctx, tx, rsv, row, priceIndex, &previousLink)
		if err != nil {
			return res, fmt.Errorf("row %q: %w", row.Description, err)
		}
		if ingested {
			res.RowsIngested++
			util.RowsIngestedTotal.Inc()
		} else {
			res.RowsSkipped++
		}
	}

	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("failed to commit: %w", err)
	}
	return res, nil
}

// ingestRow writes one purchase row. false with nil error means the row
// was skipped; the transaction stays open either way.
func (s *ImportService) ingestRow(ctx context.Context, tx Txn, rsv *resolver.Resolver, row models.PurchaseRow, priceIndex map[string]models.PriceRow, previousLink *string) (bool, error) {
	// A row with no link belongs to the same order as the row above it.
	link := row.SourceURL
	if link == "" {
		link = *previousLink
	}
	*previousLink = row.SourceURL

	storeID, ok, err := rsv.ResolveStore(ctx, link)
	if err != nil {
		return false, err
	}
	if !ok {
		s.skip(row, "store")
		return false, nil
	}

	providerID, err := rsv.ResolveProvider(ctx, storeID, link)
	if err != nil {
		return false, err
	}
	if providerID == 0 {
		s.skip(row, "provider")
		return false, nil
	}

	if row.DeliveryDate != nil && strings.Contains(fmt.Sprint(row.DeliveryDate), cancelMarker) {
		s.skip(row, "cancelled")
		return false, nil
	}

	if row.Description == "" {
		s.skip(row, "missing_name")
		return false, nil
	}

	match, err := matchContext(row)
	if err != nil {
		return false, err
	}
	product, err := rsv.ResolveProduct(ctx, resolver.ProductSpec{
		Name:     row.Description,
		ImageURL: row.ImageURL,
		Brand:    row.Brand,
		Category: row.Category,
	}, match)
	if err != nil {
		return false, err
	}
	if product.Outcome == resolver.ProductAlreadyImported {
		s.skip(row, "already_imported")
		return false, nil
	}

	paymentTypeID, ok := rsv.PaymentTypeID(defaultPaymentType)
	if !ok {
		return false, fmt.Errorf("payment type %q not in catalog", defaultPaymentType)
	}

	purchaseID, err := s.insertPurchase(ctx, tx, row, providerID, paymentTypeID)
	if err != nil {
		return false, err
	}

	if err := s.insertOperation(ctx, tx, row, purchaseID, product.ID); err != nil {
		return false, err
	}

	if priceRow, ok := priceIndex[row.Description]; ok {
		if err := s.upsertPrice(ctx, tx, row, priceRow, product.ID); err != nil {
			return false, err
		}
	}

	return true, nil
}

func (s *ImportService) insertPurchase(ctx context.Context, tx Txn, row models.PurchaseRow, providerID, paymentTypeID int64) (int64, error) {
	total, err := coerce.FloatOr(row.Total, 0)
	if err != nil {
		return 0, err
	}
	purchaseDate, err := coerce.Date(row.PurchaseDate)
	if err != nil {
		return 0, err
	}
	if purchaseDate == nil {
		return 0, fmt.Errorf("purchase date is missing")
	}
	deliveryDate, err := coerce.Date(row.DeliveryDate)
	if err != nil {
		return 0, err
	}
	exchangeRate, err := coerce.Float(row.ExchangeRate)
	if err != nil {
		return 0, err
	}
	shipping, err := coerce.FloatOr(row.ShippingCost, 0)
	if err != nil {
		return 0, err
	}
	discount, err := coerce.FloatOr(row.Discount, 0)
	if err != nil {
		return 0, err
	}

	return tx.InsertPurchase(ctx, &models.Purchase{
		ProviderID:    providerID,
		PaymentTypeID: paymentTypeID,
		Total:         total,
		Tax:           0,
		Ieps:          0,
		PurchaseDate:  *purchaseDate,
		DeliveryDate:  deliveryDate,
		ExchangeRate:  exchangeRate,
		ShippingCost:  shipping,
		Discount:      discount,
	})
}

func (s *ImportService) insertOperation(ctx context.Context, tx Txn, row models.PurchaseRow, purchaseID, productID int64) error {
	quantity, err := coerce.IntOr(row.Quantity, 0)
	if err != nil {
		return err
	}
	unitPrice, err := coerce.FloatOr(row.UnitPrice, 0)
	if err != nil {
		return err
	}
	unitPriceUSD, err := coerce.Float(row.UnitPriceUSD)
	if err != nil {
		return err
	}
	discountPct, err := coerce.FloatOr(row.DiscountPercentage, 0)
	if err != nil {
		return err
	}
	pieces, err := coerce.IntOr(row.PiecesPerUnit, 1)
	if err != nil {
		return err
	}
	finalCost, err := coerce.Float(row.FinalCost)
	if err != nil {
		return err
	}

	return tx.InsertOperation(ctx, &models.Operation{
		PurchaseID:         purchaseID,
		ProductID:          productID,
		Quantity:           quantity,
		UnitPrice:          unitPrice,
		UnitPriceUSD:       unitPriceUSD,
		DiscountPercentage: discountPct,
		PiecesPerUnit:      pieces,
		FinalCost:          finalCost,
		ProductURL:         truncate(row.SourceURL, productURLMaxLen),
	})
}

func (s *ImportService) upsertPrice(ctx context.Context, tx Txn, row models.PurchaseRow, priceRow models.PriceRow, productID int64) error {
	price, err := coerce.Float(priceRow.SalePrice)
	if err != nil {
		return err
	}
	if price == nil {
		finalCost, err := coerce.Float(row.FinalCost)
		if err != nil {
			return err
		}
		if finalCost == nil {
			return fmt.Errorf("no sale price and no final cost for %q", row.Description)
		}
		p := *finalCost * (1 + profitMargin)
		price = &p
	}

	offer, err := coerce.Float(priceRow.OfferPrice)
	if err != nil {
		return err
	}
	if offer == nil {
		o := *price * (1 - offerDiscount)
		offer = &o
	}

	affected, err := tx.UpdatePrice(ctx, productID, *price, offer)
	if err != nil {
		return err
	}
	if affected == 0 {
		if err := tx.InsertPrice(ctx, productID, *price, offer); err != nil {
			return err
		}
	}
	util.PricesUpsertedTotal.Inc()
	return nil
}

func (s *ImportService) skip(row models.PurchaseRow, reason string) {
	util.RowsSkippedTotal.WithLabelValues(reason).Inc()
	s.logger.Debug("row skipped",
		zap.String("reason", reason),
		zap.String("description", row.Description))
}

func (s *ImportService) publishResult(ctx context.Context, fileName string, res Result, ingestErr error) {
	if s.publisher == nil {
		return
	}
	event := &models.FileProcessedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeFileProcessed,
			Timestamp: time.Now(),
		},
		FileName:     fileName,
		RowsIngested: res.RowsIngested,
		RowsSkipped:  res.RowsSkipped,
		Success:      ingestErr == nil,
	}
	if ingestErr != nil {
		event.EventType = models.EventTypeFileFailed
		event.Error = ingestErr.Error()
	}
	if err := s.publisher.PublishFileProcessed(ctx, event); err != nil {
		s.logger.Error("failed to publish file event", zap.Error(err))
	}
}

// matchContext builds the historical-match probe values when quantity,
// unit price and purchase date are all present.
func matchContext(row models.PurchaseRow) (*resolver.MatchContext, error) {
	quantity, err := coerce.Int(row.Quantity)
	if err != nil {
		return nil, err
	}
	unitPrice, err := coerce.Float(row.UnitPrice)
	if err != nil {
		return nil, err
	}
	purchaseDate, err := coerce.Date(row.PurchaseDate)
	if err != nil {
		return nil, err
	}
	if quantity == nil || unitPrice == nil || purchaseDate == nil {
		return nil, nil
	}
	return &resolver.MatchContext{
		Quantity:     *quantity,
		UnitPrice:    *unitPrice,
		PurchaseDate: *purchaseDate,
	}, nil
}

func indexPrices(prices []models.PriceRow) map[string]models.PriceRow {
	out := make(map[string]models.PriceRow, len(prices))
	for _, p := range prices {
		if _, ok := out[p.Description]; !ok {
			out[p.Description] = p
		}
	}
	return out
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
