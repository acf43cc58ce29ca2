// Package resolver implements get-or-create resolution of stores,
// providers and products against their natural keys. A Resolver is
// built once per file run and carries the catalog caches explicitly;
// there is no package-level state.
package resolver

import (
	"context"
	"fmt"
	"time"

	"stockflow-importer/internal/models"
	"stockflow-importer/internal/urlnorm"
	"stockflow-importer/internal/util"

	"go.uber.org/zap"
)

// Catalog is the slice of the transaction the resolver needs.
// *store.Tx satisfies it.
type Catalog interface {
	LoadPaymentTypes(ctx context.Context) (map[string]int64, error)
	LoadStores(ctx context.Context) (map[string]int64, error)
	UpsertStore(ctx context.Context, name, domainURL string) (int64, error)
	FindProvider(ctx context.Context, storeID int64, providerURL string) (int64, bool, error)
	InsertProvider(ctx context.Context, storeID int64, providerURL string, isActive bool) (int64, error)
	FindProductByName(ctx context.Context, name string) (int64, bool, error)
	HasMatchingOperation(ctx context.Context, productID, quantity int64, unitPrice float64, purchaseDate time.Time) (bool, error)
	InsertProduct(ctx context.Context, p *models.Product) (int64, error)
}

// Prober reports whether a provider URL is currently reachable.
type Prober interface {
	Reachable(ctx context.Context, rawURL string) bool
}

// Resolver resolves catalog entities within one file's transaction.
type Resolver struct {
	catalog      Catalog
	prober       Prober
	paymentTypes map[string]int64
	stores       map[string]int64
	logger       *zap.Logger
}

// New builds a resolver and loads the payment-type and store caches
// from storage. The caches live for one file run.
func New(ctx context.Context, catalog Catalog, prober Prober) (*Resolver, error) {
	paymentTypes, err := catalog.LoadPaymentTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment types: %w", err)
	}
	stores, err := catalog.LoadStores(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stores: %w", err)
	}
	return &Resolver{
		catalog:      catalog,
		prober:       prober,
		paymentTypes: paymentTypes,
		stores:       stores,
		logger:       util.GetLogger(),
	}, nil
}

// PaymentTypeID looks a payment type up in the per-run cache.
func (r *Resolver) PaymentTypeID(name string) (int64, bool) {
	id, ok := r.paymentTypes[name]
	return id, ok
}

// ResolveStore derives the store name from a URL and upserts the store.
// ok is false when the URL yields no usable store name; the caller
// skips the row.
func (r *Resolver) ResolveStore(ctx context.Context, rawURL string) (int64, bool, error) {
	if rawURL == "" {
		return 0, false, nil
	}
	name := urlnorm.StoreName(rawURL)
	if name == "" || name == "none" {
		return 0, false, nil
	}
	if id, ok := r.stores[name]; ok {
		return id, true, nil
	}
	id, err := r.catalog.UpsertStore(ctx, name, urlnorm.DomainStore(rawURL))
	if err != nil {
		return 0, false, fmt.Errorf("failed to upsert store %q: %w", name, err)
	}
	r.stores[name] = id
	util.StoresCreatedTotal.Inc()
	r.logger.Info("store created", zap.String("store", name), zap.Int64("id_store", id))
	return id, true, nil
}

// ResolveProvider finds or creates the provider for (store, canonical
// URL). Reachability is probed once at creation; a provider later going
// offline keeps its original is_active value. A zero id with nil error
// means no canonical URL could be derived and the row is skipped.
func (r *Resolver) ResolveProvider(ctx context.Context, storeID int64, rawURL string) (int64, error) {
	canonical := urlnorm.CanonicalProviderURL(rawURL)
	if canonical == "" {
		return 0, nil
	}
	id, found, err := r.catalog.FindProvider(ctx, storeID, canonical)
	if err != nil {
		return 0, fmt.Errorf("failed to look up provider: %w", err)
	}
	if found {
		return id, nil
	}
	isActive := r.prober.Reachable(ctx, canonical)
	id, err = r.catalog.InsertProvider(ctx, storeID, canonical, isActive)
	if err != nil {
		return 0, fmt.Errorf("failed to insert provider: %w", err)
	}
	util.ProvidersCreatedTotal.Inc()
	r.logger.Info("provider created",
		zap.Int64("id_store", storeID),
		zap.String("provider_url", canonical),
		zap.Bool("is_active", isActive))
	return id, nil
}

// ProductOutcome tags the result of a product resolution.
type ProductOutcome int

const (
	// ProductCreated means a new product row was inserted.
	ProductCreated ProductOutcome = iota
	// ProductReused means the product existed; the row still needs its
	// purchase and operation written.
	ProductReused
	// ProductAlreadyImported means an operation with identical
	// quantity, unit price and purchase date already exists: the row
	// was imported before and must be skipped.
	ProductAlreadyImported
)

// ProductResult is the tagged outcome of ResolveProduct.
type ProductResult struct {
	ID      int64
	Outcome ProductOutcome
}

// MatchContext carries the three values that identify a previously
// imported spreadsheet row.
type MatchContext struct {
	Quantity     int64
	UnitPrice    float64
	PurchaseDate time.Time
}

// ProductSpec describes a product to find or create.
type ProductSpec struct {
	Name        string
	Description string
	ImageURL    string
	Brand       string
	Category    string
}

// ResolveProduct finds a product by exact name, creating it on miss.
// When the product exists and a match context is supplied, an exact
// historical operation match marks the row as already imported.
func (r *Resolver) ResolveProduct(ctx context.Context, spec ProductSpec, match *MatchContext) (ProductResult, error) {
	id, found, err := r.catalog.FindProductByName(ctx, spec.Name)
	if err != nil {
		return ProductResult{}, fmt.Errorf("failed to look up product: %w", err)
	}
	if found {
		if match != nil {
			dup, err := r.catalog.HasMatchingOperation(ctx, id, match.Quantity, match.UnitPrice, match.PurchaseDate)
			if err != nil {
				return ProductResult{}, fmt.Errorf("failed to check operation match: %w", err)
			}
			if dup {
				r.logger.Info("product already imported",
					zap.String("product", spec.Name),
					zap.Int64("id_product", id))
				return ProductResult{ID: id, Outcome: ProductAlreadyImported}, nil
			}
		}
		return ProductResult{ID: id, Outcome: ProductReused}, nil
	}

	p := &models.Product{Name: spec.Name}
	if spec.Description != "" {
		p.Description = &spec.Description
	}
	if spec.ImageURL != "" {
		p.ImageURL = &spec.ImageURL
	}
	if spec.Brand != "" && spec.Category != "" {
		p.Brand = &spec.Brand
		p.Category = &spec.Category
	}
	id, err = r.catalog.InsertProduct(ctx, p)
	if err != nil {
		return ProductResult{}, fmt.Errorf("failed to insert product %q: %w", spec.Name, err)
	}
	util.ProductsCreatedTotal.Inc()
	r.logger.Info("product created", zap.String("product", spec.Name), zap.Int64("id_product", id))
	return ProductResult{ID: id, Outcome: ProductCreated}, nil
}
