package resolver

import (
	"context"
	"fmt"
	"testing"
	"time"

	"stockflow-importer/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCatalog is an in-memory Catalog used to test resolution logic
// without a database.
type fakeCatalog struct {
	nextID          int64
	paymentTypes    map[string]int64
	stores          map[string]int64
	storeUpserts    int
	providers       map[string]int64
	providerInserts int
	products        map[string]int64
	inserted        []*models.Product
	operations      map[string]bool
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		paymentTypes: map[string]int64{"Tarjeta de Crédito": 1},
		stores:       map[string]int64{},
		providers:    map[string]int64{},
		products:     map[string]int64{},
		operations:   map[string]bool{},
	}
}

func (f *fakeCatalog) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeCatalog) LoadPaymentTypes(context.Context) (map[string]int64, error) {
	out := make(map[string]int64, len(f.paymentTypes))
	for k, v := range f.paymentTypes {
		out[k] = v
	}
	return out, nil
}

func (f *fakeCatalog) LoadStores(context.Context) (map[string]int64, error) {
	out := make(map[string]int64, len(f.stores))
	for k, v := range f.stores {
		out[k] = v
	}
	return out, nil
}

func (f *fakeCatalog) UpsertStore(_ context.Context, name, _ string) (int64, error) {
	f.storeUpserts++
	if id, ok := f.stores[name]; ok {
		return id, nil
	}
	id := f.id()
	f.stores[name] = id
	return id, nil
}

func provKey(storeID int64, url string) string {
	return fmt.Sprintf("%d|%s", storeID, url)
}

func (f *fakeCatalog) FindProvider(_ context.Context, storeID int64, url string) (int64, bool, error) {
	id, ok := f.providers[provKey(storeID, url)]
	return id, ok, nil
}

func (f *fakeCatalog) InsertProvider(_ context.Context, storeID int64, url string, _ bool) (int64, error) {
	f.providerInserts++
	id := f.id()
	f.providers[provKey(storeID, url)] = id
	return id, nil
}

func (f *fakeCatalog) FindProductByName(_ context.Context, name string) (int64, bool, error) {
	id, ok := f.products[name]
	return id, ok, nil
}

func opKey(productID, quantity int64, unitPrice float64, date time.Time) string {
	return fmt.Sprintf("%d|%d|%.2f|%s", productID, quantity, unitPrice, date.Format("2006-01-02"))
}

func (f *fakeCatalog) HasMatchingOperation(_ context.Context, productID, quantity int64, unitPrice float64, date time.Time) (bool, error) {
	return f.operations[opKey(productID, quantity, unitPrice, date)], nil
}

func (f *fakeCatalog) InsertProduct(_ context.Context, p *models.Product) (int64, error) {
	id := f.id()
	f.products[p.Name] = id
	f.inserted = append(f.inserted, p)
	return id, nil
}

type stubProber struct {
	calls int
	up    bool
}

func (s *stubProber) Reachable(context.Context, string) bool {
	s.calls++
	return s.up
}

func newResolver(t *testing.T, cat *fakeCatalog, prober *stubProber) *Resolver {
	t.Helper()
	r, err := New(context.Background(), cat, prober)
	require.NoError(t, err)
	return r
}

func TestResolveStoreIdempotent(t *testing.T) {
	cat := newFakeCatalog()
	r := newResolver(t, cat, &stubProber{})
	ctx := context.Background()

	// Both URLs normalize to the mercadolibre store.
	id1, ok, err := r.ResolveStore(ctx, "https://articulo.mercadolibre.com.mx/MLM-1")
	require.NoError(t, err)
	require.True(t, ok)

	id2, ok, err := r.ResolveStore(ctx, "ML")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, id1, id2)
	assert.Equal(t, 1, cat.storeUpserts, "second resolution must hit the cache")
	assert.Len(t, cat.stores, 1)
}

func TestResolveStoreSkips(t *testing.T) {
	r := newResolver(t, newFakeCatalog(), &stubProber{})
	ctx := context.Background()

	for _, url := range []string{"", "no host at all", "https://localhost/x"} {
		_, ok, err := r.ResolveStore(ctx, url)
		require.NoError(t, err)
		assert.False(t, ok, "url %q must signal skip", url)
	}
}

func TestResolveProviderScopedPerStore(t *testing.T) {
	cat := newFakeCatalog()
	prober := &stubProber{up: true}
	r := newResolver(t, cat, prober)
	ctx := context.Background()

	const url = "https://www.ebay.com/itm/123"

	idA, err := r.ResolveProvider(ctx, 10, url)
	require.NoError(t, err)
	idB, err := r.ResolveProvider(ctx, 20, url)
	require.NoError(t, err)
	assert.NotEqual(t, idA, idB, "same URL under two stores gets two providers")

	again, err := r.ResolveProvider(ctx, 10, url)
	require.NoError(t, err)
	assert.Equal(t, idA, again)

	assert.Equal(t, 2, cat.providerInserts)
	assert.Equal(t, 2, prober.calls, "reachability probed at creation only")
}

func TestResolveProductDedup(t *testing.T) {
	cat := newFakeCatalog()
	r := newResolver(t, cat, &stubProber{})
	ctx := context.Background()

	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	spec := ProductSpec{Name: "Mario Kart Figura"}

	created, err := r.ResolveProduct(ctx, spec, &MatchContext{Quantity: 5, UnitPrice: 10.00, PurchaseDate: date})
	require.NoError(t, err)
	assert.Equal(t, ProductCreated, created.Outcome)

	// Record the historical operation and resolve the same triple again.
	cat.operations[opKey(created.ID, 5, 10.00, date)] = true

	dup, err := r.ResolveProduct(ctx, spec, &MatchContext{Quantity: 5, UnitPrice: 10.00, PurchaseDate: date})
	require.NoError(t, err)
	assert.Equal(t, ProductAlreadyImported, dup.Outcome)
	assert.Equal(t, created.ID, dup.ID)

	// Any one value changed means reuse the product, keep processing.
	for _, m := range []MatchContext{
		{Quantity: 6, UnitPrice: 10.00, PurchaseDate: date},
		{Quantity: 5, UnitPrice: 11.00, PurchaseDate: date},
		{Quantity: 5, UnitPrice: 10.00, PurchaseDate: date.AddDate(0, 0, 1)},
	} {
		m := m
		res, err := r.ResolveProduct(ctx, spec, &m)
		require.NoError(t, err)
		assert.Equal(t, ProductReused, res.Outcome)
		assert.Equal(t, created.ID, res.ID)
	}

	assert.Len(t, cat.inserted, 1, "product row created at most once per name")
}

func TestResolveProductWithoutMatchContext(t *testing.T) {
	cat := newFakeCatalog()
	r := newResolver(t, cat, &stubProber{})
	ctx := context.Background()

	created, err := r.ResolveProduct(ctx, ProductSpec{Name: "Sonic Playset"}, nil)
	require.NoError(t, err)
	assert.Equal(t, ProductCreated, created.Outcome)

	reused, err := r.ResolveProduct(ctx, ProductSpec{Name: "Sonic Playset"}, nil)
	require.NoError(t, err)
	assert.Equal(t, ProductReused, reused.Outcome)
	assert.Equal(t, created.ID, reused.ID)
}

func TestResolveProductBrandCategoryBothOrNeither(t *testing.T) {
	cat := newFakeCatalog()
	r := newResolver(t, cat, &stubProber{})
	ctx := context.Background()

	_, err := r.ResolveProduct(ctx, ProductSpec{Name: "A", Brand: "Hot Wheels", Category: "Pista"}, nil)
	require.NoError(t, err)
	_, err = r.ResolveProduct(ctx, ProductSpec{Name: "B", Brand: "Hot Wheels"}, nil)
	require.NoError(t, err)

	require.Len(t, cat.inserted, 2)
	assert.NotNil(t, cat.inserted[0].Brand)
	assert.NotNil(t, cat.inserted[0].Category)
	assert.Nil(t, cat.inserted[1].Brand, "brand without category is not persisted")
	assert.Nil(t, cat.inserted[1].Category)
}

func TestPaymentTypeID(t *testing.T) {
	r := newResolver(t, newFakeCatalog(), &stubProber{})

	id, ok := r.PaymentTypeID("Tarjeta de Crédito")
	assert.True(t, ok)
	assert.Equal(t, int64(1), id)

	_, ok = r.PaymentTypeID("Efectivo")
	assert.False(t, ok)
}
