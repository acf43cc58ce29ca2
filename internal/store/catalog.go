package store

import (
	"context"
	"database/sql"
	"time"

	"stockflow-importer/internal/models"
)

// LoadPaymentTypes returns the payment_type reference table as a
// name -> id map.
func (t *Tx) LoadPaymentTypes(ctx context.Context) (map[string]int64, error) {
	var rows []models.PaymentType
	err := t.tx.SelectContext(ctx, &rows,
		"SELECT id_payment_type, payment_type FROM payment_type")
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Name] = r.ID
	}
	return out, nil
}

// LoadStores returns all known stores as a store_name -> id map.
func (t *Tx) LoadStores(ctx context.Context) (map[string]int64, error) {
	var rows []models.Store
	err := t.tx.SelectContext(ctx, &rows,
		"SELECT id_store, store_name, store_url, status FROM store")
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Name] = r.ID
	}
	return out, nil
}

// UpsertStore inserts a store by its natural key. Re-insertion with the
// same name updates the domain URL instead of duplicating.
func (t *Tx) UpsertStore(ctx context.Context, name, domainURL string) (int64, error) {
	var id int64
	err := t.tx.GetContext(ctx, &id, `
		INSERT INTO store (store_name, store_url, status)
		VALUES ($1, $2, TRUE)
		ON CONFLICT (store_name) DO UPDATE
		SET store_url = EXCLUDED.store_url
		RETURNING id_store`,
		name, domainURL)
	return id, err
}

// FindProvider looks a provider up by its per-store natural key.
func (t *Tx) FindProvider(ctx context.Context, storeID int64, providerURL string) (int64, bool, error) {
	var id int64
	err := t.tx.GetContext(ctx, &id,
		"SELECT id_provider FROM provider WHERE id_store = $1 AND provider_url = $2",
		storeID, providerURL)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// InsertProvider creates a provider with the reachability flag captured
// at creation time.
func (t *Tx) InsertProvider(ctx context.Context, storeID int64, providerURL string, isActive bool) (int64, error) {
	var id int64
	err := t.tx.GetContext(ctx, &id, `
		INSERT INTO provider (id_store, provider_url, is_active)
		VALUES ($1, $2, $3)
		RETURNING id_provider`,
		storeID, providerURL, isActive)
	return id, err
}

// FindProductByName looks a product up by exact name.
func (t *Tx) FindProductByName(ctx context.Context, name string) (int64, bool, error) {
	var id int64
	err := t.tx.GetContext(ctx, &id,
		"SELECT id_product FROM product WHERE product_name = $1", name)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// HasMatchingOperation reports whether the product already has an
// operation under some purchase with identical quantity, unit price and
// purchase date. A match means the spreadsheet row was imported before.
func (t *Tx) HasMatchingOperation(ctx context.Context, productID, quantity int64, unitPrice float64, purchaseDate time.Time) (bool, error) {
	var one int
	err := t.tx.GetContext(ctx, &one, `
		SELECT 1
		FROM operation o
		JOIN purchase p ON o.id_purchase = p.id_purchase
		WHERE o.id_product = $1 AND o.quantity = $2 AND o.unit_price = $3 AND p.purchase_date = $4
		LIMIT 1`,
		productID, quantity, unitPrice, purchaseDate)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// InsertProduct creates a product. Brand and category columns are
// populated only when both are present; they are first-write-wins.
func (t *Tx) InsertProduct(ctx context.Context, p *models.Product) (int64, error) {
	var id int64
	var err error
	if p.Brand != nil && *p.Brand != "" && p.Category != nil && *p.Category != "" {
		err = t.tx.GetContext(ctx, &id, `
			INSERT INTO product (product_name, description, image_url, brand, category)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id_product`,
			p.Name, p.Description, p.ImageURL, p.Brand, p.Category)
	} else {
		err = t.tx.GetContext(ctx, &id, `
			INSERT INTO product (product_name, description, image_url)
			VALUES ($1, $2, $3)
			RETURNING id_product`,
			p.Name, p.Description, p.ImageURL)
	}
	return id, err
}
