package store

import (
	"context"

	"stockflow-importer/internal/models"
)

// InsertPurchase inserts one purchase header row and returns its id.
// There is no dedup here; every call creates a fresh row. Null required
// fields surface as constraint violations to the caller.
func (t *Tx) InsertPurchase(ctx context.Context, p *models.Purchase) (int64, error) {
	var id int64
	err := t.tx.GetContext(ctx, &id, `
		INSERT INTO purchase (
			id_provider, id_payment_type, total, tax, ieps,
			purchase_date, delivery_date, exchange_rate, shipping_cost, discount
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id_purchase`,
		p.ProviderID, p.PaymentTypeID, p.Total, p.Tax, p.Ieps,
		p.PurchaseDate, p.DeliveryDate, p.ExchangeRate, p.ShippingCost, p.Discount)
	return id, err
}

// InsertOperation inserts one line item.
func (t *Tx) InsertOperation(ctx context.Context, op *models.Operation) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO operation (
			id_purchase, id_product, quantity, unit_price, unit_price_usd,
			discount_percentage, pieces_per_unit, final_cost, product_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		op.PurchaseID, op.ProductID, op.Quantity, op.UnitPrice, op.UnitPriceUSD,
		op.DiscountPercentage, op.PiecesPerUnit, op.FinalCost, op.ProductURL)
	return err
}

// UpdatePrice attempts the conditional update half of the price upsert.
// The validity window only moves when the price value actually changed;
// that condition cannot be expressed by a native upsert, which is why
// the upsert stays a two-phase contract. Returns rows affected.
func (t *Tx) UpdatePrice(ctx context.Context, productID int64, price float64, offerPrice *float64) (int64, error) {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE price SET
			price = $1,
			offer_price = $2,
			end_date = CASE WHEN price != $1 THEN CURRENT_DATE ELSE end_date END,
			start_date = CASE WHEN price != $1 THEN CURRENT_DATE ELSE start_date END
		WHERE id_product = $3`,
		price, offerPrice, productID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// InsertPrice opens a fresh validity window for a product with no
// current price row.
func (t *Tx) InsertPrice(ctx context.Context, productID int64, price float64, offerPrice *float64) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO price (id_product, price, offer_price, start_date)
		VALUES ($1, $2, $3, CURRENT_DATE)`,
		productID, price, offerPrice)
	return err
}
