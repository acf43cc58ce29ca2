package models

import "time"

// Store represents a retailer, keyed by its normalized store name
type Store struct {
	ID     int64  `db:"id_store" json:"id_store"`
	Name   string `db:"store_name" json:"store_name"`
	URL    string `db:"store_url" json:"store_url"`
	Status bool   `db:"status" json:"status"`
}

// Provider represents a product page within one store. The same physical
// URL may exist under two different stores; uniqueness is per store.
type Provider struct {
	ID       int64  `db:"id_provider" json:"id_provider"`
	StoreID  int64  `db:"id_store" json:"id_store"`
	URL      string `db:"provider_url" json:"provider_url"`
	IsActive bool   `db:"is_active" json:"is_active"`
}

// Product is keyed by its exact name. Brand and category are set on
// first insert only.
type Product struct {
	ID          int64   `db:"id_product" json:"id_product"`
	Name        string  `db:"product_name" json:"product_name"`
	Description *string `db:"description" json:"description,omitempty"`
	ImageURL    *string `db:"image_url" json:"image_url,omitempty"`
	Brand       *string `db:"brand" json:"brand,omitempty"`
	Category    *string `db:"category" json:"category,omitempty"`
}

// Purchase is one purchase event. Always inserted fresh, no natural key.
type Purchase struct {
	ID            int64      `db:"id_purchase" json:"id_purchase"`
	ProviderID    int64      `db:"id_provider" json:"id_provider"`
	PaymentTypeID int64      `db:"id_payment_type" json:"id_payment_type"`
	Total         float64    `db:"total" json:"total"`
	Tax           float64    `db:"tax" json:"tax"`
	Ieps          float64    `db:"ieps" json:"ieps"`
	PurchaseDate  time.Time  `db:"purchase_date" json:"purchase_date"`
	DeliveryDate  *time.Time `db:"delivery_date" json:"delivery_date,omitempty"`
	ExchangeRate  *float64   `db:"exchange_rate" json:"exchange_rate,omitempty"`
	ShippingCost  float64    `db:"shipping_cost" json:"shipping_cost"`
	Discount      float64    `db:"discount" json:"discount"`
}

// Operation is a purchase line item linking one purchase to one product.
type Operation struct {
	ID                 int64    `db:"id_operation" json:"id_operation"`
	PurchaseID         int64    `db:"id_purchase" json:"id_purchase"`
	ProductID          int64    `db:"id_product" json:"id_product"`
	Quantity           int64    `db:"quantity" json:"quantity"`
	UnitPrice          float64  `db:"unit_price" json:"unit_price"`
	UnitPriceUSD       *float64 `db:"unit_price_usd" json:"unit_price_usd,omitempty"`
	DiscountPercentage float64  `db:"discount_percentage" json:"discount_percentage"`
	PiecesPerUnit      int64    `db:"pieces_per_unit" json:"pieces_per_unit"`
	FinalCost          *float64 `db:"final_cost" json:"final_cost,omitempty"`
	ProductURL         string   `db:"product_url" json:"product_url"`
}

// Price is the current sale price of a product. At most one row per
// product has a null end_date; closed rows keep their validity window.
type Price struct {
	ID         int64      `db:"id_price" json:"id_price"`
	ProductID  int64      `db:"id_product" json:"id_product"`
	Price      float64    `db:"price" json:"price"`
	OfferPrice *float64   `db:"offer_price" json:"offer_price,omitempty"`
	StartDate  time.Time  `db:"start_date" json:"start_date"`
	EndDate    *time.Time `db:"end_date" json:"end_date,omitempty"`
}

// PaymentType is a read-only reference row.
type PaymentType struct {
	ID   int64  `db:"id_payment_type" json:"id_payment_type"`
	Name string `db:"payment_type" json:"payment_type"`
}

// PurchaseRow is one row of the "Compras" sheet after cleaning. Scalars
// stay loosely typed (any) until coercion right before storage binding.
type PurchaseRow struct {
	Description        string
	Quantity           any
	UnitPrice          any
	UnitPriceUSD       any
	DiscountPercentage any
	PiecesPerUnit      any
	FinalCost          any
	Total              any
	PurchaseDate       any
	DeliveryDate       any
	ExchangeRate       any
	ShippingCost       any
	Discount           any
	SourceURL          string
	ImageURL           string
	Brand              string
	Category           string
}

// PriceRow is one row of the "Precios" sheet.
type PriceRow struct {
	Description string
	StorePrice  any
	SalePrice   any
	OfferPrice  any
	Brand       string
	Category    string
}
