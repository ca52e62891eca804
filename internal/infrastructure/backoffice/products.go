package backoffice

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/sangkips/velo-register/internal/domain/entity"
	"github.com/sangkips/velo-register/internal/domain/enum"
	"github.com/sangkips/velo-register/pkg/money"
	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"
)

type productPayload struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Reference       string          `json:"reference"`
	Barcode         *string         `json:"barcode"`
	PriceTTC        decimal.Decimal `json:"price_ttc"`
	PriceHT         decimal.Decimal `json:"price_ht"`
	TVARate         decimal.Decimal `json:"tva_rate"`
	IsVisible       *bool           `json:"is_visible"`
	StockVilleAvray int             `json:"stock_ville_avray"`
	StockGarches    int             `json:"stock_garches"`
}

// toEntity normalizes the wire product: missing visibility means visible,
// a missing HT price is derived from TTC and negative stock reads as zero.
func (p productPayload) toEntity(syncedAt time.Time) entity.Product {
	visible := true
	if p.IsVisible != nil {
		visible = *p.IsVisible
	}
	priceHT := p.PriceHT
	if priceHT.IsZero() && !p.PriceTTC.IsZero() {
		priceHT = money.Round2(money.Exclusive(p.PriceTTC, p.TVARate))
	}
	var barcode *string
	if p.Barcode != nil && *p.Barcode != "" {
		b := *p.Barcode
		barcode = &b
	}

	return entity.Product{
		ID:                p.ID,
		Name:              p.Name,
		Reference:         p.Reference,
		Barcode:           barcode,
		PriceInclusiveTax: p.PriceTTC,
		PriceExclusiveTax: priceHT,
		TaxRate:           p.TVARate,
		IsVisible:         visible,
		StockByStore: map[enum.Store]int{
			enum.StoreVilleAvray: max(p.StockVilleAvray, 0),
			enum.StoreGarches:    max(p.StockGarches, 0),
		},
		SyncedAt: syncedAt,
	}
}

// ProductByBarcode looks a product up by exact barcode
func (c *Client) ProductByBarcode(ctx context.Context, token *oauth2.Token, code string) (*entity.Product, error) {
	body, err := c.do(ctx, token, http.MethodGet,
		c.endpoint("/products/barcode/", url.Values{"code": {code}}), nil)
	if err != nil {
		return nil, err
	}
	payload, err := decodeJSON[productPayload](body, "product")
	if err != nil {
		return nil, err
	}
	product := payload.toEntity(time.Now())
	return &product, nil
}

// ListVisibleProducts loads every product that is still for sale
func (c *Client) ListVisibleProducts(ctx context.Context, token *oauth2.Token) ([]entity.Product, error) {
	payloads, err := listAll[productPayload](ctx, c, token,
		c.endpoint("/products/", url.Values{"is_visible": {"true"}}))
	if err != nil {
		return nil, err
	}

	now := time.Now()
	products := make([]entity.Product, 0, len(payloads))
	for _, p := range payloads {
		products = append(products, p.toEntity(now))
	}
	return products, nil
}
