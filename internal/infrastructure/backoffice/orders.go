package backoffice

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sangkips/velo-register/internal/domain/entity"
	"golang.org/x/oauth2"
)

type orderResponse struct {
	ID      int64 `json:"id"`
	Invoice *struct {
		ID            int64  `json:"id"`
		InvoiceNumber string `json:"invoice_number"`
	} `json:"invoice"`
}

// CreateOrder records the sale. The back office decrements stock and opens
// the invoice in the same transaction.
func (c *Client) CreateOrder(ctx context.Context, token *oauth2.Token, draft entity.OrderDraft) (*entity.OrderConfirmation, error) {
	body, err := c.do(ctx, token, http.MethodPost, c.endpoint("/orders/", nil), draft)
	if err != nil {
		return nil, err
	}
	resp, err := decodeJSON[orderResponse](body, "order")
	if err != nil {
		return nil, err
	}

	conf := &entity.OrderConfirmation{OrderID: resp.ID}
	if resp.Invoice != nil {
		conf.InvoiceID = resp.Invoice.ID
		conf.InvoiceNumber = resp.Invoice.InvoiceNumber
	}
	return conf, nil
}

// GenerateDocuments renders the receipt and the invoice PDFs
func (c *Client) GenerateDocuments(ctx context.Context, token *oauth2.Token, invoiceID int64) error {
	_, err := c.do(ctx, token, http.MethodPost,
		c.endpoint(fmt.Sprintf("/invoices/%d/generate_both/", invoiceID), nil), nil)
	return err
}

func (c *Client) DownloadReceipt(ctx context.Context, token *oauth2.Token, invoiceID int64) ([]byte, error) {
	return c.do(ctx, token, http.MethodGet,
		c.endpoint(fmt.Sprintf("/invoices/%d/download_receipt/", invoiceID), nil), nil)
}

func (c *Client) DownloadInvoice(ctx context.Context, token *oauth2.Token, invoiceID int64) ([]byte, error) {
	return c.do(ctx, token, http.MethodGet,
		c.endpoint(fmt.Sprintf("/invoices/%d/download_invoice/", invoiceID), nil), nil)
}
