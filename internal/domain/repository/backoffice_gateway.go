package repository

import (
	"context"

	"github.com/sangkips/velo-register/internal/domain/entity"
	"golang.org/x/oauth2"
)

// BackOfficeGateway is the back-office REST API as the register uses it.
// Every call is made on behalf of the operator whose token is passed in.
type BackOfficeGateway interface {
	ProductByBarcode(ctx context.Context, token *oauth2.Token, code string) (*entity.Product, error)
	ListVisibleProducts(ctx context.Context, token *oauth2.Token) ([]entity.Product, error)

	CreateOrder(ctx context.Context, token *oauth2.Token, draft entity.OrderDraft) (*entity.OrderConfirmation, error)
	GenerateDocuments(ctx context.Context, token *oauth2.Token, invoiceID int64) error
	DownloadReceipt(ctx context.Context, token *oauth2.Token, invoiceID int64) ([]byte, error)
	DownloadInvoice(ctx context.Context, token *oauth2.Token, invoiceID int64) ([]byte, error)

	SearchClients(ctx context.Context, token *oauth2.Token, query string) ([]entity.ClientRef, error)
	CreateClient(ctx context.Context, token *oauth2.Token, input entity.NewClientInput) (*entity.ClientRef, error)
}
