package service

import (
	"context"

	"golang.org/x/oauth2"
)

// CredentialProvider hands out the operator's back-office token. It is asked
// again before every step that needs one.
type CredentialProvider interface {
	Token(ctx context.Context, operatorID int64) (*oauth2.Token, error)
	// AnyValid returns a token usable for background work, if anyone is signed in
	AnyValid() (*oauth2.Token, bool)
}

// DocumentSink receives the receipt and invoice of a finished sale
type DocumentSink interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
}
