package backoffice

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/sangkips/velo-register/internal/domain/entity"
	"golang.org/x/oauth2"
)

type clientPayload struct {
	ID        int64   `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	FullName  string  `json:"full_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
}

func (p clientPayload) toRef() entity.ClientRef {
	name := p.FullName
	if name == "" {
		name = strings.TrimSpace(p.FirstName + " " + p.LastName)
	}
	return entity.ClientRef{
		ID:       p.ID,
		FullName: name,
		Email:    nonEmpty(p.Email),
		Phone:    nonEmpty(p.Phone),
	}
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}

// SearchClients asks the directory for clients matching query. An empty
// query lists the whole directory.
func (c *Client) SearchClients(ctx context.Context, token *oauth2.Token, query string) ([]entity.ClientRef, error) {
	var params url.Values
	if query != "" {
		params = url.Values{"search": {query}}
	}
	payloads, err := listAll[clientPayload](ctx, c, token, c.endpoint("/clients/", params))
	if err != nil {
		return nil, err
	}

	refs := make([]entity.ClientRef, len(payloads))
	for i, p := range payloads {
		refs[i] = p.toRef()
	}
	return refs, nil
}

// CreateClient adds a client to the directory
func (c *Client) CreateClient(ctx context.Context, token *oauth2.Token, input entity.NewClientInput) (*entity.ClientRef, error) {
	body, err := c.do(ctx, token, http.MethodPost, c.endpoint("/clients/", nil), input)
	if err != nil {
		return nil, err
	}
	payload, err := decodeJSON[clientPayload](body, "client")
	if err != nil {
		return nil, err
	}
	ref := payload.toRef()
	return &ref, nil
}
