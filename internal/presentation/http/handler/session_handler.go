package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/velo-register/internal/infrastructure/session"
	"github.com/sangkips/velo-register/internal/presentation/http/dto/request"
	"github.com/sangkips/velo-register/internal/presentation/http/dto/response"
)

// SessionHandler keeps the operator's back-office credential current
type SessionHandler struct {
	credentials *session.CredentialStore
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(credentials *session.CredentialStore) *SessionHandler {
	return &SessionHandler{credentials: credentials}
}

// Token stores a renewed token for the signed-in operator
func (h *SessionHandler) Token(c *gin.Context) {
	operatorID, ok := requireOperator(c)
	if !ok {
		return
	}

	var req request.SessionTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	claims, err := h.credentials.Peek(req.Token)
	if err != nil {
		response.Error(c, err)
		return
	}
	if claims.UserID != operatorID {
		response.ErrorWithCode(c, http.StatusForbidden, "The token belongs to another operator")
		return
	}
	if _, err := h.credentials.Put(req.Token); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Session token updated", gin.H{
		"operator_id": claims.UserID,
		"username":    claims.Username,
		"expires_at":  claims.Expiry(),
	})
}

// End forgets the operator's credential. The cart is kept.
func (h *SessionHandler) End(c *gin.Context) {
	operatorID, ok := requireOperator(c)
	if !ok {
		return
	}
	h.credentials.Forget(operatorID)
	c.Status(http.StatusNoContent)
}
