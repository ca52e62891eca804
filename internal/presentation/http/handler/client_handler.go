package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/velo-register/internal/application/service"
	"github.com/sangkips/velo-register/internal/domain/entity"
	"github.com/sangkips/velo-register/internal/presentation/http/dto/response"
)

// ClientHandler searches and creates clients in the back-office directory
type ClientHandler struct {
	clientService *service.ClientService
	cartService   *service.CartService
}

// NewClientHandler creates a new client handler
func NewClientHandler(clientService *service.ClientService, cartService *service.CartService) *ClientHandler {
	return &ClientHandler{clientService: clientService, cartService: cartService}
}

// Search lists clients whose name, email or phone contains ?search
func (h *ClientHandler) Search(c *gin.Context) {
	operatorID, ok := requireOperator(c)
	if !ok {
		return
	}

	clients, err := h.clientService.Search(c.Request.Context(), operatorID, c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Clients retrieved successfully", clients)
}

// Create adds a client to the directory and selects it into the cart
func (h *ClientHandler) Create(c *gin.Context) {
	operatorID, ok := requireOperator(c)
	if !ok {
		return
	}

	var input entity.NewClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	ref, err := h.clientService.Create(c.Request.Context(), operatorID, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	view, err := h.cartService.SetClient(c.Request.Context(), operatorID, *ref)
	if err != nil {
		// the client exists now; the register can select it later
		response.SuccessWithWarning(c, "Client created", "The client could not be selected into the cart", gin.H{
			"client": ref,
		})
		return
	}
	response.Created(c, "Client created and selected", gin.H{
		"client": ref,
		"cart":   view,
	})
}
