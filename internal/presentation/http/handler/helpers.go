package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/velo-register/internal/presentation/http/dto/response"
)

// GetOperatorID extracts the operator ID set by the auth middleware
func GetOperatorID(c *gin.Context) (int64, bool) {
	v, exists := c.Get("operator_id")
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	if !ok || id == 0 {
		return 0, false
	}
	return id, true
}

// requireOperator writes a 401 and returns false when no operator is set
func requireOperator(c *gin.Context) (int64, bool) {
	id, ok := GetOperatorID(c)
	if !ok {
		response.Unauthorized(c, "Operator not authenticated")
	}
	return id, ok
}

// productIDParam parses the :product_id path segment
func productIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil || id < 1 {
		response.BadRequest(c, "Invalid product ID")
		return 0, false
	}
	return id, true
}
