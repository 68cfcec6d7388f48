package catalog

import (
	"net/http"

	"astrobooking/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	catalog *Catalog
}

func NewHandler(catalog *Catalog) *Handler {
	return &Handler{catalog: catalog}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/consultation-types", h.ListTypes)
}

// ListTypes godoc
// @Summary      List consultation types
// @Tags         Catalog
// @Produce      json
// @Success      200 {object} ListTypesResponse
// @Router       /consultation-types [get]
func (h *Handler) ListTypes(c *gin.Context) {
	response.Success(c, http.StatusOK, ListTypesResponse{Types: h.catalog.List()})
}
