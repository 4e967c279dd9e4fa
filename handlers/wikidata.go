package handlers

import (
	"net/http"
	"strconv"

	wikidata "hive/services/wikidata"
	"hive/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WikiDataHandler serves tag autocompletion.
type WikiDataHandler struct {
	WikiData wikidata.WikiDataService
}

// SearchEntitiesHandler handles GET /api/wikidata/search.
func (h *WikiDataHandler) SearchEntitiesHandler(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing query parameter 'q'"})
		return
	}
	language := c.DefaultQuery("language", "en")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	entities, err := h.WikiData.SearchEntities(c.Request.Context(), query, language, limit)
	if err != nil {
		utils.GetLogger().Error("WikiData search failed", zap.String("query", query), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "WikiData lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entities": entities})
}
