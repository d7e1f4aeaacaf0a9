package product

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
	"velora_back_end/internal/services"
)

// SearchProducts cherche dans le catalogue. Elasticsearch d'abord ; si le
// cluster est absent ou en erreur, repli sur un ILIKE Postgres.
func SearchProducts(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre 'q' manquant"})
		return
	}

	if database.Elastic != nil {
		hits, err := services.SearchProducts(query)
		if err == nil {
			c.JSON(http.StatusOK, gin.H{"results": hits, "count": len(hits), "source": "elasticsearch"})
			return
		}
		log.Printf("⚠️ Recherche Elasticsearch en erreur, repli SQL: %v", err)
	}

	products, err := searchProductsSQL(context.Background(), query)
	if err != nil {
		log.Printf("❌ Erreur recherche produits: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur recherche"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": products, "count": len(products), "source": "sql"})
}

func searchProductsSQL(ctx context.Context, query string) ([]models.Product, error) {
	pattern := "%" + query + "%"
	rows, err := database.Postgres.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE NOT archived
		  AND (name ILIKE $1 OR description ILIKE $1 OR $2 = ANY(tags))
		ORDER BY name
		LIMIT 50`, pattern, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}
