package product

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"

	"velora_back_end/internal/cache"
	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
	"velora_back_end/internal/services"
)

const productColumns = `product_id, name, description, price, stock, low_stock_threshold,
	sku, category, image_urls, tags, archived, has_variants, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.LowStockThreshold,
		&p.SKU, &p.Category, pq.Array(&p.ImageURLs), pq.Array(&p.Tags),
		&p.Archived, &p.HasVariants, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func CreateProduct(c *gin.Context) {
	var p models.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if p.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le champ 'name' est obligatoire"})
		return
	}
	if p.Price < 0 || p.Stock < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Prix et stock doivent être positifs"})
		return
	}
	if p.LowStockThreshold == 0 {
		p.LowStockThreshold = 5
	}

	err := database.Postgres.QueryRowContext(context.Background(), `
		INSERT INTO products (name, description, price, stock, low_stock_threshold, sku, category, image_urls, tags, has_variants)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING product_id, created_at, updated_at`,
		p.Name, p.Description, p.Price, p.Stock, p.LowStockThreshold,
		p.SKU, p.Category, pq.Array(p.ImageURLs), pq.Array(p.Tags), p.HasVariants,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		log.Printf("❌ Erreur création produit: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création produit"})
		return
	}

	// 🔄 Indexation Elasticsearch en arrière-plan
	go services.IndexProduct(p)

	invalidateProductList()
	log.Printf("✅ Produit créé: %s (%s)", p.Name, p.ID)
	c.JSON(http.StatusCreated, p)
}

// GetAllProducts liste le catalogue public, avec cache Redis et filtres
func GetAllProducts(c *gin.Context) {
	ctx := context.Background()
	category := c.Query("category")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 100
	}

	// Le cache ne couvre que la première page complète, le reste tape la base
	cacheKey := "products:all"
	cacheable := category == "" && offset == 0 && limit == 100
	if cacheable {
		if val, err := database.Redis.Get(ctx, cacheKey).Result(); err == nil && val != "" {
			var cached []models.Product
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				c.JSON(http.StatusOK, cached)
				return
			}
		}
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE NOT archived`
	args := []any{}
	if category != "" {
		query += ` AND category = $1`
		args = append(args, category)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := database.Postgres.QueryContext(ctx, query, args...)
	if err != nil {
		log.Printf("❌ Erreur lecture produits: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produits"})
		return
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produits"})
			return
		}
		products = append(products, p)
	}

	if cacheable {
		if data, err := json.Marshal(products); err == nil {
			database.Redis.Set(ctx, cacheKey, data, 5*time.Minute)
		}
	}

	c.JSON(http.StatusOK, products)
}

// GetProductByID retourne un produit avec ses options et valeurs
func GetProductByID(c *gin.Context) {
	productID := c.Param("id")

	p, err := cache.GetProductFromCache(productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
			return
		}
		log.Printf("❌ Erreur lecture produit %s: %v", productID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produit"})
		return
	}

	if p.HasVariants {
		options, err := loadOptions(context.Background(), productID)
		if err != nil {
			log.Printf("⚠️ Options non chargées pour %s: %v", productID, err)
		} else {
			p.Options = options
		}
	}

	c.JSON(http.StatusOK, p)
}

func UpdateProduct(c *gin.Context) {
	productID := c.Param("id")

	var p models.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := database.Postgres.QueryRowContext(context.Background(), `
		UPDATE products
		SET name = $2, description = $3, price = $4, low_stock_threshold = $5,
		    sku = $6, category = $7, image_urls = $8, tags = $9,
		    archived = $10, has_variants = $11, updated_at = NOW()
		WHERE product_id = $1
		RETURNING `+productColumns,
		productID, p.Name, p.Description, p.Price, p.LowStockThreshold,
		p.SKU, p.Category, pq.Array(p.ImageURLs), pq.Array(p.Tags),
		p.Archived, p.HasVariants,
	).Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.LowStockThreshold,
		&p.SKU, &p.Category, pq.Array(&p.ImageURLs), pq.Array(&p.Tags),
		&p.Archived, &p.HasVariants, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	if err != nil {
		log.Printf("❌ Erreur mise à jour produit %s: %v", productID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour produit"})
		return
	}

	go services.IndexProduct(p)
	cache.InvalidateProductCache(productID)
	invalidateProductList()

	c.JSON(http.StatusOK, p)
}

// DeleteProduct archive un produit. Les commandes passées gardent leur
// snapshot, on ne supprime donc jamais physiquement une ligne produit.
func DeleteProduct(c *gin.Context) {
	productID := c.Param("id")

	res, err := database.Postgres.ExecContext(context.Background(),
		`UPDATE products SET archived = TRUE, updated_at = NOW() WHERE product_id = $1`, productID)
	if err != nil {
		log.Printf("❌ Erreur archivage produit %s: %v", productID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression produit"})
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	services.RemoveProductFromIndex(productID)
	cache.InvalidateProductCache(productID)
	invalidateProductList()

	log.Printf("🗑️ Produit %s archivé", productID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func invalidateProductList() {
	database.Redis.Del(context.Background(), "products:all")
}
