package product

import (
	"context"
	"log"
	"net/http"
	"path"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"

	"velora_back_end/internal/cache"
	"velora_back_end/internal/database"
	"velora_back_end/internal/services"
)

// UploadProductImage reçoit un fichier multipart et le pousse dans MinIO
func UploadProductImage(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fichier manquant"})
		return
	}

	imageURL, err := services.UploadProductImage(context.Background(), file)
	if err != nil {
		log.Printf("❌ Erreur upload MinIO: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur upload image"})
		return
	}

	log.Printf("🪣 Image uploadée: %s", imageURL)
	c.JSON(http.StatusOK, gin.H{"image_url": imageURL})
}

// AddImageToProduct attache une URL d'image déjà uploadée à un produit
func AddImageToProduct(c *gin.Context) {
	productID := c.Param("id")

	var req struct {
		ImageURL string `json:"image_url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	res, err := database.Postgres.ExecContext(context.Background(), `
		UPDATE products
		SET image_urls = array_append(image_urls, $2), updated_at = NOW()
		WHERE product_id = $1 AND NOT ($2 = ANY(image_urls))`,
		productID, req.ImageURL)
	if err != nil {
		log.Printf("❌ Erreur ajout image: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur ajout image"})
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable ou image déjà présente"})
		return
	}

	cache.InvalidateProductCache(productID)
	invalidateProductList()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RemoveImageFromProduct détache une image d'un produit
func RemoveImageFromProduct(c *gin.Context) {
	productID := c.Param("id")

	var req struct {
		ImageURL string `json:"image_url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	res, err := database.Postgres.ExecContext(context.Background(), `
		UPDATE products
		SET image_urls = array_remove(image_urls, $2), updated_at = NOW()
		WHERE product_id = $1`,
		productID, req.ImageURL)
	if err != nil {
		log.Printf("❌ Erreur retrait image: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur retrait image"})
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	cache.InvalidateProductCache(productID)
	invalidateProductList()

	// 🗑️ Suppression de l'objet MinIO en arrière-plan
	go func(imageURL string) {
		objectName := path.Base(imageURL)
		if err := services.RemoveImage(context.Background(), objectName); err != nil {
			log.Printf("⚠️ Objet MinIO non supprimé (%s): %v", objectName, err)
		}
	}(req.ImageURL)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetPresignedImage renvoie une URL signée temporaire vers un objet du bucket
func GetPresignedImage(c *gin.Context) {
	objectName := c.Query("object")
	if objectName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre object manquant"})
		return
	}

	url, err := services.PresignedImageURL(context.Background(), path.Base(objectName), 15*time.Minute)
	if err != nil {
		log.Printf("❌ Erreur URL signée MinIO: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération URL signée"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "expires_in": 900})
}

// GetProductImages retourne les images d'un produit
func GetProductImages(c *gin.Context) {
	var urls []string
	err := database.Postgres.QueryRowContext(context.Background(),
		`SELECT image_urls FROM products WHERE product_id = $1`,
		c.Param("id")).Scan(pq.Array(&urls))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"image_urls": urls})
}
