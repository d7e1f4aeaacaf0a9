package payement

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"velora_back_end/internal/database"
)

// GetDashboardStats retourne les statistiques du dashboard admin.
// Tous les agrégats sont calculés côté Postgres, jamais en mémoire.
func GetDashboardStats(c *gin.Context) {
	ctx := context.Background()
	db := database.Postgres

	// Commandes : total, chiffre d'affaires et panier moyen (hors annulées)
	var totalOrders int
	var totalRevenue, averageOrderValue float64
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(total_price), 0),
		       COALESCE(AVG(total_price), 0)
		FROM orders
		WHERE status <> 'CANCELLED'`).Scan(&totalOrders, &totalRevenue, &averageOrderValue)
	if err != nil {
		log.Printf("❌ Erreur lecture stats commandes: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture statistiques"})
		return
	}

	// Répartition par statut
	statusCount := make(map[string]int)
	rows, err := db.QueryContext(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		log.Printf("❌ Erreur lecture statuts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture statistiques"})
		return
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			rows.Close()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture statistiques"})
			return
		}
		statusCount[status] = count
	}
	rows.Close()

	// Produits : stock faible et ruptures
	var totalProducts, lowStock, outOfStock int
	err = db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE stock > 0 AND stock <= low_stock_threshold),
		       COUNT(*) FILTER (WHERE stock = 0)
		FROM products
		WHERE NOT archived`).Scan(&totalProducts, &lowStock, &outOfStock)
	if err != nil {
		log.Printf("❌ Erreur lecture produits: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture statistiques"})
		return
	}

	// Utilisateurs
	var totalUsers int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&totalUsers); err != nil {
		log.Printf("❌ Erreur lecture utilisateurs: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture statistiques"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": gin.H{
			"total":               totalOrders,
			"total_revenue":       totalRevenue,
			"average_order_value": averageOrderValue,
			"by_status":           statusCount,
		},
		"products": gin.H{
			"total":        totalProducts,
			"low_stock":    lowStock,
			"out_of_stock": outOfStock,
		},
		"users": gin.H{
			"total": totalUsers,
		},
	})
}

// GetTopProducts retourne les meilleures ventes (quantités cumulées)
func GetTopProducts(c *gin.Context) {
	rows, err := database.Postgres.QueryContext(context.Background(), `
		SELECT oi.product_id, oi.product_name, SUM(oi.quantity) AS sold, SUM(oi.quantity * oi.price) AS revenue
		FROM order_items oi
		JOIN orders o ON o.order_id = oi.order_id
		WHERE o.status <> 'CANCELLED'
		GROUP BY oi.product_id, oi.product_name
		ORDER BY sold DESC
		LIMIT 10`)
	if err != nil {
		log.Printf("❌ Erreur lecture top produits: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture statistiques"})
		return
	}
	defer rows.Close()

	top := []gin.H{}
	for rows.Next() {
		var productID, name string
		var sold int
		var revenue float64
		if err := rows.Scan(&productID, &name, &sold, &revenue); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture statistiques"})
			return
		}
		top = append(top, gin.H{
			"product_id": productID,
			"name":       name,
			"sold":       sold,
			"revenue":    revenue,
		})
	}

	c.JSON(http.StatusOK, gin.H{"top_products": top})
}

// GetTopCustomers retourne les meilleurs clients par montant dépensé
func GetTopCustomers(c *gin.Context) {
	rows, err := database.Postgres.QueryContext(context.Background(), `
		SELECT u.user_id, u.name, u.email, COUNT(o.order_id) AS orders_count, SUM(o.total_price) AS spent
		FROM orders o
		JOIN users u ON u.user_id = o.user_id
		WHERE o.status <> 'CANCELLED'
		GROUP BY u.user_id, u.name, u.email
		ORDER BY spent DESC
		LIMIT 10`)
	if err != nil {
		log.Printf("❌ Erreur lecture top clients: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture statistiques"})
		return
	}
	defer rows.Close()

	top := []gin.H{}
	for rows.Next() {
		var id, name, email string
		var count int
		var spent float64
		if err := rows.Scan(&id, &name, &email, &count, &spent); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture statistiques"})
			return
		}
		top = append(top, gin.H{
			"user_id":      id,
			"name":         name,
			"email":        email,
			"orders_count": count,
			"total_spent":  spent,
		})
	}

	c.JSON(http.StatusOK, gin.H{"top_customers": top})
}

// GetRecentOrders retourne les dernières commandes pour le dashboard
func GetRecentOrders(c *gin.Context) {
	rows, err := database.Postgres.QueryContext(context.Background(), `
		SELECT order_id, status, total_price, customer_name, customer_email, created_at
		FROM orders
		ORDER BY created_at DESC
		LIMIT 20`)
	if err != nil {
		log.Printf("❌ Erreur lecture commandes récentes: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture statistiques"})
		return
	}
	defer rows.Close()

	recent := []gin.H{}
	for rows.Next() {
		var id, status, name, email string
		var total float64
		var createdAt time.Time
		if err := rows.Scan(&id, &status, &total, &name, &email, &createdAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture statistiques"})
			return
		}
		recent = append(recent, gin.H{
			"id":             id,
			"status":         status,
			"total_price":    total,
			"customer_name":  name,
			"customer_email": email,
			"created_at":     createdAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"recent_orders": recent})
}
