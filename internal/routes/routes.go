package routes

import (
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"velora_back_end/internal/handlers"
	"velora_back_end/internal/handlers/admin"
	"velora_back_end/internal/handlers/payement"
	"velora_back_end/internal/handlers/product"
	"velora_back_end/internal/handlers/user"
	"velora_back_end/internal/middleware"
)

func RegisterRoutes(r *gin.Engine) {
	r.Use(corsMiddleware())

	api := r.Group("/api", middleware.APIRateLimit())

	// ---------- Auth ----------
	auth := api.Group("/auth")
	auth.POST("/register", middleware.RegisterRateLimit(), user.Register)
	auth.POST("/login", middleware.LoginRateLimit(), user.Login)
	auth.GET("/:provider", user.BeginAuth)
	auth.GET("/:provider/callback", user.CallbackAuth)
	auth.GET("/me", middleware.AuthRequired(), user.Me)
	auth.PUT("/me", middleware.AuthRequired(), user.UpdateProfile)

	// ---------- Catalogue public ----------
	api.GET("/products", product.GetAllProducts)
	api.GET("/products/search", product.SearchProducts)
	api.GET("/products/:id", product.GetProductByID)
	api.GET("/products/:id/options", product.GetProductOptions)
	api.GET("/products/:id/images", product.GetProductImages)
	api.GET("/announcements", admin.GetActiveAnnouncements)

	// ---------- Panier (connecté) ----------
	cart := api.Group("/cart", middleware.AuthRequired())
	cart.GET("", user.GetCart)
	cart.POST("/add", user.AddToCart)
	cart.PUT("/update", user.UpdateCartItem)
	cart.POST("/remove", user.RemoveFromCart)
	cart.POST("/merge", user.MergeCart)
	cart.DELETE("/clear", user.ClearCart)
	cart.GET("/ws", user.CartWebSocket)

	// ---------- Checkout ----------
	// OptionalAuth : un invité peut commander avec son panier local
	checkout := api.Group("/checkout", middleware.OptionalAuth())
	checkout.POST("", payement.Checkout)
	checkout.POST("/manual", payement.ManualPayment)
	api.POST("/webhooks/stripe", payement.StripeWebhook)

	// ---------- Espace client ----------
	me := api.Group("/me", middleware.AuthRequired())
	me.GET("/orders", user.GetMyOrders)
	me.GET("/orders/:id", user.GetOrderByID)
	me.GET("/addresses", user.GetAddresses)
	me.POST("/addresses", user.AddAddress)
	me.PUT("/addresses/:id", user.UpdateAddress)
	me.DELETE("/addresses/:id", user.DeleteAddress)
	me.GET("/messages", user.GetMyMessages)
	me.POST("/messages", user.CreateMessage)

	// ---------- Assistant ----------
	api.POST("/assistant", middleware.AssistantRateLimit(), handlers.AskAssistant)

	// ---------- Admin ----------
	adm := api.Group("/admin", middleware.AuthRequired(), middleware.RequireAdmin())

	adm.POST("/products", product.CreateProduct)
	adm.PUT("/products/:id", product.UpdateProduct)
	adm.DELETE("/products/:id", product.DeleteProduct)
	adm.POST("/products/upload", product.UploadProductImage)
	adm.POST("/products/:id/images", product.AddImageToProduct)
	adm.DELETE("/products/:id/images", product.RemoveImageFromProduct)
	adm.GET("/images/presign", product.GetPresignedImage)
	adm.POST("/products/:id/options", product.AddProductOption)
	adm.DELETE("/products/:id/options/:optionId", product.DeleteProductOption)
	adm.POST("/options/:optionId/values", product.AddOptionValue)
	adm.PUT("/values/:valueId", product.UpdateOptionValue)
	adm.DELETE("/values/:valueId", product.DeleteOptionValue)
	adm.PUT("/products/:id/stock", product.UpdateStock)
	adm.GET("/products/:id/movements", product.GetStockMovements)
	adm.GET("/products/low-stock", product.GetLowStockProducts)

	adm.GET("/orders", admin.GetAllOrders)
	adm.GET("/orders/:id", admin.GetOrder)
	adm.PUT("/orders/:id/status", admin.UpdateOrderStatus)
	adm.DELETE("/orders/:id", admin.DeleteOrder)

	adm.GET("/dashboard", payement.GetDashboardStats)
	adm.GET("/dashboard/top-products", payement.GetTopProducts)
	adm.GET("/dashboard/top-customers", payement.GetTopCustomers)
	adm.GET("/dashboard/recent-orders", payement.GetRecentOrders)

	adm.GET("/messages", admin.GetAllMessages)
	adm.POST("/messages/:id/reply", admin.ReplyToMessage)
	adm.PUT("/messages/:id/read", admin.MarkMessageRead)

	adm.GET("/announcements", admin.ListAnnouncements)
	adm.POST("/announcements", admin.CreateAnnouncement)
	adm.PUT("/announcements/:id", admin.UpdateAnnouncement)
	adm.DELETE("/announcements/:id", admin.DeleteAnnouncement)
}

func corsMiddleware() gin.HandlerFunc {
	origins := []string{"http://localhost:5173"}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		origins = strings.Split(env, ",")
	}

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Stripe-Signature"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
