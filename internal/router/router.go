package router

import (
	"shop-service/internal/handlers"
	"shop-service/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func Router(users service.UserService, products service.ProductService, orders service.OrderService, reports service.ReportService, log *zap.Logger) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	userHandler := handlers.NewUserHandler(users, log)
	productHandler := handlers.NewProductHandler(products, log)
	orderHandler := handlers.NewOrderHandler(orders, log)
	reportHandler := handlers.NewReportHandler(reports, log)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	r.GET("/users/:id", userHandler.GetByID)
	r.GET("/users", userHandler.List)
	r.POST("/users", userHandler.Create)
	r.PUT("/users/:id", userHandler.Update)
	r.DELETE("/users/:id", userHandler.Delete)
	r.GET("/users/:id/orders", orderHandler.ListByUser)

	r.GET("/products/:id", productHandler.GetByID)
	r.GET("/products", productHandler.List)
	r.POST("/products", productHandler.Create)
	r.PUT("/products/:id/stock", productHandler.UpdateStock)
	r.DELETE("/products/:id", productHandler.Delete)

	r.POST("/orders", orderHandler.Create)
	r.POST("/orders/checkout", orderHandler.Checkout)
	r.GET("/orders", orderHandler.List)
	r.GET("/orders/:id", orderHandler.GetByID)
	r.POST("/orders/:id/products/:productId", orderHandler.AddProduct)
	r.DELETE("/orders/:id/products/:productId", orderHandler.RemoveProduct)
	r.DELETE("/orders/:id", orderHandler.Delete)

	r.GET("/report", reportHandler.GetByDate)

	return r
}
