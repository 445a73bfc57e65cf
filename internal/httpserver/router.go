package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/weld_shop/internal/middleware/auth"
)

type Deps struct {
	Gate     *authmw.Gate
	Auth     *AuthHTTP
	Category *CategoryHTTP
	Product  *ProductHTTP
	Carousel *CarouselHTTP
	Order    *OrderHTTP
	Files    *FilesHTTP
}

// Register wires the route table. Every request passes the optional
// authenticator; admin guards sit only on mutating catalog routes.
// Order mutations stay public, checkout has no account requirement.
func Register(e *echo.Echo, d *Deps) {
	e.Use(d.Gate.Authenticate)

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e.POST("/auth/register", d.Auth.Register)
	e.POST("/auth/login-user", d.Auth.Login)
	e.POST("/auth/refresh", d.Auth.Refresh)
	e.POST("/auth/logout", d.Auth.Logout)
	e.GET("/users/me", d.Auth.Me, authmw.RequireAuth)

	categories := e.Group("/categories")
	categories.GET("", d.Category.List)
	categories.GET("/root", d.Category.ListRoots)
	categories.GET("/:id", d.Category.Get)
	categories.GET("/:id/subcategories", d.Category.ListSubcategories)
	categories.POST("", d.Category.Create, authmw.RequireAdmin)
	categories.PUT("/:id", d.Category.Update, authmw.RequireAdmin)
	categories.DELETE("/:id", d.Category.Delete, authmw.RequireAdmin)

	products := e.Group("/products")
	products.GET("", d.Product.List)
	products.GET("/search", d.Product.Search)
	products.GET("/:id", d.Product.Get)
	products.GET("/by-category/:categoryId", d.Product.ListByCategory)
	products.GET("/:id/images", d.Product.ListImages)

	productsAdmin := products.Group("", authmw.RequireAdmin)
	productsAdmin.POST("", d.Product.Create)
	productsAdmin.PUT("/:id", d.Product.Update)
	productsAdmin.DELETE("/:id", d.Product.Delete)
	productsAdmin.DELETE("/bulk", d.Product.BulkDelete)
	productsAdmin.PUT("/bulk-move", d.Product.BulkMove)
	productsAdmin.POST("/preview-csv", d.Product.CsvPreview)
	productsAdmin.POST("/import-csv", d.Product.CsvImport)
	productsAdmin.POST("/import-csv-with-category", d.Product.CsvImport)
	productsAdmin.POST("/cleanup-presigned-urls", d.Product.CleanupPresignedURLs)
	productsAdmin.POST("/:id/images", d.Product.AddImage)
	productsAdmin.DELETE("/images/:imageId", d.Product.RemoveImage)

	slides := e.Group("/api/carousel/slides")
	slides.GET("", d.Carousel.List)
	slides.GET("/active", d.Carousel.ListActive)
	slides.GET("/:id", d.Carousel.Get)
	slides.POST("", d.Carousel.Create, authmw.RequireAdmin)
	slides.PUT("/reorder", d.Carousel.Reorder, authmw.RequireAdmin)
	slides.PUT("/:id", d.Carousel.Update, authmw.RequireAdmin)
	slides.DELETE("/:id", d.Carousel.Delete, authmw.RequireAdmin)

	orders := e.Group("/orders")
	orders.POST("", d.Order.Create)
	orders.GET("", d.Order.List)
	orders.GET("/statuses", d.Order.Statuses)
	orders.GET("/number/:orderNumber", d.Order.GetByNumber)
	orders.GET("/:id", d.Order.Get)
	orders.PUT("/:id/status", d.Order.UpdateStatus)
	orders.DELETE("/:id", d.Order.Delete)

	files := e.Group("/api/files")
	files.POST("/upload", d.Files.Upload, authmw.RequireAdmin)
	files.GET("/:name", d.Files.Download)
	files.GET("/:name/url", d.Files.PresignedURL)
	files.DELETE("/:name", d.Files.Delete, authmw.RequireAdmin)
}
