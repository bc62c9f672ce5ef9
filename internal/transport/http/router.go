package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ystore/marketplace/internal/handlers"
	"github.com/ystore/marketplace/internal/handlers/cart"
	"github.com/ystore/marketplace/internal/models"
	"github.com/ystore/marketplace/internal/service/token"
)

type Deps struct {
	DB              *gorm.DB
	Tokens          *token.TokenService
	AuthHandler     *handlers.AuthHandler
	ProductHandler  *handlers.ProductHandler
	CategoryHandler *handlers.CategoryHandler
	CartHandler     *cart.CartHandler
	OrderHandler    *handlers.OrderHandler
	CheckoutHandler *handlers.CheckoutHandler
	ContentHandler  *handlers.ContentHandler
	CRMHandler      *handlers.CRMHandler
	AdminHandler    *handlers.AdminHandler
	SearchHandler   *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/register", d.AuthHandler.Register)
	v1.POST("/login", d.AuthHandler.Login)
	v1.POST("/refresh", d.AuthHandler.Refresh)
	v1.POST("/logout", d.AuthHandler.Logout)

	users := v1.Group("/users", d.Tokens.RequireAuth)
	users.GET("/me", d.AuthHandler.Me)
	users.PATCH("/me", d.AuthHandler.UpdateMe)

	v1.GET("/categories", d.CategoryHandler.GetCategories)
	v1.GET("/products", d.ProductHandler.GetProducts)
	v1.GET("/products/:id", d.ProductHandler.GetProduct)
	if d.SearchHandler != nil {
		v1.GET("/search", d.SearchHandler.Search)
	}

	selling := v1.Group("/products", d.Tokens.RequireRole(models.RoleSeller, models.RoleAdmin))
	selling.POST("", d.ProductHandler.CreateProduct)
	selling.PATCH("/:id", d.ProductHandler.PatchProduct)
	selling.DELETE("/:id", d.ProductHandler.DeleteProduct)

	cartGroup := v1.Group("/cart", d.Tokens.RequireAuth)
	cartGroup.GET("", d.CartHandler.GetCart)
	cartGroup.POST("", d.CartHandler.AddToCart)
	cartGroup.DELETE("/:id", d.CartHandler.DeleteOneFromCart)
	cartGroup.DELETE("/:id/all", d.CartHandler.DeleteAllFromCart)

	orders := v1.Group("/orders", d.Tokens.RequireAuth)
	orders.POST("", d.OrderHandler.CreateOrder)
	orders.GET("/my", d.OrderHandler.GetMyOrders)
	orders.GET("/:id", d.OrderHandler.GetOrder)

	v1.POST("/checkout/session", d.CheckoutHandler.CreateSession, d.Tokens.RequireAuth)
	v1.POST("/payments/callback", d.CheckoutHandler.Callback)
	v1.GET("/payments/:id", d.CheckoutHandler.GetPayment, d.Tokens.RequireAuth)

	content := v1.Group("/content")
	content.GET("/hero-slides", d.ContentHandler.GetHeroSlides)
	content.GET("/popular-categories", d.ContentHandler.GetPopularCategories)
	content.GET("/actual-offers", d.ContentHandler.GetActualOffers)
	content.GET("/actual-offers/:id", d.ContentHandler.GetActualOffer)
	v1.GET("/promotions", d.ContentHandler.GetPromotions)

	admin := v1.Group("/admin", d.Tokens.RequireAdmin)

	admin.GET("/orders", d.OrderHandler.ListOrders)
	admin.PUT("/orders/:id/status", d.OrderHandler.UpdateStatus)

	admin.POST("/categories", d.CategoryHandler.CreateCategory)
	admin.PATCH("/categories/:id", d.CategoryHandler.PatchCategory)
	admin.DELETE("/categories/:id", d.CategoryHandler.DeleteCategory)

	admin.GET("/hero-slides", d.ContentHandler.ListHeroSlides)
	admin.POST("/hero-slides", d.ContentHandler.CreateHeroSlide)
	admin.PATCH("/hero-slides/:id", d.ContentHandler.PatchHeroSlide)
	admin.DELETE("/hero-slides/:id", d.ContentHandler.DeleteHeroSlide)

	admin.POST("/popular-categories", d.ContentHandler.CreatePopularCategory)
	admin.PATCH("/popular-categories/:id", d.ContentHandler.PatchPopularCategory)
	admin.DELETE("/popular-categories/:id", d.ContentHandler.DeletePopularCategory)

	admin.POST("/actual-offers", d.ContentHandler.CreateActualOffer)
	admin.PATCH("/actual-offers/:id", d.ContentHandler.PatchActualOffer)
	admin.DELETE("/actual-offers/:id", d.ContentHandler.DeleteActualOffer)

	admin.POST("/promotions", d.ContentHandler.CreatePromotion)
	admin.PATCH("/promotions/:id", d.ContentHandler.PatchPromotion)
	admin.DELETE("/promotions/:id", d.ContentHandler.DeletePromotion)

	admin.GET("/stats", d.AdminHandler.Stats)
	admin.GET("/users", d.AdminHandler.ListUsers)
	admin.PUT("/users/:id/role", d.AdminHandler.UpdateUserRole)
	admin.GET("/analytics/revenue", d.AdminHandler.RevenueAnalytics)
	admin.GET("/analytics/top-products", d.AdminHandler.TopProducts)
	admin.GET("/analytics/order-status", d.AdminHandler.OrderStatusDistribution)
	admin.GET("/analytics/categories", d.AdminHandler.CategoryDistribution)
	admin.GET("/analytics/user-growth", d.AdminHandler.UserGrowth)

	crm := v1.Group("/crm", d.Tokens.RequireAdmin)
	crm.GET("/customers", d.CRMHandler.ListCustomers)
	crm.GET("/customers/:id", d.CRMHandler.GetCustomer)
	crm.GET("/customers/:id/notes", d.CRMHandler.ListNotes)
	crm.POST("/customers/:id/notes", d.CRMHandler.CreateNote)
	crm.DELETE("/notes/:noteID", d.CRMHandler.DeleteNote)
	crm.GET("/tasks", d.CRMHandler.ListTasks)
	crm.POST("/tasks", d.CRMHandler.CreateTask)
	crm.PATCH("/tasks/:id", d.CRMHandler.PatchTask)
	crm.DELETE("/tasks/:id", d.CRMHandler.DeleteTask)
	crm.GET("/leads", d.CRMHandler.ListLeads)
	crm.POST("/leads", d.CRMHandler.CreateLead)
	crm.PATCH("/leads/:id", d.CRMHandler.PatchLead)
	crm.POST("/leads/:id/convert", d.CRMHandler.ConvertLead)
	crm.DELETE("/leads/:id", d.CRMHandler.DeleteLead)
}
