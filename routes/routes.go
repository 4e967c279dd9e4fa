package routes

import (
	"net/http"
	"time"

	"hive/handlers"
	"hive/middleware"
	"hive/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterAuthRoutes registers registration, login and logout endpoints.
func RegisterAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/auth")
	{
		api.POST("/register", hb.Auth.RegisterHandler)
		api.POST("/login", hb.Auth.LoginHandler)

		api.Use(middleware.JWTAuthUserMiddleware(hb.UserRepo))
		api.POST("/logout", hb.Auth.LogoutHandler)
	}
}

// RegisterUserRoutes registers profile endpoints.
func RegisterUserRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/users")
	{
		api.Use(middleware.JWTAuthUserMiddleware(hb.UserRepo))
		api.GET("/me", hb.Users.GetMeHandler)
		api.PUT("/me", hb.Users.UpdateProfileHandler)
		api.PUT("/me/settings", hb.Users.UpdateSettingsHandler)
		api.PUT("/me/password", hb.Users.ChangePasswordHandler)
		api.DELETE("/me", hb.Users.DeactivateHandler)
		api.GET("/username/:username", hb.Users.GetUserByUsernameHandler)
		api.GET("/:id", hb.Users.GetUserByIDHandler)
	}
}

// RegisterServiceRoutes registers the service listing and completion endpoints.
func RegisterServiceRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/services")
	{
		api.Use(middleware.JWTAuthUserMiddleware(hb.UserRepo))
		api.POST("", hb.Services.CreateServiceHandler)
		api.GET("", hb.Services.ListServicesHandler)
		api.GET("/:id", hb.Services.GetServiceHandler)
		api.PUT("/:id", hb.Services.UpdateServiceHandler)
		api.DELETE("/:id", hb.Services.DeleteServiceHandler)
		api.POST("/:id/match", hb.Services.MatchServiceHandler)
		api.POST("/:id/confirm", hb.Services.ConfirmCompletionHandler)
		api.POST("/:id/cancel", hb.Services.CancelServiceHandler)
		api.GET("/:id/participants", hb.Services.ServiceParticipantsHandler)
		api.GET("/:id/transactions", hb.Transactions.ListServiceTransactionsHandler)
		api.GET("/:id/join-requests", hb.JoinRequests.ListServiceJoinRequestsHandler)
	}
}

// RegisterTransactionRoutes registers the bilateral exchange endpoints.
func RegisterTransactionRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/transactions")
	{
		api.Use(middleware.JWTAuthUserMiddleware(hb.UserRepo))
		api.POST("", hb.Transactions.CreateTransactionHandler)
		api.GET("", hb.Transactions.ListMyTransactionsHandler)
		api.GET("/:id", hb.Transactions.GetTransactionHandler)
		api.PUT("/:id", hb.Transactions.UpdateTransactionHandler)
		api.POST("/:id/confirm", hb.Transactions.ConfirmTransactionHandler)
	}
}

// RegisterJoinRequestRoutes registers join request endpoints.
func RegisterJoinRequestRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/join-requests")
	{
		api.Use(middleware.JWTAuthUserMiddleware(hb.UserRepo))
		api.POST("", hb.JoinRequests.CreateJoinRequestHandler)
		api.GET("", hb.JoinRequests.ListMyJoinRequestsHandler)
		api.GET("/:id", hb.JoinRequests.GetJoinRequestHandler)
		api.PUT("/:id", hb.JoinRequests.DecideJoinRequestHandler)
		api.POST("/:id/cancel", hb.JoinRequests.CancelJoinRequestHandler)
	}
}

// RegisterTimeBankRoutes registers the balance surface.
func RegisterTimeBankRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/timebank")
	{
		api.Use(middleware.JWTAuthUserMiddleware(hb.UserRepo))
		api.GET("/balance", hb.TimeBank.BalanceHandler)
	}
}

// RegisterWikiDataRoutes registers tag autocompletion.
func RegisterWikiDataRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/wikidata")
	{
		api.Use(middleware.JWTAuthUserMiddleware(hb.UserRepo))
		api.GET("/search", hb.WikiData.SearchEntitiesHandler)
	}
}

// RegisterAdminRoutes registers the moderation surface.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/admin")
	{
		api.Use(middleware.JWTAuthUserMiddleware(hb.UserRepo), middleware.AdminOnlyMiddleware())
		api.GET("/users", hb.Admin.ListUsersHandler)
		api.PUT("/users/:id/role", hb.Admin.UpdateUserRoleHandler)
		api.GET("/timebank/entries", hb.Admin.ListLedgerEntriesHandler)
		api.GET("/timebank/failures", hb.Admin.ListLedgerFailuresHandler)
		api.GET("/transactions", hb.Admin.ListAllTransactionsHandler)
		api.POST("/services/sweep-expired", hb.Admin.TriggerSweepHandler)
	}
}

// RegisterHealthRoute registers the health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, utils.GetHealthStatus())
	})
}

// RegisterMetricsRoute exposes the Prometheus scrape endpoint.
func RegisterMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterAuthRoutes(r, hb)
	RegisterUserRoutes(r, hb)
	RegisterServiceRoutes(r, hb)
	RegisterTransactionRoutes(r, hb)
	RegisterJoinRequestRoutes(r, hb)
	RegisterTimeBankRoutes(r, hb)
	RegisterWikiDataRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
	RegisterHealthRoute(r)
	RegisterMetricsRoute(r)
}
