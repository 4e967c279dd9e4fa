package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hive/config"
	"hive/cron"
	"hive/database"
	joinRequestRepoPkg "hive/database/repository/joinrequest"
	ledgerRepoPkg "hive/database/repository/ledger"
	serviceRepoPkg "hive/database/repository/service"
	transactionRepoPkg "hive/database/repository/transaction"
	userRepoPkg "hive/database/repository/user"
	"hive/handlers"
	"hive/middleware"
	"hive/routes"
	joinrequest "hive/services/joinrequest"
	service "hive/services/service"
	"hive/services/timebank"
	transaction "hive/services/transaction"
	user "hive/services/user"
	"hive/services/wikidata"
	"hive/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitAuthCache()
	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetCacheClient(), utils.GetAuthCacheClient()},
		database.MongoClient,
	)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// Repositories.
	usersRepo := userRepoPkg.NewMongoUserRepo()
	ledgerRepo := ledgerRepoPkg.NewMongoLedgerRepo()
	servicesRepo := serviceRepoPkg.NewMongoServiceRepo()
	transactionsRepo := transactionRepoPkg.NewMongoTransactionRepo()
	joinRequestsRepo := joinRequestRepoPkg.NewMongoJoinRequestRepo()

	// Services.
	engine := timebank.NewTimeBankService(usersRepo, ledgerRepo)
	userService := user.NewUserService(usersRepo, engine)
	serviceService := service.NewServiceService(servicesRepo, usersRepo, joinRequestsRepo, engine)
	transactionService := transaction.NewTransactionService(transactionsRepo, servicesRepo, usersRepo, joinRequestsRepo, engine)
	joinRequestService := joinrequest.NewJoinRequestService(joinRequestsRepo, servicesRepo, usersRepo, transactionService)
	wikiDataService := wikidata.NewWikiDataService(
		utils.GetCacheClient(),
		time.Duration(config.AppConfig.WikiDataCacheTTLMinutes)*time.Minute,
	)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		UserRepo: usersRepo,

		Auth:         &handlers.AuthHandler{Users: userService},
		Users:        &handlers.UserHandler{Users: userService},
		Services:     &handlers.ServiceHandler{Services: serviceService},
		Transactions: &handlers.TransactionHandler{Transactions: transactionService},
		JoinRequests: &handlers.JoinRequestHandler{Requests: joinRequestService},
		TimeBank:     &handlers.TimeBankHandler{Engine: engine},
		Admin: &handlers.AdminHandler{
			Engine:       engine,
			Transactions: transactionService,
			Users:        userService,
			Services:     serviceService,
		},
		WikiData: &handlers.WikiDataHandler{WikiData: wikiDataService},
	}

	routes.RegisterRoutes(router, handlerBundle)

	// Background deadline sweep.
	sweeper := cron.StartExpirySweep(serviceService)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
