package main

import (
	"context"
	"log"

	"go-ticketing-platform/config"
	"go-ticketing-platform/internal/cache"
	"go-ticketing-platform/internal/database"
	"go-ticketing-platform/internal/handler"
	"go-ticketing-platform/internal/middleware"
	"go-ticketing-platform/internal/qrsign"
	"go-ticketing-platform/internal/queue"
	"go-ticketing-platform/internal/repository"
	"go-ticketing-platform/internal/service"
	"go-ticketing-platform/internal/worker"
	"go-ticketing-platform/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env 不存在時沿用環境變數
	_ = godotenv.Load()

	cfg := config.LoadConfig()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer pool.Close()

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	defer rdb.Close()

	signer := qrsign.NewSigner(cfg.QR.SecretKey)

	seatRepo := repository.NewSeatRepository(pool)
	cartRepo := repository.NewCartRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	ticketTypeRepo := repository.NewTicketTypeRepository(pool)
	eventRepo := repository.NewEventRepository(pool)
	entryRepo := repository.NewEntryRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	inventory := cache.NewGAInventoryManager(rdb)

	renderQueue, err := queue.NewRedisStreamQRQueue(rdb, "", nil)
	if err != nil {
		log.Fatalf("Failed to initialize render queue: %v", err)
	}

	ticketService := service.NewTicketService(pool, ticketRepo, seatRepo, orderRepo, signer)
	cartService := service.NewCartService(pool, cartRepo, seatRepo, ticketTypeRepo, inventory)
	orderService := service.NewOrderService(pool, orderRepo, cartRepo, seatRepo, ticketRepo, ticketTypeRepo, ticketService, renderQueue, inventory)
	entryService := service.NewEntryService(pool, entryRepo, ticketRepo, orderRepo, eventRepo, signer)
	eventService := service.NewEventService(eventRepo, ticketTypeRepo, inventory)
	seatService := service.NewSeatService(seatRepo)

	ctx := context.Background()
	qrWorker := worker.NewQRWorker(ticketRepo, renderQueue)
	if err := qrWorker.Start(ctx); err != nil {
		log.Fatalf("Failed to start qr worker: %v", err)
	}

	auth := middleware.JWTAuth(cfg.Auth.JWTSecret)

	router := gin.Default()
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	handler.NewEventHandler(eventService).RegisterRoutes(router, auth)
	handler.NewSeatHandler(seatService, userRepo).RegisterRoutes(router, auth)
	handler.NewCartHandler(cartService).RegisterRoutes(router, auth)
	handler.NewOrderHandler(orderService).RegisterRoutes(router, auth)
	handler.NewTicketHandler(ticketService).RegisterRoutes(router, auth)
	handler.NewEntryHandler(entryService).RegisterRoutes(router, auth)

	logger.WithComponent("main").Info("server starting")
	router.Run() // デフォルトで0.0.0.0:8080で待機します
}
