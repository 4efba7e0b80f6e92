package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/PhacedDaWind/SmartFit-sub000/api"
	"github.com/PhacedDaWind/SmartFit-sub000/internal/activity"
	"github.com/PhacedDaWind/SmartFit-sub000/internal/chat"
	"github.com/PhacedDaWind/SmartFit-sub000/internal/mail"
	"github.com/PhacedDaWind/SmartFit-sub000/internal/platform/config"
	"github.com/PhacedDaWind/SmartFit-sub000/internal/platform/database"
	"github.com/PhacedDaWind/SmartFit-sub000/internal/platform/health"
	"github.com/PhacedDaWind/SmartFit-sub000/internal/platform/logger"
	"github.com/PhacedDaWind/SmartFit-sub000/internal/platform/shutdown"
	"github.com/PhacedDaWind/SmartFit-sub000/internal/platform/startup"
	"github.com/PhacedDaWind/SmartFit-sub000/internal/prefs"
	"github.com/PhacedDaWind/SmartFit-sub000/internal/sensor"
	"github.com/PhacedDaWind/SmartFit-sub000/internal/stats"
	"github.com/PhacedDaWind/SmartFit-sub000/internal/steps"
	"github.com/PhacedDaWind/SmartFit-sub000/internal/user"
	"github.com/PhacedDaWind/SmartFit-sub000/pkg/bus"
	"github.com/PhacedDaWind/SmartFit-sub000/pkg/token"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env缺失不是错误，容器环境直接注入环境变量
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	logger.Init(cfg.Log)

	// 会话签名密钥在每次启动时重新生成，重启会使所有会话失效
	token.GenerateSecretKey()

	// --- 存储层 ---
	db, err := database.New(cfg.Database.Sqlite)
	if err != nil {
		log.Fatalf("连接数据库失败: %v", err)
	}
	rdb, err := database.NewRedis(context.Background(), cfg.Database.Redis)
	if err != nil {
		log.Fatalf("连接Redis失败: %v", err)
	}
	dbStatus := database.NewStatus()

	if err := startup.InitializeApplication(db); err != nil {
		log.Fatalf("应用初始化失败: %v", err)
	}

	// --- 领域装配 ---
	eventBus := bus.New()
	prefsStore := prefs.NewRedisStore(rdb, eventBus)
	mailer := mail.New(cfg.Mail)

	userService := user.NewService(db, prefsStore, rdb, mailer)
	activityRepo := activity.NewRepository(db, eventBus)
	stepsRepo := steps.NewRepository(db, eventBus, cfg.Steps.CaloriesPerStep)

	device := sensor.NewChannelDevice(true, true)
	source := sensor.NewSource(device, cfg.Steps.MotionThreshold)

	pipeline := stats.NewPipeline(prefsStore, activityRepo, stepsRepo, userService, eventBus,
		cfg.Steps.DefaultGoal, cfg.Steps.CaloriesPerStep)
	tracker := stats.NewTracker(source, stepsRepo, prefsStore, eventBus)

	chatService := chat.NewService(db, cfg.Chat)
	chatQuota := chat.NewQuota(rdb, cfg.Chat.DailyLimit)

	// --- 后台服务 ---
	coordinator := shutdown.NewCoordinator()

	trackerHandle, err := coordinator.GracefulManager.NewServiceHandle("step-tracker")
	if err != nil {
		log.Fatalf("注册步数追踪器失败: %v", err)
	}
	go tracker.Run(trackerHandle)

	checker := health.NewChecker(rdb, dbStatus)
	checkerHandle, err := coordinator.ForcefulManager.NewServiceHandle("redis-health")
	if err != nil {
		log.Fatalf("注册健康检查服务失败: %v", err)
	}
	go checker.Run(checkerHandle)

	// --- HTTP 服务器 ---
	gin.SetMode(cfg.Server.Mode)
	r := gin.Default()
	r.Use(api.RequestID())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.Cors.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
	}))

	api.SetupRoutes(r, api.Handlers{
		User:     user.NewHandler(userService, prefsStore),
		Activity: activity.NewHandler(activityRepo),
		Steps:    steps.NewHandler(stepsRepo),
		Stats:    stats.NewHandler(pipeline),
		Sensor:   sensor.NewHandler(device),
		Chat:     chat.NewHandler(chatService, chatQuota),
	})

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	go func() {
		fmt.Printf("服务器启动，监听地址 %s\n", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("服务器启动失败: %v", err)
		}
	}()

	coordinator.ListenForSignalsAndShutdown(server)
}
