package bootstrap

import (
	"context"
	"log"

	"ai-research-be/internal/config"
	"ai-research-be/internal/controller"
	"ai-research-be/internal/handler"
	"ai-research-be/internal/pkg/logger"
	"ai-research-be/internal/repository/memory"
	"ai-research-be/internal/repository/unitofwork"
	"ai-research-be/internal/service"
	"ai-research-be/internal/websocket"
	"ai-research-be/pkg/executor"
	pktNats "ai-research-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ResearchController  controller.IResearchController
	HistoryController   controller.IHistoryController
	KnowledgeController controller.IKnowledgeController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	StreamHandler *handler.StreamHandler
	WebSocketHub  *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/stream.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// In-memory run registry (cancellation flags for in-flight runs)
	runRegistry := memory.NewRunRegistry()

	// 3. Services
	publisherService := service.NewPublisherService(pubSub, cfg.Research.RunTopicName)
	streamService := service.NewStreamService(wsHub, wsLogger)
	recorderService := service.NewRecorderService(uowFactory, sysLogger)

	lifecycleService := service.NewLifecycleService(
		uowFactory,
		publisherService,
		streamService,
		runRegistry,
		natsPub,
		sysLogger,
	)
	historyService := service.NewHistoryService(uowFactory, lifecycleService, natsPub, sysLogger)
	knowledgeService := service.NewKnowledgeService(uowFactory, sysLogger)

	// Executor. The simulated pipeline is the only provider for now; a real
	// one plugs in behind the same interface.
	exec := executor.NewSimulatedExecutor(cfg.Research.ExecutorStepDelay)

	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Research.RunTopicName,
		uowFactory,
		lifecycleService,
		streamService,
		recorderService,
		runRegistry,
		exec,
		sysLogger,
	)

	// Handler
	streamHandler := handler.NewStreamHandler(lifecycleService, wsHub, wsLogger)

	// 4. Controllers
	return &Container{
		ResearchController:  controller.NewResearchController(lifecycleService),
		HistoryController:   controller.NewHistoryController(historyService),
		KnowledgeController: controller.NewKnowledgeController(knowledgeService),

		ConsumerService: consumerService,

		StreamHandler: streamHandler,
		WebSocketHub:  wsHub,
	}
}
