package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	commondb "seatplan/common/database"
	"seatplan/common/logger"
	commonmqtt "seatplan/common/mqtt"
	rediscommon "seatplan/common/redis"
	"seatplan/internal/catalog"
	"seatplan/internal/config"
	"seatplan/internal/consumer"
	httpapi "seatplan/internal/http"
	"seatplan/internal/notifier"
	"seatplan/internal/repository"
	"seatplan/internal/service"
	"seatplan/internal/store"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "seatplan")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 考场目录：内置 + 数据库中的考场结构
	cat := catalog.Default()
	var placementRepo repository.PlacementRepository = repository.NewMemoryPlacementRepository()

	var db *sql.DB
	if cfg.DBEnabled {
		if d, err := commondb.NewPostgresDB(&cfg.Database); err == nil {
			db = d
			log.Info("DB enabled for seatplan")
		} else {
			log.Warn("DB enabled but connection failed, falling back to memory repository", zap.Error(err))
		}
	}
	if db != nil {
		if err := commondb.EnsureSchema(db); err != nil {
			log.Fatal("Failed to apply schema", zap.Error(err))
		}
		placementRepo = repository.NewPostgresPlacementRepository(db)

		layouts, err := repository.NewPostgresRoomLayoutRepository(db).ListRoomLayouts(ctx)
		if err != nil {
			log.Warn("Failed to load room layouts, using built-in catalog only", zap.Error(err))
		} else if merged, err := cat.Merge(layouts); err != nil {
			log.Warn("Invalid room layout in database, using built-in catalog only", zap.Error(err))
		} else {
			cat = merged
			log.Info("Room layouts loaded", zap.Int("layouts", len(layouts)), zap.Int("rooms", cat.Len()))
		}
	}

	var (
		redisClient *redis.Client
		cache       *store.ResultCache
		notif       notifier.Notifier
	)
	if cfg.RedisEnabled {
		redisClient = rediscommon.NewRedisClient(&cfg.Redis)
		if err := rediscommon.Ping(ctx, redisClient); err != nil {
			if cfg.Placement.TriggerMode == config.TriggerModeEvents {
				log.Fatal("Redis required for events trigger mode", zap.Error(err))
			}
			log.Warn("Redis unreachable, result cache and events disabled", zap.Error(err))
			_ = rediscommon.Close(redisClient)
			redisClient = nil
		}
	}

	var mqttClient *commonmqtt.Client
	if cfg.MQTTEnabled {
		if c, err := commonmqtt.NewClient(&cfg.MQTT, log); err == nil {
			mqttClient = c
		} else {
			log.Warn("MQTT connection failed, MQTT notifications disabled", zap.Error(err))
		}
	}

	if redisClient != nil {
		cache = store.NewResultCache(store.NewRedisKV(redisClient), time.Duration(cfg.Placement.CacheTTL)*time.Second)
		events := notifier.NewEventNotifier(redisClient, cfg.Placement.EventStream, log)
		if mqttClient != nil {
			events = events.WithMQTT(mqttClient, cfg.Placement.MQTTTopic, mqttClient.QoS())
		}
		notif = events
	} else if mqttClient != nil {
		notif = notifier.NewEventNotifier(nil, "", log).WithMQTT(mqttClient, cfg.Placement.MQTTTopic, mqttClient.QoS())
	}

	var defaultSeed *int64
	if cfg.Placement.HasSeed {
		seed := cfg.Placement.Seed
		defaultSeed = &seed
	}
	svc := service.NewPlacementService(cat, placementRepo, cache, notif, defaultSeed, log)

	router := httpapi.NewRouter(log)
	router.RegisterHealthRoutes()
	router.RegisterPlacementRoutes(httpapi.NewPlacementHandler(svc, log))
	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	var requests service.Consumer
	if cfg.Placement.TriggerMode == config.TriggerModeEvents {
		requests = consumer.NewRequestConsumer(
			redisClient,
			svc,
			log,
			cfg.Placement.RequestStream,
			cfg.Placement.ConsumerGroup,
			cfg.Placement.ConsumerName,
			int64(cfg.Placement.BatchSize),
			service.IsClientError,
		)
	}
	app := service.NewApp(srv, requests, log)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info("Shutting down seatplan", zap.String("signal", sig.String()))
		cancel()
	}()

	log.Info("seatplan started",
		zap.String("trigger_mode", cfg.Placement.TriggerMode),
		zap.Bool("db", db != nil),
		zap.Bool("redis", redisClient != nil),
		zap.Bool("mqtt", mqttClient != nil),
		zap.Int("rooms", cat.Len()),
	)
	if err := app.Run(ctx); err != nil {
		log.Error("seatplan stopped with error", zap.Error(err))
	}

	if mqttClient != nil {
		mqttClient.Disconnect()
	}
	if redisClient != nil {
		_ = rediscommon.Close(redisClient)
	}
	_ = commondb.Close(db)
}
