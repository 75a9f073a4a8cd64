package main

import (
	"context"
	"log"

	"moovyzoo/internal/config"
	"moovyzoo/internal/model"
	"moovyzoo/internal/pkg"
	"moovyzoo/internal/realtime"
	"moovyzoo/internal/repository/mysql"
	"moovyzoo/internal/repository/redis"
	"moovyzoo/internal/router"
	"moovyzoo/internal/service"
)

func main() {
	cfg := config.Load()
	pkg.SetJWTSecrets(cfg.JWTAccessSecret, cfg.JWTRefreshSecret)

	if err := mysql.InitDB(cfg.MySQLDSN); err != nil {
		panic(err)
	}
	if err := redis.Init(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
		panic(err)
	}

	// Auto migration; fine for development, schema tooling owns production.
	mysql.DB.AutoMigrate(
		&model.User{},
		&model.Habitat{},
		&model.HabitatMember{},
		&model.Discussion{},
		&model.Poll{},
		&model.PollVote{},
		&model.WatchParty{},
		&model.WatchPartyParticipant{},
		&model.Message{},
		&model.ChangeOutbox{},
	)

	ctx := context.Background()

	// Change events: outbox rows drain to Kafka, the bridge reads them back
	// and fans out to websocket clients.
	sender := realtime.Sender(realtime.LogSender)
	producer, err := pkg.NewEventProducer(pkg.KafkaConfig{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic})
	if err != nil {
		log.Printf("kafka producer unavailable, falling back to log sender: %v", err)
	} else {
		sender = realtime.KafkaSender(producer)
		defer producer.Close()
	}
	relayer := realtime.NewOutboxRelayer(mysql.NewOutboxRepository(), sender)
	go relayer.Run(ctx)

	hub := realtime.NewHub()
	if producer != nil {
		bridge := realtime.NewKafkaBridge(cfg.KafkaBrokers, cfg.KafkaTopic, "moovyzoo-ws", realtime.BridgeConfig{}, func(err error) {
			log.Printf("bridge gave up: %v", err)
		})
		bridge.Subscribe("", "", hub.Forward)
		if err := bridge.Connect(); err != nil {
			log.Printf("bridge connect: %v", err)
		}
		defer bridge.Disconnect()
	}

	go service.NewMemberCountReconciler().Run(ctx)

	r := router.InitRouter(cfg, hub)
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal(err)
	}
}
