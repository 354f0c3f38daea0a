package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"

	"crmdesk.com/crmdesk/core"
	"crmdesk.com/crmdesk/infrastructure/communication"
	"crmdesk.com/crmdesk/infrastructure/devops"
	"crmdesk.com/crmdesk/infrastructure/filesystem"
	"crmdesk.com/crmdesk/web/handlers"
	"crmdesk.com/crmdesk/web/middlewares"
	"github.com/gin-gonic/gin"
)

func main() {
	ctx := context.Background()

	cfg, err := devops.Load(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("using REGION: %s\n", cfg.AWSRegion)

	dm, err := core.NewDatabaseManager(cfg.DSN, cfg.MaxConnections, core.LogLevelError)
	if err != nil {
		log.Fatal(err)
	}
	defer dm.Close()

	if err := dm.Migrate(ctx); err != nil {
		log.Fatal(err)
	}

	ep := &handlers.Endpoint{
		Dm:            dm,
		Storage:       filesystem.NewS3Storage(cfg.S3Bucket, cfg.AWSRegion),
		Notifier:      communication.NewSlack(cfg.SlackToken, cfg.SlackChannel),
		Cfg:           cfg,
		CustomerActor: core.SentinelResolver{},
		FollowUpActor: core.FirstUserResolver{},
	}

	r := gin.Default()
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	api := r.Group("/api/v1")
	handlers.Register(api, ep)

	jwtSecret, err := base64.StdEncoding.DecodeString(cfg.SigningSecret)
	if err != nil {
		log.Fatal("Failed to decode JWT secret:", err)
	}
	admin := r.Group("/api/v1/admin")
	admin.Use(middlewares.Authentication(jwtSecret))
	handlers.RegisterAdmin(admin, ep)

	r.Run("0.0.0.0:" + cfg.Port)
}
