package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/linkhub/internal/cache"
	"github.com/linkhub/internal/config"
	"github.com/linkhub/internal/db"
	"github.com/linkhub/internal/handler"
	"github.com/linkhub/internal/router"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	store := cache.New(cache.DefaultTTL)
	api := handler.NewAPI(db.DB, store, cfg)

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(api)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
