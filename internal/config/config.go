package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr       string
	Port             string
	DatabasePath     string
	RevalidateSecret string
	AdminAPIToken    string
	SiteBaseURL      string
	GinMode          string
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
// 本地开发时优先加载 .env 文件。
func Load() AppConfig {
	_ = godotenv.Load()

	port := getEnv("PORT", "8080")

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	return AppConfig{
		ListenAddr:       listenAddr,
		Port:             port,
		DatabasePath:     getEnv("DATABASE_PATH", "linkhub.db"),
		RevalidateSecret: strings.TrimSpace(os.Getenv("REVALIDATE_SECRET")),
		AdminAPIToken:    strings.TrimSpace(os.Getenv("ADMIN_API_TOKEN")),
		SiteBaseURL:      getEnv("SITE_BASE_URL", "http://localhost:8080"),
		GinMode:          getEnv("GIN_MODE", "release"),
	}
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}
