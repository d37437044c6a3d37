package main

import (
	"context"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	webAdapter "github.com/AliAsger25/TFWTest/internal/adapters/web"
	"github.com/AliAsger25/TFWTest/internal/app"
	"github.com/AliAsger25/TFWTest/internal/config"
	"github.com/AliAsger25/TFWTest/internal/core"
	"github.com/AliAsger25/TFWTest/internal/db"
	"github.com/AliAsger25/TFWTest/internal/notify"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}

	log := logrus.New()
	log.SetLevel(cfg.ParseLevel())

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	productService := core.NewProductService(pool)
	billService := core.NewBillService(pool)
	notifier := notify.NewGatewayNotifier(cfg.Notify)

	svc := app.NewAppService(productService, billService, notifier, log)
	handler := webAdapter.NewHandler(svc, cfg.Server.AllowedOrigins, log)

	log.Infof("server starting on :%s", cfg.Server.Port)
	if err := http.ListenAndServe(":"+cfg.Server.Port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
