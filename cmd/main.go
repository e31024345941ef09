package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/cmd/config"
	migration "github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/cmd/database/migrate"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/utils"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/utils/logging"
	"github.com/sirupsen/logrus"
)

func main() {
	migrateOnly := flag.Bool("migrate", false, "run database migrations and exit")
	flag.Parse()

	utils.LoadConfig()
	if err := logging.Init(utils.GetConfig("LOG_LEVEL"), utils.GetConfig("SENTRY_DSN"), utils.GetConfig("ENVIRONMENT")); err != nil {
		logrus.WithError(err).Warn("sentry disabled")
	}
	defer logging.Flush()

	db, err := config.ConnectDB()
	if err != nil {
		logrus.WithError(err).Fatal("database connection failed")
	}
	if err := migration.Migrate(db); err != nil {
		logrus.WithError(err).Fatal("migration failed")
	}
	if *migrateOnly {
		logrus.Info("migrations applied")
		return
	}

	app, cleanup, err := config.NewApp(db)
	if err != nil {
		logrus.WithError(err).Fatal("failed to build app")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-quit
		logrus.Info("shutting down")
		_ = app.Shutdown()
	}()

	addr := ":" + utils.GetConfig("PORT")
	if err := app.Listen(addr); err != nil {
		logging.LogError("server_listen", err, map[string]interface{}{"addr": addr})
	}
	cleanup()
}
