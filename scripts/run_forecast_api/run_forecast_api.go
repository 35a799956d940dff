package main

import (
	"flag"
	"fmt"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	C "funnelcast/config"
	"funnelcast/handler"
	storePostgres "funnelcast/store/postgres"
)

func main() {
	env := flag.String("env", "development", "")
	port := flag.Int("port", 8080, "")

	dbHost := flag.String("db_host", "localhost", "")
	dbPort := flag.Int("db_port", 5432, "")
	dbUser := flag.String("db_user", "funnelcast", "")
	dbName := flag.String("db_name", "funnelcast", "")
	dbPass := flag.String("db_pass", "", "")

	flag.Parse()

	if *env != "development" && *env != "staging" && *env != "production" {
		panic(fmt.Errorf("env [ %s ] not recognised", *env))
	}

	config := &C.Configuration{
		AppName: "funnel_forecast_api",
		Env:     *env,
		Port:    *port,
		DBInfo: C.DBConf{
			Host:     *dbHost,
			Port:     *dbPort,
			User:     *dbUser,
			Name:     *dbName,
			Password: *dbPass,
		},
	}

	C.InitConf(config)
	if err := C.InitDB(config.DBInfo); err != nil {
		log.WithError(err).Fatal("Failed to initialize DB.")
	}
	db := C.GetServices().Db
	defer db.Close()

	if !C.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	handler.SetupRoutes(r, storePostgres.NewStore(db))

	log.WithField("port", *port).Info("Forecast results API listening.")
	if err := r.Run(fmt.Sprintf(":%d", *port)); err != nil {
		log.WithError(err).Fatal("Forecast results API crashed.")
	}
}
