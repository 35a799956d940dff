package main

import (
	"flag"

	log "github.com/sirupsen/logrus"

	C "funnelcast/config"
	M "funnelcast/model"
)

func main() {
	env := flag.String("env", "development", "")

	dbHost := flag.String("db_host", "localhost", "")
	dbPort := flag.Int("db_port", 5432, "")
	dbUser := flag.String("db_user", "funnelcast", "")
	dbName := flag.String("db_name", "funnelcast", "")
	dbPass := flag.String("db_pass", "", "")

	flag.Parse()

	C.InitConf(&C.Configuration{
		AppName: "db_create",
		Env:     *env,
		DBInfo: C.DBConf{
			Host:     *dbHost,
			Port:     *dbPort,
			User:     *dbUser,
			Name:     *dbName,
			Password: *dbPass,
		},
	})

	if C.GetConfig().Env != C.DEVELOPMENT {
		log.Error("Not Development Environment. Aborting")
		return
	}

	if err := C.InitDB(C.GetConfig().DBInfo); err != nil {
		log.WithError(err).Fatal("Failed to initialize DB.")
	}
	db := C.GetServices().Db
	defer db.Close()

	// Input tables, owned upstream but created here for development setups.
	if err := db.CreateTable(&M.FunnelRecord{}).Error; err != nil {
		log.WithFields(log.Fields{"err": err}).Error("funnel_records table creation failed.")
	} else {
		log.Info("Created funnel_records table.")
	}
	if err := db.CreateTable(&M.ForecastTarget{}).Error; err != nil {
		log.WithFields(log.Fields{"err": err}).Error("forecast_targets table creation failed.")
	} else {
		log.Info("Created forecast_targets table.")
	}
	if err := db.Exec("CREATE TABLE active_owners (owner_id text PRIMARY KEY);").Error; err != nil {
		log.WithFields(log.Fields{"err": err}).Error("active_owners table creation failed.")
	} else {
		log.Info("Created active_owners table.")
	}

	// Output tables.
	if err := db.CreateTable(&M.PointForecast{}).Error; err != nil {
		log.WithFields(log.Fields{"err": err}).Error("point_forecasts table creation failed.")
	} else {
		log.Info("Created point_forecasts table.")
	}
	if err := db.CreateTable(&M.DailyProjection{}).Error; err != nil {
		log.WithFields(log.Fields{"err": err}).Error("daily_projections table creation failed.")
	} else {
		log.Info("Created daily_projections table.")
	}
	if err := db.Exec("CREATE INDEX daily_projections_segment_idx ON daily_projections(channel, source, stage, date);").Error; err != nil {
		log.WithFields(log.Fields{"err": err}).Error("daily_projections index creation failed.")
	} else {
		log.Info("daily_projections segment index created.")
	}
}
