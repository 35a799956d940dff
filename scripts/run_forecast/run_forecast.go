package main

import (
	"flag"
	"fmt"

	log "github.com/sirupsen/logrus"

	C "funnelcast/config"
	M "funnelcast/model"
	"funnelcast/store"
	storePostgres "funnelcast/store/postgres"
	ForecastJob "funnelcast/task/forecast_job"
	U "funnelcast/util"
)

func main() {
	env := flag.String("env", "development", "")

	dbHost := flag.String("db_host", "localhost", "")
	dbPort := flag.Int("db_port", 5432, "")
	dbUser := flag.String("db_user", "funnelcast", "")
	dbName := flag.String("db_name", "funnelcast", "")
	dbPass := flag.String("db_pass", "", "")

	periodStart := flag.String("period_start", "", "Period start date YYYY-MM-DD")
	periodEnd := flag.String("period_end", "", "Period end date YYYY-MM-DD")
	asOf := flag.String("as_of", "", "As-of date YYYY-MM-DD")
	windowDays := flag.Int("window_days", 90, "Trailing window for rates and volatility")
	variant := flag.String("variant", "full", "Population variant: full or active_owner")
	targetsXLSX := flag.String("targets_xlsx", "", "Optional target workbook to load before the run")

	sentryDSN := flag.String("sentry_dsn", "", "Sentry DSN")

	flag.Parse()

	if *env != "development" && *env != "staging" && *env != "production" {
		panic(fmt.Errorf("env [ %s ] not recognised", *env))
	}

	taskID := "Task#FunnelForecast"
	defer U.NotifyOnPanic(taskID, *env)

	config := &C.Configuration{
		AppName:   "funnel_forecast_job",
		Env:       *env,
		SentryDSN: *sentryDSN,
		DBInfo: C.DBConf{
			Host:     *dbHost,
			Port:     *dbPort,
			User:     *dbUser,
			Name:     *dbName,
			Password: *dbPass,
		},
	}

	C.InitConf(config)
	C.InitSentryLogging(config.SentryDSN, config.AppName)

	if err := C.OverrideDBConfFromEnv(&config.DBInfo); err != nil {
		log.WithError(err).Fatal("Failed to read DB environment overrides.")
	}
	if err := C.InitDB(config.DBInfo); err != nil {
		log.WithError(err).WithFields(log.Fields{"env": *env,
			"host": config.DBInfo.Host, "port": config.DBInfo.Port}).Fatal("Failed to initialize DB.")
	}
	db := C.GetServices().Db
	defer db.Close()

	period, err := parsePeriod(*periodStart, *periodEnd, *asOf)
	if err != nil {
		log.WithError(err).Fatal("Invalid period configuration.")
	}

	s := storePostgres.NewStore(db)
	if *targetsXLSX != "" {
		targets, err := store.LoadTargetsFromXLSX(*targetsXLSX)
		if err != nil {
			log.WithError(err).WithField("file", *targetsXLSX).Fatal("Failed to load target workbook.")
		}
		if err := s.ReplaceForecastTargets(targets); err != nil {
			log.WithError(err).Fatal("Failed to refresh forecast target table.")
		}
		log.WithFields(log.Fields{"file": *targetsXLSX,
			"rows": len(targets)}).Info("Forecast target table refreshed.")
	}

	status, err := ForecastJob.Run(s, ForecastJob.JobConfig{
		Period:     period,
		WindowDays: *windowDays,
		Variant:    M.PopulationVariant(*variant),
	})
	if err != nil {
		log.WithError(err).Fatal("Funnel forecast job failed.")
	}

	log.WithFields(log.Fields{"run_id": status.RunID,
		"duration_seconds": status.Duration.Seconds()}).Info("Funnel forecast job done.")
}

func parsePeriod(start, end, asOf string) (M.Period, error) {
	var period M.Period
	var err error

	if period.Start, err = U.ParseDateZ(start); err != nil {
		return period, fmt.Errorf("bad period_start %q", start)
	}
	if period.End, err = U.ParseDateZ(end); err != nil {
		return period, fmt.Errorf("bad period_end %q", end)
	}
	if period.AsOf, err = U.ParseDateZ(asOf); err != nil {
		return period, fmt.Errorf("bad as_of %q", asOf)
	}
	return period, period.Validate()
}
