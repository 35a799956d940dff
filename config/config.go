package config

import (
	"fmt"

	"github.com/getsentry/sentry-go"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

const (
	DEVELOPMENT = "development"
	STAGING     = "staging"
	PRODUCTION  = "production"
)

type DBConf struct {
	Host     string `json:"host" envconfig:"DB_HOST"`
	Port     int    `json:"port" envconfig:"DB_PORT"`
	User     string `json:"user" envconfig:"DB_USER"`
	Name     string `json:"name" envconfig:"DB_NAME"`
	Password string `json:"password" envconfig:"DB_PASS"`
}

type Configuration struct {
	AppName   string `json:"app_name"`
	Env       string `json:"env"`
	Port      int    `json:"port"`
	DBInfo    DBConf `json:"db"`
	SentryDSN string `json:"sentry_dsn"`
}

type Services struct {
	Db *gorm.DB
}

var configuration *Configuration
var services *Services = &Services{}

// InitConf stores the configuration and sets up logging. Must be called
// before any other Init.
func InitConf(config *Configuration) {
	configuration = config
	initLogging()
}

func initLogging() {
	// Log as JSON instead of the default ASCII formatter.
	log.SetFormatter(&log.JSONFormatter{})

	if IsDevelopment() {
		log.SetLevel(log.DebugLevel)
	}
}

// OverrideDBConfFromEnv applies DB_* environment variables on top of the
// flag-provided values. Empty env vars leave the flag values untouched.
func OverrideDBConfFromEnv(dbConf *DBConf) error {
	return envconfig.Process("", dbConf)
}

func InitDB(dbConf DBConf) error {
	db, err := gorm.Open("postgres", fmt.Sprintf(
		"host=%s port=%d user=%s dbname=%s password=%s sslmode=disable",
		dbConf.Host, dbConf.Port, dbConf.User, dbConf.Name, dbConf.Password))
	if err != nil {
		log.WithFields(log.Fields{"err": err}).Error("Failed Db Initialization")
		return err
	}

	// Connection pooling and logging.
	db.DB().SetMaxIdleConns(10)
	db.DB().SetMaxOpenConns(50)
	db.LogMode(IsDevelopment())

	services.Db = db
	log.Info("Db Service initialized")
	return nil
}

func InitSentryLogging(dsn, appName string) {
	if dsn == "" {
		return
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: GetConfig().Env,
		ServerName:  appName,
	})
	if err != nil {
		log.WithError(err).Error("Failed to initialize sentry logging.")
		return
	}
	log.Info("Sentry logging initialized")
}

func GetConfig() *Configuration {
	return configuration
}

func GetServices() *Services {
	return services
}

func IsDevelopment() bool {
	return configuration == nil || configuration.Env == DEVELOPMENT
}
