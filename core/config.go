package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	serverConfig struct {
		Host               string
		Address            string
		DebugHost          string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
		DisableReqLogs     bool
	}

	databaseConfig struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	aiConfig struct {
		BaseURL    string
		APIKey     string
		Model      string
		Timeout    time.Duration
		MaxRetries int
	}

	fcmConfig struct {
		ProjectID         string
		ServiceAccountKey string // JSON content of the service account key
	}

	Config struct {
		viper *viper.Viper

		AppName          string
		Build            string
		Debug            bool
		Env              string
		TestMode         bool
		WorkDir          string
		SecretKey        string
		FrontendBaseURL  string
		Timezone         string
		MobileAPIKey     string
		CronSecret       string
		LockPasswordHash string
		RollbarToken     string
		SendgridApiKey   string
		DefaultFromEmail string
		ReminderEmail    string
		RedisURL         string

		Server   serverConfig
		Database databaseConfig
		AI       aiConfig
		FCM      fcmConfig
	}
)

func (conf *Config) setDefaults() {
	conf.viper.SetTypeByDefaultValue(true)

	conf.viper.SetDefault("appName", "MBA Track")
	conf.viper.SetDefault("build", "develop")
	conf.viper.SetDefault("debug", true)
	conf.viper.SetDefault("secretKey", "o2k&5n#r8v!mz0f$1qj7x^t)w9(h3b@c4e+u6s-y_gdlpia")
	conf.viper.SetDefault("frontendBaseURL", "http://localhost:3000")
	conf.viper.SetDefault("timezone", "UTC")
	conf.viper.SetDefault("mobileApiKey", "")
	conf.viper.SetDefault("cronSecret", "")
	conf.viper.SetDefault("lockPasswordHash", "")
	conf.viper.SetDefault("rollbarToken", "")
	conf.viper.SetDefault("sendgridApiKey", "")
	conf.viper.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.viper.SetDefault("reminderEmail", "")
	conf.viper.SetDefault("redisURL", "")

	conf.viper.SetDefault("serverHost", "localhost")
	conf.viper.SetDefault("serverPort", "8000")
	conf.viper.SetDefault("serverDebugHost", "localhost:4000")
	conf.viper.SetDefault("serverShutdownTimeout", 5*time.Second)
	conf.viper.SetDefault("jwtExpirationDelta", 12*time.Hour)
	conf.viper.SetDefault("disableReqLogs", false)

	conf.viper.SetDefault("dbEngine", "postgres")
	conf.viper.SetDefault("dbHost", "localhost")
	conf.viper.SetDefault("dbPort", "5432")
	conf.viper.SetDefault("dbName", "mbatrack")
	conf.viper.SetDefault("dbUser", "mbatrack")
	conf.viper.SetDefault("dbPassword", "mbatrack")
	conf.viper.SetDefault("dbAdminUser", "postgres")
	conf.viper.SetDefault("dbAdminPassword", "")
	conf.viper.SetDefault("dbDisableTLS", true)

	conf.viper.SetDefault("aiBaseURL", "https://api.openai.com")
	conf.viper.SetDefault("aiApiKey", "")
	conf.viper.SetDefault("aiModel", "gpt-4o-mini")
	conf.viper.SetDefault("aiTimeout", 30*time.Second)
	conf.viper.SetDefault("aiMaxRetries", 2)

	conf.viper.SetDefault("fcmProjectID", "")
	conf.viper.SetDefault("fcmServiceAccountKey", "")
}

func (conf *Config) load() {
	v := conf.viper

	conf.AppName = v.GetString("appName")
	conf.Build = v.GetString("build")
	conf.Debug = v.GetBool("debug")
	conf.TestMode = v.GetBool("testMode")
	conf.SecretKey = v.GetString("secretKey")
	conf.FrontendBaseURL = v.GetString("frontendBaseURL")
	conf.Timezone = v.GetString("timezone")
	conf.MobileAPIKey = v.GetString("mobileApiKey")
	conf.CronSecret = v.GetString("cronSecret")
	conf.LockPasswordHash = v.GetString("lockPasswordHash")
	conf.RollbarToken = v.GetString("rollbarToken")
	conf.SendgridApiKey = v.GetString("sendgridApiKey")
	conf.DefaultFromEmail = v.GetString("defaultFromEmail")
	conf.ReminderEmail = v.GetString("reminderEmail")
	conf.RedisURL = v.GetString("redisURL")

	conf.Server = serverConfig{
		Host:               v.GetString("serverHost"),
		Address:            net.JoinHostPort("", v.GetString("serverPort")),
		DebugHost:          v.GetString("serverDebugHost"),
		ShutdownTimeout:    v.GetDuration("serverShutdownTimeout"),
		JWTExpirationDelta: v.GetDuration("jwtExpirationDelta"),
		DisableReqLogs:     v.GetBool("disableReqLogs"),
	}

	conf.Database = databaseConfig{
		Engine:        v.GetString("dbEngine"),
		Host:          v.GetString("dbHost"),
		Port:          v.GetString("dbPort"),
		Name:          v.GetString("dbName"),
		User:          v.GetString("dbUser"),
		Password:      v.GetString("dbPassword"),
		AdminUser:     v.GetString("dbAdminUser"),
		AdminPassword: v.GetString("dbAdminPassword"),
		DisableTLS:    v.GetBool("dbDisableTLS"),
	}

	conf.AI = aiConfig{
		BaseURL:    strings.TrimRight(v.GetString("aiBaseURL"), "/"),
		APIKey:     v.GetString("aiApiKey"),
		Model:      v.GetString("aiModel"),
		Timeout:    v.GetDuration("aiTimeout"),
		MaxRetries: v.GetInt("aiMaxRetries"),
	}

	conf.FCM = fcmConfig{
		ProjectID:         v.GetString("fcmProjectID"),
		ServiceAccountKey: v.GetString("fcmServiceAccountKey"),
	}
}

// NewConfig reads the app configuration from the environment.
// Variables are prefixed by the value of ENV (DEV by default), e.g. DEV_MOBILEAPIKEY.
func NewConfig() *Config {
	conf := &Config{
		viper:   viper.New(),
		WorkDir: Getwd(),
	}
	conf.setDefaults()

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.viper.SetDefault("testMode", true)
	}
	conf.Env = env
	conf.viper.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(conf.WorkDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.viper.AutomaticEnv()

	conf.load()
	return conf
}

// NewTestConfig returns a Config suitable for tests: debug off, no external services configured.
func NewTestConfig() *Config {
	_ = os.Setenv("ENV", "TEST")
	conf := NewConfig()
	conf.Debug = false
	conf.TestMode = true
	conf.MobileAPIKey = "test-mobile-key"
	conf.CronSecret = "test-cron-secret"
	conf.Server.DisableReqLogs = true
	return conf
}

func (db databaseConfig) Address() string {
	return net.JoinHostPort(db.Host, db.Port)
}

// Location returns the configured local time zone, UTC when unknown.
func (conf *Config) Location() *time.Location {
	loc, err := time.LoadLocation(conf.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (conf *Config) GetDefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(conf.DefaultFromEmail)
	if err != nil {
		return mail.Address{Name: conf.AppName, Address: "noreply@localhost"}
	}
	if addr.Name == "" {
		addr.Name = conf.AppName
	}
	return *addr
}
