package core

import (
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Database engines
const (
	EngineMemory   = "memory"
	EnginePostgres = "postgres"
	EngineMongo    = "mongo"
)

type (
	Config struct {
		AppName          string `validate:"required"`
		Env              string
		Build            string
		Debug            bool
		TestMode         bool
		WorkDir          string
		SecretKey        string `validate:"required"`
		FrontendBaseURL  string
		SendgridApiKey   string
		RollbarToken     string
		defaultFromEmail string

		Server     ServerConfig
		Database   DatabaseConfig
		Moderation ModerationConfig
		Analytics  AnalyticsConfig
	}

	ServerConfig struct {
		Address            string
		Host               string
		DebugHost          string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
		ReviewRateLimit    float64 `validate:"gte=0"` // submissions per second per client; 0 disables
	}

	DatabaseConfig struct {
		Engine        string `validate:"oneof=memory postgres mongo"`
		Host          string
		Port          int
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
		MongoURI      string
	}

	// ModerationConfig holds the escalation thresholds applied to one-star reviews.
	ModerationConfig struct {
		ResourceFlagThreshold int           `validate:"gt=0"`
		OwnerSuspendThreshold int           `validate:"gt=0"`
		RetryMaxElapsed       time.Duration `validate:"gt=0"`
	}

	AnalyticsConfig struct {
		TopRatedLimit int `validate:"gt=0"`
	}
)

func (db DatabaseConfig) Address() string {
	return net.JoinHostPort(db.Host, strconv.Itoa(db.Port))
}

func (conf *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: conf.AppName, Address: conf.defaultFromEmail}
}

// Validate checks the loaded configuration, thresholds in particular.
func (conf *Config) Validate() error {
	if err := validator.New().Struct(conf); err != nil {
		var flds []FieldError
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				flds = append(flds, FieldError{Field: fe.Namespace(), Error: fe.Tag() + " " + fe.Param()})
			}
		}
		return NewValidationError(errors.Wrap(err, "invalid configuration"), flds...)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)
	v.SetDefault("appName", "Maktaba")
	v.SetDefault("build", "develop")
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("secretKey", "kq1-z0u$mw8@r+tf2^xy4!n7p(c3h)dj6=ls#b9&ev5_ag")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.reviewRateLimit", 5.0)

	v.SetDefault("database.engine", EngineMemory)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "maktaba")
	v.SetDefault("database.user", "maktaba")
	v.SetDefault("database.password", "maktaba")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "postgres")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("database.mongoURI", "mongodb://localhost:27017")

	v.SetDefault("moderation.resourceFlagThreshold", 10)
	v.SetDefault("moderation.ownerSuspendThreshold", 100)
	v.SetDefault("moderation.retryMaxElapsed", 2*time.Minute)

	v.SetDefault("analytics.topRatedLimit", 6)
}

// NewConfig loads the configuration from defaults, an optional config/config.yaml,
// an optional config/.env.<env> file and the environment, in increasing priority.
// Environment keys are prefixed with the ENV value, e.g. DEV_MODERATION_RESOURCEFLAGTHRESHOLD.
func NewConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	wd := Getwd()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(wd, "config"))
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "stat %s", dotEnvPath)
	}
	v.AutomaticEnv()

	conf := &Config{
		AppName:          v.GetString("appName"),
		Env:              env,
		Build:            v.GetString("build"),
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		WorkDir:          wd,
		SecretKey:        v.GetString("secretKey"),
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),
		defaultFromEmail: v.GetString("defaultFromEmail"),
		Server: ServerConfig{
			Address:            v.GetString("server.address"),
			Host:               v.GetString("server.host"),
			DebugHost:          v.GetString("server.debugHost"),
			ShutdownTimeout:    v.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta: v.GetDuration("server.jwtExpirationDelta"),
			ReviewRateLimit:    v.GetFloat64("server.reviewRateLimit"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetInt("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
			MongoURI:      v.GetString("database.mongoURI"),
		},
		Moderation: ModerationConfig{
			ResourceFlagThreshold: v.GetInt("moderation.resourceFlagThreshold"),
			OwnerSuspendThreshold: v.GetInt("moderation.ownerSuspendThreshold"),
			RetryMaxElapsed:       v.GetDuration("moderation.retryMaxElapsed"),
		},
		Analytics: AnalyticsConfig{
			TopRatedLimit: v.GetInt("analytics.topRatedLimit"),
		},
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// NewTestConfig returns a valid configuration for tests, without reading the environment.
func NewTestConfig() *Config {
	return &Config{
		AppName:          "Maktaba",
		Env:              "TEST",
		Build:            "test",
		Debug:            true,
		TestMode:         true,
		WorkDir:          Getwd(),
		SecretKey:        "secret",
		FrontendBaseURL:  "http://localhost:3000",
		defaultFromEmail: "noreply@localhost",
		Server: ServerConfig{
			Address:            ":0",
			Host:               "localhost",
			ShutdownTimeout:    time.Second,
			JWTExpirationDelta: 10 * time.Minute,
		},
		Database:   DatabaseConfig{Engine: EngineMemory},
		Moderation: ModerationConfig{ResourceFlagThreshold: 10, OwnerSuspendThreshold: 100, RetryMaxElapsed: time.Second},
		Analytics:  AnalyticsConfig{TopRatedLimit: 6},
	}
}
