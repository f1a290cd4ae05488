package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Conf is the application configuration, loaded once at startup.
var Conf *Config

type (
	ServerConfig struct {
		Host                   string
		Addr                   string
		SessionExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		Host          string
		Port          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	ReminderConfig struct {
		GraceWindow   time.Duration
		CheckInterval time.Duration
		JobEnabled    bool
	}

	Config struct {
		Env      string // DEV (default), TEST, QA, PROD
		Debug    bool
		TestMode bool
		Build    string

		AppName          string
		SecretKey        []byte
		WorkDir          string
		FrontendBaseURL  string
		DefaultFromEmail mail.Address
		SendgridApiKey   string
		RollbarToken     string

		PasswordResetTimeoutDelta    time.Duration
		VerificationCodeTimeoutDelta time.Duration

		Server   ServerConfig
		Database DatabaseConfig
		Reminder ReminderConfig
	}
)

func (c DatabaseConfig) Address() string {
	return c.Host + ":" + c.Port
}

func init() {
	Conf = loadConfig()
}

func loadConfig() *Config {
	conf := viper.New()
	conf.SetTypeByDefaultValue(true)

	// defaults
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "TaskMatrix")
	conf.SetDefault("secretKey", "h2(h!x)#*c2(#yg4h^$cegm2emypoq5-wer)enb$+57=dz&uox")
	conf.SetDefault("frontendBaseURL", "http://localhost:3000")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("sendgridApiKey", "")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("build", "dev")
	conf.SetDefault("sessionExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("passwordResetTimeoutDelta", time.Hour)
	conf.SetDefault("verificationCodeTimeoutDelta", 120*time.Second)
	conf.SetDefault("serverHost", "localhost")
	conf.SetDefault("serverAddr", ":8000")
	conf.SetDefault("dbEngine", "postgres")
	conf.SetDefault("dbName", "taskmatrix")
	conf.SetDefault("dbHost", "localhost")
	conf.SetDefault("dbPort", "5432")
	conf.SetDefault("dbUser", "")
	conf.SetDefault("dbPassword", "")
	conf.SetDefault("dbAdminUser", "")
	conf.SetDefault("dbAdminPassword", "")
	conf.SetDefault("dbDisableTLS", true)
	conf.SetDefault("reminderGraceWindow", 5*time.Minute)
	conf.SetDefault("reminderCheckInterval", time.Minute)
	conf.SetDefault("reminderJobEnabled", true)

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	conf.SetEnvPrefix(env)

	wd := findWorkDir()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	c := &Config{
		Env:      env,
		Debug:    conf.GetBool("debug"),
		TestMode: env == "TEST",
		Build:    conf.GetString("build"),

		AppName:          conf.GetString("appName"),
		SecretKey:        []byte(conf.GetString("secretKey")),
		WorkDir:          wd,
		FrontendBaseURL:  conf.GetString("frontendBaseURL"),
		DefaultFromEmail: mail.Address{Name: conf.GetString("appName"), Address: conf.GetString("defaultFromEmail")},
		SendgridApiKey:   conf.GetString("sendgridApiKey"),
		RollbarToken:     conf.GetString("rollbarToken"),

		PasswordResetTimeoutDelta:    conf.GetDuration("passwordResetTimeoutDelta"),
		VerificationCodeTimeoutDelta: conf.GetDuration("verificationCodeTimeoutDelta"),

		Server: ServerConfig{
			Host:                   conf.GetString("serverHost"),
			Addr:                   conf.GetString("serverAddr"),
			SessionExpirationDelta: conf.GetDuration("sessionExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        conf.GetString("dbEngine"),
			Name:          conf.GetString("dbName"),
			Host:          conf.GetString("dbHost"),
			Port:          conf.GetString("dbPort"),
			User:          conf.GetString("dbUser"),
			Password:      conf.GetString("dbPassword"),
			AdminUser:     conf.GetString("dbAdminUser"),
			AdminPassword: conf.GetString("dbAdminPassword"),
			DisableTLS:    conf.GetBool("dbDisableTLS"),
		},
		Reminder: ReminderConfig{
			GraceWindow:   conf.GetDuration("reminderGraceWindow"),
			CheckInterval: conf.GetDuration("reminderCheckInterval"),
			JobEnabled:    conf.GetBool("reminderJobEnabled"),
		},
	}
	if c.TestMode {
		c.Database.Name += "_test"
	}
	return c
}

// findWorkDir walks up from the current directory until it finds the module root.
// go-test changes the working directory to the package being tested;
// assets and templates are resolved relative to the root.
func findWorkDir() string {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	currDir := wd
	for {
		if _, err := os.Stat(filepath.Join(currDir, "go.mod")); err == nil {
			return currDir
		}
		newDir := filepath.Dir(currDir)
		if newDir == string(os.PathSeparator) || newDir == currDir {
			return wd // not running from a checkout; fall back to cwd
		}
		currDir = newDir
	}
}
