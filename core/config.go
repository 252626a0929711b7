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

type (
	Config struct {
		AppName        string
		Env            string // DEV (local; default), TEST, QA, PROD
		Build          string
		Debug          bool
		TestMode       bool
		WorkDir        string
		RollbarToken   string
		SendgridApiKey string
		Server         ServerConfig
		Sheets         SheetsConfig

		defaultFromEmail string
	}

	ServerConfig struct {
		Addr            string
		Host            string
		DebugHost       string
		ShutdownTimeout time.Duration
		DisableReqLogs  bool
	}

	SheetsConfig struct {
		SpreadsheetID   string
		CredentialsFile string
		CredentialsJSON string
		InMem           bool // use the in-memory spreadsheet instead of Google Sheets
		TimeZone        string
		Location        *time.Location
	}
)

// NewConfig reads the configuration from the environment (optionally seeded by `config/.env.<env>`).
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("app_name", "Học Phí")
	v.SetDefault("build", "develop")
	v.SetDefault("default_from_email", "noreply@localhost")
	v.SetDefault("server_addr", ":3000")
	v.SetDefault("server_host", "localhost")
	v.SetDefault("server_debug_host", ":4000")
	v.SetDefault("server_shutdown_timeout", 5*time.Second)
	v.SetDefault("server_disable_req_logs", false)
	v.SetDefault("sheets_spreadsheet_id", "")
	v.SetDefault("sheets_credentials_file", "credentials.json")
	v.SetDefault("sheets_credentials_json", "")
	v.SetDefault("sheets_inmem", false)
	v.SetDefault("sheets_time_zone", "Asia/Ho_Chi_Minh")
	v.SetDefault("rollbar_token", "")
	v.SetDefault("sendgrid_api_key", "")
	v.SetDefault("work_dir", "")

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("test_mode", true)
	}
	v.SetEnvPrefix(env)

	wd := os.Getenv(env + "_WORK_DIR")
	if wd == "" {
		var err error
		if wd, err = os.Getwd(); err != nil {
			log.Fatalf("config.os.Getwd(): %v", err)
		}
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		AppName:          v.GetString("app_name"),
		Env:              env,
		Build:            v.GetString("build"),
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("test_mode"),
		WorkDir:          wd,
		RollbarToken:     v.GetString("rollbar_token"),
		SendgridApiKey:   v.GetString("sendgrid_api_key"),
		defaultFromEmail: v.GetString("default_from_email"),
		Server: ServerConfig{
			Addr:            v.GetString("server_addr"),
			Host:            v.GetString("server_host"),
			DebugHost:       v.GetString("server_debug_host"),
			ShutdownTimeout: v.GetDuration("server_shutdown_timeout"),
			DisableReqLogs:  v.GetBool("server_disable_req_logs"),
		},
		Sheets: SheetsConfig{
			SpreadsheetID:   v.GetString("sheets_spreadsheet_id"),
			CredentialsFile: v.GetString("sheets_credentials_file"),
			CredentialsJSON: v.GetString("sheets_credentials_json"),
			InMem:           v.GetBool("sheets_inmem"),
			TimeZone:        v.GetString("sheets_time_zone"),
		},
	}

	loc, err := time.LoadLocation(conf.Sheets.TimeZone)
	if err != nil {
		log.Printf("config: unknown time zone %q, falling back to Local: %v", conf.Sheets.TimeZone, err)
		loc = time.Local
	}
	conf.Sheets.Location = loc

	return conf
}

// DefaultFromEmail parses the configured sender address.
// An unparsable value is used as-is for the address.
func (c *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(c.defaultFromEmail)
	if err != nil {
		return mail.Address{Name: c.AppName, Address: c.defaultFromEmail}
	}
	if addr.Name == "" {
		addr.Name = c.AppName
	}
	return *addr
}

// NewTestConfig returns a Config suitable for tests: debug off, in-memory sheets, UTC.
func NewTestConfig() *Config {
	return &Config{
		AppName:          "Học Phí",
		Env:              "TEST",
		Build:            "test",
		TestMode:         true,
		defaultFromEmail: "noreply@test.local",
		Server: ServerConfig{
			Addr:            ":0",
			Host:            "localhost",
			ShutdownTimeout: time.Second,
			DisableReqLogs:  true,
		},
		Sheets: SheetsConfig{
			SpreadsheetID: "test-spreadsheet",
			InMem:         true,
			TimeZone:      "UTC",
			Location:      time.UTC,
		},
	}
}
