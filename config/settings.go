package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Settings holds all runtime configuration, read from the environment.
type Settings struct {
	Port     string `mapstructure:"PORT"`
	Stage    string `mapstructure:"STAGE"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
	DBURL    string `mapstructure:"DB_URL"`

	JWTSecret      string `mapstructure:"JWT_SECRET"`
	JWTExpiryHours int    `mapstructure:"JWT_EXPIRY_HOURS"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`

	TwilioAccountSID  string `mapstructure:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken   string `mapstructure:"TWILIO_AUTH_TOKEN"`
	TwilioPhoneNumber string `mapstructure:"TWILIO_PHONE_NUMBER"`

	InvoiceJobSchedule  string `mapstructure:"INVOICE_JOB_SCHEDULE"`
	ReminderJobSchedule string `mapstructure:"REMINDER_JOB_SCHEDULE"`
	LateFeeJobSchedule  string `mapstructure:"LATE_FEE_JOB_SCHEDULE"`
	ReminderDaysAhead   int    `mapstructure:"REMINDER_DAYS_AHEAD"`
}

var settingKeys = []string{
	"PORT", "STAGE", "LOG_LEVEL", "DB_URL",
	"JWT_SECRET", "JWT_EXPIRY_HOURS", "ALLOWED_ORIGINS",
	"TWILIO_ACCOUNT_SID", "TWILIO_AUTH_TOKEN", "TWILIO_PHONE_NUMBER",
	"INVOICE_JOB_SCHEDULE", "REMINDER_JOB_SCHEDULE", "LATE_FEE_JOB_SCHEDULE",
	"REMINDER_DAYS_AHEAD",
}

// Load reads settings from environment variables, applying defaults.
func Load() (*Settings, error) {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("STAGE", "dev")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("JWT_EXPIRY_HOURS", 24)
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("INVOICE_JOB_SCHEDULE", "0 6 1 * *")  // 06:00 on the 1st
	viper.SetDefault("REMINDER_JOB_SCHEDULE", "0 9 * * *") // 09:00 daily
	viper.SetDefault("LATE_FEE_JOB_SCHEDULE", "0 7 * * *") // 07:00 daily
	viper.SetDefault("REMINDER_DAYS_AHEAD", 3)
	viper.AutomaticEnv()

	for _, key := range settingKeys {
		_ = viper.BindEnv(key)
	}

	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return nil, err
	}

	if s.DBURL == "" {
		return nil, errors.New("DB_URL is required")
	}
	if s.ReminderDaysAhead < 0 {
		return nil, errors.New("REMINDER_DAYS_AHEAD cannot be negative")
	}
	return &s, nil
}

// Origins splits ALLOWED_ORIGINS on commas.
func (s *Settings) Origins() []string {
	var out []string
	for _, o := range strings.Split(s.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// TwilioEnabled reports whether SMS credentials are present.
func (s *Settings) TwilioEnabled() bool {
	return s.TwilioAccountSID != "" && s.TwilioAuthToken != "" && s.TwilioPhoneNumber != ""
}
