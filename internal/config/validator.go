package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

// ValidateConfig performs validation on the GlobalConfig structure.
func ValidateConfig(cfg *GlobalConfig) error {
	validate := validator.New()

	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		level := strings.ToLower(fl.Field().String())
		switch level {
		case "", "trace", "debug", "info", "warn", "error", "fatal", "panic":
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("logformat", func(fl validator.FieldLevel) bool {
		format := strings.ToLower(fl.Field().String())
		switch format {
		case "", "json", "console", "text":
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("cronexpr", func(fl validator.FieldLevel) bool {
		expr := fl.Field().String()
		if expr == "" {
			return true
		}
		_, err := cron.ParseStandard(expr)
		return err == nil
	})

	_ = validate.RegisterValidation("frequency", func(fl validator.FieldLevel) bool {
		freq := fl.Field().String()
		if freq == "" {
			return true
		}
		_, ok := MonitoringFrequencies[freq]
		return ok
	})

	return validate.Struct(cfg)
}
