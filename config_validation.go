package keywedge

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateConfig validates link and pacing configuration parameters.
func ValidateConfig(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	validBaudRates := []int{1200, 2400, 4800, 9600, 19200, 38400, 57600, 115200, 230400, 460800, 921600}
	if !containsInt(validBaudRates, cfg.BaudRate) {
		return fmt.Errorf("invalid baud rate %d, must be one of: %v", cfg.BaudRate, validBaudRates)
	}

	if cfg.DataBits < 5 || cfg.DataBits > 8 {
		return fmt.Errorf("data bits must be 5-8, got: %d", cfg.DataBits)
	}

	if cfg.StopBits != 1 && cfg.StopBits != 2 {
		return fmt.Errorf("stop bits must be 1 or 2, got: %d", cfg.StopBits)
	}

	if cfg.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive: %v", cfg.ReadTimeout)
	}

	if cfg.CharDelay < 0 {
		return fmt.Errorf("character delay cannot be negative: %v", cfg.CharDelay)
	}

	return nil
}

func containsInt(slice []int, val int) bool {
	for _, v := range slice {
		if v == val {
			return true
		}
	}
	return false
}
