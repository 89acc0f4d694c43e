package keywedge

import (
	"fmt"
	"os"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"go.bug.st/serial"
)

// Config holds the link parameters and pacing tunables for a session.
type Config struct {
	// PortName is the path to the serial device, e.g. /dev/ttyUSB0 or COM3.
	PortName string `validate:"required"`

	BaudRate int
	DataBits int
	Parity   string `validate:"omitempty,oneof=N E O M S"`
	StopBits int

	// ReadTimeout bounds each echo-drain read; a timed-out read is the
	// normal "no data" outcome, not an error.
	ReadTimeout time.Duration

	// CharDelay is the pause inserted after every transmitted character so
	// the adapter can drain its input buffer.
	CharDelay time.Duration

	// Control line state applied at open.
	DTR bool
	RTS bool

	// CancelKey ends the interactive phase. Defaults to ESC.
	CancelKey byte

	LogFile string
}

// DefaultConfig returns the configuration used when no file or flag
// overrides a value. The 30ms character delay was chosen empirically to
// stay under the adapter's input buffer fill rate.
func DefaultConfig() Config {
	return Config{
		BaudRate:    9600,
		DataBits:    8,
		Parity:      "N",
		StopBits:    1,
		ReadTimeout: 300 * time.Millisecond,
		CharDelay:   30 * time.Millisecond,
		DTR:         true,
		RTS:         true,
		CancelKey:   0x1b,
	}
}

// fileConfig mirrors Config for TOML decoding. Delays are plain millisecond
// integers; TOML has no duration type.
type fileConfig struct {
	Port          string `toml:"port"`
	BaudRate      int    `toml:"baud_rate"`
	DataBits      int    `toml:"data_bits"`
	Parity        string `toml:"parity"`
	StopBits      int    `toml:"stop_bits"`
	ReadTimeoutMS int    `toml:"read_timeout_ms"`
	CharDelayMS   int    `toml:"char_delay_ms"`
	DTR           *bool  `toml:"dtr"`
	RTS           *bool  `toml:"rts"`
	CancelKey     int    `toml:"cancel_key"`
	LogFile       string `toml:"log_file"`
}

// LoadConfig reads a TOML config file; values present in the file override
// the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if fc.Port != "" {
		cfg.PortName = fc.Port
	}
	if fc.BaudRate != 0 {
		cfg.BaudRate = fc.BaudRate
	}
	if fc.DataBits != 0 {
		cfg.DataBits = fc.DataBits
	}
	if fc.Parity != "" {
		cfg.Parity = fc.Parity
	}
	if fc.StopBits != 0 {
		cfg.StopBits = fc.StopBits
	}
	if fc.ReadTimeoutMS != 0 {
		cfg.ReadTimeout = time.Duration(fc.ReadTimeoutMS) * time.Millisecond
	}
	if fc.CharDelayMS != 0 {
		cfg.CharDelay = time.Duration(fc.CharDelayMS) * time.Millisecond
	}
	if fc.DTR != nil {
		cfg.DTR = *fc.DTR
	}
	if fc.RTS != nil {
		cfg.RTS = *fc.RTS
	}
	if fc.CancelKey != 0 {
		cfg.CancelKey = byte(fc.CancelKey)
	}
	if fc.LogFile != "" {
		cfg.LogFile = fc.LogFile
	}

	return cfg, nil
}

// mode builds the go.bug.st mode from the validated configuration.
func (c Config) mode() *serial.Mode {
	m := &serial.Mode{
		BaudRate: c.BaudRate,
		DataBits: c.DataBits,
	}

	switch strings.ToUpper(c.Parity) {
	case "", "N":
		m.Parity = serial.NoParity
	case "E":
		m.Parity = serial.EvenParity
	case "O":
		m.Parity = serial.OddParity
	case "M":
		m.Parity = serial.MarkParity
	case "S":
		m.Parity = serial.SpaceParity
	}

	switch c.StopBits {
	case 2:
		m.StopBits = serial.TwoStopBits
	default:
		m.StopBits = serial.OneStopBit
	}

	return m
}
