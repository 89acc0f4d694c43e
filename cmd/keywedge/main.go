package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/patchkey/keywedge"
)

// Exit codes: each fatal startup or run condition gets its own status so
// wrapper scripts can tell them apart.
const (
	exitOK        = 0
	exitRuntime   = 1
	exitUsage     = 2
	exitLink      = 3
	exitScript    = 4
	exitDirective = 5
)

func main() {
	os.Exit(run())
}

func run() int {
	device := flag.String("device", "", "serial device path, e.g. /dev/ttyUSB0 or COM3")
	baud := flag.Int("baud", 9600, "baud rate")
	dataBits := flag.Int("databits", 8, "data bits")
	parity := flag.String("parity", "N", "parity (N,E,O,M,S)")
	stopBits := flag.Int("stopbits", 1, "stop bits (1 or 2)")
	script := flag.String("script", "", "script file to send; if empty, go straight to interactive mode")
	repeat := flag.Bool("repeat", false, "repeat the script indefinitely")
	charDelay := flag.Duration("chardelay", 30*time.Millisecond, "delay after each transmitted character")
	readTimeout := flag.Duration("read-timeout", 300*time.Millisecond, "echo poll read timeout")
	configPath := flag.String("config", "", "TOML config file; flags override file values")
	cancelKey := flag.Int("cancel-key", 0x1b, "interactive cancel key byte (default ESC)")
	list := flag.Bool("list", false, "list available serial ports and exit")
	verbose := flag.Bool("verbose", false, "log debug detail to stderr")

	flag.Parse()

	if *list {
		ports, err := keywedge.AvailablePorts()
		if err != nil {
			fmt.Fprintf(os.Stderr, "listing ports: %v\n", err)
			return exitRuntime
		}
		if len(ports) == 0 {
			fmt.Println("no serial ports found")
			return exitOK
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return exitOK
	}

	cfg := keywedge.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = keywedge.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			return exitUsage
		}
	}

	// Explicitly set flags win over config file values.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "device":
			cfg.PortName = *device
		case "baud":
			cfg.BaudRate = *baud
		case "databits":
			cfg.DataBits = *dataBits
		case "parity":
			cfg.Parity = *parity
		case "stopbits":
			cfg.StopBits = *stopBits
		case "chardelay":
			cfg.CharDelay = *charDelay
		case "read-timeout":
			cfg.ReadTimeout = *readTimeout
		case "cancel-key":
			cfg.CancelKey = byte(*cancelKey)
		}
	})
	if cfg.PortName == "" {
		fmt.Fprintln(os.Stderr, "no device given (use -device or a config file; -list shows available ports)")
		return exitUsage
	}

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	if *verbose {
		keywedge.InitLogging(cfg.LogFile, level, zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		keywedge.InitLogging(cfg.LogFile, level)
	}

	var text string
	if *script != "" {
		var err error
		text, err = keywedge.LoadScript(*script)
		if err != nil {
			fmt.Fprintf(os.Stderr, "script: %v\n", err)
			return exitScript
		}
	}

	link, err := keywedge.OpenLink(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open: %v\n", err)
		if errors.Is(err, keywedge.ErrLinkUnavailable) || errors.Is(err, keywedge.ErrInvalidPortName) {
			return exitLink
		}
		return exitUsage
	}

	var sessionConsole keywedge.Console
	if console, err := keywedge.OpenConsole(); err != nil {
		// No controlling terminal: run the script phase only.
		fmt.Fprintf(os.Stderr, "no interactive console: %v\n", err)
	} else {
		defer console.Close()
		sessionConsole = console
	}

	session := keywedge.NewSession(link, cfg, sessionConsole, os.Stdout)
	if err := session.Run(text, *repeat); err != nil {
		fmt.Fprintf(os.Stderr, "run: %v\n", err)
		if errors.Is(err, keywedge.ErrDirectiveParse) {
			return exitDirective
		}
		return exitRuntime
	}

	return exitOK
}
