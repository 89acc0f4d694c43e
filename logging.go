package keywedge

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// InitLogging configures the global zerolog logger with a rotating file
// sink plus any extra writers (typically a console writer on stderr so the
// echoed adapter output on stdout stays clean).
func InitLogging(logFile string, level zerolog.Level, writers ...io.Writer) {
	var logWriters []io.Writer

	if logFile != "" {
		logWriters = append(logWriters, &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    1,
			MaxBackups: 2,
		})
	}
	logWriters = append(logWriters, writers...)

	if len(logWriters) == 0 {
		log.Logger = zerolog.Nop()
		return
	}

	log.Logger = zerolog.New(io.MultiWriter(logWriters...)).
		Level(level).
		With().Timestamp().Logger()
}
