package logx

import (
	"github.com/bayti-store/server/internal/core"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var DefaultLoggerOpts = &LoggerOpts{
	Environment: core.Development,
	Service:     "bayti-store",
}

type LoggerOpts struct {
	Environment core.Environment
	Service     string
}

func safe(otps ...LoggerOpts) *LoggerOpts {
	if len(otps) == 0 {
		return DefaultLoggerOpts
	}
	if otps[0].Service == "" {
		otps[0].Service = DefaultLoggerOpts.Service
	}
	return &otps[0]
}

// Init configures the global zerolog logger. Production gets structured JSON
// at info level; everything else gets the console writer at debug level.
func Init(otps ...LoggerOpts) {
	opts := safe(otps...)
	if opts.Environment == core.Production {
		log.Logger = log.Logger.Level(zerolog.InfoLevel).With().Str("service", opts.Service).Logger()
	} else {
		log.Logger = zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Caller().Logger()
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	}
}

func Debug() *zerolog.Event {
	return log.Debug()
}

func Info() *zerolog.Event {
	return log.Info()
}

func Warn() *zerolog.Event {
	return log.Warn()
}

func Error() *zerolog.Event {
	return log.Error()
}

func Panic() *zerolog.Event {
	return log.Panic()
}

func Fatal() *zerolog.Event {
	return log.Fatal()
}
