package logx

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config is read from LOG_DEBUG, LOG_PRETTY_FORMAT and LOG_SERVICE.
type Config struct {
	Debug        bool   `split_words:"true" default:"false"`
	PrettyFormat bool   `split_words:"true" default:"false"`
	Service      string `split_words:"true" default:"callrelay"`
}

var DefaultConfig = &Config{
	Debug:        false,
	PrettyFormat: false,
	Service:      "callrelay",
}

func safe(opts ...Config) *Config {
	if len(opts) == 0 {
		return DefaultConfig
	}
	return &opts[0]
}

// Init replaces the global zerolog logger. Output goes to stdout.
func Init(opts ...Config) {
	InitWriter(os.Stdout, opts...)
}

// InitWriter is Init with an explicit sink. Every line carries the
// service name when one is configured.
func InitWriter(w io.Writer, opts ...Config) {
	conf := safe(opts...)

	out := w
	if conf.PrettyFormat {
		out = zerolog.ConsoleWriter{Out: w}
	}

	level := zerolog.InfoLevel
	if conf.Debug {
		level = zerolog.DebugLevel
	}

	ctx := zerolog.New(out).Level(level).With().Timestamp()
	if conf.Service != "" {
		ctx = ctx.Str("service", conf.Service)
	}
	log.Logger = ctx.Caller().Stack().Logger()
}
