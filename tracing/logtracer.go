package tracing

import (
	"github.com/rs/zerolog"
	"github.com/sarchlab/memoprop/hooking"
)

// LogTracer writes every accessor event to a zerolog logger. Getter errors
// are logged at warn level, everything else at debug level.
type LogTracer struct {
	logger zerolog.Logger
}

// NewLogTracer creates a LogTracer writing to logger.
func NewLogTracer(logger zerolog.Logger) *LogTracer {
	return &LogTracer{logger: logger}
}

// Func logs one event.
func (t *LogTracer) Func(ctx hooking.HookCtx) {
	access, ok := accessOf(ctx)
	if !ok {
		return
	}

	event := t.logger.Debug()
	if access.Err != nil {
		event = t.logger.Warn().Err(access.Err)
	}

	if event == nil {
		return
	}

	event.
		Str("attr", access.Attr).
		Str("key", access.Key).
		Str("scope", access.Scope.String()).
		Str("pos", ctx.Pos.Name).
		Str("owner", DescribeOwner(access.Owner)).
		Bool("fill", access.Fill).
		Msg("memoized attribute access")
}
