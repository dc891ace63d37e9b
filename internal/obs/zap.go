package obs

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger adapts a *zap.Logger. Level filtering is left to the zap core.
type ZapLogger struct {
	L *zap.Logger
}

func (z ZapLogger) Logf(level Level, format string, args ...interface{}) {
	if z.L == nil {
		return
	}
	s := z.L.Sugar()
	switch level {
	case Debug:
		s.Debugf(format, args...)
	case Info:
		s.Infof(format, args...)
	case Warn:
		s.Warnf(format, args...)
	default:
		s.Errorf(format, args...)
	}
}

// ZapLevel maps a Level onto the zap equivalent.
func ZapLevel(l Level) zapcore.Level {
	switch l {
	case Debug:
		return zapcore.DebugLevel
	case Info:
		return zapcore.InfoLevel
	case Warn:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

// NewZap builds a console logger writing to stderr at level min. dev selects
// zap's development encoder.
func NewZap(min Level, dev bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if dev {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(ZapLevel(min))
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}
