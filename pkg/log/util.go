package log

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// toFields converts logger arguments into zap fields.
//
// A zap.Field is passed through, a bare error becomes zap.Error, and the
// rest is read as key/value pairs. An unpaired trailing value is keyed by
// its position ("arg#N"); a non-string key is printed with fmt.Sprint.
func toFields(args ...any) []zap.Field {
	if len(args) == 0 {
		return nil
	}

	fields := make([]zap.Field, 0, len(args)/2+1)
	for i := 0; i < len(args); i++ {
		switch v := args[i].(type) {
		case zap.Field:
			fields = append(fields, v)
			continue
		case error:
			fields = append(fields, zap.Error(v))
			continue
		}

		if i == len(args)-1 {
			fields = append(fields, zap.Any(fmt.Sprintf("arg#%d", i), args[i]))
			break
		}

		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		fields = append(fields, field(key, args[i+1]))
		i++
	}
	return fields
}

func field(key string, val any) zap.Field {
	switch v := val.(type) {
	case string:
		return zap.String(key, v)
	case bool:
		return zap.Bool(key, v)
	case int:
		return zap.Int(key, v)
	case int32:
		return zap.Int32(key, v)
	case int64:
		return zap.Int64(key, v)
	case uint32:
		return zap.Uint32(key, v)
	case uint64:
		return zap.Uint64(key, v)
	case float64:
		return zap.Float64(key, v)
	case time.Duration:
		return zap.Duration(key, v)
	case time.Time:
		return zap.Time(key, v)
	case []string:
		return zap.Strings(key, v)
	case []byte:
		return zap.Binary(key, v)
	case error:
		return zap.NamedError(key, v)
	case zapcore.ObjectMarshaler:
		return zap.Object(key, v)
	case fmt.Stringer:
		return zap.Stringer(key, v)
	default:
		return zap.Any(key, v)
	}
}
