package docstore

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

var timeType = reflect.TypeOf(time.Time{})

// NormalizeTime converts the timestamp representations a document store may
// hand back into a UTC time.Time. It accepts time.Time, RFC 3339 strings,
// epoch milliseconds, and {seconds, nanos} maps (with or without leading
// underscores). The boolean is false when v is not a recognised timestamp.
func NormalizeTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return t.UTC(), true
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed.UTC(), true
	case int64:
		return time.UnixMilli(t).UTC(), true
	case int:
		return time.UnixMilli(int64(t)).UTC(), true
	case float64:
		return time.UnixMilli(int64(t)).UTC(), true
	case json.Number:
		ms, err := t.Int64()
		if err != nil {
			return time.Time{}, false
		}
		return time.UnixMilli(ms).UTC(), true
	case map[string]any:
		return timestampFromMap(t)
	case Document:
		return timestampFromMap(t)
	}
	return time.Time{}, false
}

func timestampFromMap(m map[string]any) (time.Time, bool) {
	seconds, ok := firstNumber(m, "_seconds", "seconds")
	if !ok {
		return time.Time{}, false
	}
	nanos, _ := firstNumber(m, "_nanoseconds", "nanoseconds", "nanos")
	return time.Unix(seconds, nanos).UTC(), true
}

func firstNumber(m map[string]any, keys ...string) (int64, bool) {
	for _, k := range keys {
		switch n := m[k].(type) {
		case int64:
			return n, true
		case int:
			return int64(n), true
		case float64:
			return int64(n), true
		case json.Number:
			if v, err := n.Int64(); err == nil {
				return v, true
			}
		}
	}
	return 0, false
}

func timeDecodeHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != timeType || data == nil {
		return data, nil
	}
	t, ok := NormalizeTime(data)
	if !ok {
		return nil, fmt.Errorf("unrecognised timestamp %v (%T)", data, data)
	}
	return t, nil
}

// Decode copies doc into out, a pointer to a struct with mapstructure tags.
// Timestamp fields are normalised with NormalizeTime; unknown document
// fields are ignored.
func Decode(doc Document, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: timeDecodeHook,
		Result:     out,
	})
	if err != nil {
		return fmt.Errorf("failed to build document decoder: %w", err)
	}
	if err := decoder.Decode(map[string]any(doc)); err != nil {
		return fmt.Errorf("failed to decode document %q: %w", doc.ID(), err)
	}
	return nil
}
