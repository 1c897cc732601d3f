package enum

import (
	"fmt"
	"strconv"
)

// scanInt reads an integer column. Drivers hand numbers back as int64, or as
// text for some column types.
func scanInt(name string, value interface{}) (int64, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case []byte:
		return parseScanned(name, string(v))
	case string:
		return parseScanned(name, v)
	default:
		return 0, fmt.Errorf("cannot scan %T into %s", value, name)
	}
}

func parseScanned(name, s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot scan %q into %s: %w", s, name, err)
	}
	return n, nil
}
