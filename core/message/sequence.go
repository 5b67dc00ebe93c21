package message

import (
	"math"
	"strconv"
)

// SequenceKey reads header as an int64 sequence number.
// Any Go integer type is accepted, as well as a decimal string.
// Unsigned values above math.MaxInt64 are rejected.
func SequenceKey(m Message, header string) (int64, bool) {
	v, ok := m.headers.Get(header)
	if !ok {
		return 0, false
	}

	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int16:
		return int64(n), true
	case int8:
		return int64(n), true
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint8:
		return int64(n), true
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}
