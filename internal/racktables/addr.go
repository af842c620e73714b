package racktables

import (
	"encoding/binary"
	"fmt"
	"strconv"
)

// rawAddr scans the ip column of the network/address tables. Racktables
// stores IPv4 as an unsigned integer and IPv6 as a 16-byte binary column,
// and the MySQL driver may deliver either as int64 or []byte.
type rawAddr struct {
	i   int64
	b   []byte
	set bool
}

func (r *rawAddr) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case int64:
		r.i = v
		r.set = true
	case uint64:
		r.i = int64(v)
		r.set = true
	case []byte:
		if len(v) == 16 {
			r.b = append([]byte(nil), v...)
			r.set = true
			return nil
		}
		// Numeric column delivered as its decimal text.
		n, err := strconv.ParseUint(string(v), 10, 64)
		if err != nil {
			r.b = append([]byte(nil), v...)
			r.set = true
			return nil
		}
		r.i = int64(n)
		r.set = true
	default:
		return fmt.Errorf("unsupported ip column type %T", src)
	}
	return nil
}

// bytes returns the address in network order: 4 bytes for family 4,
// 16 bytes for family 6.
func (r rawAddr) bytes(family int) []byte {
	if !r.set {
		return nil
	}
	if family == 6 {
		if len(r.b) == 16 {
			return r.b
		}
		return nil
	}
	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, uint32(r.i))
	return out
}
