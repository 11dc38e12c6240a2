package plan

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// EncodeRLE packs a distance matrix as base64 over (value, run) uvarint
// pairs. Open terrain compresses to a few hundred bytes.
func EncodeRLE(vals []uint8) string {
	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte

	for i := 0; i < len(vals); {
		v := vals[i]
		run := 1
		for i+run < len(vals) && vals[i+run] == v {
			run++
		}
		n := binary.PutUvarint(tmp[:], uint64(v))
		buf.Write(tmp[:n])
		n = binary.PutUvarint(tmp[:], uint64(run))
		buf.Write(tmp[:n])
		i += run
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// DecodeRLE unpacks a matrix of exactly size cells. Runs that overflow or
// fall short of size are rejected so a damaged record never yields a
// matrix callers would index out of range.
func DecodeRLE(b64 string, size int) ([]uint8, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	out := make([]uint8, 0, size)
	for i := 0; i < len(raw); {
		v, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		run, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		if v > 0xFF {
			return nil, fmt.Errorf("distance value too large: %d", v)
		}
		if run == 0 || run > uint64(size-len(out)) {
			return nil, fmt.Errorf("run of %d overflows %d cells", run, size)
		}
		for k := uint64(0); k < run; k++ {
			out = append(out, uint8(v))
		}
	}
	if len(out) != size {
		return nil, fmt.Errorf("matrix has %d cells, want %d", len(out), size)
	}
	return out, nil
}
