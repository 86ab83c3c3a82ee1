package protocol

// MaxVarintLen is the maximum number of bytes a varint can occupy.
const MaxVarintLen = 10

// AppendUvarint appends v as a varint: 7 bits of data per byte, the high
// bit marks continuation.
func AppendUvarint(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

// AppendSvarint appends v ZigZag-encoded: 0->0, -1->1, 1->2, -2->3.
func AppendSvarint(buf []byte, v int64) []byte {
	return AppendUvarint(buf, zigzag(v))
}

// DecodeUvarint decodes an unsigned varint from buf.
// Returns (value, bytesRead). If bytesRead < 0, decoding failed:
//   - -1: buffer too short (incomplete varint)
//   - -2: varint overflow (more than 10 bytes)
func DecodeUvarint(buf []byte) (uint64, int) {
	var v uint64
	var shift uint

	for i, b := range buf {
		if i >= MaxVarintLen {
			return 0, -2
		}
		v |= uint64(b&0x7F) << shift
		if b < 0x80 {
			return v, i + 1
		}
		shift += 7
	}
	return 0, -1
}

// DecodeSvarint decodes a ZigZag varint. See DecodeUvarint for errors.
func DecodeSvarint(buf []byte) (int64, int) {
	uv, n := DecodeUvarint(buf)
	if n < 0 {
		return 0, n
	}
	return unzigzag(uv), n
}

// UvarintLen returns the number of bytes needed to encode v as a varint.
func UvarintLen(v uint64) int {
	n := 1
	for v >= 0x80 {
		n++
		v >>= 7
	}
	return n
}

func zigzag(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

func unzigzag(uv uint64) int64 {
	v := int64(uv >> 1)
	if uv&1 != 0 {
		v = ^v
	}
	return v
}
