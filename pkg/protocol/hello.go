package protocol

// Version is the wire protocol version sent in Hello.
const Version uint16 = 1

// Hello is the first frame a client receives. Seq is the sequence number
// of the snapshot that follows it.
type Hello struct {
	Version  uint16
	ClientID string
	Seq      uint64
}

// EncodeHello encodes a Hello payload.
func EncodeHello(h *Hello) []byte {
	e := NewEncoderWithCap(32)
	e.WriteUint16(h.Version)
	e.WriteString(h.ClientID)
	e.WriteUvarint(h.Seq)
	return e.Bytes()
}

// DecodeHello decodes a Hello payload.
func DecodeHello(data []byte) (*Hello, error) {
	d := NewDecoder(data)
	h, err := decodeHello(d)
	if err == nil {
		err = d.finish()
	}
	if err != nil {
		return nil, decodeError("hello", err)
	}
	return h, nil
}

func decodeHello(d *Decoder) (*Hello, error) {
	var (
		h   Hello
		err error
	)
	if h.Version, err = d.ReadUint16(); err != nil {
		return nil, err
	}
	if h.ClientID, err = d.ReadString(); err != nil {
		return nil, err
	}
	if h.Seq, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	return &h, nil
}
