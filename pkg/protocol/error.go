package protocol

import (
	"errors"

	werrors "github.com/vango-dev/weave/internal/errors"
)

// ErrorMessage reports an error to the peer. Code is a weave error code
// such as "E005".
type ErrorMessage struct {
	Code    string
	Message string
	Fatal   bool // the sender closes the connection after this frame
}

// NewErrorMessage builds an ErrorMessage from err. Coded errors keep their
// code; anything else is reported as E005.
func NewErrorMessage(err error, fatal bool) *ErrorMessage {
	em := &ErrorMessage{Code: "E005", Message: err.Error(), Fatal: fatal}
	var coded *werrors.Error
	if errors.As(err, &coded) {
		em.Code = coded.Code
	}
	return em
}

// EncodeErrorMessage encodes an ErrorMessage payload.
func EncodeErrorMessage(em *ErrorMessage) []byte {
	e := NewEncoder()
	e.WriteString(em.Code)
	e.WriteString(em.Message)
	e.WriteBool(em.Fatal)
	return e.Bytes()
}

// DecodeErrorMessage decodes an ErrorMessage payload.
func DecodeErrorMessage(data []byte) (*ErrorMessage, error) {
	d := NewDecoder(data)
	em, err := decodeErrorMessage(d)
	if err == nil {
		err = d.finish()
	}
	if err != nil {
		return nil, decodeError("error message", err)
	}
	return em, nil
}

func decodeErrorMessage(d *Decoder) (*ErrorMessage, error) {
	var (
		em  ErrorMessage
		err error
	)
	if em.Code, err = d.ReadString(); err != nil {
		return nil, err
	}
	if em.Message, err = d.ReadString(); err != nil {
		return nil, err
	}
	if em.Fatal, err = d.ReadBool(); err != nil {
		return nil, err
	}
	return &em, nil
}

// Error implements the error interface.
func (em *ErrorMessage) Error() string {
	if em.Fatal {
		return "fatal: " + em.Code + ": " + em.Message
	}
	return em.Code + ": " + em.Message
}
