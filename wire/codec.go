// Package wire frames chat messages as newline-delimited JSON over a stream.
// The codec knows nothing about sessions or the registry; it only turns bytes
// into typed messages and back.
package wire

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"chat-room/domain"
	"chat-room/errors"
)

// MaxFrameSize bounds one frame. Frames beyond it are a protocol violation.
const MaxFrameSize = 64 * 1024

type Decoder struct {
	scanner *bufio.Scanner
}

func NewDecoder(r io.Reader) *Decoder {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 4096), MaxFrameSize)
	return &Decoder{scanner: s}
}

// ReadLine consumes one raw frame without JSON decoding.
// The handshake uses it: the first frame is the bare identity line.
func (d *Decoder) ReadLine() (string, error) {
	if !d.scanner.Scan() {
		if err := d.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(d.scanner.Text()), nil
}

// Decode reads the next frame and unmarshals it.
// A frame that is not valid JSON yields ErrMalformedFrame.
func (d *Decoder) Decode() (domain.Message, error) {
	if !d.scanner.Scan() {
		if err := d.scanner.Err(); err != nil {
			return domain.Message{}, err
		}
		return domain.Message{}, io.EOF
	}
	var m domain.Message
	if err := json.Unmarshal(d.scanner.Bytes(), &m); err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", errors.ErrMalformedFrame, err)
	}
	return m, nil
}

type Encoder struct {
	w *bufio.Writer
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w)}
}

func (e *Encoder) Encode(m domain.Message) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if _, err := e.w.Write(payload); err != nil {
		return err
	}
	if err := e.w.WriteByte('\n'); err != nil {
		return err
	}
	return e.w.Flush()
}
