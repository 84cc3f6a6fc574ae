package wire

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"chat-room/domain"
	"chat-room/errors"
)

func TestCodec_Round_Trips_A_Stream_Of_Frames(t *testing.T) {
	req := require.New(t)
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	// Given several frames written back to back
	sent := []domain.Message{
		domain.NewChat("alice", "", "hello"),
		domain.NewChat("alice", "bob", "psst"),
		domain.NewSystem("bob joined the room"),
		domain.NewRosterReply([]string{"alice", "bob"}),
	}
	for _, m := range sent {
		req.NoError(enc.Encode(m))
	}

	// When the stream is decoded
	dec := NewDecoder(&buf)
	for _, want := range sent {
		got, err := dec.Decode()
		req.NoError(err)
		req.Equal(want.Type, got.Type)
		req.Equal(want.From, got.From)
		req.Equal(want.To, got.To)
		req.Equal(want.Body, got.Body)
		req.Equal(want.Entries, got.Entries)
	}

	// Then the stream ends cleanly
	_, err := dec.Decode()
	req.ErrorIs(err, io.EOF)
}

func TestDecoder_ReadLine_Then_Decode(t *testing.T) {
	req := require.New(t)

	// Given a handshake line followed by a JSON frame
	stream := "alice\n" + `{"type":"chat","from":"alice","body":"hi"}` + "\n"
	dec := NewDecoder(strings.NewReader(stream))

	// When the identity line is consumed raw
	name, err := dec.ReadLine()
	req.NoError(err)
	req.Equal("alice", name)

	// Then the following frame decodes normally
	m, err := dec.Decode()
	req.NoError(err)
	req.Equal(domain.TypeChat, m.Type)
	req.Equal("hi", m.Body)
}

func TestDecoder_ReadLine_Trims_Whitespace(t *testing.T) {
	req := require.New(t)
	dec := NewDecoder(strings.NewReader("  alice \r\n"))

	name, err := dec.ReadLine()

	req.NoError(err)
	req.Equal("alice", name)
}

func TestDecoder_Rejects_Malformed_Frame(t *testing.T) {
	req := require.New(t)
	dec := NewDecoder(strings.NewReader("this is not json\n"))

	_, err := dec.Decode()

	req.ErrorIs(err, errors.ErrMalformedFrame)
}

func TestDecoder_Reports_EOF_On_Empty_Stream(t *testing.T) {
	req := require.New(t)
	dec := NewDecoder(strings.NewReader(""))

	_, err := dec.Decode()
	req.ErrorIs(err, io.EOF)

	_, err = dec.ReadLine()
	req.ErrorIs(err, io.EOF)
}

func TestDecoder_Rejects_Oversized_Frame(t *testing.T) {
	req := require.New(t)

	// Given a frame larger than the allowed maximum
	huge := strings.Repeat("x", MaxFrameSize+1) + "\n"
	dec := NewDecoder(strings.NewReader(huge))

	// Then decoding fails rather than buffering without bound
	_, err := dec.Decode()
	req.Error(err)
}
