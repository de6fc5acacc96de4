package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// maxMessageBytes bounds a single frame's body length, guarding the
// orchestrator against a misbehaving or compromised guest claiming an
// unbounded length prefix.
const maxMessageBytes = 256 << 20

// WriteMessage frames body as an 8-byte little-endian length prefix followed
// by body itself, matching spec §4.E/§6's wire framing.
func WriteMessage(w io.Writer, body []byte) error {
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(body)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("wire: write frame length: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("wire: write frame body: %w", err)
	}
	return nil
}

// ReadMessage reads one length-prefixed frame from r and returns its body.
func ReadMessage(r io.Reader) ([]byte, error) {
	var lenBuf [8]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint64(lenBuf[:])
	if n > maxMessageBytes {
		return nil, fmt.Errorf("wire: frame length %d exceeds maximum %d", n, maxMessageBytes)
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("wire: read frame body: %w", err)
	}
	return body, nil
}

// WriteRequest frames and writes req to w.
func WriteRequest(w io.Writer, req Request) error {
	return WriteMessage(w, EncodeRequest(req))
}

// ReadRequest reads one framed message from r and decodes it as a Request.
func ReadRequest(r io.Reader) (Request, error) {
	body, err := ReadMessage(r)
	if err != nil {
		return Request{}, err
	}
	return DecodeRequest(body)
}

// WriteResponse frames and writes resp to w.
func WriteResponse(w io.Writer, resp Response) error {
	return WriteMessage(w, EncodeResponse(resp))
}

// ReadResponse reads one framed message from r and decodes it as a Response.
func ReadResponse(r io.Reader) (Response, error) {
	body, err := ReadMessage(r)
	if err != nil {
		return Response{}, err
	}
	return DecodeResponse(body)
}
