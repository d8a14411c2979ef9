// Package rpc implements the Content-Length-framed message transport
// used by LSP/DAP bridges: not part of the core future/
// plugin/pipeline system, but a shared utility those bridges both need.
package rpc

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/containifyci/foundry/pkg/ferr"
)

// MaxContentLength is the largest Content-Length this reader accepts
//; anything larger rejects with InvalidData rather than
// attempting to buffer it.
const MaxContentLength = 1 << 30 // 1 GiB

// Reader splits an underlying stream into discrete JSON message bodies
// framed by a `Content-Length: N` header block terminated by a blank
// line, mirroring the general request/response framing idiom
// hashicorp/go-plugin's own net/rpc transport uses, generalized to the
// header-based rule names.
type Reader struct {
	br *bufio.Reader
}

// NewReader wraps r for framed message reads.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReader(r)}
}

// ReadMessage reads one header block and its body, returning the raw
// JSON body bytes. Returns io.EOF when the underlying stream is
// exhausted cleanly between messages, and InvalidData for a malformed
// header block or an oversized Content-Length.
func (r *Reader) ReadMessage() ([]byte, error) {
	contentLength := -1
	for {
		line, err := r.br.ReadString('\n')
		if err != nil {
			if err == io.EOF && line == "" {
				return nil, io.EOF
			}
			return nil, ferr.Wrap(ferr.Io, err, "reading frame header")
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, ferr.New(ferr.InvalidData, "malformed frame header: "+line)
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if strings.EqualFold(name, "Content-Length") {
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, ferr.Wrap(ferr.InvalidData, err, "malformed Content-Length header")
			}
			contentLength = n
		}
	}

	if contentLength < 0 {
		return nil, ferr.New(ferr.InvalidData, "frame header block missing Content-Length")
	}
	if contentLength > MaxContentLength {
		return nil, ferr.New(ferr.InvalidData, fmt.Sprintf("Content-Length %d exceeds %d byte limit", contentLength, MaxContentLength))
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(r.br, body); err != nil {
		return nil, ferr.Wrap(ferr.Io, err, "reading frame body")
	}
	return body, nil
}

// WriteMessage writes body to w framed with a Content-Length header.
func WriteMessage(w io.Writer, body []byte) error {
	if _, err := fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(body)); err != nil {
		return ferr.Wrap(ferr.Io, err, "writing frame header")
	}
	if _, err := w.Write(body); err != nil {
		return ferr.Wrap(ferr.Io, err, "writing frame body")
	}
	return nil
}
