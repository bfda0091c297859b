package util

import (
	"bufio"
	"io"
	"net/http"
	"strings"
)

// sniffLen matches the window http.DetectContentType inspects.
const sniffLen = 512

// SniffMIME reads the first bytes of a stream and reports its content
// type. The returned reader replays the whole stream, sniffed prefix
// included.
func SniffMIME(r io.Reader) (string, io.Reader, error) {
	buffered := bufio.NewReaderSize(r, sniffLen)

	head, err := buffered.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return "", nil, err
	}

	return http.DetectContentType(head), buffered, nil
}

func IsImageMIME(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "image/")
}
