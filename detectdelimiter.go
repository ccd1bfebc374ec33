package cellfreq

import (
	"bufio"
	"bytes"
	"io"

	"github.com/csimplestring/go-csv/detector"
)

// How much of the stream is inspected to guess the delimiter.
const delimiterSniffBytes = 64 * 1024

// DetermineDelimiter returns the single most likely rune that would delimit the
// values in the reader, assuming a CSV-like file. Nothing is consumed from br.
func DetermineDelimiter(br *bufio.Reader) rune {
	head, err := br.Peek(delimiterSniffBytes)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return ','
	}

	d := detector.New()
	delimiters := d.DetectDelimiter(bytes.NewReader(head), '"')

	if len(delimiters) > 0 && len(delimiters[0]) > 0 {
		return rune(delimiters[0][0])
	}

	return ','
}
