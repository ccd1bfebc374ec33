package cellfreq

import (
	"bufio"
	"compress/bzip2"
	"compress/gzip"
	"compress/zlib"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
	"github.com/krolaw/zipstream"
	"github.com/xi2/xz"
)

type DataType byte

const (
	DataTypeInvalid DataType = iota
	DataTypeNoCompression
	DataTypeGzip
	DataTypeZip
	DataTypeXZ
	DataTypeZ
	DataTypeBZip2
)

var byteCodeSigs = map[DataType][]byte{
	DataTypeGzip:  {0x1f, 0x8b, 0x08},
	DataTypeZip:   {0x50, 0x4b, 0x03, 0x04},
	DataTypeXZ:    {0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00},
	DataTypeZ:     {0x1f, 0x9d},
	DataTypeBZip2: {0x42, 0x5a, 0x68},
}

// DetectDataType matches the first bytes of a stream against known
// compression signatures. Short or unmatched headers are treated as plain
// text.
func DetectDataType(head []byte) DataType {
Outer:
	for dt, sig := range byteCodeSigs {
		if len(head) < len(sig) {
			continue
		}
		for position := range sig {
			if head[position] != sig[position] {
				continue Outer
			}
		}
		return dt
	}

	return DataTypeNoCompression
}

// Source is an opened, decompressed source table. Reads go through a buffer
// large enough to sniff the delimiter without consuming anything.
type Source struct {
	*bufio.Reader
	Path     string
	DataType DataType
	closers  []func() error
}

// Close releases the decompressor, the underlying file or object reader, and
// any storage client created on the caller's behalf, in that order.
func (s *Source) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	s.closers = nil

	return first
}

// OpenSource opens a local file or a gs://bucket/object path. If client is
// nil and a Google Storage path is given, a client with default credentials is
// created and closed together with the Source.
func OpenSource(ctx context.Context, path string, client *storage.Client) (*Source, error) {
	path, err := ExpandHome(path)
	if err != nil {
		return nil, err
	}

	src := &Source{Path: path}

	var raw io.Reader
	if strings.HasPrefix(path, "gs://") {
		pathParts := strings.SplitN(strings.TrimPrefix(path, "gs://"), "/", 2)
		if len(pathParts) != 2 || pathParts[1] == "" {
			return nil, fmt.Errorf("Tried to split your google storage path into 2 parts, but got %d: %v", len(pathParts), pathParts)
		}

		if client == nil {
			client, err = storage.NewClient(ctx)
			if err != nil {
				return nil, pfx.Err(err)
			}
			src.closers = append(src.closers, client.Close)
		}

		rdr, err := client.Bucket(pathParts[0]).Object(pathParts[1]).NewReader(ctx)
		if err != nil {
			src.Close()
			return nil, pfx.Err(fmt.Errorf("%s: %s", path, err))
		}
		src.closers = append(src.closers, rdr.Close)
		raw = rdr
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, pfx.Err(err)
		}
		src.closers = append(src.closers, f.Close)
		raw = f
	}

	decompressed, err := src.maybeDecompress(raw)
	if err != nil {
		src.Close()
		return nil, err
	}

	src.Reader = bufio.NewReaderSize(decompressed, 2*delimiterSniffBytes)

	return src, nil
}

func (s *Source) maybeDecompress(raw io.Reader) (io.Reader, error) {
	br := bufio.NewReader(raw)

	// Peek errors just mean a very short file, which DetectDataType handles
	head, _ := br.Peek(6)
	s.DataType = DetectDataType(head)

	switch s.DataType {
	case DataTypeGzip:
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, pfx.Err(err)
		}
		s.closers = append(s.closers, gz.Close)
		return gz, nil
	case DataTypeZip:
		// Only the first entry of an archive is read
		zr := zipstream.NewReader(br)
		if _, err := zr.Next(); err != nil {
			return nil, pfx.Err(err)
		}
		return zr, nil
	case DataTypeBZip2:
		return bzip2.NewReader(br), nil
	case DataTypeXZ:
		reader, err := xz.NewReader(br, 0)
		if err != nil {
			return nil, pfx.Err(err)
		}
		return reader, nil
	case DataTypeZ:
		zr, err := zlib.NewReader(br)
		if err != nil {
			return nil, pfx.Err(err)
		}
		s.closers = append(s.closers, zr.Close)
		return zr, nil
	}

	return br, nil
}
