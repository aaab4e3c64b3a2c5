package decomp

import (
	"compress/bzip2"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// NewStreamDecoder wraps r in the decoder for format, returning a reader of
// the decompressed byte stream. Only single-stream codecs are handled here;
// archive containers are opened through OpenArchive instead.
//
// klauspost/compress supplies gzip and zstd (its gzip package is a drop-in,
// faster replacement for compress/gzip and its zstd package has no stdlib
// equivalent at all); bzip2 has no writer-side use in this tool so the
// stdlib decoder is used as-is rather than pulling in a second bzip2
// dependency for read-only decoding.
func NewStreamDecoder(format Format, r io.Reader) (io.ReadCloser, error) {
	switch format {
	case FormatGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("decomp: gzip: %w", err)
		}
		return zr, nil

	case FormatZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("decomp: zstd: %w", err)
		}
		return io.NopCloser(zr.IOReadCloser()), nil

	case FormatXz:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("decomp: xz: %w", err)
		}
		return io.NopCloser(xr), nil

	case FormatLz4:
		return io.NopCloser(lz4.NewReader(r)), nil

	case FormatBzip2:
		return io.NopCloser(bzip2.NewReader(r)), nil

	case FormatBrotli:
		return io.NopCloser(brotli.NewReader(r)), nil

	default:
		return nil, fmt.Errorf("decomp: %s is not a single-stream codec", format)
	}
}
