package decomp

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"fmt"
	"io"

	"github.com/bodgit/sevenzip"
)

// Part is one named member of an archive, handed to the search driver as if
// it were an independent file. Name is the entry's own path inside the
// archive; joining it with the enclosing partname (JoinPartName) is the
// caller's job, not the archive reader's, so the same Part type works
// whether or not this archive is itself nested inside another one.
type Part struct {
	Name    string
	Size    int64
	IsDir   bool
	Open    func() (io.ReadCloser, error)
}

// ArchiveReader enumerates the parts of one archive file, in the order
// reported by the underlying library.
type ArchiveReader interface {
	// Next returns the next part, or io.EOF once exhausted.
	Next() (Part, error)
	Close() error
}

// OpenArchive opens an archive of the given format from raw bytes. The
// whole archive body is taken as a byte slice rather than a streaming
// io.Reader because both archive/zip and bodgit/sevenzip require io.ReaderAt
// random access to read their central/header directories; spec §4.6
// explicitly allows buffering a part in memory up to a size ceiling before
// falling back to a temp file, so this mirrors that same tradeoff at the
// container level.
func OpenArchive(format Format, data []byte) (ArchiveReader, error) {
	switch format {
	case FormatZip:
		return newZipArchive(data)
	case FormatTar:
		return newTarArchive(data)
	case FormatSevenZip:
		return newSevenZipArchive(data)
	case FormatCpio:
		return newCpioArchive(data)
	default:
		return nil, fmt.Errorf("decomp: %s is not an archive container", format)
	}
}

// --- zip ---

type zipArchive struct {
	zr  *zip.Reader
	idx int
}

func newZipArchive(data []byte) (*zipArchive, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("decomp: zip: %w", err)
	}
	return &zipArchive{zr: zr}, nil
}

func (a *zipArchive) Next() (Part, error) {
	if a.idx >= len(a.zr.File) {
		return Part{}, io.EOF
	}
	f := a.zr.File[a.idx]
	a.idx++
	return Part{
		Name:  f.Name,
		Size:  int64(f.UncompressedSize64),
		IsDir: f.FileInfo().IsDir(),
		Open:  func() (io.ReadCloser, error) { return f.Open() },
	}, nil
}

func (a *zipArchive) Close() error { return nil }

// --- tar ---

type tarArchive struct {
	data []byte
	tr   *tar.Reader
	buf  *bytes.Reader
}

func newTarArchive(data []byte) (*tarArchive, error) {
	buf := bytes.NewReader(data)
	return &tarArchive{data: data, tr: tar.NewReader(buf), buf: buf}, nil
}

func (a *tarArchive) Next() (Part, error) {
	hdr, err := a.tr.Next()
	if err != nil {
		return Part{}, err // io.EOF propagates as-is
	}
	body := make([]byte, hdr.Size)
	if _, err := io.ReadFull(a.tr, body); err != nil && err != io.EOF {
		return Part{}, fmt.Errorf("decomp: tar: reading %s: %w", hdr.Name, err)
	}
	name := hdr.Name
	isDir := hdr.Typeflag == tar.TypeDir
	return Part{
		Name:  name,
		Size:  hdr.Size,
		IsDir: isDir,
		Open:  func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(body)), nil },
	}, nil
}

func (a *tarArchive) Close() error { return nil }

// --- 7z ---

type sevenZipArchive struct {
	r   *sevenzip.Reader
	idx int
}

func newSevenZipArchive(data []byte) (*sevenZipArchive, error) {
	r, err := sevenzip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("decomp: 7z: %w", err)
	}
	return &sevenZipArchive{r: r}, nil
}

func (a *sevenZipArchive) Next() (Part, error) {
	if a.idx >= len(a.r.File) {
		return Part{}, io.EOF
	}
	f := a.r.File[a.idx]
	a.idx++
	return Part{
		Name:  f.Name,
		Size:  int64(f.UncompressedSize),
		IsDir: f.FileInfo().IsDir(),
		Open:  func() (io.ReadCloser, error) { return f.Open() },
	}, nil
}

func (a *sevenZipArchive) Close() error { return nil }
