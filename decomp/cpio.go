package decomp

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
)

// cpio has no library anywhere in the retrieved pack (confirmed against
// every other_examples/manifests/*/go.mod); this hand-rolled reader covers
// just the "newc" ASCII wire format (070701, and 070702 with the same
// layout), the variant every modern cpio/initramfs tool actually writes. See DESIGN.md for why this one
// format is built by hand instead of imported.
const cpioTrailer = "TRAILER!!!"

type cpioArchive struct {
	data []byte
	off  int
}

func newCpioArchive(data []byte) (*cpioArchive, error) {
	return &cpioArchive{data: data}, nil
}

// Next parses one 110-byte newc header (6-byte magic followed by 13 8-char
// hex fields) plus its name and body; header+name and the body are each
// padded to a 4-byte boundary.
func (a *cpioArchive) Next() (Part, error) {
	for {
		if a.off+110 > len(a.data) {
			return Part{}, io.EOF
		}
		hdr := a.data[a.off : a.off+110]
		if !bytes.HasPrefix(hdr, []byte("070701")) && !bytes.HasPrefix(hdr, []byte("070702")) {
			return Part{}, fmt.Errorf("decomp: cpio: bad magic at offset %d", a.off)
		}

		field := func(i int) (int64, error) {
			raw := string(hdr[6+i*8 : 6+i*8+8])
			v, err := strconv.ParseInt(raw, 16, 64)
			if err != nil {
				return 0, fmt.Errorf("decomp: cpio: bad hex field %q: %w", raw, err)
			}
			return v, nil
		}

		mode, err := field(1)
		if err != nil {
			return Part{}, err
		}
		filesize, err := field(6)
		if err != nil {
			return Part{}, err
		}
		namesize, err := field(11)
		if err != nil {
			return Part{}, err
		}

		pos := a.off + 110
		if pos+int(namesize) > len(a.data) {
			return Part{}, fmt.Errorf("decomp: cpio: truncated name at offset %d", pos)
		}
		name := string(bytes.TrimRight(a.data[pos:pos+int(namesize)], "\x00"))
		pos += int(namesize)
		pos = align4(pos)

		if pos+int(filesize) > len(a.data) {
			return Part{}, fmt.Errorf("decomp: cpio: truncated body for %s", name)
		}
		body := a.data[pos : pos+int(filesize)]
		pos += int(filesize)
		pos = align4(pos)
		a.off = pos

		if name == cpioTrailer {
			return Part{}, io.EOF
		}

		isDir := mode&0o170000 == 0o040000
		return Part{
			Name:  name,
			Size:  filesize,
			IsDir: isDir,
			Open:  func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(body)), nil },
		}, nil
	}
}

func (a *cpioArchive) Close() error { return nil }

func align4(off int) int {
	if r := off % 4; r != 0 {
		return off + (4 - r)
	}
	return off
}
