package decomp

import (
	"archive/tar"
	"bytes"
	"io"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSniff_Gzip(t *testing.T) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte("hello world"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Equal(t, FormatGzip, Sniff(buf.Bytes(), "file.gz"))
}

func TestSniffName_Brotli(t *testing.T) {
	assert.Equal(t, FormatBrotli, SniffName("archive.br"))
}

func TestJoinPartName(t *testing.T) {
	assert.Equal(t, "logs.tar:a/b.txt", JoinPartName("logs.tar", "a/b.txt"))
	assert.Equal(t, "a.txt", JoinPartName("", "a.txt"))
}

func TestExpand_PlainFilePassesThrough(t *testing.T) {
	units, err := Expand("plain.txt", []byte("hello"), DefaultOptions)
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "plain.txt", units[0].PartName)
	assert.Equal(t, []byte("hello"), units[0].Data)
}

func TestExpand_GzipStream(t *testing.T) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, _ = w.Write([]byte("payload"))
	require.NoError(t, w.Close())

	units, err := Expand("data.txt.gz", buf.Bytes(), DefaultOptions)
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "data.txt", units[0].PartName)
	assert.Equal(t, []byte("payload"), units[0].Data)
}

func TestExpand_TarArchive(t *testing.T) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	body := []byte("inside")
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "a.txt", Size: int64(len(body)), Mode: 0o644}))
	_, err := tw.Write(body)
	require.NoError(t, err)
	require.NoError(t, tw.Close())

	units, err := Expand("bundle.tar", buf.Bytes(), DefaultOptions)
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "bundle.tar:a.txt", units[0].PartName)
	assert.Equal(t, body, units[0].Data)
}

func TestExpand_RespectsMaxDepth(t *testing.T) {
	var inner bytes.Buffer
	w := gzip.NewWriter(&inner)
	_, _ = w.Write([]byte("payload"))
	require.NoError(t, w.Close())

	units, err := Expand("data.txt.gz", inner.Bytes(), Options{MaxDepth: 0})
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "data.txt.gz", units[0].PartName)
}

func newcHeader(name string, body []byte) []byte {
	pad := func(b []byte) []byte {
		for len(b)%4 != 0 {
			b = append(b, 0)
		}
		return b
	}
	var buf bytes.Buffer
	buf.WriteString("070701")
	field := func(v int64) string { return zeroPad(v) }
	buf.WriteString(field(0))          // ino
	buf.WriteString(zeroPad(0o100644)) // mode
	// uid, gid, nlink, mtime
	for i := 0; i < 4; i++ {
		buf.WriteString(field(0))
	}
	buf.WriteString(field(int64(len(body)))) // filesize
	// devmajor, devminor, rdevmajor, rdevminor
	for i := 0; i < 4; i++ {
		buf.WriteString(field(0))
	}
	buf.WriteString(field(int64(len(name) + 1))) // namesize
	buf.WriteString(field(0))                    // check
	buf.WriteString(name)
	buf.WriteByte(0)
	out := pad(buf.Bytes()) // header+name is padded to a 4-byte boundary
	return append(out, pad(append([]byte{}, body...))...)
}

func zeroPad(v int64) string {
	s := toHex(v)
	for len(s) < 8 {
		s = "0" + s
	}
	return s
}

func toHex(v int64) string {
	const digits = "0123456789abcdef"
	if v == 0 {
		return "0"
	}
	var out []byte
	for v > 0 {
		out = append([]byte{digits[v%16]}, out...)
		v /= 16
	}
	return string(out)
}

func TestCpioArchive_ReadsEntriesAndTrailer(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(newcHeader("a.txt", []byte("hi")))
	buf.Write(newcHeader(cpioTrailer, nil))

	ar, err := newCpioArchive(buf.Bytes())
	require.NoError(t, err)

	p, err := ar.Next()
	require.NoError(t, err)
	assert.Equal(t, "a.txt", p.Name)

	_, err = ar.Next()
	assert.ErrorIs(t, err, io.EOF)
}
