package parser

import (
	"bufio"
	"io"
	"sync"
)

const (
	// lineBufSize covers the longest line seen in real BDF files.
	lineBufSize = 64 * 1024
	// maxLineSize bounds a single line; longer input fails with bufio.ErrTooLong.
	maxLineSize = 4 * 1024 * 1024
	// maxRowBytes is the widest decoded bitmap row worth keeping around.
	maxRowBytes = 1024
)

// bytePool recycles byte slices whose capacity lies in [min, max].
type bytePool struct {
	p        sync.Pool
	min, max int
}

func newBytePool(size, min, max int) *bytePool {
	bp := &bytePool{min: min, max: max}
	bp.p.New = func() interface{} {
		b := make([]byte, 0, size)
		return &b
	}
	return bp
}

// get returns an empty slice with capacity of at least n.
func (bp *bytePool) get(n int) []byte {
	if b, ok := bp.p.Get().(*[]byte); ok && cap(*b) >= n {
		return (*b)[:0]
	}
	return make([]byte, 0, n)
}

func (bp *bytePool) put(b []byte) {
	if cap(b) < bp.min || cap(b) > bp.max {
		return
	}
	b = b[:0]
	bp.p.Put(&b)
}

var (
	linePool = newBytePool(lineBufSize, lineBufSize/2, maxLineSize)
	rowPool  = newBytePool(32, 1, maxRowBytes)
)

// newLineReader wraps r in a scanner backed by a pooled buffer.
// Call release when done with it.
func newLineReader(r io.Reader) *lineReader {
	buf := linePool.get(lineBufSize)
	sc := bufio.NewScanner(r)
	sc.Buffer(buf, maxLineSize)
	return &lineReader{scanner: sc, buf: buf}
}

func (lr *lineReader) release() {
	linePool.put(lr.buf)
	lr.buf = nil
}
