// Package pool recycles the large byte buffers that back padded luma
// planes. Buffers are grouped by power-of-four size classes so a plane of
// one resolution can be served by a buffer freed by a slightly larger one.
package pool

import "sync"

// Size classes. Plane buffers of common resolutions fall between
// SizeQCIF (176x144 padded) and Size4K (3840x2160 padded).
const (
	SizeQCIF = 1 << 16
	SizeSD   = 1 << 18
	Size720p = 1 << 20
	Size1080 = 1 << 22
	Size4K   = 1 << 24
)

var sizes = [...]int{SizeQCIF, SizeSD, Size720p, Size1080, Size4K}

var pools [len(sizes)]sync.Pool

func init() {
	for i := range pools {
		sz := sizes[i]
		pools[i].New = func() any {
			b := make([]byte, sz)
			return &b
		}
	}
}

// class returns the index of the smallest size class holding size bytes,
// or -1 when size exceeds every class.
func class(size int) int {
	for i, s := range sizes {
		if size <= s {
			return i
		}
	}
	return -1
}

// Get returns a buffer of exactly size bytes with unspecified contents.
// Buffers larger than the biggest class are allocated directly and never
// pooled.
func Get(size int) []byte {
	i := class(size)
	if i < 0 {
		return make([]byte, size)
	}
	b := *pools[i].Get().(*[]byte)
	return b[:size]
}

// Put hands b back for reuse. b must not be used afterwards. Buffers that
// did not come from Get are accepted when their capacity matches a class.
func Put(b []byte) {
	c := cap(b)
	if c < SizeQCIF {
		return
	}
	i := class(c)
	if i < 0 || sizes[i] != c {
		return
	}
	b = b[:c]
	pools[i].Put(&b)
}
