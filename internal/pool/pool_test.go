package pool

import (
	"sync"
	"testing"
)

func TestGetLength(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"tiny", 1},
		{"qcif", (176 + 64) * (144 + 64)},
		{"class boundary", SizeSD},
		{"just over", SizeSD + 1},
		{"1080p", (1920 + 64) * (1088 + 64)},
		{"oversize", Size4K + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Get(tt.size)
			if len(b) != tt.size {
				t.Errorf("Get(%d): len = %d", tt.size, len(b))
			}
			Put(b)
		})
	}
}

func TestClass(t *testing.T) {
	tests := []struct {
		size int
		want int
	}{
		{0, 0},
		{SizeQCIF, 0},
		{SizeQCIF + 1, 1},
		{Size720p, 2},
		{Size1080 + 1, 4},
		{Size4K, 4},
		{Size4K + 1, -1},
	}
	for _, tt := range tests {
		if got := class(tt.size); got != tt.want {
			t.Errorf("class(%d) = %d, want %d", tt.size, got, tt.want)
		}
	}
}

func TestGetCapacityIsClassSize(t *testing.T) {
	b := Get(300000)
	if cap(b) != Size720p {
		t.Errorf("cap = %d, want %d", cap(b), Size720p)
	}
	Put(b)
}

func TestPutIgnoresForeignBuffers(t *testing.T) {
	// Neither call may panic or poison a class with a short buffer.
	Put(nil)
	Put(make([]byte, 1000))
	Put(make([]byte, SizeSD+7))
	for i := 0; i < 8; i++ {
		b := Get(SizeSD)
		if cap(b) < SizeSD {
			t.Fatalf("Get(%d) returned cap %d", SizeSD, cap(b))
		}
		Put(b)
	}
}

func TestConcurrency(t *testing.T) {
	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				size := SizeQCIF * (1 + (g+i)%8)
				b := Get(size)
				if len(b) != size {
					t.Errorf("Get(%d): len = %d", size, len(b))
					return
				}
				b[0], b[size-1] = byte(g), byte(i)
				Put(b)
			}
		}(g)
	}
	wg.Wait()
}

func BenchmarkGetPut(b *testing.B) {
	const size = (1280 + 64) * (720 + 64)
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			Put(Get(size))
		}
	})
}
