package transcoder

import "sync"

const (
	// Pool limits to prevent memory bloat
	poolMaxCapUnits  = 64 * 1024 // max uint16 elements
	poolInitCapUnits = 4096
)

// code unit scratch buffer pool for Copy and the one-shot helpers
var unitPool = sync.Pool{
	New: func() any {
		buf := make([]uint16, poolInitCapUnits)
		return &buf
	},
}

func getUnits() *[]uint16 {
	return unitPool.Get().(*[]uint16)
}

func putUnits(buf *[]uint16) {
	if buf == nil || cap(*buf) > poolMaxCapUnits {
		return // reject oversized
	}
	*buf = (*buf)[:cap(*buf)]
	unitPool.Put(buf)
}
