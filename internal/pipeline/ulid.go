package pipeline

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// Job IDs are ULIDs: 48 bits of milliseconds then 80 bits of randomness,
// written as 26 Crockford base32 characters so they sort by creation time.

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

var ids = &ulidSource{}

type ulidSource struct {
	mu     sync.Mutex
	lastMS uint64
	seq    uint16
}

// NewJobID returns a fresh ULID.
func NewJobID() string {
	return ids.next(time.Now())
}

func (s *ulidSource) next(now time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms := uint64(now.UnixMilli())
	if ms == s.lastMS {
		s.seq++
	} else {
		s.lastMS = ms
		s.seq = 0
	}

	var b [16]byte
	binary.BigEndian.PutUint64(b[0:8], ms<<16)
	rand.Read(b[6:])
	// A per-millisecond counter ahead of the random bits keeps IDs from
	// one process ordered.
	binary.BigEndian.PutUint16(b[6:8], s.seq)
	return encodeULID(b)
}

// encodeULID writes 128 bits as 26 base32 digits, most significant first.
// The leading digit carries only 3 bits.
func encodeULID(b [16]byte) string {
	hi := binary.BigEndian.Uint64(b[0:8])
	lo := binary.BigEndian.Uint64(b[8:16])

	var out [26]byte
	for i := 25; i >= 0; i-- {
		out[i] = crockford[lo&31]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out[:])
}
