package uuid

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"

	googleuuid "github.com/google/uuid"
)

var (
	mu     sync.Mutex
	lastMs uint64
	seq    uint16
)

// New generates a new UUIDv7 based on the current timestamp.
//
// IDs generated by one process are strictly increasing: within the same
// millisecond the 12-bit rand_a field is used as a counter (RFC 9562,
// method 1), so sorting by ID reproduces creation order. Ledger views rely
// on this to order entries that share an effective date.
//
// Format:
// - 48 bits: Unix timestamp in milliseconds
// - 4 bits: version (0111 = 7)
// - 12 bits: sequence within the millisecond
// - 2 bits: variant (10)
// - 62 bits: random data
func New() string {
	var id [16]byte

	ms, counter := nextTick()

	binary.BigEndian.PutUint64(id[0:8], ms<<16|uint64(counter&0x0fff))

	if _, err := rand.Read(id[8:]); err != nil {
		return googleuuid.Must(googleuuid.NewV7()).String()
	}

	id[6] = (id[6] & 0x0f) | 0x70
	id[8] = (id[8] & 0x3f) | 0x80

	return googleuuid.UUID(id).String()
}

func nextTick() (uint64, uint16) {
	mu.Lock()
	defer mu.Unlock()

	ms := uint64(time.Now().UnixMilli())
	switch {
	case ms > lastMs:
		lastMs = ms
		seq = 0
	default:
		// Same millisecond or clock moved backwards: keep lastMs and bump the
		// counter, rolling into the next millisecond when it overflows.
		seq++
		if seq > 0x0fff {
			lastMs++
			seq = 0
		}
	}
	return lastMs, seq
}

// Parse validates and parses a UUID string
func Parse(s string) (string, error) {
	parsed, err := googleuuid.Parse(s)
	if err != nil {
		return "", err
	}
	return parsed.String(), nil
}

// IsValid checks if a string is a valid UUID
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
