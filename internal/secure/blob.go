package secure

import (
	"errors"
	"sync"

	"github.com/awnumar/memguard"
)

// ErrEmptyBlob is returned when sealing a payload with no content.
var ErrEmptyBlob = errors.New("secret blob is empty")

// ErrBlobDestroyed is returned by Open after Destroy.
var ErrBlobDestroyed = errors.New("secret blob already destroyed")

// Blob holds a raw secret payload encrypted in memory.
type Blob struct {
	mu      sync.Mutex
	enclave *memguard.Enclave
	size    int
}

// SealBlob copies value into a memguard enclave. The intermediate byte
// slice is wiped by memguard before SealBlob returns.
func SealBlob(value string) (*Blob, error) {
	if value == "" {
		return nil, ErrEmptyBlob
	}
	data := []byte(value)
	size := len(data)
	return &Blob{
		enclave: memguard.NewEnclave(data),
		size:    size,
	}, nil
}

// Size reports the length in bytes of the sealed payload.
func (b *Blob) Size() int {
	return b.size
}

// Open decrypts the blob into a locked buffer. The caller must Destroy the
// returned buffer once it is done reading it.
func (b *Blob) Open() (*memguard.LockedBuffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.enclave == nil {
		return nil, ErrBlobDestroyed
	}
	return b.enclave.Open()
}

// Destroy drops the enclave. It is safe to call more than once.
func (b *Blob) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.enclave = nil
}
