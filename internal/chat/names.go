package chat

import (
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const maxNameLength = 32

// NameRegistry holds every display name currently spoken for, covering both
// pending negotiations and registered nodes. A name stays held from the
// moment a reservation succeeds until the owning session releases it, so at
// no instant can two connections answer to the same name.
type NameRegistry struct {
	mu    sync.Mutex
	names map[string]struct{}
}

func NewNameRegistry() *NameRegistry {
	return &NameRegistry{names: make(map[string]struct{})}
}

// NormalizeName trims and NFC-normalizes a candidate so visually identical
// names collide instead of coexisting.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// Reserve atomically claims name. It fails with ErrNameInvalid for empty or
// oversized candidates and ErrNameTaken when the name is already held.
func (r *NameRegistry) Reserve(name string) error {
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return ErrNameInvalid
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.names[name]; taken {
		return ErrNameTaken
	}
	r.names[name] = struct{}{}
	return nil
}

// Release drops a held name so another connection can claim it.
func (r *NameRegistry) Release(name string) {
	r.mu.Lock()
	delete(r.names, name)
	r.mu.Unlock()
}
