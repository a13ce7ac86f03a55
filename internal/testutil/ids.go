package testutil

import (
	"strconv"
	"sync"

	"github.com/google/uuid"

	"reg-go/internal/registry"
)

var sequenceNamespace = uuid.MustParse("6f1c0a52-3b0e-4c57-9d1e-5a2f7d9b8c41")

// SequenceUUID is the n-th UUID a SequenceIDGenerator issues, counting from 1.
func SequenceUUID(n int) string {
	return uuid.NewSHA1(sequenceNamespace, []byte(strconv.Itoa(n))).String()
}

// SequenceIDGenerator is a registry.IDGenerator issuing predictable,
// well-formed UUIDs and remembering every one it handed out.
type SequenceIDGenerator struct {
	mu     sync.Mutex
	issued []string
}

var _ registry.IDGenerator = (*SequenceIDGenerator)(nil)

func NewSequenceIDGenerator() *SequenceIDGenerator {
	return &SequenceIDGenerator{}
}

func (g *SequenceIDGenerator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := SequenceUUID(len(g.issued) + 1)
	g.issued = append(g.issued, id)
	return id
}

// Issued returns the IDs handed out so far, oldest first.
func (g *SequenceIDGenerator) Issued() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.issued...)
}
