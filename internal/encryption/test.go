package encryption

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"reg-go/internal/registry"
)

// snapshotMarker prefixes data sealed by TestEncryptor.
var snapshotMarker = []byte("REGSNAP\x01")

// TestEncryptor is a deterministic stand-in for tests and the "test"
// encryption type. Sealing prepends snapshotMarker and opening strips it, so
// sealed output differs from plaintext without any key material.
type TestEncryptor struct {
	setupCalled bool
}

var _ registry.Encryptor = (*TestEncryptor)(nil)

func NewTestEncryptor() *TestEncryptor {
	return &TestEncryptor{}
}

func (e *TestEncryptor) Setup(string) error {
	e.setupCalled = true
	return nil
}

func (e *TestEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	if _, err := io.Copy(w, io.MultiReader(bytes.NewReader(snapshotMarker), r)); err != nil {
		return fmt.Errorf("sealing data: %w", err)
	}
	return nil
}

func (e *TestEncryptor) Unlock(string) (registry.DecryptionContext, error) {
	return TestDecryptionContext{}, nil
}

func (e *TestEncryptor) IsConfigured() bool { return true }

// TestDecryptionContext opens data sealed by TestEncryptor.
type TestDecryptionContext struct{}

var _ registry.DecryptionContext = TestDecryptionContext{}

func (TestDecryptionContext) Decrypt(r io.Reader, w io.Writer) error {
	marker := make([]byte, len(snapshotMarker))
	if _, err := io.ReadFull(r, marker); err != nil {
		return fmt.Errorf("reading marker: %w", err)
	}
	if !bytes.Equal(marker, snapshotMarker) {
		return errors.New("data was not sealed by the test encryptor")
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("opening data: %w", err)
	}
	return nil
}
