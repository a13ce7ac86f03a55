package registry

import (
	"context"
	"io"
)

// Snapshot item names stored in a Vault.
const (
	SnapshotDB         = "db"
	SnapshotPublicKey  = "public_key"
	SnapshotPrivateKey = "private_key"
)

// Vault stores registry snapshots per instance.
// Reads and writes stream through io.Reader/io.Writer so large snapshots are
// never held in memory.
type Vault interface {
	// Put stores a named item for instanceID. size is the number of bytes
	// that will be read from r. version is stored alongside for consistency
	// checks; a later Put overwrites both.
	Put(ctx context.Context, instanceID, name string, r io.Reader, size int64, version int64) error

	// Get writes the named item for instanceID to w.
	Get(ctx context.Context, instanceID, name string, w io.Writer) error

	// Version returns the version stored with the named item, or 0 if the
	// item was never stored.
	Version(ctx context.Context, instanceID, name string) (int64, error)

	// ValidateSetup verifies that the vault is accessible and properly configured.
	ValidateSetup(ctx context.Context) error
}

// Encryptor encrypts snapshots before they leave the machine.
// Encryption uses the public key only. Decryption requires a passphrase to
// unlock the private key, producing a DecryptionContext for the session.
type Encryptor interface {
	// Setup generates a key pair, stores the public key in plaintext and the
	// private key encrypted with passphrase. Called during `reg config init`.
	Setup(passphrase string) error

	// Encrypt encrypts data read from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer) error

	// Unlock decrypts the private key using the passphrase.
	// Returns an error if the passphrase is incorrect.
	Unlock(passphrase string) (DecryptionContext, error)

	// IsConfigured returns true if both key files exist.
	IsConfigured() bool
}

// DecryptionContext holds an unlocked private key in memory. The key is
// never written to disk.
type DecryptionContext interface {
	Decrypt(r io.Reader, w io.Writer) error
}
