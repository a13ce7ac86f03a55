package encryption

import (
	"fmt"

	"reg-go/internal/config"
	"reg-go/internal/registry"
)

// NewEncryptorFromConfig creates the snapshot Encryptor selected by cfg.Type.
// An empty type means age.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (registry.Encryptor, error) {
	switch cfg.Type {
	case "age", "":
		return NewAgeEncryptor(cfg), nil
	case "test":
		return NewTestEncryptor(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
