// Package credential holds the outbound mail password in the system
// keyring, with an encrypted file fallback for headless setups.
package credential

import (
	"fmt"

	"github.com/99designs/keyring"
)

const (
	serviceName     = "zervos"
	smtpPasswordKey = "smtp-password"
)

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/zervos/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("zervos-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// SMTPPassword retrieves the stored outbound mail password.
func SMTPPassword() (string, error) {
	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(smtpPasswordKey)
	if err != nil {
		return "", fmt.Errorf("getting smtp password: %w", err)
	}

	return string(item.Data), nil
}

// SetSMTPPassword stores the outbound mail password.
func SetSMTPPassword(value string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:  smtpPasswordKey,
		Data: []byte(value),
	})
	if err != nil {
		return fmt.Errorf("setting smtp password: %w", err)
	}

	return nil
}
