package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"
	"github.com/joho/godotenv"
)

// IdentityEnv names the environment variable pointing at the age identity
// file used to decrypt an encrypted secrets file.
const IdentityEnv = "STRATUS_AGE_IDENTITY"

// LoadSecrets loads a dotenv-format secrets file into the process
// environment, decrypting it first when the path ends in .age. Values already
// present in the environment win, so CI overrides keep working.
func LoadSecrets(path string) error {
	if filepath.Ext(path) != ".age" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("secrets file could not be loaded: %w", err)
		}
		return nil
	}

	identityPath := os.Getenv(IdentityEnv)
	if identityPath == "" {
		return fmt.Errorf("secrets file %s is encrypted but %s is not set", path, IdentityEnv)
	}

	idData, err := os.ReadFile(identityPath)
	if err != nil {
		return fmt.Errorf("age identity could not be read: %w", err)
	}
	identities, err := age.ParseIdentities(strings.NewReader(string(idData)))
	if err != nil {
		return fmt.Errorf("age identity could not be parsed: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("secrets file could not be opened: %w", err)
	}
	defer f.Close()

	r, err := age.Decrypt(f, identities...)
	if err != nil {
		return fmt.Errorf("secrets file could not be decrypted: %w", err)
	}
	plain, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("secrets file could not be decrypted: %w", err)
	}

	vars, err := godotenv.Unmarshal(string(plain))
	if err != nil {
		return fmt.Errorf("decrypted secrets are not valid dotenv: %w", err)
	}
	for k, v := range vars {
		if _, exists := os.LookupEnv(k); !exists {
			os.Setenv(k, v)
		}
	}
	return nil
}
