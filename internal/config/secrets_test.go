package config

import (
	"os"
	"path/filepath"
	"testing"

	"filippo.io/age"
)

func TestLoadSecrets_EncryptedFile(t *testing.T) {
	dir := t.TempDir()

	id, err := age.GenerateX25519Identity()
	if err != nil {
		t.Fatal(err)
	}
	idPath := filepath.Join(dir, "identity.txt")
	if err := os.WriteFile(idPath, []byte(id.String()+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	secretsPath := filepath.Join(dir, "secrets.env.age")
	f, err := os.Create(secretsPath)
	if err != nil {
		t.Fatal(err)
	}
	w, err := age.Encrypt(f, id.Recipient())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("STRATUS_TEST_AGE_SECRET=decrypted\n")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	t.Setenv(IdentityEnv, idPath)
	t.Setenv("STRATUS_TEST_AGE_SECRET", "")
	os.Unsetenv("STRATUS_TEST_AGE_SECRET")

	if err := LoadSecrets(secretsPath); err != nil {
		t.Fatalf("LoadSecrets failed: %v", err)
	}
	if got := os.Getenv("STRATUS_TEST_AGE_SECRET"); got != "decrypted" {
		t.Fatalf("Secret not loaded, got %q", got)
	}
}

func TestLoadSecrets_ExistingEnvWins(t *testing.T) {
	dir := t.TempDir()

	id, err := age.GenerateX25519Identity()
	if err != nil {
		t.Fatal(err)
	}
	idPath := filepath.Join(dir, "identity.txt")
	if err := os.WriteFile(idPath, []byte(id.String()+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	secretsPath := filepath.Join(dir, "secrets.env.age")
	f, _ := os.Create(secretsPath)
	w, err := age.Encrypt(f, id.Recipient())
	if err != nil {
		t.Fatal(err)
	}
	w.Write([]byte("STRATUS_TEST_AGE_OVERRIDE=from-file\n"))
	w.Close()
	f.Close()

	t.Setenv(IdentityEnv, idPath)
	t.Setenv("STRATUS_TEST_AGE_OVERRIDE", "from-ci")

	if err := LoadSecrets(secretsPath); err != nil {
		t.Fatalf("LoadSecrets failed: %v", err)
	}
	if got := os.Getenv("STRATUS_TEST_AGE_OVERRIDE"); got != "from-ci" {
		t.Fatalf("Environment must win over the secrets file, got %q", got)
	}
}

func TestLoadSecrets_EncryptedWithoutIdentity(t *testing.T) {
	dir := t.TempDir()
	secretsPath := filepath.Join(dir, "secrets.env.age")
	if err := os.WriteFile(secretsPath, []byte("ciphertext"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(IdentityEnv, "")
	os.Unsetenv(IdentityEnv)

	if err := LoadSecrets(secretsPath); err == nil {
		t.Fatal("Missing identity must error")
	}
}
