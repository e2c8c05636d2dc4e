package keychain

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/99designs/keyring"
)

func TestManagerTokenCache(t *testing.T) {
	m := NewManagerWithRing(keyring.NewArrayKeyring(nil))

	got, err := m.LoadTokenCache()
	if err != nil || got != nil {
		t.Fatalf("LoadTokenCache() on empty ring = %q, %v; want nil, nil", got, err)
	}

	want := []byte(`{"AccessToken":{}}`)
	if err := m.SaveTokenCache(want); err != nil {
		t.Fatalf("SaveTokenCache() error = %v", err)
	}
	got, err = m.LoadTokenCache()
	if err != nil {
		t.Fatalf("LoadTokenCache() error = %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("LoadTokenCache() = %q, want %q", got, want)
	}

	if err := m.ClearTokenCache(); err != nil {
		t.Fatalf("ClearTokenCache() error = %v", err)
	}
	if got, _ := m.LoadTokenCache(); got != nil {
		t.Errorf("LoadTokenCache() after clear = %q, want nil", got)
	}
}

func TestManagerClearAllIgnoresMissingKeys(t *testing.T) {
	m := NewManagerWithRing(keyring.NewArrayKeyring(nil))
	if err := m.SaveSession([]byte(`{"logged_in":true}`)); err != nil {
		t.Fatal(err)
	}

	if err := m.ClearAll(); err != nil {
		t.Fatalf("ClearAll() error = %v", err)
	}
	if got, _ := m.LoadSession(); got != nil {
		t.Errorf("LoadSession() after ClearAll = %q, want nil", got)
	}
	if err := m.ClearSession(); err != nil {
		t.Errorf("ClearSession() on missing key error = %v", err)
	}
}

func openFileRing(t *testing.T) keyring.Keyring {
	t.Helper()
	ring, err := keyring.Open(keyring.Config{
		ServiceName:      ServiceName,
		AllowedBackends:  []keyring.BackendType{keyring.FileBackend},
		FileDir:          t.TempDir(),
		FilePasswordFunc: keyring.FixedStringPrompt("test-password"),
	})
	if err != nil {
		t.Fatalf("open file keyring: %v", err)
	}
	return ring
}

func TestManagerFileBackendMissingKeys(t *testing.T) {
	m := NewManagerWithRing(openFileRing(t))

	if err := m.ClearSession(); err != nil {
		t.Errorf("ClearSession() on empty store error = %v", err)
	}
	if err := m.ClearAll(); err != nil {
		t.Errorf("ClearAll() on empty store error = %v", err)
	}

	if err := m.SaveSession([]byte(`{"logged_in":true}`)); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}
	if err := m.ClearAll(); err != nil {
		t.Fatalf("ClearAll() without token cache error = %v", err)
	}
	got, err := m.LoadSession()
	if err != nil || got != nil {
		t.Errorf("LoadSession() after ClearAll = %q, %v; want nil, nil", got, err)
	}
}

// failingRing fails Remove for one key.
type failingRing struct {
	keyring.Keyring
	key string
}

func (f failingRing) Remove(key string) error {
	if key == f.key {
		return errors.New("backend locked")
	}
	return f.Keyring.Remove(key)
}

func TestManagerClearAllTriesEveryKey(t *testing.T) {
	ring := failingRing{Keyring: keyring.NewArrayKeyring(nil), key: KeyTokenCache}
	m := NewManagerWithRing(ring)
	if err := m.SaveSession([]byte(`{"logged_in":true}`)); err != nil {
		t.Fatal(err)
	}

	err := m.ClearAll()
	if err == nil || !strings.Contains(err.Error(), "backend locked") {
		t.Fatalf("ClearAll() error = %v, want backend locked", err)
	}
	if got, _ := m.LoadSession(); got != nil {
		t.Errorf("LoadSession() after ClearAll = %q, want nil", got)
	}
}

func TestUseInstallsGlobal(t *testing.T) {
	m := NewManagerWithRing(keyring.NewArrayKeyring(nil))
	Use(m)
	t.Cleanup(func() { Use(nil) })

	got, err := GetManager()
	if err != nil {
		t.Fatalf("GetManager() error = %v", err)
	}
	if got != m {
		t.Errorf("GetManager() returned a different manager")
	}
}
