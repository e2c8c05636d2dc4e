package identity

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/99designs/keyring"
	"github.com/AzureAD/microsoft-authentication-library-for-go/apps/cache"

	"devdevman/cli/internal/keychain"
)

type blob struct {
	data []byte
	err  error
}

func (b *blob) Marshal() ([]byte, error) { return b.data, b.err }

func (b *blob) Unmarshal(data []byte) error {
	if b.err != nil {
		return b.err
	}
	b.data = append([]byte(nil), data...)
	return nil
}

func TestKeychainCacheRoundTrip(t *testing.T) {
	km := keychain.NewManagerWithRing(keyring.NewArrayKeyring(nil))
	kc := NewKeychainCache(km, nil)
	ctx := context.Background()

	empty := &blob{}
	if err := kc.Replace(ctx, empty, cache.ReplaceHints{}); err != nil {
		t.Fatalf("Replace() on empty store error = %v", err)
	}
	if empty.data != nil {
		t.Errorf("Replace() on empty store unmarshaled %q", empty.data)
	}

	want := []byte(`{"Account":{"alice":{}}}`)
	if err := kc.Export(ctx, &blob{data: want}, cache.ExportHints{}); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	got := &blob{}
	if err := kc.Replace(ctx, got, cache.ReplaceHints{}); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	if !bytes.Equal(got.data, want) {
		t.Errorf("Replace() loaded %q, want %q", got.data, want)
	}
}

func TestKeychainCacheErrors(t *testing.T) {
	km := keychain.NewManagerWithRing(keyring.NewArrayKeyring(nil))
	kc := NewKeychainCache(km, nil)
	ctx := context.Background()
	boom := errors.New("boom")

	if err := kc.Export(ctx, &blob{err: boom}, cache.ExportHints{}); !errors.Is(err, boom) {
		t.Errorf("Export() error = %v, want %v", err, boom)
	}

	if err := km.SaveTokenCache([]byte("{}")); err != nil {
		t.Fatal(err)
	}
	if err := kc.Replace(ctx, &blob{err: boom}, cache.ReplaceHints{}); !errors.Is(err, boom) {
		t.Errorf("Replace() error = %v, want %v", err, boom)
	}
}
