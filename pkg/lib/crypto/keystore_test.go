package crypto

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFSKeystore_PutGet(t *testing.T) {
	ks, err := NewFSKeystore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewFSKeystore() error = %v", err)
	}

	priv, _, _ := GenerateKeyPair(KeyTypeEd25519)
	if err := ks.Put("identity", priv); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := ks.Get("identity")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !got.Equals(priv) {
		t.Error("retrieved key != stored key")
	}

	// 重复存储被拒绝
	if err := ks.Put("identity", priv); !errors.Is(err, ErrKeyExists) {
		t.Errorf("Put(dup) error = %v, want ErrKeyExists", err)
	}

	has, _ := ks.Has("identity")
	if !has {
		t.Error("Has() = false after Put")
	}
}

func TestFSKeystore_ECDSA(t *testing.T) {
	ks, _ := NewFSKeystore(t.TempDir(), nil)

	priv, _, _ := GenerateKeyPair(KeyTypeECDSA)
	if err := ks.Put("ec", priv); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := ks.Get("ec")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Type() != KeyTypeECDSA {
		t.Errorf("Type() = %v, want ECDSA", got.Type())
	}
	if !got.Equals(priv) {
		t.Error("retrieved ECDSA key != stored key")
	}
}

func TestFSKeystore_Encrypted(t *testing.T) {
	dir := t.TempDir()
	ks, _ := NewFSKeystore(dir, []byte("correct horse"))

	priv, _, _ := GenerateKeyPair(KeyTypeEd25519)
	if err := ks.Put("identity", priv); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := ks.Get("identity")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !got.Equals(priv) {
		t.Error("retrieved key != stored key")
	}

	// 错误密码解密失败
	wrong, _ := NewFSKeystore(dir, []byte("battery staple"))
	if _, err := wrong.Get("identity"); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("Get(wrong password) error = %v, want ErrDecryptionFailed", err)
	}

	// 无密码读取加密文件被拒绝
	noPw, _ := NewFSKeystore(dir, nil)
	if _, err := noPw.Get("identity"); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("Get(no password) error = %v, want ErrInvalidPassword", err)
	}
}

func TestFSKeystore_DeleteList(t *testing.T) {
	ks, _ := NewFSKeystore(t.TempDir(), nil)

	priv, _, _ := GenerateKeyPair(KeyTypeEd25519)
	_ = ks.Put("a", priv)
	_ = ks.Put("b", priv)

	ids, err := ks.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("List() len = %d, want 2", len(ids))
	}

	if err := ks.Delete("a"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := ks.Get("a"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Get(deleted) error = %v, want ErrKeyNotFound", err)
	}
	if err := ks.Delete("a"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Delete(missing) error = %v, want ErrKeyNotFound", err)
	}
}

func TestFSKeystore_RejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	ks, _ := NewFSKeystore(dir, nil)

	if err := os.WriteFile(filepath.Join(dir, "bad.key"), []byte("not a key file"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := ks.Get("bad"); !errors.Is(err, ErrInvalidKeyFile) {
		t.Errorf("Get(corrupt) error = %v, want ErrInvalidKeyFile", err)
	}
}

func TestMemKeystore(t *testing.T) {
	ks := NewMemKeystore()
	priv, _, _ := GenerateKeyPair(KeyTypeEd25519)

	if err := ks.Put("identity", priv); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, err := ks.Get("identity")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !got.Equals(priv) {
		t.Error("retrieved key != stored key")
	}

	if err := ks.Put("identity", priv); !errors.Is(err, ErrKeyExists) {
		t.Errorf("Put(dup) error = %v, want ErrKeyExists", err)
	}
	if err := ks.Delete("identity"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := ks.Get("identity"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Get(deleted) error = %v, want ErrKeyNotFound", err)
	}
}
