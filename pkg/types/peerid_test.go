package types

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/dep2p/go-dep2p-tls/pkg/lib/multibase"
)

// ed25519PubKeyProtoHex 一个 Ed25519 公钥的 libp2p protobuf
const ed25519PubKeyProtoHex = "080112203fe927b823dd7dd796ff052e31d0a6e736caf05764e5ecc2ab8588f307c06179"

func ed25519Proto(t *testing.T) []byte {
	t.Helper()
	proto, err := hex.DecodeString(ed25519PubKeyProtoHex)
	if err != nil {
		t.Fatal(err)
	}
	return proto
}

func TestPeerID_IdentityMultihash(t *testing.T) {
	proto := ed25519Proto(t)

	id, err := NewPeerID(KeyTypeEd25519, proto)
	if err != nil {
		t.Fatalf("NewPeerID() error = %v", err)
	}
	if id.Type() != KeyTypeEd25519 {
		t.Errorf("Type() = %v, want Ed25519", id.Type())
	}

	// 身份 multihash: 0x00 ‖ varint(len) ‖ proto
	want := append([]byte{0x00, byte(len(proto))}, proto...)
	if !bytes.Equal(id.Multihash(), want) {
		t.Errorf("Multihash() = %x, want %x", id.Multihash(), want)
	}
}

func TestPeerID_ModernString(t *testing.T) {
	proto := ed25519Proto(t)
	id, _ := NewPeerID(KeyTypeEd25519, proto)

	s := id.String()
	if !strings.HasPrefix(s, "b") {
		t.Fatalf("String() = %q, want 'b' prefix", s)
	}

	// Base32 解码后为 CIDv1 头 01 72 加身份 multihash 00 24 与 protobuf
	rawCID, err := multibase.Decode(s)
	if err != nil {
		t.Fatalf("multibase.Decode() error = %v", err)
	}
	wantCID := append([]byte{0x01, 0x72, 0x00, 0x24}, proto...)
	if !bytes.Equal(rawCID, wantCID) {
		t.Errorf("decoded CID = %x, want %x", rawCID, wantCID)
	}

	// 解析回来必须等价
	parsed, err := ParsePeerID(s)
	if err != nil {
		t.Fatalf("ParsePeerID() error = %v", err)
	}
	if !parsed.Equal(id) {
		t.Error("ParsePeerID(String()) != id")
	}

	gotProto, err := parsed.PubKeyProto()
	if err != nil {
		t.Fatalf("PubKeyProto() error = %v", err)
	}
	if !bytes.Equal(gotProto, proto) {
		t.Errorf("PubKeyProto() = %x, want %x", gotProto, proto)
	}
}

func TestPeerID_LegacyString(t *testing.T) {
	proto := ed25519Proto(t)
	id, _ := NewPeerID(KeyTypeEd25519, proto)

	legacy := id.LegacyString()
	if legacy == "" {
		t.Fatal("LegacyString() is empty")
	}

	parsed, err := ParseLegacyPeerID(legacy)
	if err != nil {
		t.Fatalf("ParseLegacyPeerID() error = %v", err)
	}
	if !parsed.Equal(id) {
		t.Error("ParseLegacyPeerID(LegacyString()) != id")
	}
}

func TestPeerID_RSAHashing(t *testing.T) {
	// RSA 公钥 protobuf 的 PeerID 携带 SHA-256 multihash
	proto := []byte{0x08, 0x00, 0x12, 0x04, 0x01, 0x02, 0x03, 0x04}

	id, err := NewPeerID(KeyTypeRSA, proto)
	if err != nil {
		t.Fatalf("NewPeerID() error = %v", err)
	}

	digest := sha256.Sum256(proto)
	want := append([]byte{0x12, 0x20}, digest[:]...)
	if !bytes.Equal(id.Multihash(), want) {
		t.Errorf("Multihash() = %x, want %x", id.Multihash(), want)
	}

	// RSA PeerID 无法还原公钥
	if _, err := id.PubKeyProto(); !errors.Is(err, ErrHashedPeerID) {
		t.Errorf("PubKeyProto() error = %v, want ErrHashedPeerID", err)
	}

	// 哈希形式的字符串往返
	parsed, err := ParsePeerID(id.String())
	if err != nil {
		t.Fatalf("ParsePeerID() error = %v", err)
	}
	if !parsed.Equal(id) {
		t.Error("ParsePeerID(String()) != id")
	}
	if parsed.Type() != KeyTypeRSA {
		t.Errorf("parsed.Type() = %v, want RSA", parsed.Type())
	}

	// RSA 的历史形式以 Qm 开头
	if !strings.HasPrefix(id.LegacyString(), "Qm") {
		t.Errorf("LegacyString() = %q, want Qm prefix", id.LegacyString())
	}
}

func TestPeerID_FromPubKeyProto(t *testing.T) {
	proto := ed25519Proto(t)

	id, err := PeerIDFromPubKeyProto(proto)
	if err != nil {
		t.Fatalf("PeerIDFromPubKeyProto() error = %v", err)
	}
	if id.Type() != KeyTypeEd25519 {
		t.Errorf("Type() = %v, want Ed25519", id.Type())
	}

	// 字段顺序颠倒的 protobuf 也能识别类型
	swapped := append([]byte{0x12, 0x20}, proto[4:]...)
	swapped = append(swapped, 0x08, 0x01)
	id2, err := PeerIDFromPubKeyProto(swapped)
	if err != nil {
		t.Fatalf("PeerIDFromPubKeyProto(swapped) error = %v", err)
	}
	if id2.Type() != KeyTypeEd25519 {
		t.Errorf("swapped Type() = %v, want Ed25519", id2.Type())
	}
}

func TestPeerID_FromPubKeyProto_Invalid(t *testing.T) {
	cases := map[string][]byte{
		"unknown field": {0x1a, 0x01, 0x00},
		"bad key type":  {0x08, 0x09},
		"truncated":     {0x08, 0x01, 0x12, 0x20, 0x01},
		"missing type":  {0x12, 0x01, 0x00},
	}
	for name, proto := range cases {
		if _, err := PeerIDFromPubKeyProto(proto); !errors.Is(err, ErrInvalidPubKeyProto) {
			t.Errorf("%s: error = %v, want ErrInvalidPubKeyProto", name, err)
		}
	}
}

func TestParsePeerID_RejectsWrongPrefix(t *testing.T) {
	proto := ed25519Proto(t)
	id, _ := NewPeerID(KeyTypeEd25519, proto)

	// 'b' 之外的任何前缀都拒绝
	for _, s := range []string{"", "z" + id.String()[1:], "B" + id.String()[1:], id.LegacyString()} {
		if _, err := ParsePeerID(s); !errors.Is(err, ErrNotMultibase32) {
			t.Errorf("ParsePeerID(%q) error = %v, want ErrNotMultibase32", s, err)
		}
	}
}

func TestPeerID_Equal(t *testing.T) {
	proto := ed25519Proto(t)
	id1, _ := NewPeerID(KeyTypeEd25519, proto)
	id2, _ := NewPeerID(KeyTypeEd25519, proto)

	if !id1.Equal(id2) {
		t.Error("identical PeerIDs not equal")
	}

	// 类型不同一定不相等
	other, _ := NewPeerID(KeyTypeSecp256k1, proto)
	if id1.Equal(other) {
		t.Error("PeerIDs of different key types compare equal")
	}

	if id1.Equal(EmptyPeerID) {
		t.Error("PeerID equals EmptyPeerID")
	}
	if !EmptyPeerID.IsEmpty() {
		t.Error("EmptyPeerID.IsEmpty() = false")
	}
}
