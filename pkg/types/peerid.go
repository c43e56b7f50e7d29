package types

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
	mh "github.com/multiformats/go-multihash"
	"github.com/multiformats/go-varint"

	"github.com/dep2p/go-dep2p-tls/pkg/lib/multibase"
)

// ============================================================================
//                              PeerID - 节点标识
// ============================================================================

// PeerID 字符串形式使用的 CIDv1 常量
const (
	// cidVersion1 CIDv1 版本字节
	cidVersion1 = 0x01
	// cidCodecLibp2pKey libp2p-key multicodec 编码
	cidCodecLibp2pKey = 0x72
)

// PeerID 相关错误
var (
	// ErrInvalidPeerID PeerID 无效
	ErrInvalidPeerID = errors.New("invalid peer ID")

	// ErrNotMultibase32 字符串不是 'b' 前缀的 Base32 Multibase 编码
	ErrNotMultibase32 = errors.New("peer ID string is not multibase base32")

	// ErrInvalidCID CIDv1 头无效（版本或编码不匹配）
	ErrInvalidCID = errors.New("invalid CIDv1 header")

	// ErrHashedPeerID PeerID 仅携带公钥哈希，无法还原公钥
	ErrHashedPeerID = errors.New("peer ID carries only a key digest")

	// ErrInvalidPubKeyProto 公钥 protobuf 无效
	ErrInvalidPubKeyProto = errors.New("invalid public key protobuf")
)

// PeerID 节点唯一标识符
//
// 由节点长期公钥派生。内部持有 multihash：
//   - Ed25519/ECDSA/Secp256k1: 身份 multihash（0x00），载荷为公钥 protobuf
//   - RSA: SHA-256 multihash（0x12），载荷为公钥 protobuf 的摘要
//
// 外部表示格式：
//   - String(): 'b' + Base32(CIDv1)，现代形式
//   - LegacyString(): Base58(multihash)，Qm… 风格的历史形式
type PeerID struct {
	typ   KeyType
	mhash []byte
}

// EmptyPeerID 空 PeerID
var EmptyPeerID PeerID

// Type 返回派生此 PeerID 的密钥类型
func (id PeerID) Type() KeyType {
	return id.typ
}

// Multihash 返回 multihash 字节的副本
func (id PeerID) Multihash() []byte {
	b := make([]byte, len(id.mhash))
	copy(b, id.mhash)
	return b
}

// String 返回 PeerID 的现代字符串表示
//
// 格式：'b' + Base32-小写无填充(0x01 ‖ 0x72 ‖ multihash)。
// 0x01 是 CIDv1 版本，0x72 是 libp2p-key multicodec。
func (id PeerID) String() string {
	if id.IsEmpty() {
		return ""
	}
	buf := make([]byte, 0, 2+len(id.mhash))
	buf = append(buf, cidVersion1, cidCodecLibp2pKey)
	buf = append(buf, id.mhash...)
	return multibase.Encode(buf)
}

// LegacyString 返回 PeerID 的历史字符串表示
//
// 格式：Base58btc(multihash)，不含 CID 包装。
// 身份 multihash 以 Qm 之外的前缀开头，SHA-256 multihash 以 Qm 开头。
func (id PeerID) LegacyString() string {
	if id.IsEmpty() {
		return ""
	}
	return base58.Encode(id.mhash)
}

// ShortString 返回 PeerID 的短字符串表示（日志用）
func (id PeerID) ShortString() string {
	s := id.String()
	if len(s) > 12 {
		return s[:12]
	}
	return s
}

// Equal 比较两个 PeerID 是否相等
//
// 使用常量时间比较以防止时序攻击。
// 密钥类型不同的 PeerID 一定不相等。
func (id PeerID) Equal(other PeerID) bool {
	if id.typ != other.typ {
		return false
	}
	if len(id.mhash) != len(other.mhash) {
		return false
	}
	return subtle.ConstantTimeCompare(id.mhash, other.mhash) == 1
}

// IsEmpty 检查 PeerID 是否为空
func (id PeerID) IsEmpty() bool {
	return len(id.mhash) == 0
}

// PubKeyProto 返回 PeerID 内嵌的公钥 protobuf
//
// 仅身份 multihash 形式可还原公钥；RSA 的哈希形式返回 ErrHashedPeerID。
func (id PeerID) PubKeyProto() ([]byte, error) {
	if id.IsEmpty() {
		return nil, ErrInvalidPeerID
	}
	dec, err := mh.Decode(id.mhash)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPeerID, err)
	}
	if dec.Code != mh.IDENTITY {
		return nil, ErrHashedPeerID
	}
	proto := make([]byte, len(dec.Digest))
	copy(proto, dec.Digest)
	return proto, nil
}

// ============================================================================
//                              构造与解析
// ============================================================================

// NewPeerID 从密钥类型和公钥 protobuf 构造 PeerID
//
// RSA 公钥使用 SHA-256 multihash，其余类型使用身份 multihash。
func NewPeerID(typ KeyType, pubKeyProto []byte) (PeerID, error) {
	if !typ.IsValid() {
		return EmptyPeerID, ErrInvalidPeerID
	}
	if len(pubKeyProto) == 0 {
		return EmptyPeerID, ErrInvalidPubKeyProto
	}

	code := uint64(mh.IDENTITY)
	if typ == KeyTypeRSA {
		code = mh.SHA2_256
	}

	mhash, err := mh.Sum(pubKeyProto, code, -1)
	if err != nil {
		return EmptyPeerID, fmt.Errorf("%w: %v", ErrInvalidPeerID, err)
	}

	return PeerID{typ: typ, mhash: mhash}, nil
}

// PeerIDFromPubKeyProto 从公钥 protobuf 构造 PeerID
//
// 密钥类型取自 protobuf 字段 1。
func PeerIDFromPubKeyProto(pubKeyProto []byte) (PeerID, error) {
	typ, err := keyTypeOfPubKeyProto(pubKeyProto)
	if err != nil {
		return EmptyPeerID, err
	}
	return NewPeerID(typ, pubKeyProto)
}

// ParsePeerID 从现代字符串形式解析 PeerID
//
// 仅接受 'b' 前缀（Base32 小写）的 Multibase 编码；
// 其他前缀返回 ErrNotMultibase32。
// 解码后校验 CIDv1 头（版本 0x01，编码 0x72），
// 并接受身份与 SHA-256 两种 multihash。
func ParsePeerID(s string) (PeerID, error) {
	raw, err := multibase.Decode(s)
	if err != nil {
		if errors.Is(err, multibase.ErrNotBase32) {
			return EmptyPeerID, ErrNotMultibase32
		}
		return EmptyPeerID, fmt.Errorf("%w: %v", ErrInvalidPeerID, err)
	}

	version, n, err := varint.FromUvarint(raw)
	if err != nil || version != cidVersion1 {
		return EmptyPeerID, ErrInvalidCID
	}
	codec, m, err := varint.FromUvarint(raw[n:])
	if err != nil || codec != cidCodecLibp2pKey {
		return EmptyPeerID, ErrInvalidCID
	}

	return peerIDFromMultihash(raw[n+m:])
}

// ParseLegacyPeerID 从历史字符串形式解析 PeerID
//
// 输入为 multihash 的裸 Base58btc 编码（Qm… 风格）。
func ParseLegacyPeerID(s string) (PeerID, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return EmptyPeerID, fmt.Errorf("%w: %v", ErrInvalidPeerID, err)
	}
	return peerIDFromMultihash(raw)
}

// peerIDFromMultihash 从 multihash 字节构造 PeerID
func peerIDFromMultihash(mhash []byte) (PeerID, error) {
	dec, err := mh.Decode(mhash)
	if err != nil {
		return EmptyPeerID, fmt.Errorf("%w: %v", ErrInvalidPeerID, err)
	}

	switch dec.Code {
	case mh.IDENTITY:
		// 身份 multihash：载荷就是公钥 protobuf，密钥类型取自字段 1
		typ, err := keyTypeOfPubKeyProto(dec.Digest)
		if err != nil {
			return EmptyPeerID, err
		}
		if typ == KeyTypeRSA {
			// RSA 公钥必须以哈希形式出现
			return EmptyPeerID, ErrInvalidPeerID
		}
		b := make([]byte, len(mhash))
		copy(b, mhash)
		return PeerID{typ: typ, mhash: b}, nil

	case mh.SHA2_256:
		// SHA-256 multihash：仅 RSA 公钥使用哈希形式
		b := make([]byte, len(mhash))
		copy(b, mhash)
		return PeerID{typ: KeyTypeRSA, mhash: b}, nil

	default:
		return EmptyPeerID, ErrInvalidPeerID
	}
}

// keyTypeOfPubKeyProto 读取公钥 protobuf 的字段 1（密钥类型）
//
// 接受字段 1/2 的任意顺序，拒绝未知字段。
func keyTypeOfPubKeyProto(proto []byte) (KeyType, error) {
	const (
		tagType = 0x08 // 字段 1，varint
		tagData = 0x12 // 字段 2，length-delimited
	)

	var typ uint64
	seenType := false

	rest := proto
	for len(rest) > 0 {
		tag, n, err := varint.FromUvarint(rest)
		if err != nil {
			return 0, fmt.Errorf("%w: bad field tag", ErrInvalidPubKeyProto)
		}
		rest = rest[n:]

		switch tag {
		case tagType:
			typ, n, err = varint.FromUvarint(rest)
			if err != nil {
				return 0, fmt.Errorf("%w: bad key type", ErrInvalidPubKeyProto)
			}
			seenType = true
			rest = rest[n:]

		case tagData:
			length, n, err := varint.FromUvarint(rest)
			if err != nil || uint64(len(rest)-n) < length {
				return 0, fmt.Errorf("%w: truncated key data", ErrInvalidPubKeyProto)
			}
			rest = rest[n+int(length):]

		default:
			return 0, fmt.Errorf("%w: unknown field tag %d", ErrInvalidPubKeyProto, tag)
		}
	}

	if !seenType {
		return 0, fmt.Errorf("%w: missing key type", ErrInvalidPubKeyProto)
	}
	kt := KeyType(typ)
	if !kt.IsValid() {
		return 0, fmt.Errorf("%w: unknown key type %d", ErrInvalidPubKeyProto, typ)
	}
	return kt, nil
}
