package crypto

import (
	"crypto/subtle"
	"fmt"
	"io"

	secp "github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Secp256k1 密钥常量
const (
	// Secp256k1PublicKeySize Secp256k1 压缩公钥大小（33 字节）
	Secp256k1PublicKeySize = 33
	// Secp256k1UncompressedPublicKeySize Secp256k1 未压缩公钥大小（65 字节）
	Secp256k1UncompressedPublicKeySize = 65
)

// ============================================================================
//                              Secp256k1PublicKey
// ============================================================================

// Secp256k1PublicKey Secp256k1 公钥实现
//
// Secp256k1 在线上枚举中声明且可被解码（对端可能以 Secp256k1 身份出现），
// 但本模块不实现 Secp256k1 签名与验签：Verify 返回 ErrUnsupportedKeyType。
type Secp256k1PublicKey struct {
	k *secp.PublicKey
}

// Raw 返回压缩格式的公钥字节（33 字节）
func (k *Secp256k1PublicKey) Raw() ([]byte, error) {
	return k.k.SerializeCompressed(), nil
}

// Type 返回密钥类型
func (k *Secp256k1PublicKey) Type() KeyType {
	return KeyTypeSecp256k1
}

// Equals 比较两个公钥是否相等
//
// 使用常量时间比较以防止时序攻击。
func (k *Secp256k1PublicKey) Equals(other Key) bool {
	sk, ok := other.(*Secp256k1PublicKey)
	if !ok {
		return KeyEqual(k, other)
	}
	return subtle.ConstantTimeCompare(k.k.SerializeCompressed(), sk.k.SerializeCompressed()) == 1
}

// Verify 未实现：Secp256k1 仅支持解码
func (k *Secp256k1PublicKey) Verify(data, sig []byte) (bool, error) {
	return false, ErrUnsupportedKeyType
}

// ============================================================================
//                              工厂函数
// ============================================================================

// GenerateSecp256k1Key 未实现：Secp256k1 仅支持解码
func GenerateSecp256k1Key(src io.Reader) (PrivateKey, PublicKey, error) {
	return nil, nil, ErrUnsupportedKeyType
}

// UnmarshalSecp256k1PublicKey 从字节反序列化 Secp256k1 公钥
//
// 支持压缩格式（33 字节）和未压缩格式（65 字节）。
// 点的曲线归属由底层库校验。
func UnmarshalSecp256k1PublicKey(data []byte) (PublicKey, error) {
	switch len(data) {
	case Secp256k1PublicKeySize, Secp256k1UncompressedPublicKeySize:
		key, err := secp.ParsePubKey(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
		}
		return &Secp256k1PublicKey{k: key}, nil

	default:
		return nil, fmt.Errorf("%w: expected %d or %d bytes, got %d",
			ErrInvalidKeySize, Secp256k1PublicKeySize, Secp256k1UncompressedPublicKeySize, len(data))
	}
}
