// Package crypto 提供 DeP2P-TLS 密码学工具
package crypto

import (
	stdcrypto "crypto"
	"crypto/rand"
	"crypto/subtle"
	"io"

	"github.com/dep2p/go-dep2p-tls/pkg/types"
)

// ============================================================================
//                              密钥类型定义
// ============================================================================

// KeyType 密钥类型
//
// 是 pkg/types.KeyType 的别名，数值与 libp2p 公钥 protobuf 对齐。
type KeyType = types.KeyType

const (
	// KeyTypeRSA RSA 密钥（仅支持解码）
	KeyTypeRSA = types.KeyTypeRSA
	// KeyTypeEd25519 Ed25519 密钥（默认推荐）
	KeyTypeEd25519 = types.KeyTypeEd25519
	// KeyTypeSecp256k1 Secp256k1 密钥（仅支持解码）
	KeyTypeSecp256k1 = types.KeyTypeSecp256k1
	// KeyTypeECDSA ECDSA P-256 密钥
	KeyTypeECDSA = types.KeyTypeECDSA
)

// ============================================================================
//                              密钥接口定义
// ============================================================================

// Key 基础密钥接口
type Key interface {
	// Raw 返回原始密钥字节
	Raw() ([]byte, error)

	// Type 返回密钥类型
	Type() KeyType

	// Equals 比较两个密钥是否相等
	Equals(Key) bool
}

// PublicKey 公钥接口
type PublicKey interface {
	Key

	// Verify 使用此公钥验证签名
	//
	// 参数：
	//   - data: 原始数据
	//   - sig: 签名字节
	//
	// 返回：
	//   - bool: 签名是否有效；签名结构无效时返回 false 而非错误
	//   - error: 验证过程中的错误
	Verify(data, sig []byte) (bool, error)
}

// PrivateKey 私钥接口
type PrivateKey interface {
	Key

	// Sign 使用此私钥签名数据
	//
	// 参数：
	//   - data: 要签名的数据
	//
	// 返回：
	//   - []byte: 签名字节
	//   - error: 签名过程中的错误
	Sign(data []byte) ([]byte, error)

	// GetPublic 返回对应的公钥
	GetPublic() PublicKey
}

// StdSigner 可转换为标准库 crypto.Signer 的私钥
//
// Ed25519 和 ECDSA 私钥实现此接口，供 X.509 证书签发使用。
type StdSigner interface {
	// Std 返回标准库形式的签名器
	Std() stdcrypto.Signer
}

// ============================================================================
//                              密钥工厂函数
// ============================================================================

// GenerateKeyPair 生成密钥对
//
// 使用系统默认的加密安全随机源。
// RSA 与 Secp256k1 仅支持解码，生成时返回 ErrUnsupportedKeyType。
//
// 参数：
//   - keyType: 密钥类型
//
// 返回：
//   - PrivateKey: 私钥
//   - PublicKey: 公钥
//   - error: 生成错误
func GenerateKeyPair(keyType KeyType) (PrivateKey, PublicKey, error) {
	return GenerateKeyPairWithReader(keyType, rand.Reader)
}

// GenerateKeyPairWithReader 使用指定的随机源生成密钥对
//
// 参数：
//   - keyType: 密钥类型
//   - reader: 随机源（用于测试时的确定性生成）
//
// 返回：
//   - PrivateKey: 私钥
//   - PublicKey: 公钥
//   - error: 生成错误
func GenerateKeyPairWithReader(keyType KeyType, reader io.Reader) (PrivateKey, PublicKey, error) {
	switch keyType {
	case KeyTypeEd25519:
		return GenerateEd25519Key(reader)
	case KeyTypeECDSA:
		return GenerateECDSAKey(reader)
	case KeyTypeRSA, KeyTypeSecp256k1:
		return nil, nil, ErrUnsupportedKeyType
	default:
		return nil, nil, ErrBadKeyType
	}
}

// ============================================================================
//                              反序列化函数
// ============================================================================

// PubKeyUnmarshaller 公钥反序列化函数类型
type PubKeyUnmarshaller func(data []byte) (PublicKey, error)

// PrivKeyUnmarshaller 私钥反序列化函数类型
type PrivKeyUnmarshaller func(data []byte) (PrivateKey, error)

// PubKeyUnmarshallers 公钥反序列化函数映射
//
// 四种线上类型都可解码；RSA 和 Secp256k1 公钥解码后仅能
// 参与 PeerID 派生与相等比较，验签返回 ErrUnsupportedKeyType。
var PubKeyUnmarshallers = map[KeyType]PubKeyUnmarshaller{
	KeyTypeEd25519:   UnmarshalEd25519PublicKey,
	KeyTypeSecp256k1: UnmarshalSecp256k1PublicKey,
	KeyTypeECDSA:     UnmarshalECDSAPublicKey,
	KeyTypeRSA:       UnmarshalRSAPublicKey,
}

// PrivKeyUnmarshallers 私钥反序列化函数映射
var PrivKeyUnmarshallers = map[KeyType]PrivKeyUnmarshaller{
	KeyTypeEd25519: UnmarshalEd25519PrivateKey,
	KeyTypeECDSA:   UnmarshalECDSAPrivateKey,
}

// UnmarshalPublicKey 从字节反序列化公钥
//
// 参数：
//   - keyType: 密钥类型
//   - data: 原始密钥字节
//
// 返回：
//   - PublicKey: 公钥对象
//   - error: 反序列化错误
func UnmarshalPublicKey(keyType KeyType, data []byte) (PublicKey, error) {
	um, ok := PubKeyUnmarshallers[keyType]
	if !ok {
		if keyType.IsValid() {
			return nil, ErrUnsupportedKeyType
		}
		return nil, ErrBadKeyType
	}
	return um(data)
}

// UnmarshalPrivateKey 从字节反序列化私钥
//
// 参数：
//   - keyType: 密钥类型
//   - data: 原始密钥字节
//
// 返回：
//   - PrivateKey: 私钥对象
//   - error: 反序列化错误
func UnmarshalPrivateKey(keyType KeyType, data []byte) (PrivateKey, error) {
	um, ok := PrivKeyUnmarshallers[keyType]
	if !ok {
		if keyType.IsValid() {
			return nil, ErrUnsupportedKeyType
		}
		return nil, ErrBadKeyType
	}
	return um(data)
}

// ============================================================================
//                              辅助函数
// ============================================================================

// KeyEqual 使用常量时间比较两个密钥是否相等
//
// 这是一个安全的比较方法，可以防止时序攻击。
func KeyEqual(k1, k2 Key) bool {
	if k1.Type() != k2.Type() {
		return false
	}

	b1, err1 := k1.Raw()
	b2, err2 := k2.Raw()

	if err1 != nil || err2 != nil {
		return false
	}

	return subtle.ConstantTimeCompare(b1, b2) == 1
}
