package crypto

import (
	stdcrypto "crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"crypto/x509"
	"fmt"
	"io"
	"math/big"
)

// ECDSA 密钥常量（使用 P-256 曲线）
const (
	// ECDSAPrivateKeySize ECDSA 私钥标量大小（32 字节）
	ECDSAPrivateKeySize = 32
	// ECDSACoordinateSize 单个坐标大小（32 字节）
	ECDSACoordinateSize = 32
	// ECDSARawPublicKeySize 原始公钥大小：X‖Y 拼接，无 0x04 前缀（64 字节）
	ECDSARawPublicKeySize = 2 * ECDSACoordinateSize
	// ECDSAUncompressedPublicKeySize 未压缩公钥大小：0x04‖X‖Y（65 字节）
	ECDSAUncompressedPublicKeySize = 1 + ECDSARawPublicKeySize
	// ECDSAMaxSignatureSize DER 签名最大长度（72 字节）
	ECDSAMaxSignatureSize = 72
)

// ============================================================================
//                              ECDSAPublicKey
// ============================================================================

// ECDSAPublicKey ECDSA 公钥实现（P-256 曲线）
type ECDSAPublicKey struct {
	k *ecdsa.PublicKey
}

// Raw 返回原始公钥字节（64 字节）
//
// 格式为未压缩点的 X‖Y 拼接，去掉 0x04 前缀。
func (k *ECDSAPublicKey) Raw() ([]byte, error) {
	raw := make([]byte, ECDSARawPublicKeySize)
	copy(raw[:ECDSACoordinateSize], ecdsaPaddedBytes(k.k.X, ECDSACoordinateSize))
	copy(raw[ECDSACoordinateSize:], ecdsaPaddedBytes(k.k.Y, ECDSACoordinateSize))
	return raw, nil
}

// SPKI 返回标准 X.509 SubjectPublicKeyInfo 编码（P-256 为 91 字节）
func (k *ECDSAPublicKey) SPKI() ([]byte, error) {
	return x509.MarshalPKIXPublicKey(k.k)
}

// Type 返回密钥类型
func (k *ECDSAPublicKey) Type() KeyType {
	return KeyTypeECDSA
}

// Equals 比较两个公钥是否相等
func (k *ECDSAPublicKey) Equals(other Key) bool {
	ek, ok := other.(*ECDSAPublicKey)
	if !ok {
		return KeyEqual(k, other)
	}
	return k.k.X.Cmp(ek.k.X) == 0 && k.k.Y.Cmp(ek.k.Y) == 0
}

// Verify 使用此公钥验证签名
//
// 签名为 ASN.1 DER 编码的 SEQUENCE { r INTEGER, s INTEGER }，
// 摘要为 SHA-256。结构无效的签名返回 false 而非错误。
func (k *ECDSAPublicKey) Verify(data, sig []byte) (bool, error) {
	if len(sig) == 0 || len(sig) > ECDSAMaxSignatureSize {
		return false, nil
	}
	hash := sha256.Sum256(data)
	return ecdsa.VerifyASN1(k.k, hash[:], sig), nil
}

// ============================================================================
//                              ECDSAPrivateKey
// ============================================================================

// ECDSAPrivateKey ECDSA 私钥实现（P-256 曲线）
type ECDSAPrivateKey struct {
	k *ecdsa.PrivateKey
}

// Raw 返回原始私钥标量字节（32 字节）
func (k *ECDSAPrivateKey) Raw() ([]byte, error) {
	return ecdsaPaddedBytes(k.k.D, ECDSAPrivateKeySize), nil
}

// SEC1 返回 ASN.1 DER 编码的 ECPrivateKey SEQUENCE
func (k *ECDSAPrivateKey) SEC1() ([]byte, error) {
	return x509.MarshalECPrivateKey(k.k)
}

// Type 返回密钥类型
func (k *ECDSAPrivateKey) Type() KeyType {
	return KeyTypeECDSA
}

// Equals 比较两个私钥是否相等
func (k *ECDSAPrivateKey) Equals(other Key) bool {
	ek, ok := other.(*ECDSAPrivateKey)
	if !ok {
		return KeyEqual(k, other)
	}

	b1 := ecdsaPaddedBytes(k.k.D, ECDSAPrivateKeySize)
	b2 := ecdsaPaddedBytes(ek.k.D, ECDSAPrivateKeySize)
	return subtle.ConstantTimeCompare(b1, b2) == 1
}

// GetPublic 返回对应的公钥
func (k *ECDSAPrivateKey) GetPublic() PublicKey {
	return &ECDSAPublicKey{k: &k.k.PublicKey}
}

// Sign 使用此私钥签名数据
//
// 摘要为 SHA-256，返回变长的 ASN.1 DER 签名（最长 72 字节）。
// ECDSA 使用随机 k，同一消息两次签名的字节不必相同。
func (k *ECDSAPrivateKey) Sign(data []byte) ([]byte, error) {
	hash := sha256.Sum256(data)
	return ecdsa.SignASN1(rand.Reader, k.k, hash[:])
}

// Std 返回标准库形式的签名器（供 X.509 证书签发使用）
func (k *ECDSAPrivateKey) Std() stdcrypto.Signer {
	return k.k
}

// ============================================================================
//                              工厂函数
// ============================================================================

// GenerateECDSAKey 生成新的 ECDSA 密钥对（P-256 曲线）
func GenerateECDSAKey(src io.Reader) (PrivateKey, PublicKey, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), src)
	if err != nil {
		return nil, nil, err
	}
	return &ECDSAPrivateKey{k: priv}, &ECDSAPublicKey{k: &priv.PublicKey}, nil
}

// UnmarshalECDSAPublicKey 从字节反序列化 ECDSA 公钥
//
// 支持三种格式：
//   - 64 字节：X‖Y 拼接（无前缀）
//   - 65 字节：未压缩点（0x04‖X‖Y）
//   - DER：标准 SubjectPublicKeyInfo
//
// 非 P-256 曲线的 DER 公钥返回 ErrWrongCurve。
func UnmarshalECDSAPublicKey(data []byte) (PublicKey, error) {
	switch len(data) {
	case ECDSARawPublicKeySize:
		return ecdsaPublicKeyFromCoordinates(data[:ECDSACoordinateSize], data[ECDSACoordinateSize:])

	case ECDSAUncompressedPublicKeySize:
		if data[0] != 0x04 {
			return nil, ErrInvalidPublicKey
		}
		return ecdsaPublicKeyFromCoordinates(data[1:1+ECDSACoordinateSize], data[1+ECDSACoordinateSize:])

	default:
		// DER SubjectPublicKeyInfo
		key, err := x509.ParsePKIXPublicKey(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
		}
		ecKey, ok := key.(*ecdsa.PublicKey)
		if !ok {
			return nil, ErrInvalidPublicKey
		}
		if ecKey.Curve != elliptic.P256() {
			return nil, ErrWrongCurve
		}
		return &ECDSAPublicKey{k: ecKey}, nil
	}
}

// UnmarshalECDSAPrivateKey 从字节反序列化 ECDSA 私钥
//
// 支持 SEC1 ECPrivateKey DER、PKCS#8 DER 和原始 32 字节标量格式。
// 非 P-256 曲线返回 ErrWrongCurve。
func UnmarshalECDSAPrivateKey(data []byte) (PrivateKey, error) {
	// SEC1 ECPrivateKey
	if key, err := x509.ParseECPrivateKey(data); err == nil {
		if key.Curve != elliptic.P256() {
			return nil, ErrWrongCurve
		}
		return &ECDSAPrivateKey{k: key}, nil
	}

	// PKCS#8
	if key, err := x509.ParsePKCS8PrivateKey(data); err == nil {
		ecKey, ok := key.(*ecdsa.PrivateKey)
		if !ok {
			return nil, ErrInvalidPrivateKey
		}
		if ecKey.Curve != elliptic.P256() {
			return nil, ErrWrongCurve
		}
		return &ECDSAPrivateKey{k: ecKey}, nil
	}

	// 原始 32 字节标量
	if len(data) == ECDSAPrivateKeySize {
		d := new(big.Int).SetBytes(data)
		if d.Sign() == 0 || d.Cmp(elliptic.P256().Params().N) >= 0 {
			return nil, ErrInvalidPrivateKey
		}
		x, y := elliptic.P256().ScalarBaseMult(data)
		priv := &ecdsa.PrivateKey{
			D: d,
			PublicKey: ecdsa.PublicKey{
				Curve: elliptic.P256(),
				X:     x,
				Y:     y,
			},
		}
		return &ECDSAPrivateKey{k: priv}, nil
	}

	return nil, ErrInvalidPrivateKey
}

// ============================================================================
//                              辅助函数
// ============================================================================

// ecdsaPublicKeyFromCoordinates 从 X/Y 坐标字节构造公钥
//
// 拒绝不在 P-256 曲线上的点。
func ecdsaPublicKeyFromCoordinates(xb, yb []byte) (PublicKey, error) {
	x := new(big.Int).SetBytes(xb)
	y := new(big.Int).SetBytes(yb)
	if !elliptic.P256().IsOnCurve(x, y) {
		return nil, ErrInvalidPublicKey
	}
	return &ECDSAPublicKey{k: &ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y}}, nil
}

// ecdsaPaddedBytes 返回固定长度的字节切片
func ecdsaPaddedBytes(n *big.Int, length int) []byte {
	b := n.Bytes()
	if len(b) >= length {
		return b[len(b)-length:]
	}
	padded := make([]byte, length)
	copy(padded[length-len(b):], b)
	return padded
}
