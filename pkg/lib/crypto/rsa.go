package crypto

import (
	"crypto/rsa"
	"crypto/x509"
	"fmt"
	"io"
)

// RSA 密钥常量
const (
	// RSAMinKeySize RSA 最小密钥大小（位）
	RSAMinKeySize = 2048
)

// ============================================================================
//                              RSAPublicKey
// ============================================================================

// RSAPublicKey RSA 公钥实现
//
// RSA 在线上枚举中声明且可被解码（对端可能以 RSA 身份出现），
// 但本模块不实现 RSA 签名与验签：Verify 返回 ErrUnsupportedKeyType。
type RSAPublicKey struct {
	k *rsa.PublicKey
}

// Raw 返回 PKIX（SubjectPublicKeyInfo）格式的公钥字节
func (k *RSAPublicKey) Raw() ([]byte, error) {
	return x509.MarshalPKIXPublicKey(k.k)
}

// Type 返回密钥类型
func (k *RSAPublicKey) Type() KeyType {
	return KeyTypeRSA
}

// Equals 比较两个公钥是否相等
func (k *RSAPublicKey) Equals(other Key) bool {
	rk, ok := other.(*RSAPublicKey)
	if !ok {
		return KeyEqual(k, other)
	}
	return k.k.N.Cmp(rk.k.N) == 0 && k.k.E == rk.k.E
}

// Verify 未实现：RSA 仅支持解码
func (k *RSAPublicKey) Verify(data, sig []byte) (bool, error) {
	return false, ErrUnsupportedKeyType
}

// ============================================================================
//                              工厂函数
// ============================================================================

// GenerateRSAKey 未实现：RSA 仅支持解码
func GenerateRSAKey(bits int, src io.Reader) (PrivateKey, PublicKey, error) {
	return nil, nil, ErrUnsupportedKeyType
}

// UnmarshalRSAPublicKey 从字节反序列化 RSA 公钥
//
// 支持 PKIX（SubjectPublicKeyInfo）和 PKCS#1 两种 DER 格式。
// 小于 2048 位的密钥被拒绝。
func UnmarshalRSAPublicKey(data []byte) (PublicKey, error) {
	var rsaKey *rsa.PublicKey

	if key, err := x509.ParsePKIXPublicKey(data); err == nil {
		k, ok := key.(*rsa.PublicKey)
		if !ok {
			return nil, ErrInvalidPublicKey
		}
		rsaKey = k
	} else if key, err := x509.ParsePKCS1PublicKey(data); err == nil {
		rsaKey = key
	} else {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}

	if rsaKey.N.BitLen() < RSAMinKeySize {
		return nil, fmt.Errorf("%w: rsa key below %d bits", ErrInvalidKeySize, RSAMinKeySize)
	}
	return &RSAPublicKey{k: rsaKey}, nil
}
