// Package crypto 提供 DeP2P-TLS 密码学工具
package crypto

// Signature 签名结构
//
// Ed25519 签名固定 64 字节；ECDSA 签名为变长 DER（最长 72 字节），
// Data 的长度即签名的实际长度。
type Signature struct {
	// Type 签名使用的密钥类型
	Type KeyType

	// Data 签名数据
	Data []byte
}

// Sign 使用私钥签名数据
func Sign(key PrivateKey, data []byte) (*Signature, error) {
	if key == nil {
		return nil, ErrNilPrivateKey
	}

	sig, err := key.Sign(data)
	if err != nil {
		return nil, err
	}

	return &Signature{
		Type: key.Type(),
		Data: sig,
	}, nil
}

// Verify 使用公钥验证签名
func Verify(key PublicKey, data []byte, sig *Signature) (bool, error) {
	if key == nil {
		return false, ErrNilPublicKey
	}
	if sig == nil {
		return false, ErrNilSignature
	}
	if key.Type() != sig.Type {
		return false, ErrSignatureTypeMismatch
	}

	return key.Verify(data, sig.Data)
}
