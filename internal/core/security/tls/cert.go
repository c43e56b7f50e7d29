package tls

import (
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	"time"

	"github.com/dep2p/go-dep2p-tls/pkg/lib/crypto"
)

// 证书默认参数
const (
	// certValidity 证书有效期（自签发起 1 年）
	certValidity = 365 * 24 * time.Hour

	// serialNumberBits 随机序列号位数
	serialNumberBits = 64
)

// certSubject 证书的 subject 与 issuer（自签名，两者相同）
var certSubject = pkix.Name{
	Country:      []string{"US"},
	Organization: []string{"libp2p"},
	CommonName:   "libp2p",
}

// ============================================================================
//                              证书签发
// ============================================================================

// MakeCertificate 生成携带 libp2p 扩展的自签名证书
//
// 参数：
//   - hostKey: 长期主机私钥（节点身份）
//   - certKey: 每连接一换的证书私钥，签发整张证书；
//     仅支持 Ed25519 与 ECDSA P-256
//
// 证书密钥为证书签名（Ed25519 无摘要包装，ECDSA 用 SHA-256），
// 主机密钥在扩展内为证书密钥背书。hostKey 与 certKey
// 允许是同一把密钥（退化但合法）。
func MakeCertificate(hostKey crypto.PrivateKey, certKey crypto.PrivateKey) (*tls.Certificate, error) {
	return makeCertificate(hostKey, certKey, false)
}

// makeCertificate 生成证书（内部实现）
//
// rawECDSAEnvelope 控制扩展内 ECDSA 主机公钥的 protobuf 形式。
func makeCertificate(hostKey crypto.PrivateKey, certKey crypto.PrivateKey, rawECDSAEnvelope bool) (*tls.Certificate, error) {
	if hostKey == nil {
		return nil, ErrNilHostKey
	}

	signer, ok := certKey.(crypto.StdSigner)
	if !ok {
		return nil, ErrBadCertKeyType
	}
	certSigner := signer.Std()

	// 证书公钥的 SubjectPublicKeyInfo，也是扩展签名载荷的一部分
	certSPKI, err := x509.MarshalPKIXPublicKey(certSigner.Public())
	if err != nil {
		return nil, fmt.Errorf("tls: marshal cert public key: %w", err)
	}

	ext, err := newExtension(hostKey, certSPKI, rawECDSAEnvelope)
	if err != nil {
		return nil, err
	}

	serial, err := newSerialNumber()
	if err != nil {
		return nil, err
	}

	notBefore := time.Now()
	template := &x509.Certificate{
		SerialNumber:    serial,
		Subject:         certSubject,
		NotBefore:       notBefore,
		NotAfter:        notBefore.Add(certValidity),
		ExtraExtensions: []pkix.Extension{ext},
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, template, certSigner.Public(), certSigner)
	if err != nil {
		return nil, fmt.Errorf("tls: create certificate: %w", err)
	}

	// 解析证书以填充 Leaf 字段
	leaf, err := x509.ParseCertificate(certDER)
	if err != nil {
		return nil, fmt.Errorf("tls: parse certificate: %w", err)
	}

	return &tls.Certificate{
		Certificate: [][]byte{certDER},
		PrivateKey:  certSigner,
		Leaf:        leaf,
	}, nil
}

// GenerateCertificate 用新生成的临时证书密钥签发证书
//
// 参数：
//   - hostKey: 长期主机私钥
//   - certKeyType: 证书密钥类型（Ed25519 或 ECDSA）
func GenerateCertificate(hostKey crypto.PrivateKey, certKeyType crypto.KeyType) (*tls.Certificate, error) {
	certKey, _, err := crypto.GenerateKeyPair(certKeyType)
	if err != nil {
		return nil, fmt.Errorf("tls: generate cert key: %w", err)
	}
	return MakeCertificate(hostKey, certKey)
}

// newSerialNumber 生成随机 64 位证书序列号
//
// 使用 crypto/rand 而非伪随机源。
func newSerialNumber() (*big.Int, error) {
	limit := new(big.Int).Lsh(big.NewInt(1), serialNumberBits)
	serial, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return nil, fmt.Errorf("tls: generate serial number: %w", err)
	}
	return serial, nil
}
