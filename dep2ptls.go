package dep2ptls

import (
	stdtls "crypto/tls"
	"crypto/x509"

	"github.com/dep2p/go-dep2p-tls/internal/core/security/tls"
	"github.com/dep2p/go-dep2p-tls/pkg/lib/crypto"
	"github.com/dep2p/go-dep2p-tls/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
//                              版本信息
// ════════════════════════════════════════════════════════════════════════════

// Version 当前版本
const Version = "v0.1.0"

// ════════════════════════════════════════════════════════════════════════════
//                              类型别名
// ════════════════════════════════════════════════════════════════════════════

// PeerID 节点身份标识
type PeerID = types.PeerID

// KeyType 密钥类型
type KeyType = types.KeyType

// 密钥类型常量
const (
	KeyTypeRSA       = types.KeyTypeRSA
	KeyTypeEd25519   = types.KeyTypeEd25519
	KeyTypeSecp256k1 = types.KeyTypeSecp256k1
	KeyTypeECDSA     = types.KeyTypeECDSA
)

// PrivateKey 私钥接口
type PrivateKey = crypto.PrivateKey

// PublicKey 公钥接口
type PublicKey = crypto.PublicKey

// Keystore 密钥存储接口
type Keystore = crypto.Keystore

// ConfigBuilder TLS 身份配置构建器
type ConfigBuilder = tls.ConfigBuilder

// ════════════════════════════════════════════════════════════════════════════
//                              门面函数
// ════════════════════════════════════════════════════════════════════════════

// GenerateKeyPair 生成密钥对
func GenerateKeyPair(keyType KeyType) (PrivateKey, PublicKey, error) {
	return crypto.GenerateKeyPair(keyType)
}

// PeerIDFromPublicKey 从公钥派生 PeerID
func PeerIDFromPublicKey(pub PublicKey) (PeerID, error) {
	return crypto.PeerIDFromPublicKey(pub)
}

// ParsePeerID 从现代字符串形式解析 PeerID
func ParsePeerID(s string) (PeerID, error) {
	return types.ParsePeerID(s)
}

// MakeCertificate 生成携带 libp2p 扩展的自签名证书
func MakeCertificate(hostKey PrivateKey, certKey PrivateKey) (*stdtls.Certificate, error) {
	return tls.MakeCertificate(hostKey, certKey)
}

// GenerateCertificate 用新生成的临时证书密钥签发证书
func GenerateCertificate(hostKey PrivateKey, certKeyType KeyType) (*stdtls.Certificate, error) {
	return tls.GenerateCertificate(hostKey, certKeyType)
}

// VerifyCertificate 验证证书并返回经过认证的主机公钥（严格模式）
func VerifyCertificate(cert *x509.Certificate) (PublicKey, error) {
	return tls.VerifyCertificate(cert)
}

// PeerIDFromCertificate 验证证书并返回对端 PeerID
func PeerIDFromCertificate(cert *x509.Certificate) (PeerID, error) {
	return tls.PeerIDFromCertificate(cert)
}

// NewConfigBuilder 创建 TLS 身份配置构建器
func NewConfigBuilder(hostKey PrivateKey) *ConfigBuilder {
	return tls.NewConfigBuilder(hostKey)
}

// NewFSKeystore 创建文件系统密钥存储
func NewFSKeystore(dir string, password []byte) (Keystore, error) {
	ks, err := crypto.NewFSKeystore(dir, password)
	if err != nil {
		return nil, err
	}
	return ks, nil
}
