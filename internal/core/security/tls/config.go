package tls

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"

	"github.com/dep2p/go-dep2p-tls/pkg/lib/crypto"
	"github.com/dep2p/go-dep2p-tls/pkg/types"
)

// defaultNextProtos 默认的 ALPN 协议
var defaultNextProtos = []string{"libp2p"}

// ============================================================================
//                              配置构建器
// ============================================================================

// ConfigBuilder TLS 身份配置构建器
//
// 围绕证书签发与验证回调构建 crypto/tls 配置。
// TLS 记录层本身不在本模块范围内。
type ConfigBuilder struct {
	hostKey crypto.PrivateKey
	cert    *tls.Certificate

	// 配置选项
	certKeyType      crypto.KeyType
	strict           bool
	rawECDSAEnvelope bool
	nextProtos       []string
}

// NewConfigBuilder 创建配置构建器
//
// 默认：Ed25519 证书密钥、严格 critical 校验、
// SubjectPublicKeyInfo 形式的 ECDSA 公钥 protobuf。
func NewConfigBuilder(hostKey crypto.PrivateKey) *ConfigBuilder {
	return &ConfigBuilder{
		hostKey:     hostKey,
		certKeyType: crypto.KeyTypeEd25519,
		strict:      true,
		nextProtos:  defaultNextProtos,
	}
}

// WithCertificate 设置预生成的证书
func (b *ConfigBuilder) WithCertificate(cert *tls.Certificate) *ConfigBuilder {
	b.cert = cert
	return b
}

// WithCertKeyType 设置证书密钥类型（Ed25519 或 ECDSA）
func (b *ConfigBuilder) WithCertKeyType(keyType crypto.KeyType) *ConfigBuilder {
	b.certKeyType = keyType
	return b
}

// WithStrictCriticality 设置是否严格要求扩展标记 critical
//
// 宽松模式接受未标记 critical 的扩展（容忍有缺陷的对端），
// 但每次接受都会记录告警日志。
func (b *ConfigBuilder) WithStrictCriticality(strict bool) *ConfigBuilder {
	b.strict = strict
	return b
}

// WithRawECDSAEnvelope 设置 ECDSA 公钥 protobuf 的兼容形式
//
// 开启后扩展内的 ECDSA 主机公钥按 64 字节 X‖Y 裸坐标编码，
// 用于与旧实现互通；默认为标准 SubjectPublicKeyInfo。
func (b *ConfigBuilder) WithRawECDSAEnvelope(raw bool) *ConfigBuilder {
	b.rawECDSAEnvelope = raw
	return b
}

// WithNextProtos 设置 ALPN 协议
func (b *ConfigBuilder) WithNextProtos(protos []string) *ConfigBuilder {
	b.nextProtos = protos
	return b
}

// BuildServerConfig 构建服务端 TLS 配置
//
// 入站握手不预设对端身份，验证回调只认证证书本身。
func (b *ConfigBuilder) BuildServerConfig() (*tls.Config, error) {
	cert, err := b.ensureCertificate()
	if err != nil {
		return nil, err
	}

	return &tls.Config{
		Certificates: []tls.Certificate{*cert},
		MinVersion:   tls.VersionTLS13,
		NextProtos:   b.nextProtos,
		ClientAuth:   tls.RequireAnyClientCert,
		// P2P 场景使用自签名证书，需要自定义验证
		InsecureSkipVerify:    true, //nolint:gosec // G402: 使用 VerifyPeerCertificate 进行自定义验证
		VerifyPeerCertificate: b.createVerifyCallback(types.EmptyPeerID),
	}, nil
}

// BuildClientConfig 构建客户端 TLS 配置
//
// 出站握手核对对端身份；expectedServerPeer 为空时
// 验证回调只认证证书本身，不核对身份。
func (b *ConfigBuilder) BuildClientConfig(expectedServerPeer types.PeerID) (*tls.Config, error) {
	cert, err := b.ensureCertificate()
	if err != nil {
		return nil, err
	}

	return &tls.Config{
		Certificates: []tls.Certificate{*cert},
		MinVersion:   tls.VersionTLS13,
		NextProtos:   b.nextProtos,
		// P2P 场景使用自签名证书，需要自定义验证
		InsecureSkipVerify:    true, //nolint:gosec // G402: 使用 VerifyPeerCertificate 进行自定义验证
		VerifyPeerCertificate: b.createVerifyCallback(expectedServerPeer),
	}, nil
}

// ensureCertificate 确保有证书可用
func (b *ConfigBuilder) ensureCertificate() (*tls.Certificate, error) {
	if b.cert != nil {
		return b.cert, nil
	}
	if b.hostKey == nil {
		return nil, ErrNilHostKey
	}

	certKey, _, err := crypto.GenerateKeyPair(b.certKeyType)
	if err != nil {
		return nil, fmt.Errorf("tls: generate cert key: %w", err)
	}

	cert, err := makeCertificate(b.hostKey, certKey, b.rawECDSAEnvelope)
	if err != nil {
		return nil, err
	}

	b.cert = cert
	return cert, nil
}

// createVerifyCallback 创建证书验证回调
func (b *ConfigBuilder) createVerifyCallback(expectedPeer types.PeerID) func([][]byte, [][]*x509.Certificate) error {
	strict := b.strict
	return func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
		if len(rawCerts) == 0 {
			return ErrNoCertificate
		}

		cert, err := x509.ParseCertificate(rawCerts[0])
		if err != nil {
			return fmt.Errorf("tls: parse certificate: %w", err)
		}

		var hostPub crypto.PublicKey
		if strict {
			hostPub, err = VerifyCertificate(cert)
		} else {
			hostPub, err = VerifyCertificateLenient(cert)
		}
		if err != nil {
			return err
		}

		if expectedPeer.IsEmpty() {
			return nil
		}

		actualPeer, err := crypto.PeerIDFromPublicKey(hostPub)
		if err != nil {
			return fmt.Errorf("tls: derive peer ID: %w", err)
		}
		if !actualPeer.Equal(expectedPeer) {
			return fmt.Errorf("%w: expected %s, got %s",
				ErrPeerIDMismatch, expectedPeer.String(), actualPeer.String())
		}
		return nil
	}
}
