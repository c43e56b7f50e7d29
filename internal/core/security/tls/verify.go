package tls

import (
	"crypto/x509"
	"fmt"

	"github.com/dep2p/go-dep2p-tls/pkg/lib/crypto"
	"github.com/dep2p/go-dep2p-tls/pkg/lib/log"
	"github.com/dep2p/go-dep2p-tls/pkg/types"
)

var logger = log.Logger("security/tls")

// ============================================================================
//                              证书验证
// ============================================================================

// VerifyCertificate 验证携带 libp2p 扩展的自签名证书（严格模式）
//
// 验证逻辑：
//  1. 定位唯一的 libp2p 扩展，且必须标记 critical
//  2. 用证书自带的公钥（证书密钥）验证外层证书签名
//  3. 从扩展还原主机公钥 protobuf 与签名
//  4. 用主机公钥验证对 "libp2p-tls-handshake:" ‖ SPKI(证书公钥) 的签名
//  5. 返回经过认证的主机公钥
//
// 验证是自包含的：不校验 CA 链，不做时钟检查，
// 身份绑定本身就是唯一的信任锚。
func VerifyCertificate(cert *x509.Certificate) (crypto.PublicKey, error) {
	return verifyCertificate(cert, true)
}

// VerifyCertificateLenient 验证证书（宽松模式）
//
// 与 VerifyCertificate 的唯一区别：接受未标记 critical 的
// libp2p 扩展（容忍有缺陷的对端实现），但会记录告警日志。
func VerifyCertificateLenient(cert *x509.Certificate) (crypto.PublicKey, error) {
	return verifyCertificate(cert, false)
}

// verifyCertificate 证书验证核心
func verifyCertificate(cert *x509.Certificate, strict bool) (crypto.PublicKey, error) {
	if cert == nil {
		return nil, ErrNoCertificate
	}

	// 1. 定位 libp2p 扩展
	var extValue []byte
	var critical bool
	found := false
	for _, ext := range cert.Extensions {
		if !ext.Id.Equal(extensionOID) {
			continue
		}
		if found {
			return nil, ErrExtensionDuplicated
		}
		found = true
		extValue = ext.Value
		critical = ext.Critical
	}
	if !found {
		return nil, ErrExtensionNotFound
	}
	if !critical {
		if strict {
			return nil, ErrExtensionNotCritical
		}
		logger.Warn("接受未标记 critical 的 libp2p 扩展",
			"serial", cert.SerialNumber.String())
	}

	// 2. 验证外层证书签名（证书密钥所签）
	if err := cert.CheckSignature(cert.SignatureAlgorithm, cert.RawTBSCertificate, cert.Signature); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCertSigInvalid, err)
	}

	// 3. 解码扩展
	sk, err := parseExtension(extValue)
	if err != nil {
		return nil, err
	}

	hostPub, err := crypto.UnmarshalPublicKeyProto(sk.PubKey)
	if err != nil {
		return nil, fmt.Errorf("%w: host key: %v", ErrExtensionMalformed, err)
	}

	// 4. 用证书自身的 SPKI 字节重建签名载荷并验证内层签名
	valid, err := hostPub.Verify(signedPayload(cert.RawSubjectPublicKeyInfo), sk.Signature)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtensionSigInvalid, err)
	}
	if !valid {
		return nil, ErrExtensionSigInvalid
	}

	return hostPub, nil
}

// ============================================================================
//                              对端身份验证
// ============================================================================

// PeerIDFromCertificate 验证证书并返回对端 PeerID
func PeerIDFromCertificate(cert *x509.Certificate) (types.PeerID, error) {
	hostPub, err := VerifyCertificate(cert)
	if err != nil {
		return types.EmptyPeerID, err
	}
	return crypto.PeerIDFromPublicKey(hostPub)
}

// VerifyPeerCertificate 验证对端证书链并核对 PeerID
//
// 参数：
//   - rawCerts: TLS 握手收到的 DER 证书链（只使用叶子证书）
//   - expectedPeer: 期望的对端身份；为空表示入站握手允许未知对端
//
// 返回经过认证的对端 PeerID。
func VerifyPeerCertificate(rawCerts [][]byte, expectedPeer types.PeerID) (types.PeerID, error) {
	if len(rawCerts) == 0 {
		return types.EmptyPeerID, ErrNoCertificate
	}

	cert, err := x509.ParseCertificate(rawCerts[0])
	if err != nil {
		return types.EmptyPeerID, fmt.Errorf("tls: parse certificate: %w", err)
	}

	actualPeer, err := PeerIDFromCertificate(cert)
	if err != nil {
		return types.EmptyPeerID, err
	}

	if !expectedPeer.IsEmpty() && !actualPeer.Equal(expectedPeer) {
		return types.EmptyPeerID, fmt.Errorf("%w: expected %s, got %s",
			ErrPeerIDMismatch, expectedPeer.String(), actualPeer.String())
	}

	return actualPeer, nil
}
