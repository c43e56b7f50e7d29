package tls

import (
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-dep2p-tls/pkg/lib/crypto"
	"github.com/dep2p/go-dep2p-tls/pkg/types"
)

func newTestCert(t *testing.T) (crypto.PrivateKey, [][]byte) {
	t.Helper()
	hostKey := newTestKey(t, crypto.KeyTypeEd25519)
	cert, err := MakeCertificate(hostKey, newTestKey(t, crypto.KeyTypeEd25519))
	require.NoError(t, err)
	return hostKey, cert.Certificate
}

func TestVerifyCertificate_TamperResistance(t *testing.T) {
	// 翻转 DER 的任意一个字节都必须导致验证失败：
	// 要么证书解析失败，要么外层/内层签名校验失败
	_, rawCerts := newTestCert(t)
	der := rawCerts[0]

	for i := 0; i < len(der); i++ {
		mutated := make([]byte, len(der))
		copy(mutated, der)
		mutated[i] ^= 0x01

		cert, err := x509.ParseCertificate(mutated)
		if err != nil {
			continue
		}
		if _, err := VerifyCertificate(cert); err == nil {
			t.Fatalf("verification succeeded with byte %d flipped", i)
		}
	}
}

func TestVerifyCertificate_ExtensionNotFound(t *testing.T) {
	// 不带 libp2p 扩展的普通自签名证书
	certKey := newTestKey(t, crypto.KeyTypeEd25519)
	signer := certKey.(crypto.StdSigner).Std()

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "plain"},
		NotBefore:    time.Now(),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, signer.Public(), signer)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	_, err = VerifyCertificate(cert)
	assert.ErrorIs(t, err, ErrExtensionNotFound)
}

func TestVerifyCertificate_NotCritical(t *testing.T) {
	// 扩展未标记 critical：严格模式拒绝，宽松模式接受
	hostKey := newTestKey(t, crypto.KeyTypeEd25519)
	certKey := newTestKey(t, crypto.KeyTypeEd25519)
	signer := certKey.(crypto.StdSigner).Std()

	certSPKI, err := x509.MarshalPKIXPublicKey(signer.Public())
	require.NoError(t, err)
	ext, err := newExtension(hostKey, certSPKI, false)
	require.NoError(t, err)
	ext.Critical = false

	template := &x509.Certificate{
		SerialNumber:    big.NewInt(1),
		Subject:         certSubject,
		NotBefore:       time.Now(),
		NotAfter:        time.Now().Add(certValidity),
		ExtraExtensions: []pkix.Extension{ext},
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, signer.Public(), signer)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	_, err = VerifyCertificate(cert)
	assert.ErrorIs(t, err, ErrExtensionNotCritical)

	hostPub, err := VerifyCertificateLenient(cert)
	require.NoError(t, err)
	assert.True(t, hostPub.Equals(hostKey.GetPublic()))
}

func TestVerifyCertificate_Duplicated(t *testing.T) {
	hostKey := newTestKey(t, crypto.KeyTypeEd25519)
	certKey := newTestKey(t, crypto.KeyTypeEd25519)
	signer := certKey.(crypto.StdSigner).Std()

	certSPKI, err := x509.MarshalPKIXPublicKey(signer.Public())
	require.NoError(t, err)
	ext, err := newExtension(hostKey, certSPKI, false)
	require.NoError(t, err)

	// x509 解析器本身拒绝重复扩展，这里直接驱动验证器
	cert := &x509.Certificate{
		Extensions: []pkix.Extension{ext, ext},
	}

	_, err = VerifyCertificate(cert)
	assert.ErrorIs(t, err, ErrExtensionDuplicated)
}

func TestVerifyCertificate_WrongHostSignature(t *testing.T) {
	// 扩展由另一把密钥背书：内层签名校验失败
	hostKey := newTestKey(t, crypto.KeyTypeEd25519)
	otherKey := newTestKey(t, crypto.KeyTypeEd25519)
	certKey := newTestKey(t, crypto.KeyTypeEd25519)
	signer := certKey.(crypto.StdSigner).Std()

	certSPKI, err := x509.MarshalPKIXPublicKey(signer.Public())
	require.NoError(t, err)

	// 用 otherKey 的公钥声明身份，但签名来自 hostKey
	sig, err := hostKey.Sign(signedPayload(certSPKI))
	require.NoError(t, err)
	otherProto, err := crypto.MarshalPublicKey(otherKey.GetPublic())
	require.NoError(t, err)
	value, err := asn1.Marshal(signedKey{PubKey: otherProto, Signature: sig})
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      certSubject,
		NotBefore:    time.Now(),
		NotAfter:     time.Now().Add(certValidity),
		ExtraExtensions: []pkix.Extension{{
			Id:       extensionOID,
			Critical: true,
			Value:    value,
		}},
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, signer.Public(), signer)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	_, err = VerifyCertificate(cert)
	assert.ErrorIs(t, err, ErrExtensionSigInvalid)
}

func TestVerifyPeerCertificate(t *testing.T) {
	hostKey, rawCerts := newTestCert(t)
	wantID, err := crypto.PeerIDFromPrivateKey(hostKey)
	require.NoError(t, err)

	// 未知对端（入站握手）
	gotID, err := VerifyPeerCertificate(rawCerts, types.EmptyPeerID)
	require.NoError(t, err)
	assert.True(t, gotID.Equal(wantID))

	// 期望身份匹配
	gotID, err = VerifyPeerCertificate(rawCerts, wantID)
	require.NoError(t, err)
	assert.True(t, gotID.Equal(wantID))

	// 期望身份不匹配
	otherKey := newTestKey(t, crypto.KeyTypeEd25519)
	otherID, err := crypto.PeerIDFromPrivateKey(otherKey)
	require.NoError(t, err)
	_, err = VerifyPeerCertificate(rawCerts, otherID)
	assert.ErrorIs(t, err, ErrPeerIDMismatch)

	// 空证书链
	_, err = VerifyPeerCertificate(nil, types.EmptyPeerID)
	assert.ErrorIs(t, err, ErrNoCertificate)
}
