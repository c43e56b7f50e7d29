package tls

import (
	"crypto/tls"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-dep2p-tls/pkg/lib/crypto"
	"github.com/dep2p/go-dep2p-tls/pkg/types"
)

func TestConfigBuilder_BuildConfigs(t *testing.T) {
	hostKey := newTestKey(t, crypto.KeyTypeEd25519)
	builder := NewConfigBuilder(hostKey)

	serverConf, err := builder.BuildServerConfig()
	require.NoError(t, err)
	assert.Equal(t, uint16(tls.VersionTLS13), serverConf.MinVersion)
	assert.Equal(t, tls.RequireAnyClientCert, serverConf.ClientAuth)
	assert.NotNil(t, serverConf.VerifyPeerCertificate)
	require.Len(t, serverConf.Certificates, 1)

	// 同一 builder 复用同一张证书
	clientConf, err := builder.BuildClientConfig(types.EmptyPeerID)
	require.NoError(t, err)
	assert.Equal(t, serverConf.Certificates[0].Certificate[0], clientConf.Certificates[0].Certificate[0])
}

func TestConfigBuilder_NilHostKey(t *testing.T) {
	_, err := NewConfigBuilder(nil).BuildServerConfig()
	assert.ErrorIs(t, err, ErrNilHostKey)
}

func TestConfigBuilder_CertKeyType(t *testing.T) {
	hostKey := newTestKey(t, crypto.KeyTypeEd25519)

	conf, err := NewConfigBuilder(hostKey).
		WithCertKeyType(crypto.KeyTypeECDSA).
		BuildServerConfig()
	require.NoError(t, err)
	require.Len(t, conf.Certificates, 1)

	// 证书密钥为 ECDSA，主机身份保持不变
	hostPub, err := VerifyCertificate(conf.Certificates[0].Leaf)
	require.NoError(t, err)
	assert.True(t, hostPub.Equals(hostKey.GetPublic()))
}

func TestConfigBuilder_VerifyCallback(t *testing.T) {
	serverKey := newTestKey(t, crypto.KeyTypeEd25519)
	serverID, err := crypto.PeerIDFromPrivateKey(serverKey)
	require.NoError(t, err)

	serverConf, err := NewConfigBuilder(serverKey).BuildServerConfig()
	require.NoError(t, err)
	rawCerts := serverConf.Certificates[0].Certificate

	clientKey := newTestKey(t, crypto.KeyTypeEd25519)

	// 期望身份正确
	conf, err := NewConfigBuilder(clientKey).BuildClientConfig(serverID)
	require.NoError(t, err)
	assert.NoError(t, conf.VerifyPeerCertificate(rawCerts, nil))

	// 期望身份错误
	otherID, err := crypto.PeerIDFromPrivateKey(clientKey)
	require.NoError(t, err)
	conf, err = NewConfigBuilder(clientKey).BuildClientConfig(otherID)
	require.NoError(t, err)
	assert.ErrorIs(t, conf.VerifyPeerCertificate(rawCerts, nil), ErrPeerIDMismatch)

	// 空证书链
	assert.ErrorIs(t, conf.VerifyPeerCertificate(nil, nil), ErrNoCertificate)
}

func TestConfigBuilder_Handshake(t *testing.T) {
	// 双向认证的完整 TLS 1.3 握手
	serverKey := newTestKey(t, crypto.KeyTypeEd25519)
	clientKey := newTestKey(t, crypto.KeyTypeECDSA)

	serverID, err := crypto.PeerIDFromPrivateKey(serverKey)
	require.NoError(t, err)

	serverConf, err := NewConfigBuilder(serverKey).BuildServerConfig()
	require.NoError(t, err)
	clientConf, err := NewConfigBuilder(clientKey).BuildClientConfig(serverID)
	require.NoError(t, err)

	clientSide, serverSide := net.Pipe()
	defer clientSide.Close()
	defer serverSide.Close()

	errCh := make(chan error, 1)
	go func() {
		server := tls.Server(serverSide, serverConf)
		errCh <- server.Handshake()
	}()

	client := tls.Client(clientSide, clientConf)
	require.NoError(t, client.Handshake())
	require.NoError(t, <-errCh)

	// 从握手状态还原对端身份
	state := client.ConnectionState()
	require.NotEmpty(t, state.PeerCertificates)
	gotID, err := PeerIDFromCertificate(state.PeerCertificates[0])
	require.NoError(t, err)
	assert.True(t, gotID.Equal(serverID))
}

func TestConfigBuilder_HandshakeRejectsWrongPeer(t *testing.T) {
	serverKey := newTestKey(t, crypto.KeyTypeEd25519)
	clientKey := newTestKey(t, crypto.KeyTypeEd25519)

	// 客户端期望一个并非服务端的身份
	wrongID, err := crypto.PeerIDFromPrivateKey(clientKey)
	require.NoError(t, err)

	serverConf, err := NewConfigBuilder(serverKey).BuildServerConfig()
	require.NoError(t, err)
	clientConf, err := NewConfigBuilder(clientKey).BuildClientConfig(wrongID)
	require.NoError(t, err)

	clientSide, serverSide := net.Pipe()
	defer clientSide.Close()
	defer serverSide.Close()

	go func() {
		server := tls.Server(serverSide, serverConf)
		_ = server.Handshake()
	}()

	client := tls.Client(clientSide, clientConf)
	assert.Error(t, client.Handshake())
}
