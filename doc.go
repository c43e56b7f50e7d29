// Package dep2ptls 提供 libp2p-TLS 节点身份层
//
// 两个节点在标准 TLS 握手中互相认证：每个节点用长期「主机密钥」
// 表示身份，用每连接一换的「证书密钥」签发自签名证书，
// 证书内的 libp2p 扩展携带主机密钥对证书密钥的背书签名。
// 验证对端证书即可还原其经过认证的主机公钥，进而得到 PeerID。
//
// # 核心概念
//
//   - PeerID: 节点身份标识，由主机公钥派生
//   - MakeCertificate / VerifyCertificate: 证书的签发与自包含验证
//   - ConfigBuilder: 构建带验证回调的 crypto/tls 配置
//
// # 快速开始
//
//	import dep2ptls "github.com/dep2p/go-dep2p-tls"
//
//	// 1. 生成节点身份
//	hostKey, hostPub, err := dep2ptls.GenerateKeyPair(dep2ptls.KeyTypeEd25519)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	id, _ := dep2ptls.PeerIDFromPublicKey(hostPub)
//	fmt.Println(id.String()) // b…
//
//	// 2. 构建 TLS 配置
//	serverConf, err := dep2ptls.NewConfigBuilder(hostKey).BuildServerConfig()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// 3. 或手工签发、验证证书
//	cert, _ := dep2ptls.GenerateCertificate(hostKey, dep2ptls.KeyTypeEd25519)
//	peerPub, _ := dep2ptls.VerifyCertificate(cert.Leaf)
package dep2ptls
