// Package tls 实现 libp2p-TLS 节点身份层
//
// 两个节点在标准 TLS 握手中通过自签名证书互相认证：
// 证书由每连接一换的「证书密钥」签发，证书内的 libp2p 扩展
// 携带节点长期「主机密钥」对证书密钥的签名背书，
// 验证方由此还原对端经过认证的主机公钥。
//
// # 特性
//
//   - 自签名 X.509 v3 证书，证书密钥支持 Ed25519 与 ECDSA P-256
//   - libp2p 扩展（OID 1.3.6.1.4.1.53594.1.1），critical
//   - 验证自包含：不依赖 CA，信任锚即身份绑定
//   - 严格/宽松两种 critical 标志处理模式
//
// # 证书格式
//
// subject = issuer = C=US, O=libp2p, CN=libp2p；随机 64 位序列号；
// 有效期自签发起 365 天。扩展值为 DER SEQUENCE，
// 内含主机公钥 protobuf 与主机密钥对
// "libp2p-tls-handshake:" ‖ SPKI(证书公钥) 的签名。
//
// # 使用示例
//
//	builder := tls.NewConfigBuilder(hostKey)
//	serverConf, err := builder.BuildServerConfig()
//	if err != nil {
//	    log.Fatal(err)
//	}
package tls
