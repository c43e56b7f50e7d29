// Package crypto 提供 DeP2P-TLS 密码学工具
//
// 本包实现节点身份层需要的全部密钥机制：
//
//   - Ed25519 与 ECDSA P-256 密钥对的生成、签名、验签
//   - RSA 与 Secp256k1 公钥的解码（仅解码，不支持签名与验签）
//   - libp2p 公钥/私钥 protobuf 的编解码
//   - 由公钥派生 PeerID
//   - 加密的文件系统密钥存储
//
// # 密钥接口
//
// 所有密钥实现 Key/PublicKey/PrivateKey 接口，类型由 KeyType 区分。
// 密钥在构造后不可变，可安全地在多个 goroutine 间共享。
//
// # 签名格式
//
//   - Ed25519: PureEdDSA，固定 64 字节，确定性签名
//   - ECDSA:   SHA-256 摘要 + ASN.1 DER（SEQUENCE { r, s }），变长，最长 72 字节
//
// # 使用示例
//
//	priv, pub, err := crypto.GenerateKeyPair(crypto.KeyTypeEd25519)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sig, _ := priv.Sign([]byte("hello"))
//	ok, _ := pub.Verify([]byte("hello"), sig)
//
//	id, _ := crypto.PeerIDFromPublicKey(pub)
//	fmt.Println(id.String()) // b…
package crypto
