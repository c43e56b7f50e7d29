// Package types 定义 DeP2P-TLS 的基础类型
//
// 这是整个模块的最底层包，只依赖 dep2p-tls 内部的 pkg/lib/multibase。
// 所有类型都是纯值类型，用于在各模块间传递数据。
//
// 核心类型：
//
//   - KeyType: 密钥类型枚举（与 libp2p 线上协议对齐）
//   - PeerID: 节点身份标识，由公钥派生
package types
