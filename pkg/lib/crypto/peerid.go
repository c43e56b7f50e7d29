package crypto

import (
	"github.com/dep2p/go-dep2p-tls/pkg/types"
)

// ============================================================================
//                              PeerID 派生
// ============================================================================

// PeerIDFromPublicKey 从公钥派生 PeerID
//
// 对公钥 protobuf 取 multihash：
//   - Ed25519/ECDSA/Secp256k1: 身份 multihash（载荷即 protobuf）
//   - RSA: SHA-256 multihash
//
// ECDSA 公钥按默认的 SubjectPublicKeyInfo 形式进入 protobuf。
func PeerIDFromPublicKey(pub PublicKey) (types.PeerID, error) {
	if pub == nil {
		return types.EmptyPeerID, ErrNilPublicKey
	}

	proto, err := MarshalPublicKey(pub)
	if err != nil {
		return types.EmptyPeerID, err
	}

	return types.NewPeerID(pub.Type(), proto)
}

// PeerIDFromPrivateKey 从私钥派生 PeerID
//
// 通过获取私钥对应的公钥，然后派生 PeerID。
func PeerIDFromPrivateKey(priv PrivateKey) (types.PeerID, error) {
	if priv == nil {
		return types.EmptyPeerID, ErrNilPrivateKey
	}

	return PeerIDFromPublicKey(priv.GetPublic())
}

// PublicKeyFromPeerID 从 PeerID 还原公钥
//
// 仅身份 multihash 形式的 PeerID 可还原；
// RSA 的哈希形式返回 types.ErrHashedPeerID。
func PublicKeyFromPeerID(id types.PeerID) (PublicKey, error) {
	proto, err := id.PubKeyProto()
	if err != nil {
		return nil, err
	}
	return UnmarshalPublicKeyProto(proto)
}

// VerifyPeerID 验证公钥是否对应给定的 PeerID
func VerifyPeerID(pub PublicKey, id types.PeerID) (bool, error) {
	derivedID, err := PeerIDFromPublicKey(pub)
	if err != nil {
		return false, err
	}
	return derivedID.Equal(id), nil
}
