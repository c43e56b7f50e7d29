package tls

import (
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"

	"github.com/dep2p/go-dep2p-tls/pkg/lib/crypto"
)

// extensionOID 是 libp2p 公钥扩展的 OID: 1.3.6.1.4.1.53594.1.1
//
// 扩展必须标记 critical，每张证书至多出现一次。
var extensionOID = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 53594, 1, 1}

// signedPayloadPrefix 主机密钥签名载荷的域分隔前缀
//
// 主机密钥签的是 "libp2p-tls-handshake:" ‖ SPKI(证书公钥)
// 的逐字节拼接，无分隔符、无长度前缀。
// 前缀将此签名与主机密钥的其他用途隔离开。
const signedPayloadPrefix = "libp2p-tls-handshake:"

// signedKey libp2p 扩展的 ASN.1 结构
//
// DER SEQUENCE { OCTET STRING hostPubKey, OCTET STRING signature }：
//   - PubKey: 主机公钥的 libp2p protobuf
//   - Signature: 主机密钥对签名载荷的签名
type signedKey struct {
	PubKey    []byte
	Signature []byte
}

// signedPayload 组装主机密钥的签名载荷
func signedPayload(certSPKI []byte) []byte {
	payload := make([]byte, 0, len(signedPayloadPrefix)+len(certSPKI))
	payload = append(payload, signedPayloadPrefix...)
	payload = append(payload, certSPKI...)
	return payload
}

// newExtension 构造 libp2p 证书扩展
//
// 参数：
//   - hostKey: 长期主机私钥
//   - certSPKI: 证书公钥的 SubjectPublicKeyInfo DER
//   - rawECDSAEnvelope: ECDSA 主机公钥按 X‖Y 裸坐标进入 protobuf（兼容模式）
func newExtension(hostKey crypto.PrivateKey, certSPKI []byte, rawECDSAEnvelope bool) (pkix.Extension, error) {
	if hostKey == nil {
		return pkix.Extension{}, ErrNilHostKey
	}

	sig, err := hostKey.Sign(signedPayload(certSPKI))
	if err != nil {
		return pkix.Extension{}, fmt.Errorf("tls: sign cert key: %w", err)
	}

	marshal := crypto.MarshalPublicKey
	if rawECDSAEnvelope {
		marshal = crypto.MarshalPublicKeyRaw
	}
	hostProto, err := marshal(hostKey.GetPublic())
	if err != nil {
		return pkix.Extension{}, fmt.Errorf("tls: marshal host key: %w", err)
	}

	value, err := asn1.Marshal(signedKey{
		PubKey:    hostProto,
		Signature: sig,
	})
	if err != nil {
		return pkix.Extension{}, fmt.Errorf("tls: marshal extension: %w", err)
	}

	return pkix.Extension{
		Id:       extensionOID,
		Critical: true,
		Value:    value,
	}, nil
}

// parseExtension 解码 libp2p 证书扩展
//
// 拒绝带尾随数据或形状不符的 DER。
func parseExtension(value []byte) (*signedKey, error) {
	var sk signedKey
	rest, err := asn1.Unmarshal(value, &sk)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtensionMalformed, err)
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("%w: trailing data", ErrExtensionMalformed)
	}
	if len(sk.PubKey) == 0 || len(sk.Signature) == 0 {
		return nil, fmt.Errorf("%w: empty field", ErrExtensionMalformed)
	}
	return &sk, nil
}
