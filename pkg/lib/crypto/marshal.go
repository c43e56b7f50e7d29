package crypto

import (
	"fmt"

	"github.com/multiformats/go-varint"
)

// ============================================================================
//                              序列化格式
// ============================================================================

// 线上格式为 libp2p 公钥 protobuf：
//
//   ┌─────────────────────────────────────────────────────────────┐
//   │              message PublicKey / PrivateKey                 │
//   ├─────────────────────────────────────────────────────────────┤
//   │  0x08  varint(KeyType)          字段 1，wire type 0          │
//   │  0x12  varint(len)  data…       字段 2，wire type 2          │
//   └─────────────────────────────────────────────────────────────┘
//
// 编码是确定性的：字段 1 在前，字段 2 在后。
// 解码接受两个字段的任意顺序，但拒绝任何其他字段。
//
// 字段 2 的内容按密钥类型区分：
//   - Ed25519: 32 字节原始公钥 / 64 字节原始私钥
//   - ECDSA:   默认为 SubjectPublicKeyInfo DER；
//              兼容模式为 64 字节 X‖Y（见 MarshalPublicKeyRaw）
//   - Secp256k1: 33 字节压缩公钥（仅解码）
//   - RSA:     PKIX DER（仅解码）

// protobuf 字段标签
const (
	// pubKeyProtoTypeTag 字段 1（KeyType），wire type 0
	pubKeyProtoTypeTag = 0x08
	// pubKeyProtoDataTag 字段 2（密钥数据），wire type 2
	pubKeyProtoDataTag = 0x12
)

// ============================================================================
//                              公钥序列化
// ============================================================================

// MarshalPublicKey 序列化公钥为 libp2p protobuf
//
// ECDSA 公钥的 data 为标准 SubjectPublicKeyInfo DER。
// 需要与按 X‖Y 裸坐标编码的旧实现互通时，使用 MarshalPublicKeyRaw。
func MarshalPublicKey(key PublicKey) ([]byte, error) {
	if key == nil {
		return nil, ErrNilPublicKey
	}

	data, err := pubKeyProtoData(key, false)
	if err != nil {
		return nil, err
	}
	return encodeKeyProto(key.Type(), data), nil
}

// MarshalPublicKeyRaw 序列化公钥为 libp2p protobuf（兼容模式）
//
// 与 MarshalPublicKey 的唯一区别：ECDSA 公钥的 data 为
// 64 字节 X‖Y 裸坐标（无 0x04 前缀），而非 SubjectPublicKeyInfo。
func MarshalPublicKeyRaw(key PublicKey) ([]byte, error) {
	if key == nil {
		return nil, ErrNilPublicKey
	}

	data, err := pubKeyProtoData(key, true)
	if err != nil {
		return nil, err
	}
	return encodeKeyProto(key.Type(), data), nil
}

// UnmarshalPublicKeyProto 从 libp2p protobuf 反序列化公钥
//
// 接受字段 1/2 的任意顺序；未知字段返回 ErrUnknownFieldTag，
// 缺少字段返回 ErrMissingField。
func UnmarshalPublicKeyProto(proto []byte) (PublicKey, error) {
	keyType, data, err := decodeKeyProto(proto)
	if err != nil {
		return nil, err
	}
	return UnmarshalPublicKey(keyType, data)
}

// pubKeyProtoData 返回公钥在 protobuf 字段 2 中的编码
func pubKeyProtoData(key PublicKey, rawECDSA bool) ([]byte, error) {
	if ek, ok := key.(*ECDSAPublicKey); ok && !rawECDSA {
		spki, err := ek.SPKI()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMarshalFailed, err)
		}
		return spki, nil
	}

	raw, err := key.Raw()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMarshalFailed, err)
	}
	return raw, nil
}

// ============================================================================
//                              私钥序列化
// ============================================================================

// MarshalPrivateKey 序列化私钥为 libp2p protobuf
//
// Ed25519 的 data 为 64 字节原始私钥；
// ECDSA 的 data 为 SEC1 ECPrivateKey DER。
func MarshalPrivateKey(key PrivateKey) ([]byte, error) {
	if key == nil {
		return nil, ErrNilPrivateKey
	}

	var data []byte
	var err error
	switch k := key.(type) {
	case *ECDSAPrivateKey:
		data, err = k.SEC1()
	default:
		data, err = key.Raw()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMarshalFailed, err)
	}

	return encodeKeyProto(key.Type(), data), nil
}

// UnmarshalPrivateKeyProto 从 libp2p protobuf 反序列化私钥
func UnmarshalPrivateKeyProto(proto []byte) (PrivateKey, error) {
	keyType, data, err := decodeKeyProto(proto)
	if err != nil {
		return nil, err
	}
	return UnmarshalPrivateKey(keyType, data)
}

// ============================================================================
//                              protobuf 编解码
// ============================================================================

// encodeKeyProto 编码密钥 protobuf
//
// 输出为确定性的最小编码：0x08 type 0x12 len data。
func encodeKeyProto(keyType KeyType, data []byte) []byte {
	typeBytes := varint.ToUvarint(uint64(keyType))
	lenBytes := varint.ToUvarint(uint64(len(data)))

	buf := make([]byte, 0, 2+len(typeBytes)+len(lenBytes)+len(data))
	buf = append(buf, pubKeyProtoTypeTag)
	buf = append(buf, typeBytes...)
	buf = append(buf, pubKeyProtoDataTag)
	buf = append(buf, lenBytes...)
	buf = append(buf, data...)
	return buf
}

// decodeKeyProto 解码密钥 protobuf 为 (KeyType, data)
func decodeKeyProto(proto []byte) (KeyType, []byte, error) {
	var (
		keyType  uint64
		data     []byte
		seenType bool
		seenData bool
	)

	rest := proto
	for len(rest) > 0 {
		tag, n, err := varint.FromUvarint(rest)
		if err != nil {
			return 0, nil, fmt.Errorf("%w: field tag", ErrMalformedVarint)
		}
		rest = rest[n:]

		switch tag {
		case pubKeyProtoTypeTag:
			keyType, n, err = varint.FromUvarint(rest)
			if err != nil {
				return 0, nil, fmt.Errorf("%w: key type", ErrMalformedVarint)
			}
			seenType = true
			rest = rest[n:]

		case pubKeyProtoDataTag:
			length, n, err := varint.FromUvarint(rest)
			if err != nil {
				return 0, nil, fmt.Errorf("%w: data length", ErrMalformedVarint)
			}
			rest = rest[n:]
			if uint64(len(rest)) < length {
				return 0, nil, fmt.Errorf("%w: truncated key data", ErrUnmarshalFailed)
			}
			data = make([]byte, length)
			copy(data, rest[:length])
			seenData = true
			rest = rest[length:]

		default:
			return 0, nil, fmt.Errorf("%w: %d", ErrUnknownFieldTag, tag)
		}
	}

	if !seenType {
		return 0, nil, fmt.Errorf("%w: key type", ErrMissingField)
	}
	if !seenData {
		return 0, nil, fmt.Errorf("%w: key data", ErrMissingField)
	}

	kt := KeyType(keyType)
	if !kt.IsValid() {
		return 0, nil, ErrBadKeyType
	}
	return kt, data, nil
}
