package types

// ============================================================================
//                              密钥类型定义
// ============================================================================

// KeyType 密钥类型
//
// 值与 libp2p 公钥 protobuf 中的 KeyType 枚举对齐：
//   - RSA = 0
//   - Ed25519 = 1
//   - Secp256k1 = 2
//   - ECDSA = 3
//
// 此枚举直接出现在线上格式中（公钥 protobuf 的字段 1），
// 不得随意调整数值。
type KeyType int

const (
	// KeyTypeRSA RSA 密钥（仅支持解码）
	KeyTypeRSA KeyType = 0
	// KeyTypeEd25519 Ed25519 密钥（默认推荐）
	KeyTypeEd25519 KeyType = 1
	// KeyTypeSecp256k1 Secp256k1 密钥（仅支持解码）
	KeyTypeSecp256k1 KeyType = 2
	// KeyTypeECDSA ECDSA P-256 密钥
	KeyTypeECDSA KeyType = 3
)

// String 返回密钥类型名称
func (kt KeyType) String() string {
	switch kt {
	case KeyTypeRSA:
		return "RSA"
	case KeyTypeEd25519:
		return "Ed25519"
	case KeyTypeSecp256k1:
		return "Secp256k1"
	case KeyTypeECDSA:
		return "ECDSA"
	default:
		return "Unknown"
	}
}

// IsValid 检查密钥类型是否在枚举范围内
func (kt KeyType) IsValid() bool {
	switch kt {
	case KeyTypeRSA, KeyTypeEd25519, KeyTypeSecp256k1, KeyTypeECDSA:
		return true
	default:
		return false
	}
}

// KeyTypes 支持的密钥类型列表
var KeyTypes = []KeyType{
	KeyTypeRSA,
	KeyTypeEd25519,
	KeyTypeSecp256k1,
	KeyTypeECDSA,
}
