// Package crypto 提供 DeP2P-TLS 密码学工具
package crypto

import "errors"

// ============================================================================
//                              错误定义
// ============================================================================

// 密钥相关错误
var (
	// ErrBadKeyType 未知的密钥类型
	ErrBadKeyType = errors.New("invalid or unknown key type")

	// ErrUnsupportedKeyType 密钥类型在枚举中声明但未实现该操作
	ErrUnsupportedKeyType = errors.New("unsupported key type for this operation")

	// ErrNilPrivateKey 私钥为空
	ErrNilPrivateKey = errors.New("nil private key")

	// ErrNilPublicKey 公钥为空
	ErrNilPublicKey = errors.New("nil public key")

	// ErrInvalidKeySize 密钥大小无效
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrInvalidPublicKey 公钥无效
	ErrInvalidPublicKey = errors.New("invalid public key")

	// ErrInvalidPrivateKey 私钥无效
	ErrInvalidPrivateKey = errors.New("invalid private key")

	// ErrWrongCurve ECDSA 密钥不在 P-256 曲线上
	ErrWrongCurve = errors.New("ecdsa key is not on curve P-256")
)

// 签名相关错误
var (
	// ErrNilSignature 签名为空
	ErrNilSignature = errors.New("nil signature")

	// ErrSignatureTypeMismatch 签名类型与密钥类型不匹配
	ErrSignatureTypeMismatch = errors.New("signature type mismatch")
)

// 公钥 protobuf 编解码错误
var (
	// ErrMalformedVarint varint 编码无效或截断
	ErrMalformedVarint = errors.New("malformed varint")

	// ErrUnknownFieldTag protobuf 中出现未知字段
	ErrUnknownFieldTag = errors.New("unknown protobuf field tag")

	// ErrMissingField protobuf 缺少必填字段
	ErrMissingField = errors.New("missing protobuf field")

	// ErrMarshalFailed 序列化失败
	ErrMarshalFailed = errors.New("marshal failed")

	// ErrUnmarshalFailed 反序列化失败
	ErrUnmarshalFailed = errors.New("unmarshal failed")
)

// 密钥存储相关错误
var (
	// ErrKeyNotFound 密钥未找到
	ErrKeyNotFound = errors.New("key not found")

	// ErrKeyExists 密钥已存在
	ErrKeyExists = errors.New("key already exists")

	// ErrInvalidPassword 密码无效
	ErrInvalidPassword = errors.New("invalid password")

	// ErrDecryptionFailed 解密失败
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrInvalidKeyFile 密钥文件格式无效
	ErrInvalidKeyFile = errors.New("invalid key file format")
)
