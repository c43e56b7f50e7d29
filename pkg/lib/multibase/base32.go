// Package multibase 提供 Multibase 前缀字符串编码
//
// Multibase 是自描述的 Base-N 字符串编码：首字符标识所用的进制。
// 本包只实现 PeerID 字符串形式需要的 'b' 进制
// （RFC 4648 Base32，小写字母表，无填充）。
package multibase

import (
	"encoding/base32"
	"errors"
	"fmt"
)

// Base32Prefix Multibase 'b' 前缀（Base32 小写无填充）
const Base32Prefix = 'b'

// Base32 小写字母表（RFC 4648）
const base32LowerAlphabet = "abcdefghijklmnopqrstuvwxyz234567"

var (
	// ErrInvalidMultibase 字符串包含字母表之外的字符
	ErrInvalidMultibase = errors.New("multibase: invalid base32 character")

	// ErrNotBase32 字符串不是 'b' 前缀的 Multibase 编码
	ErrNotBase32 = errors.New("multibase: missing base32 prefix")
)

// base32Lower 小写无填充的 Base32 编码器
var base32Lower = base32.NewEncoding(base32LowerAlphabet).WithPadding(base32.NoPadding)

// EncodedLen 返回 n 字节输入的 Base32 编码长度（ceil(n*8/5)）
func EncodedLen(n int) int {
	return (n*8 + 4) / 5
}

// EncodeBase32 将字节编码为小写无填充 Base32 字符串（不含前缀）
func EncodeBase32(data []byte) string {
	return base32Lower.EncodeToString(data)
}

// DecodeBase32 解码小写无填充 Base32 字符串（不含前缀）
//
// 字母表之外的字符返回 ErrInvalidMultibase。
func DecodeBase32(s string) ([]byte, error) {
	data, err := base32Lower.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMultibase, err)
	}
	return data, nil
}

// Encode 将字节编码为带 'b' 前缀的 Multibase 字符串
func Encode(data []byte) string {
	return string(Base32Prefix) + EncodeBase32(data)
}

// Decode 解码带 'b' 前缀的 Multibase 字符串
//
// 首字符不是 'b' 时返回 ErrNotBase32。
func Decode(s string) ([]byte, error) {
	if len(s) == 0 || s[0] != Base32Prefix {
		return nil, ErrNotBase32
	}
	return DecodeBase32(s[1:])
}
