// Package main 提供 dep2p-tls 命令行工具
//
// 开发者工具：生成节点身份、派生 PeerID、签发与检查证书。
package main

import (
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	dep2ptls "github.com/dep2p/go-dep2p-tls"
	"github.com/dep2p/go-dep2p-tls/internal/core/security/tls"
	"github.com/dep2p/go-dep2p-tls/pkg/lib/crypto"
)

// 全局参数
var (
	keystoreDir string
	keyName     string
	password    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "dep2p-tls",
	Short:   "DeP2P-TLS 节点身份工具",
	Version: dep2ptls.Version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&keystoreDir, "keystore", "keystore", "密钥存储目录")
	rootCmd.PersistentFlags().StringVar(&keyName, "name", "identity", "密钥 ID")
	rootCmd.PersistentFlags().StringVar(&password, "password", "", "密钥存储加密密码（为空则不加密）")

	rootCmd.AddCommand(keygenCmd, idCmd, certCmd, inspectCmd)

	keygenCmd.Flags().StringVar(&keyTypeName, "type", "ed25519", "密钥类型 (ed25519/ecdsa)")
	certCmd.Flags().StringVar(&certKeyTypeName, "cert-key-type", "ed25519", "证书密钥类型 (ed25519/ecdsa)")
}

// openKeystore 打开密钥存储
func openKeystore() (crypto.Keystore, error) {
	var pw []byte
	if password != "" {
		pw = []byte(password)
	}
	return crypto.NewFSKeystore(keystoreDir, pw)
}

// loadHostKey 从密钥存储加载主机私钥
func loadHostKey() (crypto.PrivateKey, error) {
	ks, err := openKeystore()
	if err != nil {
		return nil, err
	}
	return ks.Get(keyName)
}

// parseKeyType 解析命令行密钥类型
func parseKeyType(name string) (crypto.KeyType, error) {
	switch name {
	case "ed25519":
		return crypto.KeyTypeEd25519, nil
	case "ecdsa":
		return crypto.KeyTypeECDSA, nil
	default:
		return 0, fmt.Errorf("unknown key type %q (want ed25519 or ecdsa)", name)
	}
}

// ════════════════════════════════════════════════════════════════════════════
// keygen - 生成节点身份
// ════════════════════════════════════════════════════════════════════════════

var keyTypeName string

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "生成节点身份私钥并存入密钥存储",
	RunE: func(cmd *cobra.Command, args []string) error {
		keyType, err := parseKeyType(keyTypeName)
		if err != nil {
			return err
		}

		priv, pub, err := crypto.GenerateKeyPair(keyType)
		if err != nil {
			return err
		}

		ks, err := openKeystore()
		if err != nil {
			return err
		}
		if err := ks.Put(keyName, priv); err != nil {
			return err
		}

		id, err := crypto.PeerIDFromPublicKey(pub)
		if err != nil {
			return err
		}

		fmt.Printf("key:     %s (%s)\n", keyName, keyType)
		fmt.Printf("peer ID: %s\n", id.String())
		return nil
	},
}

// ════════════════════════════════════════════════════════════════════════════
// id - 派生 PeerID
// ════════════════════════════════════════════════════════════════════════════

var idCmd = &cobra.Command{
	Use:   "id",
	Short: "打印密钥对应的 PeerID（现代与历史形式）",
	RunE: func(cmd *cobra.Command, args []string) error {
		priv, err := loadHostKey()
		if err != nil {
			return err
		}

		id, err := crypto.PeerIDFromPrivateKey(priv)
		if err != nil {
			return err
		}

		fmt.Printf("peer ID:        %s\n", id.String())
		fmt.Printf("peer ID legacy: %s\n", id.LegacyString())
		return nil
	},
}

// ════════════════════════════════════════════════════════════════════════════
// cert - 签发证书
// ════════════════════════════════════════════════════════════════════════════

var certKeyTypeName string

var certCmd = &cobra.Command{
	Use:   "cert",
	Short: "用存储的身份签发自签名证书并输出 PEM",
	RunE: func(cmd *cobra.Command, args []string) error {
		certKeyType, err := parseKeyType(certKeyTypeName)
		if err != nil {
			return err
		}

		hostKey, err := loadHostKey()
		if err != nil {
			return err
		}

		cert, err := tls.GenerateCertificate(hostKey, certKeyType)
		if err != nil {
			return err
		}

		return pem.Encode(os.Stdout, &pem.Block{
			Type:  "CERTIFICATE",
			Bytes: cert.Certificate[0],
		})
	},
}

// ════════════════════════════════════════════════════════════════════════════
// inspect - 检查证书
// ════════════════════════════════════════════════════════════════════════════

var inspectCmd = &cobra.Command{
	Use:   "inspect <cert.pem>",
	Short: "验证 PEM 证书并打印经过认证的对端身份",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		block, _ := pem.Decode(data)
		if block == nil || block.Type != "CERTIFICATE" {
			return fmt.Errorf("no CERTIFICATE block in %s", args[0])
		}

		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return err
		}

		id, err := tls.PeerIDFromCertificate(cert)
		if err != nil {
			return err
		}

		fmt.Printf("subject:  %s\n", cert.Subject.String())
		fmt.Printf("serial:   %s\n", cert.SerialNumber.String())
		fmt.Printf("validity: %s — %s\n", cert.NotBefore.Format("2006-01-02"), cert.NotAfter.Format("2006-01-02"))
		fmt.Printf("peer ID:  %s\n", id.String())
		return nil
	},
}
