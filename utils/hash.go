package utils

import (
	"crypto/sha256"
	"encoding/hex"

	"portfolio/config"
)

// HashIP 限流 key 中不保存明文 IP，盐 + ":" + ip 做 sha256
func HashIP(ip string) string {
	sum := sha256.Sum256([]byte(config.Cfg.IPHashSalt + ":" + ip))
	return hex.EncodeToString(sum[:])
}
