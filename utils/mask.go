package utils

import "strings"

// MaskEmail 日志中只保留邮箱首字母和域名，如 a***@example.com
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "***"
	}

	local := []rune(email[:at])
	return string(local[0]) + "***" + email[at:]
}
