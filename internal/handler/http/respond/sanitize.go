package respond

import (
	"regexp"
)

var (
	// DSN内のデータベースパスワード
	dbPasswordPattern = regexp.MustCompile(`://([^:/]+):([^@]+)@`)

	// Authorizationヘッダー等に現れるベアラートークン
	bearerTokenPattern = regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9._~+/-]+=*`)
)

// SanitizeError は機密情報をマスクしたエラーメッセージを返す
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	msg = dbPasswordPattern.ReplaceAllString(msg, "://$1:****@")
	msg = bearerTokenPattern.ReplaceAllString(msg, "Bearer ****")

	return msg
}
