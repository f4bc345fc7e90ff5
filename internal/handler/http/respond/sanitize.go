package respond

import (
	"regexp"
)

var (
	// データベースパスワードパターン（DSN内）
	dsnPasswordPattern = regexp.MustCompile(`://([^:/]+):([^@]+)@`)

	// Webhook URL のトークン部分（Slack / Discord）
	slackWebhookPattern   = regexp.MustCompile(`hooks\.slack\.com/services/[A-Za-z0-9/]+`)
	discordWebhookPattern = regexp.MustCompile(`discord\.com/api/webhooks/[A-Za-z0-9/_-]+`)
)

// SanitizeError は機密情報をマスクしたエラーメッセージを返す
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()

	// DBパスワードのマスク
	msg = dsnPasswordPattern.ReplaceAllString(msg, "://$1:****@")

	// Webhook トークンのマスク
	msg = slackWebhookPattern.ReplaceAllString(msg, "hooks.slack.com/services/****")
	msg = discordWebhookPattern.ReplaceAllString(msg, "discord.com/api/webhooks/****")

	return msg
}
