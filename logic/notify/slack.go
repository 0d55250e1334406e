package notify

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ap-agent/types"

	"github.com/slack-go/slack"
)

// SlackNotifier 通过 Incoming Webhook 发告警
// webhook 未配置时只打日志，不算错误——通知是尽力而为的下游
type SlackNotifier struct {
	webhookURL string
}

func NewSlackNotifier(webhookURL string) *SlackNotifier {
	return &SlackNotifier{webhookURL: webhookURL}
}

// AlertActionRequired FLAG / REJECTED 时推送，带完整原因清单
func (n *SlackNotifier) AlertActionRequired(ctx context.Context, filename, decision string, details []string) error {
	icon := "⚠️"
	if decision == types.DecisionRejected {
		icon = "🚨"
	}

	reasonText := strings.Join(details, ", ")
	if reasonText == "" {
		reasonText = "Unknown anomaly"
	}

	text := fmt.Sprintf("%s *Invoice Action Required*\n*File:* `%s`\n*Status:* `%s`\n*Details:* %s",
		icon, filename, decision, reasonText)
	return n.post(ctx, text)
}

// AlertPaymentError 付款通道失败时推送
func (n *SlackNotifier) AlertPaymentError(ctx context.Context, filename, errMsg string) error {
	text := fmt.Sprintf("🚨 *Payment Failed*\n*File:* `%s`\n*Error:* %s", filename, errMsg)
	return n.post(ctx, text)
}

func (n *SlackNotifier) post(ctx context.Context, text string) error {
	if n.webhookURL == "" {
		log.Println("⚠️ Slack webhook 未配置，跳过通知:", text)
		return nil
	}
	if err := slack.PostWebhookContext(ctx, n.webhookURL, &slack.WebhookMessage{Text: text}); err != nil {
		return fmt.Errorf("slack webhook failed: %w", err)
	}
	log.Println("🔔 Slack Alert Sent!")
	return nil
}
