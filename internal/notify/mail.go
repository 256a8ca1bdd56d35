// Package notify delivers contact messages to the site owner.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"portfolio/config"
	"portfolio/internal/model"
	"portfolio/pkg/metrics"
)

var ErrNotConfigured = errors.New("SMTP credentials not configured")

// SendMailFunc 与 smtp.SendMail 签名一致，测试中替换
type SendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// MailConfig SMTP 配置
type MailConfig struct {
	Host  string
	Port  string
	User  string
	Pass  string
	Owner string
}

func MailConfigFromEnv() MailConfig {
	cfg := config.Cfg
	return MailConfig{
		Host:  cfg.SMTPHost,
		Port:  cfg.SMTPPort,
		User:  cfg.SMTPUser,
		Pass:  cfg.SMTPPass,
		Owner: cfg.OwnerEmail,
	}
}

// MailNotifier 通过 SMTP 给站长发纯文本邮件，Reply-To 为访客邮箱
type MailNotifier struct {
	send SendMailFunc
	cfg  MailConfig
}

// Validate 检查发信必需的配置，缺失时返回 ErrNotConfigured
func (c MailConfig) Validate() error {
	var missing []string
	if c.Host == "" {
		missing = append(missing, "SMTP_HOST")
	}
	if c.Port == "" {
		missing = append(missing, "SMTP_PORT")
	}
	if c.User == "" {
		missing = append(missing, "SMTP_USER")
	}
	if c.Pass == "" {
		missing = append(missing, "SMTP_PASS")
	}
	if c.Owner == "" {
		missing = append(missing, "OWNER_EMAIL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrNotConfigured, strings.Join(missing, ", "))
	}
	return nil
}

func NewMailNotifier(cfg MailConfig) *MailNotifier {
	return &MailNotifier{cfg: cfg, send: smtp.SendMail}
}

// NotifyOwner 实现 queue.OwnerNotifier。smtp.SendMail 不支持 context，
// 在 goroutine 里发送，ctx 取消时提前返回。
func (n *MailNotifier) NotifyOwner(ctx context.Context, msg model.ContactSubmittedMessage) error {
	if err := n.cfg.Validate(); err != nil {
		metrics.GetMetrics().RecordNotification(ctx, "not_configured")
		return err
	}

	addr := net.JoinHostPort(n.cfg.Host, n.cfg.Port)
	auth := smtp.PlainAuth("", n.cfg.User, n.cfg.Pass, n.cfg.Host)
	body := n.buildMessage(msg)

	done := make(chan error, 1)
	go func() {
		done <- n.send(addr, auth, n.cfg.User, []string{n.cfg.Owner}, body)
	}()

	select {
	case <-ctx.Done():
		metrics.GetMetrics().RecordNotification(ctx, "canceled")
		return ctx.Err()
	case err := <-done:
		if err != nil {
			metrics.GetMetrics().RecordNotification(ctx, "failed")
			return fmt.Errorf("send owner mail: %w", err)
		}
	}

	metrics.GetMetrics().RecordNotification(ctx, "sent")
	return nil
}

func (n *MailNotifier) buildMessage(msg model.ContactSubmittedMessage) []byte {
	var sb strings.Builder

	sb.WriteString("To: " + n.cfg.Owner + "\r\n")
	sb.WriteString("From: " + n.cfg.User + "\r\n")
	sb.WriteString("Reply-To: " + headerValue(msg.Email) + "\r\n")
	sb.WriteString("Subject: Portfolio Contact: " + headerValue(msg.Subject) + "\r\n")
	sb.WriteString("Date: " + time.Now().UTC().Format(time.RFC1123Z) + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	sb.WriteString("\r\n")

	sb.WriteString("New message from your portfolio contact form\r\n\r\n")
	sb.WriteString("Name: " + msg.Name + "\r\n")
	sb.WriteString("Email: " + msg.Email + "\r\n")
	sb.WriteString("Subject: " + msg.Subject + "\r\n")
	sb.WriteString("Submitted: " + msg.SubmittedAt + "\r\n\r\n")
	sb.WriteString(strings.ReplaceAll(msg.Message, "\n", "\r\n"))
	sb.WriteString("\r\n")

	return []byte(sb.String())
}

// headerValue 去掉换行，防止访客输入注入邮件头
func headerValue(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}
