package mail

import (
	"fmt"

	"github.com/PhacedDaWind/SmartFit-sub000/internal/platform/config"
	"gopkg.in/gomail.v2"
)

// Mailer 通过SMTP发送一次性验证码邮件。
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// New 根据配置创建邮件发送器。
func New(cfg config.MailConfig) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// SendCode 发送一封包含验证码的密码重置邮件。
// 发送是同步的，调用方根据错误决定是否作废验证码。
func (m *Mailer) SendCode(to, code string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "SmartFit 密码重置验证码")
	msg.SetBody("text/plain", fmt.Sprintf(
		"你的密码重置验证码是：%s\n\n验证码10分钟内有效。如果这不是你本人的操作，请忽略这封邮件。", code))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("发送验证码邮件失败: %w", err)
	}
	return nil
}
