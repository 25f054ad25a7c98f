package service

import (
	"fmt"

	"lms_backend/internal/config"
	"lms_backend/pkg/logger"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// MailService 邮件发送，目前只用于密码重置验证码
type MailService struct {
	cfg *config.MailConfig
}

func NewMailService(cfg *config.Config) *MailService {
	return &MailService{cfg: &cfg.Mail}
}

func (s *MailService) SendPasswordResetOTP(toEmail, toName, otp string) error {
	subject := "Password Reset Verification Code"
	plain := fmt.Sprintf("Your verification code is %s. It expires in 15 minutes.", otp)
	html := fmt.Sprintf("<p>Your verification code is <strong>%s</strong>.</p><p>It expires in 15 minutes.</p>", otp)
	return s.send(toEmail, toName, subject, plain, html)
}

func (s *MailService) send(toEmail, toName, subject, plain, html string) error {
	if s.cfg.SendGridAPIKey == "" {
		// 未配置邮件服务时降级为日志输出，开发环境常见
		logger.Log.Warn("SendGrid not configured, mail skipped",
			zap.String("to", toEmail),
			zap.String("subject", subject))
		return nil
	}

	from := mail.NewEmail(s.cfg.FromName, s.cfg.FromAddress)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plain, html)

	client := sendgrid.NewSendClient(s.cfg.SendGridAPIKey)
	resp, err := client.Send(message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, resp.Body)
	}

	logger.Log.Info("mail sent", zap.String("to", toEmail), zap.String("subject", subject))
	return nil
}
