package service

import (
	"fmt"
	"time"

	"smartexpense/config"
	"smartexpense/models"

	"gopkg.in/gomail.v2"
)

// EmailService 预算提醒邮件服务
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// SendBudgetAlert 发送预算超支提醒邮件
func (s *EmailService) SendBudgetAlert(status models.BudgetStatus) error {
	if !s.cfg.Enabled {
		return fmt.Errorf("email disabled, set EXPENSE_EMAIL_ENABLED=true")
	}
	if s.cfg.AlertTo == "" {
		return fmt.Errorf("email.alert_to is not configured")
	}

	subject := fmt.Sprintf("[Expense Tracker] Budget exceeded for %s", monthLabel(status.Year, status.Month))
	return s.sendEmail(s.cfg.AlertTo, subject, s.generateBudgetAlertBody(status))
}

// generateBudgetAlertBody 生成提醒邮件内容
func (s *EmailService) generateBudgetAlertBody(status models.BudgetStatus) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background: #fff; border-radius: 12px; overflow: hidden; box-shadow: 0 4px 20px rgba(0,0,0,0.1); }
        .header { background: linear-gradient(135deg, #ef4444, #b91c1c); color: white; padding: 30px; text-align: center; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { padding: 40px 30px; }
        .content p { color: #333; line-height: 1.8; margin: 0 0 20px; }
        .figures td { padding: 6px 12px; }
        .footer { background: #f8f9fa; padding: 20px 30px; text-align: center; color: #6c757d; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Budget exceeded</h1>
        </div>
        <div class="content">
            <p>Your spending for <strong>%s</strong> has reached your monthly budget.</p>
            <table class="figures">
                <tr><td>Budget</td><td>%.2f</td></tr>
                <tr><td>Spent</td><td>%.2f</td></tr>
                <tr><td>Used</td><td>%.2f%%</td></tr>
            </table>
        </div>
        <div class="footer">
            <p>This message was sent automatically, please do not reply.</p>
        </div>
    </div>
</body>
</html>
`, monthLabel(status.Year, status.Month), status.Budget, status.MonthlyTotal, status.PercentUsed)
}

// sendEmail 通过 SMTP 发送 HTML 邮件
func (s *EmailService) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.From, "Expense Tracker"))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	return nil
}

func monthLabel(year, month int) string {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
}
