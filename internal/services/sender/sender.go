// Package sender рассылает письма об автосверке журнала по сообщениям
// из очереди уведомлений.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	smtptransport "github.com/magabrotheeeer/fleet-ledger/internal/lib/smtp"
	"github.com/magabrotheeeer/fleet-ledger/internal/lib/sl"
	"github.com/magabrotheeeer/fleet-ledger/internal/models"
)

// Transport устанавливает SMTP-соединение для отправки писем.
type Transport interface {
	Connect() (smtptransport.Client, error)
	GetSMTPUser() string
}

// Service потребляет уведомления об автосверке и отправляет их почтой.
type Service struct {
	transport Transport
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(transport Transport, log *slog.Logger) *Service {
	return &Service{
		transport: transport,
		log:       log,
	}
}

// SendSettlementNotice разбирает уведомление об автосверке и отправляет
// владельцу аккаунта письмо со списком закрытых дат.
func (s *Service) SendSettlementNotice(body []byte) error {
	var message models.SettlementNotice
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	days := make([]string, 0, len(message.SettledDates))
	for _, d := range message.SettledDates {
		days = append(days, d.Format("2006-01-02"))
	}

	to := []string{message.Email}
	subject := "Уведомление об автоматическом закрытии пропусков в журнале"
	bodyText := fmt.Sprintf(`Здравствуйте, %s!

В вашем журнале поездок обнаружены дни без записей, вышедшие за окно
ручной корректировки. Они закрыты нулевыми записями автоматически:

%s

Дней, доступных для ручного заполнения: %d.`,
		message.Username, strings.Join(days, "\n"), message.CorrectableCount)

	return s.sendEmail(to, subject, bodyText)
}

func (s *Service) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", "from", s.transport.GetSMTPUser(), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", "recipient", addr, sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", "to", to)
	return nil
}
