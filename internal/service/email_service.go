package service

import (
	"moovyzoo/internal/pkg"
	"moovyzoo/internal/repository/redis"
)

const (
	ScopeRegister = "register"
	ScopeReset    = "reset"
)

type EmailService struct {
	emailCfg pkg.SMTPConfig
	rds      *redis.EmailRepository
}

func NewEmailService(cfg pkg.SMTPConfig) *EmailService {
	return &EmailService{emailCfg: cfg, rds: &redis.EmailRepository{}}
}

// SendCode writes the pending key, mails the code, and promotes the key to
// confirmed only after the mail goes out; a failed promotion rolls the
// pending key back.
func (s *EmailService) SendCode(scope, email string) error {
	if scope != ScopeRegister && scope != ScopeReset {
		return pkg.Invalid("unknown verification scope")
	}
	code, err := pkg.RandDigits(6)
	if err != nil {
		return err
	}
	if err := s.rds.SetPending(scope, email, code); err != nil {
		return err
	}

	subject := "Your MoovyZoo verification code"
	html := pkg.EmailCodeHTML(scope, code, redis.DefaultEmailCodeTTL)
	if err := pkg.SendEmail(s.emailCfg, email, subject, html); err != nil {
		return err
	}

	if err := s.rds.Promote(scope, email); err != nil {
		_ = s.rds.DeletePending(scope, email)
		return err
	}
	return nil
}

// VerifyCode checks and consumes a confirmed code.
func (s *EmailService) VerifyCode(scope, email, code string) (bool, error) {
	val, err := s.rds.GetConfirmed(scope, email)
	if err != nil {
		return false, err
	}
	if val != code {
		return false, nil
	}
	if err := s.rds.DeleteConfirmed(scope, email); err != nil {
		return false, err
	}
	return true, nil
}
