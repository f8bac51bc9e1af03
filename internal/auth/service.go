package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/google/uuid"

	"github.com/jskalicky/shoply-api/internal/account"
	"github.com/jskalicky/shoply-api/internal/logging"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidLink        = errors.New("invalid link")
	ErrNotifyFailed       = errors.New("failed to send notification email")
	ErrEmailRequired      = errors.New("email is required")
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
)

// Notifier dispatches account emails. Failures are returned, never
// swallowed; retry policy is the mailer's concern.
type Notifier interface {
	SendLoginNotice(ctx context.Context, toEmail string) error
	SendVerificationLink(ctx context.Context, toEmail, link string) error
	SendResetLink(ctx context.Context, toEmail, link string) error
}

// LinkBuilder turns an account id and a single-use token into a fully
// qualified URL for the client.
type LinkBuilder interface {
	VerificationLink(accountID uuid.UUID, token string) string
	ResetLink(accountID uuid.UUID, token string) string
}

// Service orchestrates the account lifecycle: register, login, e-mail
// verification and password reset. All state lives in the account store;
// the service itself holds none.
type Service struct {
	store    account.Store
	issuer   TokenIssuer
	notifier Notifier
	links    LinkBuilder
	logger   *logging.Logger
}

func NewService(store account.Store, issuer TokenIssuer, notifier Notifier, links LinkBuilder, logger *logging.Logger) *Service {
	return &Service{
		store:    store,
		issuer:   issuer,
		notifier: notifier,
		links:    links,
		logger:   logger,
	}
}

// LoginResult is either a bearer token or a pending-verification
// acknowledgment, never both.
type LoginResult struct {
	AccessToken         string
	PendingVerification bool
}

// Register creates an unverified account and sends the verification link.
// No bearer token is issued until the email is verified.
func (s *Service) Register(ctx context.Context, email, password, username string) (*account.Account, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	verificationToken, err := generateOpaqueToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification token: %w", err)
	}

	newAccount, err := s.store.Create(ctx, &account.Account{
		Username:          username,
		Email:             email,
		PasswordHash:      passwordHash,
		Role:              account.RoleUser,
		IsVerified:        false,
		VerificationToken: &verificationToken,
	})
	if err != nil {
		if errors.Is(err, account.ErrAlreadyExists) {
			return nil, account.ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	link := s.links.VerificationLink(newAccount.ID, verificationToken)
	if err := s.notifier.SendVerificationLink(ctx, email, link); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotifyFailed, err)
	}

	return newAccount, nil
}

// Login authenticates by email and password. Unknown email and wrong
// password fail identically to avoid account enumeration. Unverified
// accounts get a fresh verification mail instead of a token.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	acc, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if !VerifyPassword(password, acc.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if !acc.IsVerified {
		// Resend-on-login: make sure a live verification token exists.
		if acc.VerificationToken == nil {
			token, err := generateOpaqueToken()
			if err != nil {
				return nil, fmt.Errorf("failed to generate verification token: %w", err)
			}
			acc.VerificationToken = &token
			if err := s.store.Save(ctx, acc); err != nil {
				return nil, fmt.Errorf("failed to save verification token: %w", err)
			}
		}

		link := s.links.VerificationLink(acc.ID, *acc.VerificationToken)
		if err := s.notifier.SendVerificationLink(ctx, email, link); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotifyFailed, err)
		}

		return &LoginResult{PendingVerification: true}, nil
	}

	// Login notices are best-effort: dispatch failure must not block login.
	go func() {
		if err := s.notifier.SendLoginNotice(context.Background(), email); err != nil {
			s.logger.Warn("failed to send login notice", "email", email, "error", err)
		}
	}()

	token, err := s.issuer.IssueToken(acc.ID, acc.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &LoginResult{AccessToken: token}, nil
}

// VerifyEmail consumes the verification token. The token is one-shot: a
// replay with the same token fails with ErrNotFound because the first call
// cleared it.
func (s *Service) VerifyEmail(ctx context.Context, id uuid.UUID, token string) error {
	acc, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return account.ErrNotFound
		}
		return fmt.Errorf("failed to get account: %w", err)
	}

	if acc.VerificationToken == nil {
		return account.ErrNotFound
	}
	if *acc.VerificationToken != token {
		return ErrInvalidLink
	}

	acc.VerificationToken = nil
	acc.IsVerified = true

	if err := s.store.Save(ctx, acc); err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}

	return nil
}

// RequestPasswordReset generates a fresh reset token, overwriting any
// pending one, and mails the reset link. Only the newest token is valid.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	acc, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return account.ErrNotFound
		}
		return fmt.Errorf("failed to get account: %w", err)
	}

	token, err := generateOpaqueToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	acc.ResetToken = &token
	if err := s.store.Save(ctx, acc); err != nil {
		return fmt.Errorf("failed to save reset token: %w", err)
	}

	link := s.links.ResetLink(acc.ID, token)
	if err := s.notifier.SendResetLink(ctx, email, link); err != nil {
		return fmt.Errorf("%w: %v", ErrNotifyFailed, err)
	}

	return nil
}

// CheckResetLink validates a reset link without consuming it, so a client
// can vet the link before rendering a reset form.
func (s *Service) CheckResetLink(ctx context.Context, id uuid.UUID, token string) error {
	_, err := s.checkResetLink(ctx, id, token)
	return err
}

// ResetPassword re-validates the link, stores the new password hash and
// clears the reset token.
func (s *Service) ResetPassword(ctx context.Context, id uuid.UUID, token, newPassword string) error {
	acc, err := s.checkResetLink(ctx, id, token)
	if err != nil {
		return err
	}

	if err := validatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	acc.PasswordHash = passwordHash
	acc.ResetToken = nil

	if err := s.store.Save(ctx, acc); err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}

	return nil
}

// checkResetLink reports ErrInvalidLink for a missing account, a missing
// reset token and a token mismatch alike.
func (s *Service) checkResetLink(ctx context.Context, id uuid.UUID, token string) (*account.Account, error) {
	acc, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, ErrInvalidLink
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if acc.ResetToken == nil || *acc.ResetToken != token {
		return nil, ErrInvalidLink
	}

	return acc, nil
}

func validateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	if len(email) > 254 {
		return ErrInvalidEmailFormat
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmailFormat
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	if len(password) < 6 {
		return ErrPasswordTooShort
	}
	return nil
}
