package email

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Links builds the fully qualified URLs embedded in verification and reset
// mails from the configured client base address.
type Links struct {
	baseURL string
}

func NewLinks(baseURL string) *Links {
	return &Links{baseURL: strings.TrimRight(baseURL, "/")}
}

// VerificationLink points the client at the e-mail verification endpoint.
func (l *Links) VerificationLink(accountID uuid.UUID, token string) string {
	return fmt.Sprintf("%s/verify-email/%s/%s", l.baseURL, accountID, token)
}

// ResetLink points the client at the password reset form.
func (l *Links) ResetLink(accountID uuid.UUID, token string) string {
	return fmt.Sprintf("%s/reset-password/%s/%s", l.baseURL, accountID, token)
}
