package email

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestLinks(t *testing.T) {
	accountID := uuid.New()
	links := NewLinks("https://shop.example.com")

	assert.Equal(t,
		fmt.Sprintf("https://shop.example.com/verify-email/%s/tok123", accountID),
		links.VerificationLink(accountID, "tok123"),
	)
	assert.Equal(t,
		fmt.Sprintf("https://shop.example.com/reset-password/%s/tok456", accountID),
		links.ResetLink(accountID, "tok456"),
	)
}

func TestLinks_TrailingSlash(t *testing.T) {
	accountID := uuid.New()
	links := NewLinks("https://shop.example.com/")

	assert.Equal(t,
		fmt.Sprintf("https://shop.example.com/verify-email/%s/tok", accountID),
		links.VerificationLink(accountID, "tok"),
	)
}
