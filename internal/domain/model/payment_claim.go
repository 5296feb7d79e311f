package model

import (
	"net/mail"
	"net/url"
	"regexp"
	"strings"
)

const (
	maxTransactionNumberLen = 64
	maxProofURLLen          = 2048
	maxEmailLen             = 254
)

var transactionNumberPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// PaymentClaim is the caller's assertion that an out-of-band transfer was
// made. It is validated, folded into an ActivationCode row and discarded;
// claims are never stored on their own.
type PaymentClaim struct {
	TransactionNumber string
	ProofURL          string
	UserEmail         string
}

// Validate returns a field -> problem map for every failing field. An empty
// map means the claim is acceptable.
func (c PaymentClaim) Validate() map[string]string {
	fields := make(map[string]string)

	tn := strings.TrimSpace(c.TransactionNumber)
	switch {
	case tn == "":
		fields["transactionNumber"] = "required"
	case len(tn) > maxTransactionNumberLen:
		fields["transactionNumber"] = "too long"
	case !transactionNumberPattern.MatchString(tn):
		fields["transactionNumber"] = "only letters, digits and hyphens allowed"
	}

	if problem := validateProofURL(c.ProofURL); problem != "" {
		fields["proofUrl"] = problem
	}

	switch {
	case c.UserEmail == "":
		fields["userEmail"] = "required"
	case len(c.UserEmail) > maxEmailLen:
		fields["userEmail"] = "too long"
	default:
		if _, err := mail.ParseAddress(c.UserEmail); err != nil {
			fields["userEmail"] = "must be a valid email address"
		}
	}

	return fields
}

func validateProofURL(raw string) string {
	if raw == "" {
		return "required"
	}
	if len(raw) > maxProofURLLen {
		return "too long"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "must be a valid URL"
	}
	if u.Scheme != "https" {
		return "must use https"
	}
	return ""
}

// ValidProofURL is the single-field check used by the conversational upload
// branch, which carries no transaction number or email.
func ValidProofURL(raw string) bool {
	return validateProofURL(raw) == ""
}
