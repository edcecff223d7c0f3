package order

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/nbenali/dz-storefront/internal/shipping"
)

// algerianMobile matches national mobile numbers: leading 0, second digit
// 5/6/7, ten digits total, with the conventional optional pair spacing
// (0X XX XX XX XX).
var algerianMobile = regexp.MustCompile(`^0[5-7]\s?\d{2}\s?\d{2}\s?\d{2}\s?\d{2}$`)

const (
	minNameLen    = 2
	minAddressLen = 10
)

// ValidationError itemizes every violated submission field. It never reflects
// any state mutation; the submission was rejected before store work began.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	// Stable order so the same submission logs the same message.
	slices.Sort(names)
	return fmt.Sprintf("invalid submission: %s", strings.Join(names, ", "))
}

// LineInput is one requested cart line.
type LineInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CheckoutRequest is the inbound checkout submission.
type CheckoutRequest struct {
	FirstName    string      `json:"firstName"`
	LastName     string      `json:"lastName"`
	Phone        string      `json:"phone"`
	Wilaya       string      `json:"wilaya"`
	Address      string      `json:"address"`
	Notes        string      `json:"notes,omitempty"`
	Items        []LineInput `json:"items"`
	CaptchaToken string      `json:"captchaToken,omitempty"`
}

// Validate checks every structural rule and reports all violations at once.
func (r *CheckoutRequest) Validate() error {
	fields := make(map[string]string)

	if len(strings.TrimSpace(r.FirstName)) < minNameLen {
		fields["firstName"] = fmt.Sprintf("must be at least %d characters", minNameLen)
	}
	if len(strings.TrimSpace(r.LastName)) < minNameLen {
		fields["lastName"] = fmt.Sprintf("must be at least %d characters", minNameLen)
	}
	if !algerianMobile.MatchString(strings.TrimSpace(r.Phone)) {
		fields["phone"] = "invalid phone number (format: 0X XX XX XX XX)"
	}
	if !shipping.IsValidWilaya(r.Wilaya) {
		fields["wilaya"] = "unknown wilaya"
	}
	if len(strings.TrimSpace(r.Address)) < minAddressLen {
		fields["address"] = fmt.Sprintf("must be at least %d characters", minAddressLen)
	}

	if len(r.Items) == 0 {
		fields["items"] = "cart is empty"
	}
	for i, item := range r.Items {
		if item.ProductID == "" {
			fields[fmt.Sprintf("items[%d].productId", i)] = "required"
		}
		if item.Quantity <= 0 {
			fields[fmt.Sprintf("items[%d].quantity", i)] = "must be a positive integer"
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
