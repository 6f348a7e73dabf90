package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/givehope/donation-api/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

// supportedCurrencies are the ISO codes and crypto tickers donations accept.
var supportedCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true,
	"BTC": true, "ETH": true, "USDT": true,
}

func init() {
	Validate = validator.New(validator.WithRequiredStructEnabled())

	// Register custom validators for enums
	// These should never fail in normal operation, but log if they do
	if err := Validate.RegisterValidation("donation_status", validateDonationStatus); err != nil {
		panic(fmt.Sprintf("failed to register donation_status validator: %v", err))
	}
	if err := Validate.RegisterValidation("currency", validateCurrency); err != nil {
		panic(fmt.Sprintf("failed to register currency validator: %v", err))
	}
}

// validateDonationStatus validates that a string is a valid DonationStatus enum value
func validateDonationStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	switch models.DonationStatus(value) {
	case models.DonationStatusPending, models.DonationStatusConfirmed, models.DonationStatusFailed:
		return true
	default:
		return false
	}
}

// validateCurrency validates that a string is a supported currency code
func validateCurrency(fl validator.FieldLevel) bool {
	return supportedCurrencies[strings.ToUpper(fl.Field().String())]
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateDonationStatus validates a DonationStatus string value
func ValidateDonationStatus(value string) error {
	status := models.DonationStatus(value)
	switch status {
	case models.DonationStatusPending, models.DonationStatusConfirmed, models.DonationStatusFailed:
		return nil
	default:
		return fmt.Errorf("invalid status: %s (must be 'pending', 'confirmed', or 'failed')", value)
	}
}

// ValidateCurrency validates a currency code against the supported set
func ValidateCurrency(value string) error {
	if !supportedCurrencies[strings.ToUpper(value)] {
		return fmt.Errorf("unsupported currency: %s", value)
	}
	return nil
}
