package models

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// ExtractRootDomain extracts the registrable domain from an email address,
// URL or hostname. publicsuffix handles multi-label TLDs like .co.in.
// Examples:
//   - "owner@shop.example.co.in" -> "example.co.in"
//   - "https://pay.merchant.com/" -> "merchant.com"
//   - "merchant.com" -> "merchant.com"
func ExtractRootDomain(input string) (string, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return "", fmt.Errorf("empty input")
	}

	if at := strings.LastIndex(input, "@"); at >= 0 {
		input = input[at+1:]
	} else if strings.Contains(input, "://") {
		parsed, err := url.Parse(input)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		input = parsed.Hostname()
	}

	input = strings.TrimSuffix(input, ".")

	root, err := publicsuffix.EffectiveTLDPlusOne(input)
	if err != nil {
		return "", fmt.Errorf("failed to extract root domain: %w", err)
	}
	return root, nil
}

// EmailDomain returns the registrable domain of the record's email field,
// or "" when it is missing or malformed.
func EmailDomain(r Record, field string) string {
	email := r.Text(field)
	if email == "" {
		return ""
	}
	root, err := ExtractRootDomain(email)
	if err != nil {
		return ""
	}
	return root
}
