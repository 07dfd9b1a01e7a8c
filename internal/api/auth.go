package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/kodstechnologies/lm-backoffice/internal/models"
)

// EmailVerify starts the OTP login for an admin email. The result carries
// the phone number the OTP was sent to and a masked hint for display.
func (c *Client) EmailVerify(ctx context.Context, email string) (models.EmailVerifyResult, error) {
	var res models.EmailVerifyResult
	body, err := c.sendJSON(ctx, http.MethodPost, "/email-verification", map[string]string{"email": email})
	if err != nil {
		return res, err
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return res, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if !res.Success {
		return res, fmt.Errorf("%w: %s", ErrRejected, res.Message)
	}
	return res, nil
}

// ResendOTP sends a fresh OTP to phoneNumber.
func (c *Client) ResendOTP(ctx context.Context, phoneNumber string) (models.OTPResult, error) {
	return c.otp(ctx, "/resend-otp", map[string]string{"phoneNumber": phoneNumber})
}

// VerifyOTP checks the OTP and returns the auth token. Persisting the
// token is the caller's job.
func (c *Client) VerifyOTP(ctx context.Context, phoneNumber, otp string) (models.OTPResult, error) {
	if err := models.ValidateOTP(otp); err != nil {
		return models.OTPResult{}, err
	}
	res, err := c.otp(ctx, "/otp-verification", map[string]string{"phoneNumber": phoneNumber, "otp": otp})
	if err != nil {
		return res, err
	}
	if res.Token == "" {
		return res, fmt.Errorf("%w: no token in OTP verification response", ErrMalformedResponse)
	}
	return res, nil
}

func (c *Client) otp(ctx context.Context, path string, payload map[string]string) (models.OTPResult, error) {
	var res models.OTPResult
	body, err := c.sendJSON(ctx, http.MethodPost, path, payload)
	if err != nil {
		return res, err
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return res, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if !res.Success {
		return res, fmt.Errorf("%w: %s", ErrRejected, res.Message)
	}
	return res, nil
}
