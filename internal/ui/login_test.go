package ui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kodstechnologies/lm-backoffice/internal/models"
	"github.com/kodstechnologies/lm-backoffice/internal/session"
)

type fakeAuth struct {
	emails  []string
	resends int
	otps    []string
	otpErr  error
}

func (f *fakeAuth) EmailVerify(_ context.Context, email string) (models.EmailVerifyResult, error) {
	f.emails = append(f.emails, email)
	return models.EmailVerifyResult{
		Success:     true,
		Message:     "OTP sent",
		PhoneNumber: "9876543210",
		PhoneHint:   "******3210",
		Email:       email,
	}, nil
}

func (f *fakeAuth) ResendOTP(context.Context, string) (models.OTPResult, error) {
	f.resends++
	return models.OTPResult{Success: true}, nil
}

func (f *fakeAuth) VerifyOTP(_ context.Context, _ string, otp string) (models.OTPResult, error) {
	f.otps = append(f.otps, otp)
	if f.otpErr != nil {
		return models.OTPResult{}, f.otpErr
	}
	return models.OTPResult{Success: true, Token: "tok-" + otp}, nil
}

// feedLogin feeds msg to the model and runs the returned command when it is a
// backend call, feeding its result back in.
func feedLogin(t *testing.T, m LoginModel, msg tea.Msg) LoginModel {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(LoginModel)
	if !m.busy || cmd == nil {
		return m
	}
	next, _ = m.Update(cmd())
	return next.(LoginModel)
}

func TestLoginRejectsInvalidEmail(t *testing.T) {
	auth := &fakeAuth{}
	m := NewLoginModel(auth, "")
	m = feedLogin(t, m, runes("not-an-email"))
	m = feedLogin(t, m, keyEnter)

	if m.err == nil {
		t.Error("expected a validation error")
	}
	if len(auth.emails) != 0 {
		t.Error("backend should not be called")
	}
}

func TestLoginFlow(t *testing.T) {
	auth := &fakeAuth{}
	m := NewLoginModel(auth, "admin@lm.local")

	m = feedLogin(t, m, keyEnter)
	if m.step != loginStepOTP {
		t.Fatalf("step = %d, want OTP step (err %v)", m.step, m.err)
	}
	if len(auth.emails) != 1 || auth.emails[0] != "admin@lm.local" {
		t.Errorf("emails = %v", auth.emails)
	}

	// letters are dropped from the OTP input
	m = feedLogin(t, m, runes("12ab"))
	if m.otp.Value() != "" {
		t.Errorf("otp = %q, letters should be rejected", m.otp.Value())
	}

	m = feedLogin(t, m, runes("123456"))
	m = feedLogin(t, m, keyEnter)

	if !m.Quitting {
		t.Fatalf("login should finish, err %v", m.err)
	}
	res := m.Result()
	if res.Cancelled {
		t.Error("result should not be cancelled")
	}
	if res.Token != "tok-123456" {
		t.Errorf("token = %q", res.Token)
	}
	if res.Account.PhoneNumber != "9876543210" {
		t.Errorf("account = %+v", res.Account)
	}
}

func TestLoginWrongOTP(t *testing.T) {
	auth := &fakeAuth{otpErr: errors.New("invalid otp")}
	m := NewLoginModel(auth, "admin@lm.local")
	m = feedLogin(t, m, keyEnter)
	m = feedLogin(t, m, runes("000000"))
	m = feedLogin(t, m, keyEnter)

	if m.Quitting {
		t.Fatal("a rejected OTP should stay on the page")
	}
	if m.err == nil {
		t.Error("expected an error")
	}
	if m.otp.Value() != "" {
		t.Error("the OTP input should be cleared")
	}
}

func TestLoginResendWaitsForTimer(t *testing.T) {
	auth := &fakeAuth{}
	m := NewLoginModel(auth, "admin@lm.local")
	m = feedLogin(t, m, keyEnter)

	if m.CanResend() {
		t.Fatal("resend should wait for the countdown")
	}
	m = feedLogin(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	if auth.resends != 0 {
		t.Error("resend sent before the countdown ran out")
	}
}

func TestLoginResendAfterTimeout(t *testing.T) {
	auth := &fakeAuth{}
	m := NewLoginModel(auth, "admin@lm.local")
	m.interval = 0
	m = feedLogin(t, m, keyEnter)

	if !m.CanResend() {
		t.Fatal("resend should be available once the countdown is over")
	}
	m = feedLogin(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	if auth.resends != 1 {
		t.Errorf("resends = %d, want 1", auth.resends)
	}
	if m.StatusMsg != "A new OTP has been sent" {
		t.Errorf("status = %q", m.StatusMsg)
	}
}

func TestLoginEscReturnsToEmail(t *testing.T) {
	m := NewLoginModel(&fakeAuth{}, "admin@lm.local")
	m = feedLogin(t, m, keyEnter)
	m = feedLogin(t, m, keyEsc)
	if m.step != loginStepEmail {
		t.Error("esc on the OTP step should go back to the email step")
	}
	if m.CanResend() {
		t.Error("resend is only offered on the OTP step")
	}

	m = feedLogin(t, m, keyEsc)
	if !m.Quitting || !m.Result().Cancelled {
		t.Error("esc on the email step should cancel the login")
	}
}

func TestCompleteLogin(t *testing.T) {
	store, err := session.NewStore()
	if err != nil {
		t.Fatal(err)
	}
	res := LoginResult{
		Account: models.EmailVerifyResult{Email: "admin@lm.local", PhoneNumber: "9876543210", PhoneHint: "******3210"},
		Token:   "tok",
	}
	if err := CompleteLogin(store, res); err != nil {
		t.Fatalf("CompleteLogin: %v", err)
	}
	st := store.State()
	if !st.Auth || st.Token != "tok" || st.UserType != "admin" {
		t.Errorf("state = %+v", st)
	}
	if st.Email != "admin@lm.local" || st.PhoneHint != "******3210" {
		t.Errorf("user fields = %+v", st)
	}
}
