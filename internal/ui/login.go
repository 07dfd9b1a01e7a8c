package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/timer"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kodstechnologies/lm-backoffice/internal/api"
	"github.com/kodstechnologies/lm-backoffice/internal/models"
	"github.com/kodstechnologies/lm-backoffice/internal/session"
)

// ResendInterval is how long the user waits before an OTP can be resent.
const ResendInterval = 60 * time.Second

const loginRequestTimeout = 30 * time.Second

// Authenticator is the backend side of the OTP login. *api.Client
// satisfies it.
type Authenticator interface {
	EmailVerify(ctx context.Context, email string) (models.EmailVerifyResult, error)
	ResendOTP(ctx context.Context, phoneNumber string) (models.OTPResult, error)
	VerifyOTP(ctx context.Context, phoneNumber, otp string) (models.OTPResult, error)
}

// LoginResult is the outcome of the login wizard.
type LoginResult struct {
	Account   models.EmailVerifyResult
	Token     string
	Cancelled bool
}

type loginStep int

const (
	loginStepEmail loginStep = iota
	loginStepOTP
)

// Messages
type emailVerifiedMsg struct {
	res models.EmailVerifyResult
	err error
}

type otpVerifiedMsg struct {
	res models.OTPResult
	err error
}

type otpResentMsg struct {
	err error
}

// LoginModel is the two step login: admin email, then the OTP sent to the
// admin's phone.
type LoginModel struct {
	PageState

	auth     Authenticator
	step     loginStep
	email    textinput.Model
	otp      textinput.Model
	spinner  spinner.Model
	resend   timer.Model
	busy     bool
	err      error
	account  models.EmailVerifyResult
	result   LoginResult
	interval time.Duration
}

// NewLoginModel creates the login wizard, prefilled with email.
func NewLoginModel(auth Authenticator, email string) LoginModel {
	layout := DefaultLayout()

	emailInput := textinput.New()
	emailInput.Placeholder = "admin@example.com"
	emailInput.CharLimit = 254
	emailInput.Width = layout.InnerWidth - 20
	emailInput.TextStyle = NormalStyle
	emailInput.PromptStyle = NormalStyle
	emailInput.SetValue(email)
	emailInput.Focus()

	otpInput := textinput.New()
	otpInput.Placeholder = "6 digit code"
	otpInput.CharLimit = 6
	otpInput.Width = 12
	otpInput.TextStyle = NormalStyle
	otpInput.PromptStyle = NormalStyle
	otpInput.EchoMode = textinput.EchoPassword
	otpInput.EchoCharacter = '•'

	return LoginModel{
		PageState: NewPageState(layout),
		auth:      auth,
		email:     emailInput,
		otp:       otpInput,
		spinner:   NewAppSpinner(),
		interval:  ResendInterval,
		result:    LoginResult{Cancelled: true},
	}
}

func (m LoginModel) Init() tea.Cmd {
	return tea.Batch(StandardInit(), textinput.Blink, m.spinner.Tick)
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.UpdateLayout(msg.Width, msg.Height)
		m.email.Width = m.Layout.InnerWidth - 20
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case timer.TickMsg, timer.StartStopMsg, timer.TimeoutMsg:
		var cmd tea.Cmd
		m.resend, cmd = m.resend.Update(msg)
		return m, cmd

	case emailVerifiedMsg:
		m.busy = false
		if msg.err != nil {
			m.err = fmt.Errorf("%s", api.Message(msg.err))
			return m, nil
		}
		m.err = nil
		m.account = msg.res
		m.step = loginStepOTP
		m.email.Blur()
		m.otp.SetValue("")
		m.otp.Focus()
		m.SetStatus(orDefault(msg.res.Message, "OTP sent"), 0)
		return m, tea.Batch(textinput.Blink, m.startResendTimer())

	case otpResentMsg:
		m.busy = false
		if msg.err != nil {
			m.err = fmt.Errorf("%s", api.Message(msg.err))
			return m, nil
		}
		m.err = nil
		m.SetStatus("A new OTP has been sent", 0)
		return m, m.startResendTimer()

	case otpVerifiedMsg:
		m.busy = false
		if msg.err != nil {
			m.err = fmt.Errorf("%s", api.Message(msg.err))
			m.otp.SetValue("")
			return m, nil
		}
		m.result = LoginResult{Account: m.account, Token: msg.res.Token}
		m.Quitting = true
		return m, tea.Quit

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.Quitting = true
			return m, tea.Quit
		}
		if m.busy {
			return m, nil
		}
		if m.step == loginStepOTP {
			return m.handleOTPKeys(msg)
		}
		return m.handleEmailKeys(msg)
	}
	return m, nil
}

func (m LoginModel) handleEmailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Quitting = true
		return m, tea.Quit
	case "enter":
		email := strings.TrimSpace(sanitizeInput(m.email.Value()))
		if err := models.ValidateEmail(email); err != nil {
			m.err = err
			return m, nil
		}
		m.busy = true
		m.err = nil
		auth := m.auth
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), loginRequestTimeout)
			defer cancel()
			res, err := auth.EmailVerify(ctx, email)
			return emailVerifiedMsg{res: res, err: err}
		}
	}
	var cmd tea.Cmd
	m.email, cmd = m.email.Update(msg)
	return m, cmd
}

func (m LoginModel) handleOTPKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.step = loginStepEmail
		m.otp.Blur()
		m.email.Focus()
		m.err = nil
		m.SetStatus("", 0)
		m.resend = timer.Model{}
		return m, textinput.Blink

	case "ctrl+r":
		if !m.CanResend() {
			return m, nil
		}
		m.busy = true
		auth, phone := m.auth, m.account.PhoneNumber
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), loginRequestTimeout)
			defer cancel()
			_, err := auth.ResendOTP(ctx, phone)
			return otpResentMsg{err: err}
		}

	case "enter":
		code := strings.TrimSpace(m.otp.Value())
		if err := models.ValidateOTP(code); err != nil {
			m.err = err
			return m, nil
		}
		m.busy = true
		m.err = nil
		auth, phone := m.auth, m.account.PhoneNumber
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), loginRequestTimeout)
			defer cancel()
			res, err := auth.VerifyOTP(ctx, phone, code)
			return otpVerifiedMsg{res: res, err: err}
		}
	}

	// digits only
	if msg.Type == tea.KeyRunes {
		for _, r := range msg.Runes {
			if r < '0' || r > '9' {
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.otp, cmd = m.otp.Update(msg)
	return m, cmd
}

// startResendTimer restarts the resend countdown. A new timer gets a new
// ID, so ticks of the previous one are ignored.
func (m *LoginModel) startResendTimer() tea.Cmd {
	m.resend = timer.NewWithInterval(m.interval, time.Second)
	return m.resend.Init()
}

// CanResend reports whether the resend countdown has run out.
func (m LoginModel) CanResend() bool {
	return m.step == loginStepOTP && m.resend.Timedout()
}

func (m LoginModel) View() string {
	if m.Quitting {
		return ""
	}

	b := NewPageView(m.Layout).Title("Back Office Login").Divider().Spacing(1)

	switch m.step {
	case loginStepEmail:
		b.Text(" Email address")
		b.CustomContent(" " + m.email.View() + "\n")
		b.Spacing(1)
		b.DimText(" A one time password is sent to the phone number registered for this email.")
	case loginStepOTP:
		b.Text(fmt.Sprintf(" Enter the OTP sent to %s", orDefault(m.account.PhoneHint, "your phone")))
		b.CustomContent(" " + m.otp.View() + "\n")
		b.Spacing(1)
		if m.CanResend() {
			b.CustomContent(AccentStyle.Render(" Didn't get it? Press ctrl+r to resend.") + "\n")
		} else {
			b.DimText(fmt.Sprintf(" Resend available in %s", m.resend.View()))
		}
	}

	if m.busy {
		b.Spacing(1)
		b.CustomContent(" " + m.spinner.View() + " " + DimStyle.Render("Contacting backend...") + "\n")
	}
	b.Status(m.StatusMsg)
	b.Error(m.err)

	help := "Enter: send OTP | Esc: quit"
	if m.step == loginStepOTP {
		help = "Enter: verify | ctrl+r: resend OTP | Esc: change email"
	}
	return b.Help(help).Build()
}

// Result returns the login outcome.
func (m LoginModel) Result() LoginResult {
	return m.result
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// RunLogin runs the login wizard and, on success, stores the token and the
// signed-in admin in the session.
func RunLogin(auth Authenticator, store *session.Store) (LoginResult, error) {
	p := tea.NewProgram(NewLoginModel(auth, store.State().Email), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return LoginResult{Cancelled: true}, fmt.Errorf("login error: %w", err)
	}
	res := finalModel.(LoginModel).Result()
	if res.Cancelled {
		return res, nil
	}
	return res, CompleteLogin(store, res)
}

// CompleteLogin records a successful login in the session.
func CompleteLogin(store *session.Store, res LoginResult) error {
	if err := store.Dispatch(session.SetToken{Token: res.Token}); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	err := store.Dispatch(session.SetUser{
		UserType:    "admin",
		Auth:        true,
		PhoneNumber: res.Account.PhoneNumber,
		PhoneHint:   res.Account.PhoneHint,
		Email:       res.Account.Email,
	})
	if err != nil {
		return fmt.Errorf("failed to store user: %w", err)
	}
	return nil
}
