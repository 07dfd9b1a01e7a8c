package session

// Action is a typed state change.
type Action interface {
	apply(State) State
}

// SetUser marks the user as signed in.
type SetUser struct {
	UserType    string
	Auth        bool
	PhoneNumber string
	PhoneHint   string
	Email       string
}

func (a SetUser) apply(s State) State {
	s.UserType = a.UserType
	s.Auth = a.Auth
	s.PhoneNumber = a.PhoneNumber
	s.PhoneHint = a.PhoneHint
	s.Email = a.Email
	return s
}

// ResetUser signs the user out and drops the token.
type ResetUser struct{}

func (ResetUser) apply(s State) State {
	return State{Theme: s.Theme, PageTitle: s.PageTitle}
}

// SetToken stores the auth token.
type SetToken struct {
	Token string
}

func (a SetToken) apply(s State) State {
	s.Token = a.Token
	return s
}

// SetPageTitle changes the title shown in the header.
type SetPageTitle struct {
	Title string
}

func (a SetPageTitle) apply(s State) State {
	s.PageTitle = a.Title
	return s
}

// ToggleTheme switches between the dark and light themes.
type ToggleTheme struct{}

func (ToggleTheme) apply(s State) State {
	if s.Theme == ThemeLight {
		s.Theme = ThemeDark
	} else {
		s.Theme = ThemeLight
	}
	return s
}
