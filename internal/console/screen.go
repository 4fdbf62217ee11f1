package console

import "fmt"

// Screen names one of the console's top-level views.  The navigation shell
// passes it explicitly to the renderer; nothing stores the "current" screen.
type Screen int

const (
	Dashboard Screen = iota
	UserManagement
	Reservations
	Billing
)

var screenInfo = [...]struct {
	title, path, template, key string
}{
	Dashboard:      {"Dashboard", "/dashboard", "dashboard", "dashboard"},
	UserManagement: {"User Management", "/users", "users", "users"},
	Reservations:   {"Parking & Reservations", "/reservations", "reservations", "reservations"},
	Billing:        {"Billing & Payments", "/billing", "billing", "billing"},
}

// Screens lists every screen in navigation order.
func Screens() []Screen { return []Screen{Dashboard, UserManagement, Reservations, Billing} }

func (s Screen) valid() bool { return s >= Dashboard && s <= Billing }

// Title is the heading shown in the navigation bar and on the page.
func (s Screen) Title() string {
	if !s.valid() {
		return ""
	}
	return screenInfo[s].title
}

// Path is the route that shows the screen.
func (s Screen) Path() string {
	if !s.valid() {
		return "/"
	}
	return screenInfo[s].path
}

// Template is the name the renderer registers the screen's body under.
func (s Screen) Template() string {
	if !s.valid() {
		return ""
	}
	return screenInfo[s].template
}

func (s Screen) String() string {
	if !s.valid() {
		return fmt.Sprintf("Screen(%d)", int(s))
	}
	return screenInfo[s].key
}

func (s Screen) MarshalText() ([]byte, error) {
	if !s.valid() {
		return nil, fmt.Errorf("unknown screen %d", int(s))
	}
	return []byte(screenInfo[s].key), nil
}

// ParseScreen maps a screen key such as "billing" back to its Screen.
func ParseScreen(key string) (Screen, bool) {
	for _, s := range Screens() {
		if screenInfo[s].key == key {
			return s, true
		}
	}
	return 0, false
}
