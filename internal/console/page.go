package console

// Level classifies a notice for display.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

type Notice struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

// Page is what a controller hands back to the shell: the screen to render,
// the notices raised while serving the interaction and the screen's data.
// A Page is also the store.Reporter for the interaction, so data-access
// failures land on it as error notices.
type Page struct {
	Screen  Screen   `json:"screen"`
	Title   string   `json:"title"`
	Notices []Notice `json:"notices"`
	Data    any      `json:"data"`
}

func NewPage(s Screen) *Page {
	return &Page{Screen: s, Title: s.Title(), Notices: []Notice{}}
}

func (p *Page) Report(msg string) { p.add(LevelError, msg) }

func (p *Page) Success(msg string) { p.add(LevelSuccess, msg) }
func (p *Page) Info(msg string)    { p.add(LevelInfo, msg) }
func (p *Page) Warn(msg string)    { p.add(LevelWarning, msg) }
func (p *Page) Error(msg string)   { p.add(LevelError, msg) }

func (p *Page) add(l Level, msg string) {
	p.Notices = append(p.Notices, Notice{Level: l, Text: msg})
}

// Failed reports whether any error notice was raised.
func (p *Page) Failed() bool {
	for _, n := range p.Notices {
		if n.Level == LevelError {
			return true
		}
	}
	return false
}

// Has reports whether a notice with exactly this text was raised.
func (p *Page) Has(text string) bool {
	for _, n := range p.Notices {
		if n.Text == text {
			return true
		}
	}
	return false
}
