package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spigell/resume-matcher/internal/ai"
)

// Screen is a state of the interactive session.
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenDashboard
	ScreenUpload
	ScreenResults
)

func (s Screen) String() string {
	switch s {
	case ScreenLogin:
		return "login"
	case ScreenDashboard:
		return "dashboard"
	case ScreenUpload:
		return "upload"
	case ScreenResults:
		return "results"
	default:
		return fmt.Sprintf("screen(%d)", int(s))
	}
}

// Event drives a transition between screens.
type Event int

const (
	EventLoggedIn Event = iota
	EventLoggedOut
	EventStartAnalysis
	EventBack
	EventAnalysisSucceeded
	EventViewRecord
)

func (e Event) String() string {
	switch e {
	case EventLoggedIn:
		return "logged-in"
	case EventLoggedOut:
		return "logged-out"
	case EventStartAnalysis:
		return "start-analysis"
	case EventBack:
		return "back"
	case EventAnalysisSucceeded:
		return "analysis-succeeded"
	case EventViewRecord:
		return "view-record"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

var (
	ErrInvalidTransition = errors.New("invalid session transition")
	ErrAnalysisInFlight  = errors.New("an analysis is already running")
)

var transitions = map[Screen]map[Event]Screen{
	ScreenLogin: {
		EventLoggedIn: ScreenDashboard,
	},
	ScreenDashboard: {
		EventStartAnalysis: ScreenUpload,
		EventViewRecord:    ScreenResults,
		EventLoggedOut:     ScreenLogin,
	},
	ScreenUpload: {
		EventAnalysisSucceeded: ScreenResults,
		EventBack:              ScreenDashboard,
		EventLoggedOut:         ScreenLogin,
	},
	ScreenResults: {
		EventStartAnalysis: ScreenUpload,
		EventBack:          ScreenDashboard,
		EventLoggedOut:     ScreenLogin,
	},
}

// Identity is the signed-in account.
type Identity struct {
	AccountID string
	Username  string
}

// View is the assessment shown on the results screen.
type View struct {
	RecordID   string
	Filename   string
	JobTitle   string
	CreatedAt  time.Time
	Assessment *ai.Assessment
}

// Session tracks the current screen, the signed-in account and the result
// being viewed. It is safe for concurrent use.
type Session struct {
	mu       sync.Mutex
	screen   Screen
	identity *Identity
	result   *View
	busy     bool
}

func New() *Session {
	return &Session{screen: ScreenLogin}
}

func (s *Session) Screen() Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen
}

// Identity returns the signed-in account, or false on the login screen.
func (s *Session) Identity() (Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return Identity{}, false
	}
	return *s.identity, true
}

// Result returns the assessment on the results screen, or nil.
func (s *Session) Result() *View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// LogIn moves from the login screen to the dashboard.
func (s *Session) LogIn(id Identity) error {
	if id.AccountID == "" {
		return fmt.Errorf("%w: account id is empty", ErrInvalidTransition)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fire(EventLoggedIn); err != nil {
		return err
	}
	s.identity = &id
	return nil
}

// LogOut clears the identity and any result and returns to the login screen.
func (s *Session) LogOut() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fire(EventLoggedOut); err != nil {
		return err
	}
	s.identity = nil
	s.result = nil
	s.busy = false
	return nil
}

// StartAnalysis opens the upload screen.
func (s *Session) StartAnalysis() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fire(EventStartAnalysis)
}

// Back returns to the dashboard and drops the viewed result.
func (s *Session) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return ErrAnalysisInFlight
	}
	if err := s.fire(EventBack); err != nil {
		return err
	}
	s.result = nil
	return nil
}

// BeginAnalysis marks an assessment as running. Only one may run at a time and
// only from the upload screen.
func (s *Session) BeginAnalysis() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != ScreenUpload {
		return fmt.Errorf("%w: cannot analyze from %s", ErrInvalidTransition, s.screen)
	}
	if s.busy {
		return ErrAnalysisInFlight
	}
	s.busy = true
	return nil
}

// EndAnalysis clears the running flag. On success the result is attached and
// the session moves to the results screen; on failure it stays on upload.
func (s *Session) EndAnalysis(result *View, succeeded bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.busy = false
	if !succeeded {
		return nil
	}
	if err := s.fire(EventAnalysisSucceeded); err != nil {
		return err
	}
	s.result = result
	return nil
}

// ViewRecord opens a stored result from the dashboard.
func (s *Session) ViewRecord(result *View) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fire(EventViewRecord); err != nil {
		return err
	}
	s.result = result
	return nil
}

// fire applies ev. The screen is left unchanged when ev is not allowed.
func (s *Session) fire(ev Event) error {
	next, ok := transitions[s.screen][ev]
	if !ok {
		return fmt.Errorf("%w: %s on %s", ErrInvalidTransition, ev, s.screen)
	}
	s.screen = next
	return nil
}
