package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/ai"
	"github.com/spigell/resume-matcher/internal/extract"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/report"
	"github.com/spigell/resume-matcher/internal/session"
	"github.com/spigell/resume-matcher/internal/store"
)

const (
	MinPasswordLength     = 6
	DefaultMaxUploadBytes = 10 << 20
	DefaultHistoryLimit   = 10
)

type AccountStore interface {
	Create(ctx context.Context, username, email, password string) (*store.Account, error)
	Authenticate(ctx context.Context, username, password string) (*store.Account, error)
}

type HistoryStore interface {
	Save(ctx context.Context, in store.NewRecord) (*store.Record, error)
	List(ctx context.Context, accountID string, limit int) ([]store.Record, error)
	Get(ctx context.Context, accountID, recordID string) (*store.Record, error)
	Delete(ctx context.Context, accountID, recordID string) error
	Stats(ctx context.Context, accountID string) (store.Stats, error)
}

// AssessorFactory builds an assessor for the API key supplied by the user.
type AssessorFactory func(ctx context.Context, apiKey string) (ai.Assessor, error)

type Options struct {
	Accounts  AccountStore
	History   HistoryStore
	Assessors AssessorFactory
	// Extract defaults to extract.Text.
	Extract        func(data []byte) (string, error)
	Logger         *zap.Logger
	MaxUploadBytes int64
	HistoryLimit   int
	Now            func() time.Time
}

// Service runs the account, analysis and history flows shared by the
// one-shot commands and the interactive session.
type Service struct {
	accounts       AccountStore
	history        HistoryStore
	assessors      AssessorFactory
	extract        func([]byte) (string, error)
	logger         *zap.Logger
	maxUploadBytes int64
	historyLimit   int
	now            func() time.Time
}

func New(opts Options) *Service {
	s := &Service{
		accounts:       opts.Accounts,
		history:        opts.History,
		assessors:      opts.Assessors,
		extract:        opts.Extract,
		logger:         opts.Logger,
		maxUploadBytes: opts.MaxUploadBytes,
		historyLimit:   opts.HistoryLimit,
		now:            opts.Now,
	}

	if s.extract == nil {
		s.extract = extract.Text
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.maxUploadBytes <= 0 {
		s.maxUploadBytes = DefaultMaxUploadBytes
	}
	if s.historyLimit <= 0 {
		s.historyLimit = DefaultHistoryLimit
	}
	if s.now == nil {
		s.now = time.Now
	}

	return s
}

// Upload is one analysis request.
type Upload struct {
	Filename       string
	Data           []byte
	JobDescription string
	// JobTitle is optional.
	JobTitle string
}

// Result pairs a stored record with its decoded assessment.
type Result struct {
	Record     *store.Record
	Assessment *ai.Assessment
}

// View adapts the result for the session's results screen.
func (r *Result) View() *session.View {
	return &session.View{
		RecordID:   r.Record.ID,
		Filename:   r.Record.Filename,
		JobTitle:   r.Record.JobTitle,
		CreatedAt:  r.Record.CreatedAt,
		Assessment: r.Assessment,
	}
}

func (s *Service) Register(ctx context.Context, username, email, password, confirm string) (*store.Account, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	switch {
	case username == "":
		return nil, invalid("username", "Username is required.")
	case email == "":
		return nil, invalid("email", "Email is required.")
	case !strings.Contains(email, "@"):
		return nil, invalid("email", "Email address is not valid.")
	case utf8.RuneCountInString(password) < MinPasswordLength:
		return nil, invalid("password", fmt.Sprintf("Password must be at least %d characters.", MinPasswordLength))
	case password != confirm:
		return nil, invalid("confirm", "Passwords do not match.")
	}

	account, err := s.accounts.Create(ctx, username, email, password)
	if err != nil {
		return nil, err
	}

	logger.WithAccount(s.logger, account.ID, account.Username).Info("account registered")

	return account, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (*store.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, invalid("credentials", "Username and password are required.")
	}

	account, err := s.accounts.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, store.ErrInvalidCredentials) {
			s.logger.Info("login rejected", zap.String(logger.FieldUsername, username))
		}
		return nil, err
	}

	logger.WithAccount(s.logger, account.ID, account.Username).Info("signed in")

	return account, nil
}

// Analyze validates the upload, extracts the résumé text, asks the model for
// an assessment and stores it. Nothing is stored unless every step succeeds.
func (s *Service) Analyze(ctx context.Context, accountID string, in Upload, apiKey string) (*Result, error) {
	log := logger.WithFields(s.logger, logger.StringFields(
		logger.StringField{Key: logger.FieldAccount, Value: accountID},
		logger.StringField{Key: logger.FieldFilename, Value: in.Filename},
	)...)

	if err := s.validateUpload(accountID, in, apiKey); err != nil {
		log.Info("upload rejected", zap.Error(err))
		return nil, err
	}

	text, err := s.extract(in.Data)
	if err != nil {
		log.Warn("text extraction failed", zap.Error(err))
		return nil, err
	}
	log.Debug("text extracted", zap.Int("text_length", utf8.RuneCountInString(text)))

	assessor, err := s.assessors(ctx, apiKey)
	if err != nil {
		log.Warn("model client unavailable", zap.Error(err))
		if errors.Is(err, ai.ErrAssessment) {
			return nil, err
		}
		return nil, ai.Failure("model client unavailable", err)
	}

	assessment, err := assessor.Assess(ctx, text, in.JobDescription)
	if err != nil {
		log.Warn("assessment failed", zap.Error(err))
		if errors.Is(err, ai.ErrAssessment) {
			return nil, err
		}
		return nil, ai.Failure("model request failed", err)
	}

	if clamped := ai.ClampScore(assessment.MatchScore); clamped != assessment.MatchScore {
		log.Warn("match score out of range, clamped",
			zap.Int("reported", assessment.MatchScore),
			zap.Int("stored", clamped),
		)
		assessment.MatchScore = clamped
	}

	payload, err := ai.Encode(assessment)
	if err != nil {
		return nil, fmt.Errorf("%w: encode assessment: %w", store.ErrStore, err)
	}

	record, err := s.history.Save(ctx, store.NewRecord{
		AccountID:  accountID,
		Filename:   filepath.Base(in.Filename),
		MatchScore: assessment.MatchScore,
		JobTitle:   strings.TrimSpace(in.JobTitle),
		Payload:    payload,
	})
	if err != nil {
		log.Error("saving assessment failed", zap.Error(err))
		return nil, err
	}

	log.Info("analysis stored",
		zap.String(logger.FieldRecord, record.ID),
		zap.Int("match_score", record.MatchScore),
	)

	return &Result{Record: record, Assessment: assessment}, nil
}

func (s *Service) validateUpload(accountID string, in Upload, apiKey string) error {
	switch {
	case strings.TrimSpace(accountID) == "":
		return invalid("account", "Please log in first.")
	case len(in.Data) == 0:
		return invalid("resume", "Please upload your resume.")
	case !strings.EqualFold(filepath.Ext(in.Filename), ".pdf"):
		return invalid("resume", "Only PDF resumes are supported.")
	case int64(len(in.Data)) > s.maxUploadBytes:
		return invalid("resume", fmt.Sprintf("The resume is larger than the %d byte limit.", s.maxUploadBytes))
	case strings.TrimSpace(in.JobDescription) == "":
		return invalid("job_description", "Please provide a job description.")
	case strings.TrimSpace(apiKey) == "":
		return invalid("api_key", "Please provide a Gemini API key.")
	}
	return nil
}

// History lists the newest records of the account.
func (s *Service) History(ctx context.Context, accountID string) ([]store.Record, error) {
	return s.history.List(ctx, accountID, s.historyLimit)
}

func (s *Service) Stats(ctx context.Context, accountID string) (store.Stats, error) {
	return s.history.Stats(ctx, accountID)
}

func (s *Service) Delete(ctx context.Context, accountID, recordID string) error {
	if strings.TrimSpace(recordID) == "" {
		return invalid("record", "Record id is required.")
	}

	if err := s.history.Delete(ctx, accountID, recordID); err != nil {
		return err
	}

	s.logger.Info("record deleted",
		zap.String(logger.FieldAccount, accountID),
		zap.String(logger.FieldRecord, recordID),
	)

	return nil
}

// Record loads one stored record of the account with its assessment.
func (s *Service) Record(ctx context.Context, accountID, recordID string) (*Result, error) {
	record, err := s.history.Get(ctx, accountID, recordID)
	if err != nil {
		return nil, err
	}

	assessment, err := ai.Decode(record.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: record %s: %w", store.ErrStore, record.ID, err)
	}

	return &Result{Record: record, Assessment: assessment}, nil
}

// Render formats the result as a report stamped with the current time.
func (s *Service) Render(res *Result) string {
	return report.Format(res.Assessment, res.Record.Filename, res.Record.JobTitle, s.now())
}

// Export renders the result and hands it to the sink. It returns where the
// report was written.
func (s *Service) Export(ctx context.Context, res *Result, sink report.Sink) (string, error) {
	if res == nil || res.Record == nil || res.Assessment == nil {
		return "", invalid("result", "There is no analysis to export.")
	}

	now := s.now()
	body := report.Format(res.Assessment, res.Record.Filename, res.Record.JobTitle, now)

	location, err := sink.Write(ctx, report.FileName(now), []byte(body))
	if err != nil {
		return "", fmt.Errorf("export report: %w", err)
	}

	s.logger.Info("report exported",
		zap.String(logger.FieldRecord, res.Record.ID),
		zap.String("location", location),
	)

	return location, nil
}
