package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/ai"
	"github.com/spigell/resume-matcher/internal/app"
	"github.com/spigell/resume-matcher/internal/report"
	"github.com/spigell/resume-matcher/internal/secrets"
	"github.com/spigell/resume-matcher/internal/session"
	"github.com/spigell/resume-matcher/internal/store"
)

const (
	PromptLogin        = "Log in"
	PromptRegister     = "Register"
	PromptQuit         = "Quit"
	PromptNewAnalysis  = "Start a new analysis"
	PromptViewRecord   = "View a past analysis"
	PromptDeleteRecord = "Delete a past analysis"
	PromptLogout       = "Log out"
	PromptAnalyze      = "Analyze a resume"
	PromptBack         = "Back"
	PromptExport       = "Export report"
	PromptYes          = "Yes"
	PromptNo           = "No"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start an interactive session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		rt, err := newRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		d := &sessionDriver{
			svc:        rt.svc,
			sess:       session.New(),
			prompt:     terminalPrompter{},
			out:        cmd.OutOrStdout(),
			logger:     rt.logger,
			resolveKey: rt.resolveAPIKey,
			readFile:   os.ReadFile,
			sinks:      rt.sinks,
		}

		return d.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// sessionDriver walks the user through the session screens. The API key
// typed by the user lives only in memory and is dropped on logout.
type sessionDriver struct {
	svc    *app.Service
	sess   *session.Session
	prompt prompter
	out    io.Writer
	logger *zap.Logger

	apiKey     string
	resolveKey func() (string, error)
	readFile   func(name string) ([]byte, error)
	sinks      func(ctx context.Context) ([]report.Sink, error)
}

// Run loops until the user quits or interrupts the prompt.
func (d *sessionDriver) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var err error
		switch d.sess.Screen() {
		case session.ScreenLogin:
			err = d.loginScreen(ctx)
		case session.ScreenDashboard:
			err = d.dashboardScreen(ctx)
		case session.ScreenUpload:
			err = d.uploadScreen(ctx)
		case session.ScreenResults:
			err = d.resultsScreen(ctx)
		}

		if errors.Is(err, errExit) {
			fmt.Fprintln(d.out, "Bye!")
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// fail shows a service error and keeps the session on the current screen.
func (d *sessionDriver) fail(err error) {
	d.logger.Debug("action failed", zap.String("screen", d.sess.Screen().String()), zap.Error(err))
	fmt.Fprintf(d.out, "Error: %s\n", app.Describe(err))
}

func (d *sessionDriver) loginScreen(ctx context.Context) error {
	choice, err := d.prompt.Select("Welcome to resume-matcher", []string{PromptLogin, PromptRegister, PromptQuit})
	if err != nil {
		return err
	}

	switch choice {
	case PromptLogin:
		username, err := d.prompt.Input("Username", false)
		if err != nil {
			return err
		}
		pass, err := d.prompt.Input("Password", true)
		if err != nil {
			return err
		}

		account, err := d.svc.Login(ctx, username, pass)
		if err != nil {
			d.fail(err)
			return nil
		}

		if err := d.sess.LogIn(session.Identity{AccountID: account.ID, Username: account.Username}); err != nil {
			return err
		}
		fmt.Fprintf(d.out, "Welcome, %s!\n", account.Username)

	case PromptRegister:
		var answers [4]string
		labels := [4]string{"Username", "Email", "Password", "Confirm password"}
		for i, label := range labels {
			if answers[i], err = d.prompt.Input(label, i >= 2); err != nil {
				return err
			}
		}

		account, err := d.svc.Register(ctx, answers[0], answers[1], answers[2], answers[3])
		if err != nil {
			d.fail(err)
			return nil
		}
		fmt.Fprintf(d.out, "Account %q created. Please log in.\n", account.Username)

	case PromptQuit:
		return errExit
	}

	return nil
}

func (d *sessionDriver) dashboardScreen(ctx context.Context) error {
	id, _ := d.sess.Identity()

	stats, err := d.svc.Stats(ctx, id.AccountID)
	if err != nil {
		d.fail(err)
	} else {
		printStats(d.out, stats)
	}

	records, err := d.svc.History(ctx, id.AccountID)
	if err != nil {
		d.fail(err)
	} else {
		printHistory(d.out, records)
	}

	choice, err := d.prompt.Select(fmt.Sprintf("Signed in as %s", id.Username), []string{
		PromptNewAnalysis, PromptViewRecord, PromptDeleteRecord, PromptLogout, PromptQuit,
	})
	if err != nil {
		return err
	}

	switch choice {
	case PromptNewAnalysis:
		return d.sess.StartAnalysis()

	case PromptViewRecord:
		record, err := d.pickRecord("Which analysis?", records)
		if err != nil || record == nil {
			return err
		}

		res, err := d.svc.Record(ctx, id.AccountID, record.ID)
		if err != nil {
			d.fail(err)
			return nil
		}
		if err := d.sess.ViewRecord(res.View()); err != nil {
			return err
		}
		printView(d.out, res.View())

	case PromptDeleteRecord:
		record, err := d.pickRecord("Delete which analysis?", records)
		if err != nil || record == nil {
			return err
		}

		confirm, err := d.prompt.Select(fmt.Sprintf("Delete %s?", recordLabel(*record)), []string{PromptNo, PromptYes})
		if err != nil || confirm != PromptYes {
			return err
		}

		if err := d.svc.Delete(ctx, id.AccountID, record.ID); err != nil {
			d.fail(err)
			return nil
		}
		fmt.Fprintln(d.out, "Analysis deleted.")

	case PromptLogout:
		return d.logOut()

	case PromptQuit:
		return errExit
	}

	return nil
}

// pickRecord returns nil when the history is empty or the user goes back.
func (d *sessionDriver) pickRecord(label string, records []store.Record) (*store.Record, error) {
	if len(records) == 0 {
		fmt.Fprintln(d.out, "History is empty.")
		return nil, nil
	}

	items := make([]string, 0, len(records)+1)
	byLabel := make(map[string]*store.Record, len(records))
	for i := range records {
		item := fmt.Sprintf("%d. %s", i+1, recordLabel(records[i]))
		items = append(items, item)
		byLabel[item] = &records[i]
	}
	items = append(items, PromptBack)

	choice, err := d.prompt.Select(label, items)
	if err != nil {
		return nil, err
	}

	return byLabel[choice], nil
}

func (d *sessionDriver) uploadScreen(ctx context.Context) error {
	choice, err := d.prompt.Select("New analysis", []string{PromptAnalyze, PromptBack, PromptLogout})
	if err != nil {
		return err
	}

	switch choice {
	case PromptAnalyze:
		return d.analyze(ctx)
	case PromptBack:
		return d.sess.Back()
	case PromptLogout:
		return d.logOut()
	}

	return nil
}

func (d *sessionDriver) analyze(ctx context.Context) error {
	path, err := d.prompt.Input("Path to the PDF resume", false)
	if err != nil {
		return err
	}
	job, err := d.prompt.Input("Job description (text, or @file)", false)
	if err != nil {
		return err
	}
	title, err := d.prompt.Input("Job title (optional)", false)
	if err != nil {
		return err
	}

	path = strings.TrimSpace(path)
	data, err := d.readFile(path)
	if err != nil {
		fmt.Fprintf(d.out, "Error: could not read %s: %s\n", path, err)
		return nil
	}

	if name, ok := strings.CutPrefix(strings.TrimSpace(job), "@"); ok {
		content, err := d.readFile(name)
		if err != nil {
			fmt.Fprintf(d.out, "Error: could not read %s: %s\n", name, err)
			return nil
		}
		job = string(content)
	}

	apiKey, err := d.key()
	if err != nil {
		return err
	}

	id, _ := d.sess.Identity()
	if err := d.sess.BeginAnalysis(); err != nil {
		return err
	}

	fmt.Fprintln(d.out, "Analyzing your resume...")
	res, err := d.svc.Analyze(ctx, id.AccountID, app.Upload{
		Filename:       path,
		Data:           data,
		JobDescription: job,
		JobTitle:       title,
	}, apiKey)

	if err != nil {
		if errEnd := d.sess.EndAnalysis(nil, false); errEnd != nil {
			return errEnd
		}
		// A rejected key should be asked for again next time.
		if errors.Is(err, ai.ErrAssessment) {
			d.apiKey = ""
		}
		d.fail(err)
		return nil
	}

	if err := d.sess.EndAnalysis(res.View(), true); err != nil {
		return err
	}
	printView(d.out, res.View())

	return nil
}

// key returns the API key for this session: the configured one if any,
// otherwise one typed by the user.
func (d *sessionDriver) key() (string, error) {
	if d.apiKey != "" {
		return d.apiKey, nil
	}

	key, err := d.resolveKey()
	switch {
	case err == nil:
		d.apiKey = key
		return key, nil
	case !errors.Is(err, secrets.ErrNotConfigured):
		d.logger.Warn("loading the configured api key", zap.Error(err))
	}

	key, err = d.prompt.Input("Gemini API key", true)
	if err != nil {
		return "", err
	}
	d.apiKey = strings.TrimSpace(key)

	return d.apiKey, nil
}

func (d *sessionDriver) resultsScreen(ctx context.Context) error {
	view := d.sess.Result()

	choice, err := d.prompt.Select("Results", []string{PromptExport, PromptNewAnalysis, PromptBack, PromptLogout})
	if err != nil {
		return err
	}

	switch choice {
	case PromptExport:
		d.export(ctx, view)
	case PromptNewAnalysis:
		return d.sess.StartAnalysis()
	case PromptBack:
		return d.sess.Back()
	case PromptLogout:
		return d.logOut()
	}

	return nil
}

func (d *sessionDriver) export(ctx context.Context, view *session.View) {
	if view == nil {
		fmt.Fprintln(d.out, "Nothing to export.")
		return
	}

	id, _ := d.sess.Identity()
	res, err := d.svc.Record(ctx, id.AccountID, view.RecordID)
	if err != nil {
		d.fail(err)
		return
	}

	sinks, err := d.sinks(ctx)
	if err != nil {
		d.fail(err)
		return
	}

	for _, sink := range sinks {
		location, err := d.svc.Export(ctx, res, sink)
		if err != nil {
			d.fail(err)
			continue
		}
		fmt.Fprintf(d.out, "Report written to %s\n", location)
	}
}

func (d *sessionDriver) logOut() error {
	if err := d.sess.LogOut(); err != nil {
		return err
	}
	d.apiKey = ""
	fmt.Fprintln(d.out, "Signed out.")
	return nil
}
