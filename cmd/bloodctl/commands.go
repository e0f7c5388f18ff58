package main

import (
	"bufio"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kirillkom/blood-insights/internal/core/domain"
	"github.com/kirillkom/blood-insights/internal/core/narration"
	"github.com/kirillkom/blood-insights/internal/core/render"
	"github.com/kirillkom/blood-insights/internal/core/session"
	"github.com/kirillkom/blood-insights/internal/core/usecase"
)

func passwordFrom(flag string, in io.Reader) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if env := os.Getenv("BLOOD_PASSWORD"); env != "" {
		return env, nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func signupCmd(c *cli) *cobra.Command {
	var email, password, name string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and start a session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := c.appFor(cmd.Context())
			if err != nil {
				return err
			}
			pw, err := passwordFrom(password, cmd.InOrStdin())
			if err != nil {
				return err
			}
			sess, err := app.Auth.Signup(cmd.Context(), domain.SignupRequest{Email: email, Password: pw, FullName: name})
			if err != nil {
				return err
			}
			return c.emit(sess.User, func(w io.Writer) {
				fmt.Fprintf(w, "Signed up as %s\n", sess.User.Email)
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "password (or BLOOD_PASSWORD, or stdin)")
	cmd.Flags().StringVar(&name, "name", "", "full name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func loginCmd(c *cli) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := c.appFor(cmd.Context())
			if err != nil {
				return err
			}
			pw, err := passwordFrom(password, cmd.InOrStdin())
			if err != nil {
				return err
			}
			sess, err := app.Auth.Login(cmd.Context(), domain.Credentials{Email: email, Password: pw})
			if err != nil {
				return err
			}
			return c.emit(sess.User, func(w io.Writer) {
				fmt.Fprintf(w, "Logged in as %s\n", sess.User.Email)
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "password (or BLOOD_PASSWORD, or stdin)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func logoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := c.appFor(cmd.Context())
			if err != nil {
				return err
			}
			if err := app.Auth.Logout(cmd.Context()); err != nil {
				if app.Auth.IsAuthenticated(cmd.Context()) {
					return err
				}
				fmt.Fprintf(c.errOut, "warning: backend logout failed: %s\n", domain.MessageOf(err))
			}
			fmt.Fprintln(c.out, "Logged out")
			return nil
		},
	}
}

type whoami struct {
	User      *domain.User `json:"user"`
	ExpiresAt *time.Time   `json:"token_expires_at,omitempty"`
	Language  string       `json:"language"`
}

func whoamiCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := c.appFor(cmd.Context())
			if err != nil {
				return err
			}
			user, err := app.Auth.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			out := whoami{User: user, Language: app.Session.Language(cmd.Context(), app.Config.DefaultLanguage)}
			if token, err := app.Session.Token(cmd.Context()); err == nil {
				if exp, ok := session.TokenExpiry(token); ok {
					out.ExpiresAt = &exp
				}
			}
			return c.emit(out, func(w io.Writer) {
				fmt.Fprintf(w, "%s <%s>\n", user.FullName, user.Email)
				if out.ExpiresAt != nil {
					fmt.Fprintf(w, "token expires %s\n", out.ExpiresAt.Local().Format(time.RFC1123))
				}
			})
		},
	}
}

func paramsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "params",
		Short: "List the parameter catalog by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := c.appFor(cmd.Context())
			if err != nil {
				return err
			}
			defs, err := app.Catalog.Parameters(cmd.Context())
			if err != nil {
				return err
			}
			groups := usecase.GroupByCategory(defs)
			return c.emit(groups, func(w io.Writer) {
				for _, group := range groups {
					fmt.Fprintln(w, group.Category)
					for _, def := range group.Parameters {
						band := render.ReferenceBand(def)
						name := def.DisplayName
						if name == "" {
							name = def.ParameterName
						}
						fmt.Fprintf(w, "  %-28s %-22s %g - %g %s\n", def.ParameterName, name, band.Min, band.Max, def.Unit)
					}
				}
			})
		},
	}
}

func parseParamFlags(params []string) (domain.ParameterValues, error) {
	raw := make(map[string]string, len(params))
	for _, p := range params {
		name, value, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, domain.WrapError(domain.ErrInvalidInput, "parse --param", fmt.Errorf("expected name=value, got %q", p))
		}
		raw[name] = value
	}
	return usecase.ParseParameterInput(raw), nil
}

type analysisOutput struct {
	ReportID  domain.ID             `json:"report_id,omitempty"`
	CreatedAt domain.Timestamp      `json:"created_at"`
	Analysis  domain.AnalysisResult `json:"analysis"`
	View      render.View           `json:"view"`
}

func analyzeCmd(c *cli) *cobra.Command {
	var params []string
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze manually entered parameter values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			values, err := parseParamFlags(params)
			if err != nil {
				return err
			}
			app, err := c.appFor(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := app.Analysis.Analyze(cmd.Context(), values)
			if err != nil {
				return err
			}
			out := analysisOutput{ReportID: resp.ReportID, CreatedAt: resp.CreatedAt, Analysis: resp.Analysis, View: render.Render(resp.Analysis)}
			return c.emit(out, func(w io.Writer) {
				if resp.ReportID != "" {
					fmt.Fprintf(w, "Report %s\n", resp.ReportID)
				}
				printView(w, out.View)
			})
		},
	}
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "parameter value as name=value (repeatable)")
	return cmd
}

func uploadCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload a report image or PDF for extraction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.appFor(cmd.Context())
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return domain.WrapError(domain.ErrInvalidInput, "open upload", err)
			}
			defer f.Close()

			contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(args[0])))
			result, err := app.Analysis.Upload(cmd.Context(), filepath.Base(args[0]), contentType, f)
			if err != nil {
				return err
			}
			return c.emit(result, func(w io.Writer) {
				fmt.Fprintf(w, "Report %s: %d parameters extracted\n", result.ReportID, len(result.ExtractedParameters))
				for name, value := range result.ExtractedParameters {
					fmt.Fprintf(w, "  %s=%g\n", name, value)
				}
			})
		},
	}
}

func historyCmd(c *cli) *cobra.Command {
	var exportPath string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past analyses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := c.appFor(cmd.Context())
			if err != nil {
				return err
			}
			if exportPath != "" {
				return exportHistory(cmd, app.History, exportPath, c.out)
			}
			rows, err := app.History.Rows(cmd.Context())
			if err != nil {
				return err
			}
			return c.emit(rows, func(w io.Writer) {
				if len(rows) == 0 {
					fmt.Fprintln(w, "No analyses yet")
					return
				}
				for _, row := range rows {
					date := "-"
					if !row.CreatedAt.IsZero() {
						date = row.CreatedAt.Format("2006-01-02 15:04")
					}
					fmt.Fprintf(w, "%-8s %-16s %5.0f  %s\n", row.ID, date, row.RiskScore, row.Badge.Label)
				}
			})
		},
	}
	cmd.Flags().StringVar(&exportPath, "export", "", "write the history to an .xlsx file")
	return cmd
}

func exportHistory(cmd *cobra.Command, history *usecase.HistoryService, path string, out io.Writer) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := history.Export(cmd.Context(), f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	fmt.Fprintf(out, "History written to %s\n", path)
	return nil
}

func showCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show REPORT_ID",
		Short: "Re-open a stored analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.appFor(cmd.Context())
			if err != nil {
				return err
			}
			report, err := app.History.Open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := analysisOutput{ReportID: report.ID, CreatedAt: report.CreatedAt, Analysis: report.Analysis, View: render.Render(report.Analysis)}
			return c.emit(out, func(w io.Writer) {
				fmt.Fprintf(w, "Report %s\n", report.ID)
				printView(w, out.View)
			})
		},
	}
}

func speakCmd(c *cli) *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "speak REPORT_ID",
		Short: "Read a stored analysis aloud",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := c.appFor(ctx)
			if err != nil {
				return err
			}
			report, err := app.History.Open(ctx, args[0])
			if err != nil {
				return err
			}
			if lang == "" {
				lang = app.Session.Language(ctx, app.Config.DefaultLanguage)
			}
			if err := app.Narrator.Speak(ctx, report.Analysis, lang); err != nil {
				return err
			}
			select {
			case <-app.Narrator.Done():
			case <-ctx.Done():
				app.Narrator.Stop()
			}
			status := app.Narrator.Status()
			if status.LastError != "" {
				return fmt.Errorf("speech failed: %s", status.LastError)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "", "narration language: en, hi or te")
	return cmd
}

func languageCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "language [CODE]",
		Short: "Show or set the narration language",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.appFor(cmd.Context())
			if err != nil {
				return err
			}
			if len(args) == 1 {
				code := strings.ToLower(strings.TrimSpace(args[0]))
				if _, ok := narration.SupportedLanguages()[code]; !ok {
					return domain.WrapError(domain.ErrInvalidInput, "set language", fmt.Errorf("unsupported language %q", args[0]))
				}
				if err := app.Session.SetLanguage(cmd.Context(), code); err != nil {
					return err
				}
			}
			code := app.Session.Language(cmd.Context(), app.Config.DefaultLanguage)
			return c.emit(map[string]string{"language": code}, func(w io.Writer) {
				fmt.Fprintf(w, "%s (%s)\n", code, narration.SupportedLanguages()[narration.NormalizeLanguage(code)])
			})
		},
	}
}
