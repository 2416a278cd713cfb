package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/sololeveling/internal/apiclient"
	"github.com/sololeveling/internal/config"
	"github.com/sololeveling/internal/dashboard"
	"github.com/sololeveling/internal/model"
	"github.com/sololeveling/internal/session"
	"github.com/sololeveling/internal/startup"
	"github.com/sololeveling/internal/storage"
)

// app — зависимости одной команды: конфиг, хранилище, сессия, API-клиент и состояние экрана.
type app struct {
	cfg    *config.Config
	store  storage.Store
	sess   *session.Store
	client *apiclient.Client
	board  *dashboard.Dashboard
}

type rootFlags struct {
	api         string
	sessionFile string
	storage     string
}

func newRootCmd() *cobra.Command {
	var (
		flags rootFlags
		a     app
	)
	root := &cobra.Command{
		Use:           "solo",
		Short:         "Solo Leveling fitness client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.Context(), flags)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if a.store == nil {
				return nil
			}
			return a.store.Close()
		},
	}
	root.PersistentFlags().StringVar(&flags.api, "api", "", "API base URL (default $SOLO_API_URL or http://127.0.0.1:8000)")
	root.PersistentFlags().StringVar(&flags.sessionFile, "session-file", "", "session file (default $SOLO_SESSION_FILE or ~/.solo/session.json)")
	root.PersistentFlags().StringVar(&flags.storage, "storage", "", "session storage backend: file|memory|redis|postgres")

	root.AddCommand(
		newCmdSignup(&a),
		newCmdLogin(&a),
		newCmdLogout(&a),
		newCmdWhoami(&a),
		newCmdMissions(&a),
		newCmdGenerate(&a),
		newCmdHealth(&a),
	)
	return root
}

func (a *app) open(ctx context.Context, flags rootFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a.cfg = config.Load()
	if flags.api != "" {
		a.cfg.APIBaseURL = flags.api
	}
	if flags.sessionFile != "" {
		a.cfg.Storage.FilePath = flags.sessionFile
	}
	if flags.storage != "" {
		a.cfg.Storage.Backend = flags.storage
	}
	store, err := startup.OpenStore(ctx, a.cfg.Storage, 5*time.Second, "cli: ")
	if err != nil {
		return fmt.Errorf("open session storage: %w", err)
	}
	a.store = store
	a.sess = session.New(store)
	a.client = apiclient.New(a.cfg.APIBaseURL, a.sess, apiclient.WithUserAgent("solo-cli"))
	a.board = dashboard.New(a.client, a.sess)
	if _, err := a.sess.Restore(ctx); err != nil {
		return err
	}
	return nil
}

var errNotLoggedIn = errors.New("not logged in: run `solo login` or `solo signup` first")

// staleSessionError — сервер отклонил сохранённый токен (истёк или отозван).
type staleSessionError struct{ err error }

func (e *staleSessionError) Error() string { return e.err.Error() }

func (e *staleSessionError) Unwrap() error { return e.err }

// withSessionHint помечает ответ 401/403 на запрос с сохранённым токеном.
func withSessionHint(err error) error {
	if apiclient.IsUnauthorized(err) {
		return &staleSessionError{err: err}
	}
	return err
}

func (a *app) requireLogin() error {
	if !a.sess.Authenticated() {
		return errNotLoggedIn
	}
	return nil
}

func newCmdSignup(a *app) *cobra.Command {
	var (
		req      model.SignupRequest
		height   int
		weight   float64
		activity string
	)
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("height") {
				req.HeightCm = &height
			}
			if cmd.Flags().Changed("weight") {
				req.WeightKg = &weight
			}
			req.ActivityLevel = model.ActivityLevel(activity)
			if err := a.board.Signup(cmd.Context(), req); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed up as %s\n", a.sess.UserID())
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "email")
	cmd.Flags().StringVar(&req.Password, "password", "", "password")
	cmd.Flags().StringVar(&req.DisplayName, "name", "", "display name")
	cmd.Flags().IntVar(&height, "height", 0, "height, cm")
	cmd.Flags().Float64Var(&weight, "weight", 0, "weight, kg")
	cmd.Flags().StringVar(&activity, "activity", "", "activity level: sedentary|light|moderate|active")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newCmdLogin(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.board.Login(cmd.Context(), email, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", a.sess.UserID())
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email")
	cmd.Flags().StringVar(&password, "password", "", "password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newCmdLogout(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.board.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newCmdWhoami(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			cur := a.sess.Current()
			if cur.Empty() {
				fmt.Fprintln(out, "Not logged in")
				return nil
			}
			fmt.Fprintf(out, "User: %s\n", cur.UserID)
			claims, err := session.ParseClaims(cur.Token)
			if err != nil {
				fmt.Fprintln(out, "Token: opaque")
				return nil
			}
			if claims.ExpiresAt != nil {
				state := "valid"
				if claims.Expired(time.Now()) {
					state = "expired"
				}
				fmt.Fprintf(out, "Token: %s until %s\n", state, claims.ExpiresAt.Local().Format(time.DateTime))
			}
			return nil
		},
	}
}

func newCmdMissions(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "missions",
		Short: "List missions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			if err := a.board.Refresh(cmd.Context()); err != nil {
				return withSessionHint(err)
			}
			return printMissions(cmd.OutOrStdout(), a.board.Snapshot().Missions, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print missions as JSON")
	return cmd
}

func newCmdGenerate(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate today's missions and list them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			if err := a.board.GenerateMissions(cmd.Context()); err != nil {
				return withSessionHint(err)
			}
			return printMissions(cmd.OutOrStdout(), a.board.Snapshot().Missions, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print missions as JSON")
	return cmd
}

func newCmdHealth(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the API answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.client.Health(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "API %s is up\n", a.client.BaseURL())
			return nil
		},
	}
}

func printMissions(w io.Writer, missions []model.Mission, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(missions)
	}
	if len(missions) == 0 {
		fmt.Fprintln(w, "No missions yet")
		return nil
	}
	for i, m := range missions {
		fmt.Fprintf(w, "%d. %s (%d XP) [%s]\n", i+1, m.Title, m.XPReward, m.Status)
		if m.Description != "" {
			fmt.Fprintf(w, "   %s\n", m.Description)
		}
	}
	fmt.Fprintf(w, "Total: %d XP\n", model.TotalXP(missions))
	return nil
}
