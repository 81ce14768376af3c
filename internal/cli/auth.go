package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/existflow/taskdeck/internal/api"
	"github.com/existflow/taskdeck/internal/kv"
	"github.com/existflow/taskdeck/internal/session"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
	Long:  `Log in, register, log out, and inspect the current session.`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the server",
	RunE:  runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and clear the stored session",
	RunE:  runLogout,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session status",
	RunE:  runStatus,
}

var (
	loginRemember  bool
	loginBiometric bool
)

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(statusCmd)

	loginCmd.Flags().BoolVar(&loginRemember, "remember", false, "Remember the email for next time")
	loginCmd.Flags().BoolVar(&loginBiometric, "biometric", false, "Skip the password prompt on future logins while the session is still valid")
}

// biometricUnlock reports whether login can be skipped: the user opted
// in and the stored session still yields a usable token. The desktop
// stand-in for a biometric prompt.
func biometricUnlock(ctx context.Context, sess *session.Manager, state *kv.Store) bool {
	if enabled, _ := state.Get(kv.KeyBiometryEnabled); enabled != "true" {
		return false
	}
	_, err := sess.ValidToken(ctx)
	return err == nil
}

func promptLine(reader *bufio.Reader, label, preset string) string {
	if preset != "" {
		fmt.Printf("%s [%s]: ", label, preset)
	} else {
		fmt.Printf("%s: ", label)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return preset
	}
	return input
}

func promptPassword(label string) string {
	fmt.Printf("%s: ", label)
	passwordBytes, _ := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	return string(passwordBytes)
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	ctx := context.Background()
	if biometricUnlock(ctx, a.session, a.state) {
		fmt.Println("✅ Session still valid, signed in without password.")
		return nil
	}

	reader := bufio.NewReader(os.Stdin)
	remembered, _ := a.state.Get(kv.KeyRememberedEmail)

	email := promptLine(reader, "E-mail", remembered)
	password := promptPassword("Password")

	fmt.Println("🔄 Logging in...")
	pair, err := a.api.Login(ctx, email, password)
	if err != nil {
		return err
	}

	if err := a.session.StoreSession(pair.IDToken, pair.RefreshToken); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	if loginRemember {
		_ = a.state.Set(kv.KeyRememberedEmail, email)
	} else {
		_ = a.state.Remove(kv.KeyRememberedEmail)
	}

	if cmd.Flags().Changed("biometric") {
		if loginBiometric {
			_ = a.state.Set(kv.KeyBiometryEnabled, "true")
		} else {
			_ = a.state.Remove(kv.KeyBiometryEnabled)
		}
	}

	// A profile update staged while logged out is applied now
	if _, ok := a.profile.Pending(); ok {
		fmt.Println("🔄 Applying staged profile update...")
		if err := a.profile.FlushPending(ctx); err != nil {
			fmt.Println("⚠️  Staged profile update failed; it has been discarded.")
		}
	}

	fmt.Println("✅ Logged in successfully!")
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)
	email := promptLine(reader, "E-mail", "")
	name := promptLine(reader, "Name", "")
	phone := promptLine(reader, "Phone number", "")
	password := promptPassword("Password")

	fmt.Println("🔄 Creating account...")
	pair, err := a.api.Register(context.Background(), api.RegisterRequest{
		Email:       email,
		Password:    password,
		Name:        name,
		PhoneNumber: phone,
	})
	if err != nil {
		return err
	}

	if err := a.session.StoreSession(pair.IDToken, pair.RefreshToken); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	fmt.Println("✅ Account created and logged in!")
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	if err := a.session.ClearSession(); err != nil {
		return err
	}
	fmt.Println("👋 Logged out.")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	fmt.Printf("Server: %s\n", a.cfg.ServerURL)
	if !a.session.LoggedIn() {
		fmt.Println("Session: not logged in")
		return nil
	}

	// ValidToken refreshes a stale token as a side effect, so this also
	// tells us whether the session is actually usable
	if _, err := a.session.ValidToken(context.Background()); err != nil {
		fmt.Printf("Session: unusable (%v)\n", err)
		return nil
	}

	fmt.Println("Session: active")
	if avatar := a.session.Avatar(); avatar != "" {
		fmt.Printf("Avatar: %s\n", avatar)
	}
	return nil
}
