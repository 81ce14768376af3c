package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/existflow/taskdeck/internal/model"
	"github.com/existflow/taskdeck/internal/profile"
	"github.com/existflow/taskdeck/internal/session"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage your profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your profile",
	RunE:  runProfileShow,
}

var profileEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Update name or phone number",
	Long: `Update profile fields. Without an active session the change is
staged locally and applied automatically on the next login.`,
	RunE: runProfileEdit,
}

var profileAvatarCmd = &cobra.Command{
	Use:   "avatar [name]",
	Short: "Pick an avatar",
	Long:  "Pick an avatar from the catalog. Run without arguments to list them.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProfileAvatar,
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete-account",
	Short: "Permanently delete your account",
	RunE:  runProfileDelete,
}

var (
	profileEditName  string
	profileEditPhone string
)

func init() {
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileEditCmd)
	profileCmd.AddCommand(profileAvatarCmd)
	profileCmd.AddCommand(profileDeleteCmd)

	profileEditCmd.Flags().StringVar(&profileEditName, "name", "", "New display name")
	profileEditCmd.Flags().StringVar(&profileEditPhone, "phone", "", "New phone number")
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireLogin(); err != nil {
		return err
	}

	p, err := a.profile.Get(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Name:   %s\n", p.Name)
	fmt.Printf("E-mail: %s\n", p.Email)
	fmt.Printf("Phone:  %s\n", p.PhoneNumber)
	fmt.Printf("Avatar: %s\n", p.Picture)
	return nil
}

func runProfileEdit(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	update := model.ProfileUpdate{Name: profileEditName, PhoneNumber: profileEditPhone}
	if update.IsZero() {
		return fmt.Errorf("nothing to update, pass --name or --phone")
	}

	err = a.profile.Update(context.Background(), update)
	if err == nil {
		fmt.Println("✓ Profile updated.")
		return nil
	}

	// Session-fatal failures stage the update for the next login instead
	// of losing it
	if errors.Is(err, session.ErrNoSession) || errors.Is(err, session.ErrRefreshFailed) {
		if stageErr := a.profile.Stage(update); stageErr != nil {
			return stageErr
		}
		fmt.Println("📦 Not logged in; update staged and will be applied on next login.")
		return nil
	}
	return err
}

func runProfileAvatar(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		current := a.session.Avatar()
		for _, name := range profile.Avatars {
			marker := "  "
			if name == current {
				marker = "❯ "
			}
			fmt.Printf("%s%s\n", marker, name)
		}
		return nil
	}

	if err := a.requireLogin(); err != nil {
		return err
	}
	if err := a.profile.SetAvatar(context.Background(), args[0]); err != nil {
		return err
	}
	fmt.Printf("✓ Avatar set to %s\n", args[0])
	return nil
}

func runProfileDelete(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireLogin(); err != nil {
		return err
	}

	fmt.Println("⚠️  This permanently deletes your account and every task in it.")
	fmt.Print("Type DELETE to confirm: ")
	var confirm string
	fmt.Scanln(&confirm)
	if strings.TrimSpace(confirm) != "DELETE" {
		fmt.Println("Cancelled.")
		return nil
	}

	if err := a.profile.DeleteAccount(context.Background()); err != nil {
		return err
	}
	fmt.Println("Account deleted.")
	return nil
}
