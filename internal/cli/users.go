package cli

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"text/tabwriter"

	"github.com/martijn/jobboard/internal/core/service"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	addEmployer bool
	addEmail    string
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage users",
	Long:  "Manage job board accounts from the command line",
}

var usersAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Add a new user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := args[0]

		services, err := initServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		password, confirmation, err := promptPassword("Enter password: ", "Confirm password: ")
		if err != nil {
			return err
		}

		_, err = services.AuthService.Register(cmd.Context(), service.RegisterInput{
			Username:             username,
			Password:             password,
			PasswordConfirmation: confirmation,
			Employer:             addEmployer,
			Email:                addEmail,
		})
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		fmt.Printf("User '%s' created successfully\n", username)
		return nil
	},
}

var usersSetPasswordCmd = &cobra.Command{
	Use:   "set-password <username>",
	Short: "Set a user's password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := args[0]

		services, err := initServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		password, confirmation, err := promptPassword("Enter new password: ", "Confirm new password: ")
		if err != nil {
			return err
		}

		if err := services.AuthService.SetPassword(cmd.Context(), username, password, confirmation); err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return fmt.Errorf("user not found: %s", username)
			}
			return fmt.Errorf("failed to update password: %w", err)
		}

		fmt.Printf("Password updated for user '%s'\n", username)
		return nil
	},
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := initServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		users, err := services.UserRepo.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}

		if len(users) == 0 {
			fmt.Println("No users found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "USERNAME\tEMPLOYER\tEMAIL")
		for _, user := range users {
			email := "-"
			if user.Email != nil {
				email = *user.Email
			}
			fmt.Fprintf(w, "%s\t%t\t%s\n", user.Username, user.IsEmployer, email)
		}
		w.Flush()

		return nil
	},
}

func promptPassword(prompt, confirmPrompt string) (string, string, error) {
	fmt.Print(prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", "", fmt.Errorf("failed to read password: %w", err)
	}

	fmt.Print(confirmPrompt)
	confirmation, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", "", fmt.Errorf("failed to read password: %w", err)
	}

	return string(password), string(confirmation), nil
}

func init() {
	usersAddCmd.Flags().BoolVar(&addEmployer, "employer", false, "create an employer account")
	usersAddCmd.Flags().StringVar(&addEmail, "email", "", "email address used for password resets")

	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersAddCmd)
	usersCmd.AddCommand(usersSetPasswordCmd)
	usersCmd.AddCommand(usersListCmd)
}
