// Package users provides CLI commands for managing accounts directly against
// the database, mainly to bootstrap the first admin.
package users

import "github.com/spf13/cobra"

var (
	createName     string
	createEmail    string
	createPassword string
	passwordStdin  bool
	createRole     string
)

// UsersCmd is the parent command for user account operations
var UsersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user accounts",
	Long:  `Commands for managing user accounts directly from the server.`,
}

func init() {
	UsersCmd.AddCommand(createCmd)
	createCmd.Flags().StringVar(&createName, "name", "", "Display name for the account")
	createCmd.Flags().StringVar(&createEmail, "email", "", "Email address (login identifier)")
	createCmd.Flags().StringVar(&createPassword, "password", "", "Password (prefer --password-stdin)")
	createCmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	createCmd.Flags().StringVar(&createRole, "role", "user", "Role: user, manager, or admin")
	_ = createCmd.MarkFlagRequired("name")
	_ = createCmd.MarkFlagRequired("email")
}
