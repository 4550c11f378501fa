package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/lib/password"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
)

const minPasswordLength = 8

func createSuperuserCmd(connect Connect, readPassword PasswordReader) *cobra.Command {
	var email, firstName, lastName string

	cmd := &cobra.Command{
		Use:   "createsuperuser",
		Short: "Create an active staff superuser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			fmt.Fprint(out, "Password: ")
			pw, err := readPassword()
			fmt.Fprintln(out)
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			fmt.Fprint(out, "Password (again): ")
			again, err := readPassword()
			fmt.Fprintln(out)
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			if string(pw) != string(again) {
				return errors.New("passwords didn't match")
			}
			if len(pw) < minPasswordLength {
				return fmt.Errorf("password must be at least %d characters", minPasswordLength)
			}
			hash, err := password.GetHash(string(pw))
			if err != nil {
				return err
			}

			user := &models.User{
				Email:        models.NormalizeEmail(email),
				PasswordHash: hash,
				FirstName:    firstName,
				LastName:     lastName,
				IsActive:     true,
				IsStaff:      true,
				IsSuperuser:  true,
				Groups:       []string{models.GroupSiteAdmin},
			}
			return withBackend(cmd, connect, func(ctx context.Context, b Backend) error {
				uid, err := b.CreateUser(ctx, user)
				if errors.Is(err, models.ErrEmailTaken) {
					return fmt.Errorf("email %s is already in use", user.Email)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "superuser %s created (%s)\n", user.Email, uid)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&firstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "last name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
