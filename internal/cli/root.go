// Package cli реализует команды администратора shopctl: миграции,
// создание суперпользователя и наполнение каталога.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
)

// Backend хранилище и сервисы, с которыми работают команды.
type Backend interface {
	Migrate() (version uint, err error)
	CreateUser(ctx context.Context, user *models.User) (string, error)
	AddPlan(ctx context.Context, plan *models.Plan) error
	AddProduct(ctx context.Context, p *models.Product) error
	Close() error
}

// Connect открывает Backend. Вызывается только командами, которым он нужен.
type Connect func(ctx context.Context) (Backend, error)

// PasswordReader читает пароль без эха.
type PasswordReader func() ([]byte, error)

// TerminalPassword читает пароль из терминала stdin.
func TerminalPassword() ([]byte, error) {
	return term.ReadPassword(int(os.Stdin.Fd()))
}

// NewRootCmd собирает дерево команд shopctl.
func NewRootCmd(connect Connect, readPassword PasswordReader) *cobra.Command {
	root := &cobra.Command{
		Use:           "shopctl",
		Short:         "CleanSMRs shop administration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		migrateCmd(connect),
		createSuperuserCmd(connect, readPassword),
		addPlanCmd(connect),
		addProductCmd(connect),
	)
	return root
}

// withBackend открывает Backend на время выполнения команды.
func withBackend(cmd *cobra.Command, connect Connect, fn func(ctx context.Context, b Backend) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	b, err := connect(ctx)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer b.Close()
	return fn(ctx, b)
}

func migrateCmd(connect Connect) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withBackend(cmd, connect, func(_ context.Context, b Backend) error {
				version, err := b.Migrate()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "schema is at version %d\n", version)
				return nil
			})
		},
	}
}
