package cmd

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/frahmantamala/bodega-inventory/internal/auth"
	authPostgres "github.com/frahmantamala/bodega-inventory/internal/auth/postgres"
	"github.com/spf13/cobra"
)

var migratePasswordsCmd = &cobra.Command{
	Use:   "migrate-passwords",
	Short: "Hash every legacy plaintext password in the users table",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		lg := setupLogger(cfg)

		conn, err := initDB(cfg.Database)
		if err != nil {
			return err
		}
		defer conn.Close()

		gdb, err := initGorm(conn.DB)
		if err != nil {
			return err
		}

		repo := authPostgres.NewRepository(gdb)
		n, err := repo.RehashLegacyPasswords(context.Background(), auth.NewPasswordHasher(cfg.Security.BCryptCost))
		if err != nil {
			return fmt.Errorf("password migration rolled back: %w", err)
		}
		lg.Info("password migration finished", "migrated", n)
		return nil
	},
}

var hashCost int

// hash-password reads the plaintext from stdin so it stays out of shell history.
var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Print the bcrypt hash of a password read from stdin",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read password: %w", err)
		}
		password := strings.TrimRight(line, "\r\n")
		if password == "" {
			return fmt.Errorf("empty password")
		}

		hash, err := auth.NewPasswordHasher(hashCost).Hash(password)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func init() {
	hashPasswordCmd.Flags().IntVar(&hashCost, "cost", 12, "bcrypt cost")

	rootCmd.AddCommand(migratePasswordsCmd)
	rootCmd.AddCommand(hashPasswordCmd)
}
