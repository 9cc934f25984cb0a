package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/frahmantamala/bodega-inventory/internal"
	"github.com/frahmantamala/bodega-inventory/internal/auth"
	"github.com/frahmantamala/bodega-inventory/internal/category"
	categoryPostgres "github.com/frahmantamala/bodega-inventory/internal/category/postgres"
	"github.com/frahmantamala/bodega-inventory/internal/core/events"
	"github.com/frahmantamala/bodega-inventory/internal/user"
	userPostgres "github.com/frahmantamala/bodega-inventory/internal/user/postgres"
	"github.com/frahmantamala/bodega-inventory/pkg/permission"
	"github.com/spf13/cobra"
)

var seedPassword string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with default accounts and categories",
	Long:  `Create one account per role and the default product categories. Existing rows are left untouched.`,
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

		ctx := context.Background()
		hasher := auth.NewPasswordHasher(cfg.Security.BCryptCost)
		users := user.NewService(userPostgres.NewUserRepository(gdb), hasher, events.NewEventBus(lg), lg)
		seeder := &internal.Principal{Username: "seed", Role: permission.RoleSuperAdmin}

		accounts := []user.CreateUserDTO{
			{Username: "superadmin", Name: "Super Administrador", Role: permission.RoleSuperAdmin},
			{Username: "admin", Name: "Administrador", Role: permission.RoleAdmin},
			{Username: "bodeguero", Name: "Bodeguero", Role: permission.RoleUser},
		}
		for _, dto := range accounts {
			dto.Password = seedPassword
			if _, err := users.Create(ctx, seeder, dto); err != nil {
				if errors.Is(err, user.ErrUsernameTaken) {
					fmt.Printf("user %s already exists; skipping\n", dto.Username)
					continue
				}
				return fmt.Errorf("seed user %s: %w", dto.Username, err)
			}
			fmt.Printf("Seeded %s user: %s\n", dto.Role, dto.Username)
		}

		categories := category.NewService(categoryPostgres.NewCategoryRepository(gdb), lg)
		for _, c := range []struct{ Name, Desc string }{
			{"Herramientas", "herramientas manuales y eléctricas"},
			{"Pinturas", "pinturas, barnices y solventes"},
			{"Electricidad", "cables, interruptores y accesorios eléctricos"},
			{"Plomería", "tuberías, llaves y conexiones"},
			{"Ferretería", "tornillos, clavos y fijaciones"},
		} {
			if _, err := categories.EnsureExists(ctx, c.Name, c.Desc); err != nil {
				return fmt.Errorf("seed category %s: %w", c.Name, err)
			}
		}

		fmt.Println("Categories seeded successfully")
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedPassword, "password", "cambiar123", "password given to every seeded account")
}
