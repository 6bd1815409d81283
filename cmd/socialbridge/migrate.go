package main

import (
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/socialbridge/internal/app"
	"github.com/dropDatabas3/socialbridge/internal/observability/logger"
)

func newMigrateCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones pendientes (postgres|sqlite)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			st, err := app.OpenStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Migrate(cmd.Context()); err != nil {
				return err
			}
			logger.L().Info("migrations applied", logger.String("driver", st.Driver))
			return nil
		},
	}
}
