package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/socialbridge/internal/app"
	jwtx "github.com/dropDatabas3/socialbridge/internal/jwt"
)

func newTokenCmd(load loadFunc) *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Utilidades de access tokens de la aplicación",
	}

	var email string
	issueCmd := &cobra.Command{
		Use:   "issue",
		Short: "Emite un access token para un usuario existente (dev/ops)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(email) == "" {
				return errors.New("--email es requerido")
			}
			cfg, err := load()
			if err != nil {
				return err
			}
			iss, err := jwtx.NewIssuer(cfg.JWT.Issuer, cfg.JWT.Secret, cfg.JWT.AccessTTL)
			if err != nil {
				return err
			}
			st, err := app.OpenStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			u, err := st.Users.GetUserByEmail(cmd.Context(), email)
			if err != nil {
				return err
			}
			tok, exp, err := iss.IssueAccess(u)
			if err != nil {
				return err
			}
			fmt.Println(tok)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires_at=%s\n", exp.UTC().Format("2006-01-02T15:04:05Z"))
			return nil
		},
	}
	issueCmd.Flags().StringVar(&email, "email", "", "Email del usuario")

	tokenCmd.AddCommand(issueCmd)
	return tokenCmd
}
