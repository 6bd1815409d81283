package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/socialbridge/internal/app"
	"github.com/dropDatabas3/socialbridge/internal/domain/repository"
	"github.com/dropDatabas3/socialbridge/internal/security/password"
)

func newUserCmd(load loadFunc) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Alta y baja de usuarios de la aplicación",
	}

	var (
		email, name, pass, role string
	)
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Crea un usuario con password argon2id",
		RunE: func(cmd *cobra.Command, _ []string) error {
			email = strings.TrimSpace(email)
			if email == "" {
				return errors.New("--email es requerido")
			}
			if pass == "" {
				pass = envOr("SOCIALBRIDGE_USER_PASSWORD", "")
			}
			if err := password.DefaultPolicy.Check(pass); err != nil {
				return err
			}
			r := repository.Role(strings.ToUpper(role))
			if !r.Valid() {
				return fmt.Errorf("rol inválido %q (USER|ADMIN)", role)
			}

			cfg, err := load()
			if err != nil {
				return err
			}
			st, err := app.OpenStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			hash, err := password.Hash(password.Default, pass)
			if err != nil {
				return err
			}
			u, err := st.Users.CreateUser(cmd.Context(), repository.CreateUserInput{
				Email:        email,
				Name:         name,
				PasswordHash: hash,
				Role:         r,
			})
			if err != nil {
				if errors.Is(err, repository.ErrConflict) {
					return fmt.Errorf("ya existe un usuario con email %s", email)
				}
				return err
			}
			fmt.Printf("user created id=%s email=%s role=%s\n", u.ID, u.Email, u.Role)
			return nil
		},
	}
	createCmd.Flags().StringVar(&email, "email", "", "Email del usuario")
	createCmd.Flags().StringVar(&name, "name", "", "Nombre (opcional)")
	createCmd.Flags().StringVar(&pass, "password", "", "Password (env SOCIALBRIDGE_USER_PASSWORD)")
	createCmd.Flags().StringVar(&role, "role", string(repository.RoleUser), "Rol: USER|ADMIN")

	var delEmail string
	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "Elimina un usuario y sus credenciales",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(delEmail) == "" {
				return errors.New("--email es requerido")
			}
			cfg, err := load()
			if err != nil {
				return err
			}
			st, err := app.OpenStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			u, err := st.Users.GetUserByEmail(cmd.Context(), delEmail)
			if err != nil {
				return err
			}
			if err := st.Users.DeleteUser(cmd.Context(), u.ID); err != nil {
				return err
			}
			fmt.Printf("user deleted id=%s\n", u.ID)
			return nil
		},
	}
	deleteCmd.Flags().StringVar(&delEmail, "email", "", "Email del usuario")

	userCmd.AddCommand(createCmd, deleteCmd)
	return userCmd
}
