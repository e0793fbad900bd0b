package cmd

import (
	"context"
	"fmt"

	"github.com/algolovers/newsletter-console-services/api/services"
	"github.com/algolovers/newsletter-console-services/internal/authn"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var emailAddress string

var invalidateTokensCmd = &cobra.Command{
	Use:   "invalidate-tokens",
	Short: "Invalidate every token issued to a user",
	Long:  `Rotates the validity code of the user so that all outstanding tokens are rejected.`,
	Run: func(cmd *cobra.Command, args []string) {
		commonSetUp()
		defer newsletterDB.Close()

		svc := &services.Service{Config: appCfg, DB: newsletterDB}
		ctx := log.Logger.WithContext(context.Background())

		if err := svc.InvalidateTokensByEmail(ctx, emailAddress); err != nil {
			log.Fatal().Err(err).Str("email", emailAddress).Msg("Failed to invalidate tokens")
		}

		fmt.Printf("Tokens invalidated for %s\n", emailAddress)
	},
}

var issueTokenCmd = &cobra.Command{
	Use:   "issue-token",
	Short: "Print a token for an existing user",
	Run: func(cmd *cobra.Command, args []string) {
		commonSetUp()
		defer newsletterDB.Close()

		jwtSvc, err := authn.NewJwtService(appCfg.JWT.Secret, appCfg.JWT.TokenTTL())
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize JWT service")
		}

		svc := &services.Service{Config: appCfg, DB: newsletterDB, Jwt: jwtSvc}
		ctx := log.Logger.WithContext(context.Background())

		token, err := svc.IssueToken(ctx, emailAddress)
		if err != nil {
			log.Fatal().Err(err).Str("email", emailAddress).Msg("Failed to issue token")
		}

		fmt.Println(token)
	},
}

func init() {
	for _, c := range []*cobra.Command{invalidateTokensCmd, issueTokenCmd} {
		c.Flags().StringVar(&emailAddress, "email", "", "email address of the user")
		c.MarkFlagRequired("email")
		rootCmd.AddCommand(c)
	}
}
