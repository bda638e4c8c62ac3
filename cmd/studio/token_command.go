package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/suPer8Hu/ai-studio/internal/auth"
	"github.com/suPer8Hu/ai-studio/internal/config"
	"github.com/suPer8Hu/ai-studio/internal/creation"
)

// newTokenCommand mints a development token signed with the server's JWT_SECRET.
func newTokenCommand() *cobra.Command {
	var userID string
	var plan string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := creation.Plan(plan)
			if p != creation.PlanFree && p != creation.PlanPremium {
				return fmt.Errorf("unknown plan %q", plan)
			}
			if userID == "" {
				return errors.New("--user is required")
			}
			cfg := config.Load()
			tok, err := auth.SignJWT(userID, plan, cfg.JWTSecret, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User id (token subject)")
	cmd.Flags().StringVar(&plan, "plan", string(creation.PlanFree), "Plan: free or premium")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}
