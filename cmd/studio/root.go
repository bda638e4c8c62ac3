package main

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/suPer8Hu/ai-studio/internal/client"
)

type commandContext struct {
	server   string
	token    string
	tokenCmd string
}

// tokens returns a source that re-reads the credential on every submission.
func (c *commandContext) tokens() client.TokenSource {
	return client.TokenFunc(func(ctx context.Context) (string, error) {
		if c.token != "" {
			return c.token, nil
		}
		if tok := strings.TrimSpace(os.Getenv("STUDIO_TOKEN")); tok != "" {
			return tok, nil
		}
		if c.tokenCmd != "" {
			return runTokenCommand(ctx, c.tokenCmd)
		}
		return "", errors.New("no token: pass --token, set STUDIO_TOKEN or --token-cmd")
	})
}

func (c *commandContext) client() *client.Client {
	return client.New(c.server, c.tokens())
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "studio",
		Short:         "AI content studio CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	defaultServer := os.Getenv("STUDIO_SERVER")
	if defaultServer == "" {
		defaultServer = "http://localhost:3000"
	}
	rootCmd.PersistentFlags().StringVar(&ctx.server, "server", defaultServer, "Backend base URL")
	rootCmd.PersistentFlags().StringVar(&ctx.token, "token", "", "Bearer token (defaults to $STUDIO_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&ctx.tokenCmd, "token-cmd", "", "Shell command printing a fresh token")

	for _, cmd := range newGenerateCommands(ctx) {
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range newImageEditCommands(ctx) {
		rootCmd.AddCommand(cmd)
	}
	rootCmd.AddCommand(newResumeCommand(ctx))
	rootCmd.AddCommand(newCreationsCommand(ctx))
	rootCmd.AddCommand(newCommunityCommand(ctx))
	rootCmd.AddCommand(newTokenCommand())

	return rootCmd
}
