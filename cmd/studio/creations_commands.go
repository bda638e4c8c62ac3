package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/suPer8Hu/ai-studio/internal/creation"
)

func newCreationsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "creations",
		Short: "List your creations",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := ctx.client().UserCreations(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderCreations(items))
			return nil
		},
	}
}

func newCommunityCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "community",
		Short: "List published community images",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := ctx.client().PublishedCreations(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderCreations(items))
			return nil
		},
	}
}

func renderCreations(items []creation.Creation) string {
	if len(items) == 0 {
		return "No creations yet."
	}
	rows := make([][]string, 0, len(items))
	for _, c := range items {
		rows = append(rows, []string{
			c.CreatedAt.Local().Format(time.DateTime),
			string(c.Type),
			truncate(c.Prompt, 40),
			truncate(c.Content, 60),
		})
	}
	return renderTable([]column{
		{title: "Created"},
		{title: "Type"},
		{title: "Prompt", maxWidth: 40},
		{title: "Content", maxWidth: 60},
	}, rows)
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
