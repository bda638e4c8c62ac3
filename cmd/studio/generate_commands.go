package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/suPer8Hu/ai-studio/internal/client"
)

func newGenerateCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newArticleCommand(ctx),
		newBlogTitleCommand(ctx),
		newImageCommand(ctx),
	}
}

func newArticleCommand(ctx *commandContext) *cobra.Command {
	var length string

	cmd := &cobra.Command{
		Use:   "article <topic>",
		Short: "Write an article about a topic",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l := client.LookupArticleLength(length)
			prompt := client.ArticlePrompt(strings.Join(args, " "), l)
			c := ctx.client()
			return submit(cmd, "Article generated successfully!", func(rctx context.Context) (string, error) {
				return c.GenerateArticle(rctx, prompt, l.Tokens)
			})
		},
	}
	cmd.Flags().StringVar(&length, "length", "800", fmt.Sprintf("Article length: %s", lengthChoices()))
	return cmd
}

func newBlogTitleCommand(ctx *commandContext) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "blog-title <keyword>",
		Short: "Suggest blog titles for a keyword",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := client.BlogTitlePrompt(strings.Join(args, " "), category)
			c := ctx.client()
			return submit(cmd, "Titles generated successfully!", func(rctx context.Context) (string, error) {
				return c.GenerateBlogTitle(rctx, prompt)
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", client.BlogCategories[0], "One of: "+strings.Join(client.BlogCategories, ", "))
	return cmd
}

func newImageCommand(ctx *commandContext) *cobra.Command {
	var style string
	var publish bool

	cmd := &cobra.Command{
		Use:   "image <description>",
		Short: "Generate an image (premium)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := client.ImagePrompt(strings.Join(args, " "), style)
			c := ctx.client()
			return submit(cmd, "Image generated successfully!", func(rctx context.Context) (string, error) {
				return c.GenerateImage(rctx, prompt, publish)
			})
		},
	}
	cmd.Flags().StringVar(&style, "style", client.ImageStyles[0], "One of: "+strings.Join(client.ImageStyles, ", "))
	cmd.Flags().BoolVar(&publish, "publish", false, "Share the image in the community feed")
	return cmd
}

func lengthChoices() string {
	parts := make([]string, 0, len(client.ArticleLengths))
	for _, l := range client.ArticleLengths {
		parts = append(parts, fmt.Sprintf("%d=%s", l.Tokens, l.Label))
	}
	return strings.Join(parts, ", ")
}
