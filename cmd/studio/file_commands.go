package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newImageEditCommands(ctx *commandContext) []*cobra.Command {
	removeBg := &cobra.Command{
		Use:   "remove-background <image>",
		Short: "Remove the background from an image (premium)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := ctx.client()
			return withFile(cmd, args[0], "Background removed successfully!", func(rctx context.Context, name string, f *os.File) (string, error) {
				return c.RemoveBackground(rctx, name, f)
			})
		},
	}

	var object string
	removeObj := &cobra.Command{
		Use:   "remove-object <image>",
		Short: "Remove a single named object from an image (premium)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := ctx.client()
			return withFile(cmd, args[0], "Object removed successfully!", func(rctx context.Context, name string, f *os.File) (string, error) {
				return c.RemoveObject(rctx, name, f, object)
			})
		},
	}
	removeObj.Flags().StringVar(&object, "object", "", "Object to remove (one word)")

	return []*cobra.Command{removeBg, removeObj}
}

func newResumeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "resume-review <resume.pdf>",
		Short: "Review a PDF resume (premium)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := ctx.client()
			return withFile(cmd, args[0], "Resume reviewed successfully!", func(rctx context.Context, name string, f *os.File) (string, error) {
				return c.ReviewResume(rctx, name, f)
			})
		},
	}
}

func withFile(cmd *cobra.Command, path, successText string, call func(ctx context.Context, name string, f *os.File) (string, error)) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	name := filepath.Base(path)
	return submit(cmd, successText, func(rctx context.Context) (string, error) {
		return call(rctx, name, f)
	})
}
