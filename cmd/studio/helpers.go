package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/suPer8Hu/ai-studio/internal/client"
)

const (
	ansiGreen = "\x1b[32m"
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// streamNotifier prints form notifications to stderr, colored on a terminal.
type streamNotifier struct {
	out      io.Writer
	colorize bool
}

func newNotifier(cmd *cobra.Command) *streamNotifier {
	w := cmd.ErrOrStderr()
	return &streamNotifier{out: w, colorize: shouldColorize(w)}
}

func (n *streamNotifier) Success(msg string) { n.print(ansiGreen, "✓ ", msg) }
func (n *streamNotifier) Error(msg string)   { n.print(ansiRed, "✗ ", msg) }

func (n *streamNotifier) print(color, mark, msg string) {
	if n.colorize {
		fmt.Fprintln(n.out, color+mark+msg+ansiReset)
		return
	}
	fmt.Fprintln(n.out, mark+msg)
}

// submit drives one form submission and prints the result on stdout.
func submit(cmd *cobra.Command, successText string, call func(ctx context.Context) (string, error)) error {
	form := client.NewForm(newNotifier(cmd), successText)
	out, err := form.Submit(cmd.Context(), call)
	if err != nil {
		// already reported through the notifier
		return silentError{err}
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

type silentError struct{ err error }

func (e silentError) Error() string { return "" }
func (e silentError) Unwrap() error { return e.err }

func runTokenCommand(ctx context.Context, command string) (string, error) {
	out, err := exec.CommandContext(ctx, "sh", "-c", command).Output()
	if err != nil {
		return "", fmt.Errorf("token command: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}
