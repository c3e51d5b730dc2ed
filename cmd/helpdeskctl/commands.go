package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-triage/internal/auth"
	"github.com/spec-kit/helpdesk-triage/internal/classifier"
	"github.com/spec-kit/helpdesk-triage/internal/config"
	"github.com/spec-kit/helpdesk-triage/internal/domain"
	"github.com/spec-kit/helpdesk-triage/internal/observability"
)

const defaultHashCost = 12

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "helpdeskctl",
		Short:         "Operator tools for the help-desk triage service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newHashPasswordCmd(), newClassifyCmd())
	return root
}

func newHashPasswordCmd() *cobra.Command {
	var (
		password string
		cost     int
	)
	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Generate a bcrypt hash for ADMIN_PASSWORD_HASH",
		Long: `Prints a bcrypt hash to copy into .env as ADMIN_PASSWORD_HASH.
Without --password the password is read twice from stdin and must match.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				read, err := promptPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				password = read
			}
			hash, err := auth.HashPassword(password, cost)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Copy this value into your .env as:")
			fmt.Fprintln(out)
			fmt.Fprintf(out, "ADMIN_PASSWORD_HASH=%s\n", hash)
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "plain-text password (prompted when omitted)")
	cmd.Flags().IntVar(&cost, "cost", defaultHashCost, "bcrypt cost")
	return cmd
}

func promptPassword(in io.Reader, prompt io.Writer) (string, error) {
	reader := bufio.NewReader(in)
	fmt.Fprint(prompt, "Enter admin password: ")
	first, err := readLine(reader)
	if err != nil {
		return "", err
	}
	fmt.Fprint(prompt, "Confirm password: ")
	second, err := readLine(reader)
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errors.New("passwords do not match")
	}
	if first == "" {
		return "", errors.New("password must not be empty")
	}
	return first, nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newClassifyCmd() *cobra.Command {
	var localOnly bool
	cmd := &cobra.Command{
		Use:   "classify <text...>",
		Short: "Classify a ticket description with the configured classifier",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if localOnly {
				cfg.Classifier.LocalOnly = true
			}

			logger, err := observability.NewLogger(config.LoggerConfig{Level: cfg.Logger.Level, Encoding: "console"})
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			c, err := classifier.FromConfig(cfg.Classifier, domain.DefaultTaxonomy(), classifier.WithLogger(logger))
			if err != nil {
				return err
			}

			result := c.Classify(context.Background(), strings.Join(args, " "))
			logger.Debug("classified", zap.String("source", string(result.Source)), zap.String("reason", string(result.Reason)))
			return writeResult(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().BoolVar(&localOnly, "local", false, "use only the keyword rules")
	return cmd
}

func writeResult(w io.Writer, result classifier.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		domain.Classification
		Source string `json:"source"`
		Reason string `json:"reason,omitempty"`
	}{
		Classification: result.Classification,
		Source:         string(result.Source),
		Reason:         string(result.Reason),
	})
}
