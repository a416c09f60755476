package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pscheid92/binp/internal/app"
	"github.com/pscheid92/binp/internal/domain"
)

func newCreateCmd(root *rootOptions) *cobra.Command {
	var req app.CreateSnippetRequest
	var language, expiry string

	cmd := &cobra.Command{
		Use:   "create [text]",
		Short: "Create a new snippet from an argument or stdin",
		Example: `  binp create 'hello world'
  git diff | binp create -l bash -e 1h
  binp create --burn < secret.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := snippetText(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			req.Text = text
			req.Language = domain.Language(language)
			req.Expiry = domain.Expiry(expiry)

			snippet, err := root.client().Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSuffix(root.server, "/")+"/"+snippet.ID)
			return err
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", string(domain.DefaultLanguage),
		"Language of the snippet ("+strings.Join(domain.Values(domain.Languages()), ", ")+")")
	cmd.Flags().StringVarP(&expiry, "expiry", "e", string(domain.DefaultExpiry),
		"Lifetime of the snippet ("+strings.Join(domain.Values(domain.Expiries()), ", ")+")")
	cmd.Flags().BoolVarP(&req.BurnAfterRead, "burn", "b", false, "Delete the snippet after it is read once")
	return cmd
}

func snippetText(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(io.LimitReader(stdin, 4*domain.MaxTextLength+1))
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", errors.New("no text given: pass it as an argument or pipe it to stdin")
	}
	return string(data), nil
}
