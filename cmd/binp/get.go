package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pscheid92/binp/internal/client"
	"github.com/pscheid92/binp/internal/domain"
)

// batCommand is replaced in tests.
var batCommand = "bat"

func newGetCmd(root *rootOptions) *cobra.Command {
	var asJSON, pretty bool

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Print a snippet",
		Long:  "Print a snippet. Burn-after-read snippets are deleted by this read.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if pretty {
				if _, err := exec.LookPath(batCommand); err != nil {
					return errors.New("--pretty requires bat, please install it")
				}
			}

			snippet, err := root.client().Get(cmd.Context(), snippetID(args[0]))
			if errors.Is(err, client.ErrNotFound) {
				return fmt.Errorf("snippet %s not found", args[0])
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case asJSON:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(snippet)
			case pretty:
				return runBat(cmd, snippet)
			default:
				_, err := fmt.Fprintln(out, strings.TrimSuffix(snippet.Text, "\n"))
				return err
			}
		},
	}

	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Print the snippet as JSON")
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "Pretty print the snippet with bat")
	cmd.MarkFlagsMutuallyExclusive("json", "pretty")
	return cmd
}

// snippetID accepts a bare ID or a full snippet URL.
func snippetID(arg string) string {
	arg = strings.TrimSuffix(arg, "/")
	if i := strings.LastIndex(arg, "/"); i >= 0 {
		return arg[i+1:]
	}
	return arg
}

func runBat(cmd *cobra.Command, snippet *domain.Snippet) error {
	bat := exec.CommandContext(cmd.Context(), batCommand, "--language", batLanguage(snippet.Language), "--file-name", snippet.ID)
	bat.Stdin = strings.NewReader(snippet.Text)
	bat.Stdout = cmd.OutOrStdout()
	bat.Stderr = cmd.ErrOrStderr()
	if err := bat.Run(); err != nil {
		return fmt.Errorf("bat failed: %w", err)
	}
	return nil
}

// batLanguage maps binp languages to bat syntax names where they differ.
func batLanguage(l domain.Language) string {
	switch l {
	case "dockerfile":
		return "Dockerfile"
	default:
		return string(l)
	}
}
