package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"rolescout/internal/secrets"
)

// secretAccount maps the CLI name to the keychain account. "imap" depends
// on the configured inbox, so the config must load first.
func (c *commandContext) secretAccount(name string) (string, error) {
	switch name {
	case "search":
		return secrets.AccountSearchToken, nil
	case "aggregator":
		return secrets.AccountAggregatorKey, nil
	case "imap":
		cfg, _, err := c.loadConfig()
		if err != nil {
			return "", err
		}
		return secrets.IMAPAccount(cfg), nil
	default:
		return "", fmt.Errorf("unknown secret %q (want search, aggregator or imap)", name)
	}
}

func newSecretCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage API credentials in the OS keychain",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <search|aggregator|imap> [value]",
		Short: "Store a credential (reads from stdin when value is omitted)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := ctx.secretAccount(args[0])
			if err != nil {
				return err
			}

			var value string
			if len(args) == 2 {
				value = args[1]
			} else {
				fmt.Fprintf(os.Stderr, "value for %s: ", account)
				line, err := bufio.NewReader(os.Stdin).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read secret: %w", err)
				}
				value = strings.TrimSpace(line)
			}

			if err := secrets.Set(account, value); err != nil {
				return err
			}
			fmt.Printf("stored %s\n", account)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "del <search|aggregator|imap>",
		Short: "Remove a credential from the keychain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := ctx.secretAccount(args[0])
			if err != nil {
				return err
			}
			if err := secrets.Delete(account); err != nil {
				return err
			}
			fmt.Printf("deleted %s\n", account)
			return nil
		},
	})

	return cmd
}
