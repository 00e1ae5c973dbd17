package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/sports-meet/utils"
	"github.com/spf13/cobra"
)

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Args:  cobra.MaximumNArgs(1),
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Long:  "hash-password hashes its argument, or the first line of stdin when no argument is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				return errors.New("password must not be empty")
			}

			hash, err := utils.HashPassword(password)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
}
