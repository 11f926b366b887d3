package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trezcool/maktaba/core/catalog"
)

func (cli *commandLine) addOwnerCmd() *cobra.Command {
	var email, name string
	cmd := &cobra.Command{
		Use:   "addowner --email EMAIL --name NAME",
		Short: "Register a resource owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || name == "" {
				return cli.help(cmd, args)
			}
			return cli.addOwner(email, name)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "The owner's email, used as their ID.")
	cmd.Flags().StringVar(&name, "name", "", "The owner's display name.")
	return cmd
}

func (cli *commandLine) addOwner(email, name string) error {
	owner, err := cli.catalogSvc.RegisterOwner(context.Background(), catalog.NewOwner{Email: email, Name: name})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "owner %s registered\n", owner.ID)
	return nil
}
