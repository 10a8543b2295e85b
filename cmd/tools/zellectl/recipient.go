package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/zelle-bridge/internal/recipient"
)

func recipientCmd(open storeOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipient",
		Short: "Read or replace a merchant's Zelle recipient",
	}
	cmd.AddCommand(recipientGetCmd(open), recipientSetCmd(open))
	return cmd
}

func recipientGetCmd(open storeOpener) *cobra.Command {
	var shop string
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Print the configured recipient for a shop",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, closeFn, err := open.Open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			rec, err := store.Get(cmd.Context(), shop)
			if errors.Is(err, recipient.ErrNotFound) {
				return fmt.Errorf("no Zelle recipient configured for shop %q", shop)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd, rec)
		},
	}
	cmd.Flags().StringVar(&shop, "shop", "", "shop identifier")
	_ = cmd.MarkFlagRequired("shop")
	return cmd
}

func recipientSetCmd(open storeOpener) *cobra.Command {
	var in recipient.SettingsInput
	cmd := &cobra.Command{
		Use:     "set",
		Short:   "Create or replace the recipient for a shop",
		Example: `  zellectl recipient set --shop acme.myshopify.com --name "Acme LLC" --email pay@acme.test`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, closeFn, err := open.Open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			rec, err := recipient.NewSettings(store).Save(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printJSON(cmd, rec)
		},
	}
	cmd.Flags().StringVar(&in.MerchantID, "shop", "", "shop identifier")
	cmd.Flags().StringVar(&in.Name, "name", "", "recipient name shown to shoppers")
	cmd.Flags().StringVar(&in.Email, "email", "", "email registered with Zelle")
	return cmd
}

func migrateCmd(open storeOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the recipient schema",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := open.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	})
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
