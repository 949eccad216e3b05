package cmd

import (
	"context"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/webhookx-io/hookshot/app"
	"github.com/webhookx-io/hookshot/pkg/log"
	"github.com/webhookx-io/hookshot/service"
	"github.com/webhookx-io/hookshot/store"
)

// withService opens the configured storage for the duration of fn.
func withService(fn func(srv *service.Service) error) error {
	cfg, err := initConfig(configurationFile)
	if err != nil {
		return err
	}
	log, err := log.NewZapLogger(&cfg.Log)
	if err != nil {
		return err
	}
	kv, err := app.NewKV(cfg.Storage, log)
	if err != nil {
		return err
	}
	defer kv.Close()

	return fn(service.NewService(store.New(kv, log.Named("store")), log.Named("service")))
}

func newWebhooksCmd() *cobra.Command {
	webhooks := &cobra.Command{
		Use:   "webhooks",
		Short: "Manage webhook targets",
		Long:  ``,
	}

	webhooks.AddCommand(newWebhooksListCmd())
	webhooks.AddCommand(newWebhooksAddCmd())
	webhooks.AddCommand(newWebhooksDeleteCmd())

	return webhooks
}

func newWebhooksListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List webhook targets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(func(srv *service.Service) error {
				list, err := srv.List(context.Background())
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				cmd.Println()
				_, _ = w.Write([]byte("ID\tNAME\tURL\n"))
				for _, webhook := range list {
					_, _ = w.Write([]byte(webhook.ID + "\t" + webhook.Name + "\t" + webhook.URL + "\n"))
				}
				return w.Flush()
			})
		},
	}
}

func newWebhooksAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name> <url>",
		Short: "Add a webhook target",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(func(srv *service.Service) error {
				webhook, err := srv.Create(context.Background(), &service.CreateWebhook{Name: args[0], URL: args[1]})
				if err != nil {
					return err
				}
				cmd.Printf("webhook %s added (%s)\n", webhook.Name, webhook.ID)
				return nil
			})
		},
	}
}

func newWebhooksDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <name|id>",
		Short: "Delete a webhook target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(func(srv *service.Service) error {
				webhook, err := srv.Resolve(context.Background(), args[0])
				if err != nil {
					return err
				}
				if !yes && !prompt(cmd.InOrStdin(), cmd.OutOrStdout(), "Delete webhook "+webhook.Name+"?") {
					return nil
				}
				if err := srv.Delete(context.Background(), webhook.ID); err != nil {
					return err
				}
				cmd.Printf("webhook %s deleted\n", webhook.Name)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
