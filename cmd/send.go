package cmd

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/webhookx-io/hookshot/app"
	"github.com/webhookx-io/hookshot/menu"
	"github.com/webhookx-io/hookshot/model"
)

func newSendCmd() *cobra.Command {
	var (
		webhook string
		tab     string
	)

	send := &cobra.Command{
		Use:   "send",
		Short: "Send the selection of a tab to a webhook",
		Long:  `Capture the selected content of a browser tab and deliver it to a webhook, as a click on its menu item would.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := initConfig(configurationFile)
			if err != nil {
				return err
			}
			cfg.Admin.Listen = "off"
			cfg.Browser.Watch = false

			app, err := app.New(cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := context.Background()
			target, err := app.Service().Resolve(ctx, webhook)
			if err != nil {
				return errors.Wrapf(err, "webhook %q", webhook)
			}

			result, err := app.Dispatcher().Click(ctx, menu.ItemID(target.ID), model.TabID(tab))
			if err != nil {
				return err
			}
			bytes, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			cmd.Println(string(bytes))
			return nil
		},
	}

	send.Flags().StringVarP(&webhook, "webhook", "w", "", "Name or id of the webhook")
	send.Flags().StringVarP(&tab, "tab", "t", "", "Id of the browser tab")
	_ = send.MarkFlagRequired("webhook")
	_ = send.MarkFlagRequired("tab")

	return send
}
