package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	tele "qwintry-bot/internal/infra/adapters/telegram"
	"qwintry-bot/internal/infra/i18n"
	"qwintry-bot/internal/infra/logging"
)

func newWebhookCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Manage the Telegram webhook registration",
	}

	var secret string
	set := &cobra.Command{
		Use:   "set [url]",
		Short: "Point Telegram at this bot's webhook",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bot, cfgURL, cfgSecret, err := webhookClient(flags)
			if err != nil {
				return err
			}
			url := cfgURL
			if len(args) == 1 {
				url = args[0]
			}
			if url == "" {
				return errors.New("webhook url required (argument or TELEGRAM_WEBHOOK_URL)")
			}
			if secret == "" {
				secret = cfgSecret
			}
			if err := bot.SetWebhook(cmd.Context(), url, secret); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "webhook set to %s\n", url)
			return nil
		},
	}
	set.Flags().StringVar(&secret, "secret", "", "secret token Telegram echoes in X-Telegram-Bot-Api-Secret-Token")

	var drop bool
	del := &cobra.Command{
		Use:   "delete",
		Short: "Remove the webhook",
		RunE: func(cmd *cobra.Command, args []string) error {
			bot, _, _, err := webhookClient(flags)
			if err != nil {
				return err
			}
			if err := bot.DeleteWebhook(cmd.Context(), drop); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "webhook deleted")
			return nil
		},
	}
	del.Flags().BoolVar(&drop, "drop-pending", false, "drop updates queued by Telegram")

	info := &cobra.Command{
		Use:   "info",
		Short: "Show the current webhook status",
		RunE: func(cmd *cobra.Command, args []string) error {
			bot, _, _, err := webhookClient(flags)
			if err != nil {
				return err
			}
			st, err := bot.WebhookInfo(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "url:      %s\npending:  %d\n", st.URL, st.PendingUpdateCount)
			if st.LastErrorMessage != "" {
				at := time.Unix(int64(st.LastErrorDate), 0).UTC().Format(time.RFC3339)
				fmt.Fprintf(out, "last err: %s (%s)\n", st.LastErrorMessage, at)
			}
			return nil
		},
	}

	cmd.AddCommand(set, del, info)
	return cmd
}

func webhookClient(flags *rootFlags) (*tele.RealTelegramBotAdapter, string, string, error) {
	cfg, err := load(flags)
	if err != nil {
		return nil, "", "", err
	}
	if cfg.Bot.Token == "" {
		return nil, "", "", errors.New("TELEGRAM_BOT_TOKEN is not set")
	}
	tr, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Bot.Language)
	if err != nil {
		return nil, "", "", err
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	bot, err := tele.NewRealTelegramBotAdapter(&cfg.Bot, tele.MainReplyKeyboard(tr), logger)
	if err != nil {
		return nil, "", "", err
	}
	return bot, cfg.Bot.WebhookURL, cfg.Bot.WebhookSecret, nil
}
