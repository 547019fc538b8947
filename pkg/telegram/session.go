package telegram

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gotd/td/session"
	tgclient "github.com/gotd/td/telegram"
	tgauth "github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"

	"tgscraper/pkg/config"
	errs "tgscraper/pkg/errors"
	"tgscraper/pkg/logger"
)

// Run opens an MTProto session, makes sure it is authorized and hands a
// ready Client to f. The session is persisted to the configured session
// file, so the login code is only needed once.
func Run(ctx context.Context, cfg config.TelegramConfig, log logger.Logger, f func(ctx context.Context, client *Client) error) error {
	if cfg.APIID == 0 || cfg.APIHash == "" {
		return errs.New(errs.ErrorTypeAuth, "api_id and api_hash are not configured")
	}

	if dir := filepath.Dir(cfg.SessionFile); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return errs.Wrap(errs.ErrorTypeAuth, "cannot create session directory", err)
		}
	}

	client := tgclient.NewClient(cfg.APIID, cfg.APIHash, tgclient.Options{
		SessionStorage: &session.FileStorage{Path: cfg.SessionFile},
	})

	return client.Run(ctx, func(ctx context.Context) error {
		status, err := client.Auth().Status(ctx)
		if err != nil {
			return errs.Wrap(errs.ErrorTypeAuth, "cannot query authorization status", err)
		}

		if !status.Authorized {
			if cfg.Phone == "" {
				return errs.New(errs.ErrorTypeAuth, "session not authorized and no phone configured")
			}
			log.WithField("phone", maskPhone(cfg.Phone)).Info("authorizing session")

			flow := tgauth.NewFlow(
				tgauth.Constant(cfg.Phone, "", tgauth.CodeAuthenticatorFunc(promptCode)),
				tgauth.SendCodeOptions{},
			)
			if err := client.Auth().IfNecessary(ctx, flow); err != nil {
				return errs.Wrap(errs.ErrorTypeAuth, "authorization failed", err)
			}
		}

		return f(ctx, NewClient(client.API(), log))
	})
}

// promptCode reads the login code Telegram sent to the account.
func promptCode(_ context.Context, _ *tg.AuthSentCode) (string, error) {
	fmt.Print("Enter the login code sent to your Telegram account: ")
	code, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(code), nil
}

func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
