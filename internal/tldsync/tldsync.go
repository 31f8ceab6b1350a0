// Package tldsync refreshes the TLD registry from the registrar's TLD list.
// Suffixes the registrar no longer lists are kept but marked unrecognized so
// already-classified domains keep their history.
package tldsync

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"domaincheck/internal/settings"
	"domaincheck/pkg/domain"
	"domaincheck/pkg/logger"
	"domaincheck/pkg/mailer"
	"domaincheck/pkg/registrar"
	"domaincheck/pkg/storage"
)

// Options configure the syncer.
type Options struct {
	// From is the sender address for the outcome notification.
	From string
}

// Syncer pulls the registrar's TLD list into the local registry.
type Syncer struct {
	options  Options
	storage  storage.Storage
	settings *settings.Loader
	client   registrar.Client
	mailer   mailer.Mailer
}

// New creates a syncer.
func New(st storage.Storage,
	loader *settings.Loader,
	client registrar.Client,
	m mailer.Mailer,
	options Options) *Syncer {
	return &Syncer{
		options:  options,
		storage:  st,
		settings: loader,
		client:   client,
		mailer:   m,
	}
}

// Sync fetches the registrar's current TLD list and reconciles the registry
// against it: listed suffixes are upserted as recognized, known suffixes
// missing from the list are demoted to unrecognized. The raw response is
// mailed to the operator so a surprising list can be inspected after the
// fact.
func (s *Syncer) Sync(ctx context.Context) error {
	cfg, err := s.settings.Registrar(ctx)
	if err != nil {
		return err
	}
	params := registrar.Params{
		BaseURL:  cfg.URL,
		APIUser:  cfg.APIUser,
		APIKey:   cfg.APIKey,
		Username: cfg.Username,
		ClientIP: cfg.ClientIP,
	}

	list, raw, err := s.client.TLDList(ctx, params)
	if err != nil {
		return fmt.Errorf("could not fetch tld list: %w", err)
	}

	s.notifyOperator(ctx, cfg.URL, raw)

	listed := make(map[string]registrar.TLDInfo, len(list))
	for _, info := range list {
		listed[info.Name] = info
	}

	var added, demoted int
	err = s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		known, err := tx.TLDs(ctx)
		if err != nil {
			return fmt.Errorf("could not load tld registry: %w", err)
		}

		for _, tld := range known {
			info, ok := listed[tld.Suffix]
			if ok {
				tld.IsRecognized = true
				tld.IsAPIRegisterable = info.IsAPIRegisterable
				tld.Type = info.Type
				tld.Description = info.Description
			} else {
				tld.IsRecognized = false
				tld.IsAPIRegisterable = false
				tld.Type = "unknown"
				tld.Description = ""
				demoted++
			}
			if err := tx.UpsertTLD(ctx, tld); err != nil {
				return fmt.Errorf("could not update tld %q: %w", tld.Suffix, err)
			}
			delete(listed, tld.Suffix)
		}

		for name, info := range listed {
			if err := tx.UpsertTLD(ctx, domain.TLD{
				Suffix:            name,
				IsRecognized:      true,
				IsAPIRegisterable: info.IsAPIRegisterable,
				Type:              info.Type,
				Description:       info.Description,
			}); err != nil {
				return fmt.Errorf("could not add tld %q: %w", name, err)
			}
			added++
		}

		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "tld registry synchronized",
		zap.Int("listed", len(list)),
		zap.Int("added", added),
		zap.Int("demoted", demoted))

	return nil
}

// notifyOperator mails the raw list response, best-effort.
func (s *Syncer) notifyOperator(ctx context.Context, url, raw string) {
	notification, err := s.settings.Notification(ctx)
	if err != nil {
		logger.Error(ctx, "could not load notification settings", zap.Error(err))

		return
	}
	if notification.OperatorEmail == "" {
		return
	}

	msg := mailer.Message{
		From:    s.options.From,
		To:      []string{notification.OperatorEmail},
		Subject: "Domain Checker - TLD Update",
		Body: fmt.Sprintf("The following response was received from the TLD update (using %s):\n\n%s",
			url, raw),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		logger.Error(ctx, "could not send tld update notification", zap.Error(err))
	}
}
