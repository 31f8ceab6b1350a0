package main

import (
	"bufio"
	"context"
	"os"
	"strings"

	"domaincheck/internal/config"
	"domaincheck/pkg/domain"
	"domaincheck/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// importTLDsCommand constructs the 'importtlds' subcommand that bootstraps
// the suffix registry from a public suffix list file so uploads can be
// classified before the first registrar sync. Imported suffixes are marked
// recognized but not registerable; the sync flips the registerable flag for
// the suffixes the registrar actually offers.
func importTLDsCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "importtlds",
		Short: "Seeds the TLD registry from a suffix list file",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			file, _ := cmd.Flags().GetString("file")

			strg, closeStrg := getPostgres(ctx, cfg)
			defer closeStrg()

			f, err := os.Open(file)
			if err != nil {
				logger.Fatal(ctx, "could not open suffix list", zap.Error(err))
			}
			defer func() { _ = f.Close() }()

			count := 0
			scanner := bufio.NewScanner(f)
			for scanner.Scan() {
				suffix := strings.ToLower(strings.TrimSpace(scanner.Text()))
				if suffix == "" || strings.HasPrefix(suffix, "//") || strings.HasPrefix(suffix, "#") {
					continue
				}
				// wildcard and exception rules reduce to their base suffix
				suffix = strings.TrimPrefix(suffix, "*.")
				suffix = strings.TrimPrefix(suffix, "!")

				if err := strg.UpsertTLD(ctx, domain.TLD{
					Suffix:       suffix,
					IsRecognized: true,
					Type:         "unknown",
				}); err != nil {
					logger.Fatal(ctx, "could not store tld", zap.String("suffix", suffix), zap.Error(err))
				}
				count++
			}
			if err := scanner.Err(); err != nil {
				logger.Fatal(ctx, "could not read suffix list", zap.Error(err))
			}

			logger.Info(ctx, "imported suffixes", zap.Int("count", count))
		},
	}

	cmd.Flags().String("file", "", "Path to the suffix list file")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
