package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"subscriptionAPI/internal/config"
	"subscriptionAPI/internal/ledger"
	"subscriptionAPI/internal/logging"
	"subscriptionAPI/internal/paystack"
	"subscriptionAPI/internal/plan"
	"subscriptionAPI/internal/replay"
)

func main() {
	if err := Command().Execute(); err != nil {
		os.Exit(1)
	}
}

// Command builds the paystack-replay CLI. The signing secret is read from
// PAYSTACK_SECRET_KEY (or .env), the same key the API verifies with.
func Command() *cobra.Command {
	var (
		url     string
		timeout time.Duration
	)

	root := &cobra.Command{
		Use:   "paystack-replay",
		Short: "Sign and re-deliver Paystack webhook events",
	}
	root.PersistentFlags().StringVar(&url, "url", "http://localhost:3333/webhooks/paystack", "webhook endpoint")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "delivery timeout")

	root.AddCommand(&cobra.Command{
		Use:   "sign FILE",
		Short: "Print the x-paystack-signature for an event file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			payload, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read event file: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), paystack.Sign(payload, cfg.PaystackSecretKey))
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "send FILE...",
		Short: "Deliver one or more event files exactly as stored",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			sender, logger, err := newSender(url, timeout)
			if err != nil {
				return err
			}
			defer logger.Sync()

			failed := 0
			for _, path := range args {
				payload, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read event file %s: %w", path, err)
				}
				if !deliver(cmd, sender, logger, path, payload) {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d events were not accepted", failed, len(args))
			}
			return nil
		},
	})

	var (
		email     string
		reference string
		planID    string
		amount    int64
	)
	charge := &cobra.Command{
		Use:   "charge",
		Short: "Build and deliver a charge.success event for a known transaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			if amount == 0 {
				a, ok := plan.Default().AmountFor(planID)
				if !ok {
					return fmt.Errorf("unknown plan %q", planID)
				}
				amount = a
			}

			payload, err := replay.ChargeSuccess(email, reference, amount)
			if err != nil {
				return err
			}

			sender, logger, err := newSender(url, timeout)
			if err != nil {
				return err
			}
			defer logger.Sync()

			if !deliver(cmd, sender, logger, reference, payload) {
				return fmt.Errorf("event for %s was not accepted", reference)
			}
			return nil
		},
	}
	charge.Flags().StringVar(&email, "email", "", "customer email")
	charge.Flags().StringVar(&reference, "reference", "", "transaction reference")
	charge.Flags().StringVar(&planID, "plan", plan.Pro, "plan whose amount to charge")
	charge.Flags().Int64Var(&amount, "amount", 0, "amount in kobo; overrides --plan")
	_ = charge.MarkFlagRequired("email")
	_ = charge.MarkFlagRequired("reference")
	root.AddCommand(charge)

	root.AddCommand(&cobra.Command{
		Use:   "history REFERENCE",
		Short: "List recorded reconciliation attempts for a reference (needs DATABASE_URL)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cfg.LedgerEnabled() {
				return fmt.Errorf("DATABASE_URL is not set; no payment ledger to read")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			pool, err := ledger.Connect(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			entries, err := ledger.NewPostgres(pool).ListByReference(ctx, args[0])
			if err != nil {
				return err
			}
			printHistory(cmd.OutOrStdout(), entries)
			return nil
		},
	})

	return root
}

func printHistory(out io.Writer, entries []ledger.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "no recorded attempts")
		return
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tPATH\tOUTCOME\tUSER\tPLAN\tAMOUNT\tDETAIL")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			e.CreatedAt.Format(time.RFC3339), e.Path, e.Outcome, e.UserID, e.Plan, e.Amount, e.Detail)
	}
	w.Flush()
}

func newSender(url string, timeout time.Duration) (*replay.Sender, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.LogLevel, "console")
	if err != nil {
		return nil, nil, err
	}
	return replay.NewSender(url, cfg.PaystackSecretKey, timeout), logger, nil
}

func deliver(cmd *cobra.Command, sender *replay.Sender, logger *zap.Logger, name string, payload []byte) bool {
	res, err := sender.Send(cmd.Context(), payload)
	if err != nil {
		logger.Error("delivery failed", zap.String("event", name), zap.Error(err))
		return false
	}
	if !res.Accepted() {
		logger.Warn("event rejected", zap.String("event", name), zap.Int("status", res.StatusCode), zap.String("body", res.Body))
		return false
	}
	logger.Info("event delivered", zap.String("event", name))
	return true
}
