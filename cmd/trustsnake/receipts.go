package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/trust-snake/internal/platform/tui"
	"github.com/vovakirdan/trust-snake/internal/storage"
)

var (
	flagAddress string
	flagPlain   bool
	flagLimit   int
)

var receiptsCmd = &cobra.Command{
	Use:   "receipts",
	Short: "Browse recorded payments",
	Long: `Show payments recorded in the ledger, newest first.

With --address, the list starts filtered to that payer; press Tab to
toggle between all payments and yours. --plain prints a table instead.

Examples:
  trustsnake receipts
  trustsnake receipts --address 0x1234567890abcdef1234567890abcdef12345678
  trustsnake receipts --plain --limit 20`,
	Args: cobra.NoArgs,
	RunE: runReceipts,
}

func init() {
	receiptsCmd.Flags().StringVar(&flagAddress, "address", "", "Payer address to filter by")
	receiptsCmd.Flags().BoolVar(&flagPlain, "plain", false, "Print a plain table instead of the interactive view")
	receiptsCmd.Flags().IntVar(&flagLimit, "limit", 10, "Rows to print with --plain")
}

func runReceipts(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagAddress != "" && !common.IsHexAddress(flagAddress) {
		return fmt.Errorf("invalid --address %q", flagAddress)
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening payment ledger: %w", err)
	}
	defer store.Close()

	if flagPlain || !term.IsTerminal(int(os.Stdout.Fd())) {
		return printReceipts(cmd, store)
	}

	width, height := 80, 24
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}
	return tui.RunReceipts(store, flagAddress, cfg.Chain.Currency, width, height)
}

func printReceipts(cmd *cobra.Command, store *storage.Store) error {
	ctx := cmd.Context()

	var (
		payments []storage.Payment
		err      error
	)
	if flagAddress != "" {
		payments, err = store.PaymentsFrom(ctx, flagAddress, flagLimit)
	} else {
		payments, err = store.RecentPayments(ctx, flagLimit)
	}
	if err != nil {
		return err
	}

	if len(payments) == 0 {
		fmt.Println("No payments recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tSTATUS\tFROM\tAMOUNT (WEI)\tTX")
	for _, p := range payments {
		tx := p.TxHash
		if tx == "" {
			tx = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			p.CreatedAt.Local().Format("2006-01-02 15:04"),
			p.Status, p.From, p.AmountWei, tx)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	confirmed, err := store.CountByStatus(ctx, storage.StatusConfirmed)
	if err != nil {
		return err
	}
	failed, err := store.CountByStatus(ctx, storage.StatusFailed)
	if err != nil {
		return err
	}
	fmt.Printf("\n%d confirmed, %d failed in total\n", confirmed, failed)
	return nil
}
