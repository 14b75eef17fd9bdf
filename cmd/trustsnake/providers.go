package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/trust-snake/internal/registry"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List wallet providers",
	Long:  `Shows the wallet providers that can be selected with --provider or wallet.provider.`,
	Args:  cobra.NoArgs,
	Run:   runProviders,
}

func runProviders(_ *cobra.Command, _ []string) {
	providers := registry.List()

	maxNameLen := 4 // "Name" header
	for _, p := range providers {
		maxNameLen = max(maxNameLen, len(p.Name))
	}

	fmt.Println("Wallet providers:")
	fmt.Println()
	fmt.Printf("  %-*s  %s\n", maxNameLen, "Name", "Description")
	fmt.Printf("  %-*s  %s\n", maxNameLen, "----", "-----------")
	for _, p := range providers {
		fmt.Printf("  %-*s  %s\n", maxNameLen, p.Name, p.Description)
	}
	fmt.Println()
	fmt.Println("Run 'trustsnake play --provider <name>' to use one.")
}
