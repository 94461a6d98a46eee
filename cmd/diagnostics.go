// file: cmd/diagnostics.go
// version: 1.1.0
// guid: e5a9c1f3-7b2d-4680-8c4e-1f9d6a3b2e07

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/mhagen/dealerfinder/internal/config"
	"github.com/mhagen/dealerfinder/internal/database"
	"github.com/mhagen/dealerfinder/internal/matcher"
	"github.com/spf13/cobra"
)

var (
	diagnosticsCmd = &cobra.Command{
		Use:   "diagnostics",
		Short: "Debugging and cleanup helpers",
		Long:  "Diagnostic utilities for inspecting and repairing the dealer store.",
	}

	cleanupCmd = &cobra.Command{
		Use:   "cleanup-unsearchable",
		Short: "Remove dealers no search query can ever surface",
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("yes")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			return runCleanupUnsearchable(force, dryRun)
		},
	}

	queryCmd = &cobra.Command{
		Use:   "query",
		Short: "Inspect stored dealer records",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			return runDiagnosticsQuery(limit)
		},
	}
)

func init() {
	cleanupCmd.Flags().Bool("yes", false, "Skip confirmation prompt")
	cleanupCmd.Flags().Bool("dry-run", false, "List unsearchable records without deleting")

	queryCmd.Flags().Int("limit", 5, "Number of records to display")

	diagnosticsCmd.AddCommand(cleanupCmd)
	diagnosticsCmd.AddCommand(queryCmd)

	rootCmd.AddCommand(diagnosticsCmd)
}

func ensureDiagnosticsStore() (func(), error) {
	if err := database.InitializeStore(config.AppConfig.StoreType, config.AppConfig.DatabasePath); err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	cleanup := func() {
		database.CloseStore()
	}
	return cleanup, nil
}

// unsearchable reports whether every matchable field of the dealer
// normalizes to the empty string, so no text query can ever reach it.
func unsearchable(d database.Dealer) bool {
	if matcher.Normalize(d.Name) != "" ||
		matcher.Normalize(d.City) != "" ||
		matcher.Normalize(d.State) != "" ||
		matcher.Normalize(d.Postal) != "" {
		return false
	}
	for _, brand := range d.Brands {
		if matcher.Normalize(brand) != "" {
			return false
		}
	}
	return true
}

func runCleanupUnsearchable(force, dryRun bool) error {
	closer, err := ensureDiagnosticsStore()
	if err != nil {
		return err
	}
	defer closer()

	fmt.Printf("Inspecting dealers in %s store\n", config.AppConfig.StoreType)

	const batchSize = 5000
	offset := 0
	invalid := make([]database.Dealer, 0)

	for {
		dealers, err := database.GlobalStore.GetAllDealers(batchSize, offset)
		if err != nil {
			return fmt.Errorf("failed to fetch dealers: %w", err)
		}
		if len(dealers) == 0 {
			break
		}
		for _, dealer := range dealers {
			if unsearchable(dealer) {
				invalid = append(invalid, dealer)
			}
		}
		offset += len(dealers)
		if len(dealers) < batchSize {
			break
		}
	}

	if len(invalid) == 0 {
		fmt.Println("No unsearchable dealer records detected.")
		return nil
	}

	fmt.Printf("Found %d unsearchable records:\n", len(invalid))
	for i, dealer := range invalid {
		fmt.Printf("%2d. ID: %s\n", i+1, dealer.ID)
		fmt.Printf("    Name:  %q\n", dealer.Name)
		fmt.Printf("    City:  %q  State: %q  Postal: %q\n", dealer.City, dealer.State, dealer.Postal)
	}

	if dryRun {
		fmt.Println("Dry run: nothing deleted.")
		return nil
	}

	if !force {
		fmt.Printf("Delete these %d records? [y/N]: ", len(invalid))
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	deleted := 0
	for _, dealer := range invalid {
		if err := database.GlobalStore.DeleteDealer(dealer.ID); err != nil {
			fmt.Printf("Warning: failed to delete %s: %v\n", dealer.ID, err)
			continue
		}
		deleted++
	}
	fmt.Printf("Deleted %d records.\n", deleted)
	return nil
}

func runDiagnosticsQuery(limit int) error {
	closer, err := ensureDiagnosticsStore()
	if err != nil {
		return err
	}
	defer closer()

	dealers, err := database.GlobalStore.GetAllDealers(limit, 0)
	if err != nil {
		return fmt.Errorf("failed to fetch dealers: %w", err)
	}
	total, err := database.GlobalStore.CountDealers()
	if err != nil {
		return fmt.Errorf("failed to count dealers: %w", err)
	}

	fmt.Printf("Store holds %d dealers; showing up to %d:\n", total, limit)
	for i, dealer := range dealers {
		reviews, _ := database.GlobalStore.GetReviewsByDealerID(dealer.ID)
		fmt.Printf("%2d. %s — %s, %s %s (%d reviews)\n",
			i+1, dealer.Name, dealer.City, dealer.State, dealer.Postal, len(reviews))
		fmt.Printf("    ID: %s  Brands: %s\n", dealer.ID, strings.Join(dealer.Brands, ", "))
	}
	return nil
}
