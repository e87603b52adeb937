package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mselser95/restock-sniper/internal/parse"
	"github.com/mselser95/restock-sniper/internal/qualify"
	"github.com/mselser95/restock-sniper/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var checkCmd = &cobra.Command{
	Use:   "check <listing.html>",
	Short: "Qualify a saved listing page against the item configuration",
	Long: `Parses a saved offer listing page and runs every configured item's
qualification rules over the extracted offers. Useful for tuning price bands
and condition tiers without touching the live store.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	body, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read page: %w", err)
	}

	result, err := parse.Listing(body)
	if err != nil {
		return fmt.Errorf("parse page: %w", err)
	}

	if result.Captcha != nil {
		fmt.Println("page is a CAPTCHA challenge, nothing to qualify")
		return nil
	}

	items, err := config.LoadItems(cfg.ItemsFile)
	if err != nil {
		return fmt.Errorf("load items: %w", err)
	}

	qualifier, err := qualify.New(&qualify.Config{
		FirstPartySellers: cfg.FirstPartySellers,
		Logger:            zap.NewNop(),
	})
	if err != nil {
		return fmt.Errorf("create qualifier: %w", err)
	}

	fmt.Printf("page product: %s, offers: %d\n\n", result.ProductID, len(result.Offers))

	for _, item := range items {
		if result.ProductID != "" && item.ID != result.ProductID {
			continue
		}

		offer, ok := qualifier.Qualify(item, result.Offers)
		if !ok {
			fmt.Printf("item %s: no qualifying offer\n", item.ID)
			continue
		}

		fmt.Printf("item %s: qualifies listing %s (merchant %s, %s + %s shipping, condition %s)\n",
			item.ID, offer.ListingID, offer.MerchantID,
			offer.Price, offer.Shipping, offer.Condition)
	}

	return nil
}
