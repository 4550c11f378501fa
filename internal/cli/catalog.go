package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
)

func addPlanCmd(connect Connect) *cobra.Command {
	var plan models.Plan

	cmd := &cobra.Command{
		Use:   "addplan",
		Short: "Add a subscription plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withBackend(cmd, connect, func(ctx context.Context, b Backend) error {
				if err := b.AddPlan(ctx, &plan); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "plan %d created\n", plan.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&plan.Name, "name", "", "plan name")
	cmd.Flags().IntVar(&plan.DurationMonths, "months", 0, "duration in months")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("months")
	return cmd
}

func addProductCmd(connect Connect) *cobra.Command {
	var (
		p               models.Product
		productType     string
		planID          int64
		descriptionFile string
	)

	cmd := &cobra.Command{
		Use:   "addproduct",
		Short: "Add a catalogue product",
		Long: `Add a catalogue product.

Products of type data_access must reference a plan:
  shopctl addproduct --name "Annual data" --type data_access --plan-id 1 \
      --price 12000 --stripe-price-id price_123 --description-file annual.md`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if descriptionFile != "" {
				raw, err := os.ReadFile(descriptionFile)
				if err != nil {
					return fmt.Errorf("read description: %w", err)
				}
				p.Description = string(raw)
			}
			p.Type = models.ProductType(productType)
			if planID != 0 {
				p.PlanID = &planID
			}
			// Проверяем до подключения к базе.
			if err := p.Validate(); err != nil {
				return err
			}
			return withBackend(cmd, connect, func(ctx context.Context, b Backend) error {
				if err := b.AddProduct(ctx, &p); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "product %d created\n", p.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&p.Name, "name", "", "product name")
	cmd.Flags().StringVar(&p.Description, "description", "", "markdown description")
	cmd.Flags().StringVar(&descriptionFile, "description-file", "", "read the markdown description from a file")
	cmd.Flags().Int64Var(&p.PriceMinor, "price", 0, "price in minor units, e.g. 1000 for 10.00")
	cmd.Flags().StringVar(&productType, "type", string(models.ProductPhysical), "physical or data_access")
	cmd.Flags().Int64Var(&planID, "plan-id", 0, "plan for data_access products")
	cmd.Flags().StringVar(&p.StripePriceID, "stripe-price-id", "", "Stripe price identifier")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("stripe-price-id")
	return cmd
}
