package main

import (
	"fmt"

	"github.com/chemsource/sourcing/v1/sourcing"
	"github.com/spf13/cobra"
)

func (c *cli) productsCommand() *cobra.Command {
	var (
		identity sourcing.Triple
		exact    bool
	)
	scoped := func(svc *sourcing.Service) *sourcing.Service {
		if exact {
			return svc.Exact()
		}
		return svc
	}
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Inspect and delete one company's sell products",
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&identity.Email, "email", "", "seller login email")
	flags.StringVar(&identity.CompanyName, "company", "", "seller company name")
	flags.StringVar(&identity.ContactNumber, "contact", "", "seller contact number")
	flags.BoolVar(&exact, "exact", false, "match identity fields as given, without normalizing them")
	_ = cmd.MarkPersistentFlagRequired("email")

	list := &cobra.Command{
		Use:   "list",
		Short: "List products matching the given identity fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withService(cmd.Context(), func(svc *sourcing.Service) error {
				products, err := scoped(svc).ListProducts(cmd.Context(), identity)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), products)
			})
		},
	}

	var productID string
	del := &cobra.Command{
		Use:   "delete",
		Short: "Delete one product of a fully identified company",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withService(cmd.Context(), func(svc *sourcing.Service) error {
				if err := scoped(svc).DeleteProduct(cmd.Context(), identity, sourcing.ProductID(productID)); err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), map[string]string{"deleted": productID})
			})
		},
	}
	del.Flags().StringVar(&productID, "product-id", "", "business product id, e.g. PRD-1712345678901-a1b2c3")
	_ = del.MarkFlagRequired("product-id")

	purge := &cobra.Command{
		Use:   "purge",
		Short: "Delete every product of a fully identified company",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withService(cmd.Context(), func(svc *sourcing.Service) error {
				summary, err := scoped(svc).PurgeProducts(cmd.Context(), identity)
				if werr := writeJSON(cmd.OutOrStdout(), summary); werr != nil {
					return werr
				}
				if err != nil {
					return err
				}
				if n := len(summary.Failed); n > 0 {
					return fmt.Errorf("%d of %d products could not be deleted", n, summary.Matched)
				}
				return nil
			})
		},
	}

	repair := &cobra.Command{
		Use:   "repair",
		Short: "Rewrite a company stored under a variant spelling to its normalized identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withService(cmd.Context(), func(svc *sourcing.Service) error {
				summary, err := svc.RepairIdentity(cmd.Context(), identity)
				if werr := writeJSON(cmd.OutOrStdout(), summary); werr != nil {
					return werr
				}
				if err != nil {
					return err
				}
				if n := len(summary.Failed); n > 0 {
					return fmt.Errorf("%d records could not be rewritten", n)
				}
				return nil
			})
		},
	}

	cmd.AddCommand(list, del, purge, repair)
	return cmd
}
