package main

import (
	"context"

	"github.com/chemsource/sourcing/v1/sourcing"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// countConcurrency bounds the per-company product lookups.
const countConcurrency = 4

type profileEntry struct {
	sourcing.Profile
	Products *int `json:"products,omitempty"`
}

func (c *cli) profilesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Inspect company profiles",
	}

	var (
		email     string
		withCount bool
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List every company registered under a login email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withService(cmd.Context(), func(svc *sourcing.Service) error {
				entries, err := listProfiles(cmd.Context(), svc, email, withCount)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), entries)
			})
		},
	}
	list.Flags().StringVar(&email, "email", "", "seller login email")
	list.Flags().BoolVar(&withCount, "products", false, "also count each company's sell products")
	_ = list.MarkFlagRequired("email")

	cmd.AddCommand(list)
	return cmd
}

func listProfiles(ctx context.Context, svc *sourcing.Service, email string, withCount bool) ([]profileEntry, error) {
	profiles, err := svc.ListProfiles(ctx, email)
	if err != nil {
		return nil, err
	}
	entries := make([]profileEntry, len(profiles))
	for i, p := range profiles {
		entries[i].Profile = p
	}
	if !withCount {
		return entries, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(countConcurrency)
	for i := range entries {
		g.Go(func() error {
			products, err := svc.ListProducts(gctx, entries[i].Identity())
			if err != nil {
				return err
			}
			n := len(products)
			entries[i].Products = &n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}
