package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"surfacegate/internal/catalog"
)

func newProductsCommand(ctx *commandContext) *cobra.Command {
	productsCmd := &cobra.Command{
		Use:   "products",
		Short: "Inspect the product catalog",
	}

	productsCmd.AddCommand(newProductsListCommand(ctx))
	productsCmd.AddCommand(newProductsShowCommand(ctx))
	return productsCmd
}

func newProductsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List catalog products",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := catalog.Open(cfg)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer store.Close()

			products, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(products) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "catalog is empty")
				return nil
			}

			rows := make([][]string, 0, len(products))
			for _, product := range products {
				rows = append(rows, []string{
					product.ID,
					product.Title,
					product.Status,
					formatPrice(product.PriceCents),
					product.SourceJobID,
					product.CreatedAt.Local().Format(time.DateTime),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]tableColumn{
					{title: "ID"},
					{title: "Title"},
					{title: "Status"},
					{title: "Price", right: true},
					{title: "Source Job"},
					{title: "Created"},
				},
				rows,
			))
			return nil
		},
	}
}

func newProductsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <product-id>",
		Short: "Show one product with its asset references",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := catalog.Open(cfg)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer store.Close()

			product, err := store.GetByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if product == nil {
				return fmt.Errorf("product %s not found", args[0])
			}
			assets, err := store.AssetsForProduct(cmd.Context(), product.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", product.Title)
			fmt.Fprintf(out, "  id:         %s\n", product.ID)
			fmt.Fprintf(out, "  status:     %s\n", product.Status)
			fmt.Fprintf(out, "  price:      %s\n", formatPrice(product.PriceCents))
			if product.Category != "" {
				fmt.Fprintf(out, "  category:   %s\n", product.Category)
			}
			if len(product.Tags) > 0 {
				fmt.Fprintf(out, "  tags:       %v\n", product.Tags)
			}
			fmt.Fprintf(out, "  source job: %s\n", product.SourceJobID)
			if product.SourceSubfolder != "" {
				fmt.Fprintf(out, "  subfolder:  %s\n", product.SourceSubfolder)
			}
			if product.Description != "" {
				fmt.Fprintf(out, "  %s\n", product.Description)
			}
			for _, asset := range assets {
				fmt.Fprintf(out, "  %-9s %s\n", asset.Kind, asset.URL)
			}
			return nil
		},
	}
}

func formatPrice(cents int64) string {
	return "$" + strconv.FormatFloat(float64(cents)/100, 'f', 2, 64)
}
