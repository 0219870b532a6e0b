package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"surfacegate/internal/assets"
	"surfacegate/internal/catalog"
	"surfacegate/internal/logging"
	"surfacegate/internal/manifest"
	"surfacegate/internal/promotion"
)

func newPromoteCommand(ctx *commandContext) *cobra.Command {
	var engineFlag string
	var subfolderFlag string
	var titleFlag string
	var descriptionFlag string
	var priceFlag float64
	var categoryFlag string
	var tagsFlag []string
	var statusFlag string
	var skuFlag string
	var freezeFlag bool

	cmd := &cobra.Command{
		Use:   "promote <job-id>",
		Short: "Promote a completed job into the product catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			engine, err := ctx.engineFor(engineFlag)
			if err != nil {
				return err
			}

			store, err := catalog.Open(cfg)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer store.Close()

			loader := manifest.NewLoader(cfg, *engine, nil, logging.NewNop())
			resolver := assets.NewResolver(engine.PublicPrefix)
			svc := promotion.NewService(store, loader, resolver, engine.Name, logging.NewNop())

			result, err := svc.Promote(cmd.Context(), promotion.Request{
				JobID:        args[0],
				Subfolder:    subfolderFlag,
				Title:        titleFlag,
				Description:  descriptionFlag,
				Price:        priceFlag,
				Category:     categoryFlag,
				Tags:         tagsFlag,
				Status:       statusFlag,
				SKU:          skuFlag,
				FreezeAssets: freezeFlag,
			})
			if err != nil {
				var conflict *promotion.AlreadyPromotedError
				if errors.As(err, &conflict) {
					return fmt.Errorf("job %s was already promoted as product %s", args[0], conflict.ProductID)
				}
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "created product %s (%s)\n", result.Product.ID, result.Product.Title)
			for _, asset := range result.Assets {
				fmt.Fprintf(out, "  %-9s %s\n", asset.Kind, asset.URL)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&engineFlag, "engine", "e", "", "Engine name")
	cmd.Flags().StringVar(&subfolderFlag, "subfolder", "", "Job subfolder")
	cmd.Flags().StringVarP(&titleFlag, "title", "t", "", "Product title")
	cmd.Flags().StringVar(&descriptionFlag, "description", "", "Product description")
	cmd.Flags().Float64VarP(&priceFlag, "price", "p", 0, "Product price")
	cmd.Flags().StringVar(&categoryFlag, "category", "", "Product category")
	cmd.Flags().StringSliceVar(&tagsFlag, "tag", nil, "Product tag (repeatable)")
	cmd.Flags().StringVar(&statusFlag, "status", "", "Product status (draft, active, archived)")
	cmd.Flags().StringVar(&skuFlag, "sku", "", "Product SKU")
	cmd.Flags().BoolVar(&freezeFlag, "freeze-assets", false, "Mark asset references as frozen")
	return cmd
}
