// cmd/brandtrust/root.go

package main

import (
	"context"

	"github.com/spf13/cobra"
)

func Execute(ctx context.Context) error {
	root := &cobra.Command{
		Use:   "brandtrust",
		Short: "Brand trust analyzer",
		Long:  "Aggregates product ratings, social mentions, and website signals into a weighted 0-10 brand trust score.",
	}
	root.AddCommand(analyzeCmd())
	root.AddCommand(serveCmd())
	return root.ExecuteContext(ctx)
}
