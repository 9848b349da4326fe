// cmd/brandtrust/cmd_analyze.go

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"brandtrust/internal/config"
	"brandtrust/internal/domain/brand"
	"brandtrust/internal/domain/report"
)

func analyzeCmd() *cobra.Command {
	var (
		brandName string
		handle    string
		site      string
		outDir    string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run a trust analysis for one brand",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if outDir != "" {
				cfg.Report.OutputDir = outDir
			}

			q := brand.Query{
				Brand:   strings.TrimSpace(brandName),
				Handle:  strings.TrimSpace(handle),
				Website: strings.TrimSpace(site),
			}
			promptForQuery(&q)
			if err := q.Validate(); err != nil {
				return err
			}

			app, err := buildApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer app.close()

			rep, path, err := app.analyzer.Analyze(cmd.Context(), q)
			if err != nil {
				return err
			}

			printSummary(cmd, rep, path)
			return nil
		},
	}

	cmd.Flags().StringVar(&brandName, "brand", "", "brand name to analyze")
	cmd.Flags().StringVar(&handle, "handle", "", "brand's Twitter handle (optional)")
	cmd.Flags().StringVar(&site, "website", "", "brand's website URL (optional)")
	cmd.Flags().StringVar(&outDir, "out", "", "directory for the report file")
	return cmd
}

// promptForQuery asks interactively for any input not given as a flag.
// Optional inputs accept an empty answer.
func promptForQuery(q *brand.Query) {
	reader := bufio.NewReader(os.Stdin)
	ask := func(label string) string {
		fmt.Printf("%s: ", label)
		line, err := reader.ReadString('\n')
		if err != nil {
			return ""
		}
		return strings.TrimSpace(line)
	}

	if q.Brand == "" {
		q.Brand = ask("Brand name")
	}
	if q.Handle == "" {
		q.Handle = ask("Twitter handle (optional, enter to skip)")
	}
	if q.Website == "" {
		q.Website = ask("Website URL (optional, enter to skip)")
	}
}

// printSummary renders the end-of-run breakdown to stdout
func printSummary(cmd *cobra.Command, rep report.Report, path string) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "\n%s — trust score %.1f/10\n", rep.Query.Brand, rep.Trust.FinalScore)
	fmt.Fprintf(out, "%s\n\n", rep.Trust.Interpretation)

	fmt.Fprintf(out, "%-22s %7s %7s %13s %10s\n", "component", "score", "weight", "contribution", "confidence")
	for _, c := range rep.Trust.Components {
		fmt.Fprintf(out, "%-22s %7.1f %7.2f %13.2f %10s\n",
			c.Name, c.Score, c.Weight, c.Contribution, c.Confidence)
	}

	fmt.Fprintln(out)
	for _, source := range sortedSources(rep) {
		sum := rep.Sources[source]
		fmt.Fprintf(out, "source %-10s %-8s %d findings\n", source, sum.Status, sum.Findings)
	}

	if len(rep.KeyStrengths) > 0 {
		fmt.Fprintln(out, "\nKey strengths:")
		for _, s := range rep.KeyStrengths {
			fmt.Fprintf(out, "  + %s\n", s)
		}
	}
	if len(rep.AreasOfConcern) > 0 {
		fmt.Fprintln(out, "\nAreas of concern:")
		for _, c := range rep.AreasOfConcern {
			fmt.Fprintf(out, "  - %s\n", c)
		}
	}
	if len(rep.Warnings) > 0 {
		fmt.Fprintln(out, "\nWarnings:")
		for _, w := range rep.Warnings {
			fmt.Fprintf(out, "  ! %s\n", w)
		}
	}

	fmt.Fprintf(out, "\nReport written to %s\n", path)
}

func sortedSources(rep report.Report) []string {
	var sources []string
	for _, s := range brand.Sources() {
		if _, ok := rep.Sources[s]; ok {
			sources = append(sources, s)
		}
	}
	return sources
}
