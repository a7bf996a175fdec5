package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eringen/shopdesk"
)

var seedCmd = &cobra.Command{
	Use:   "seed <file.yaml>",
	Short: "Load pages and sections from a YAML file",
	Long: `Creates the pages listed in a YAML seed file together with their
per-locale sections. Pages whose slug already exists are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	cfg, err := shopdesk.LoadConfig()
	if err != nil {
		return err
	}
	app, err := shopdesk.New(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	res, err := app.Seed(cmd.Context(), f)
	if err != nil {
		return err
	}
	app.Logger.Info("seed complete",
		zap.Int("pages", res.Pages),
		zap.Int("sections", res.Sections),
		zap.Int("skipped", res.Skipped),
	)
	return nil
}
