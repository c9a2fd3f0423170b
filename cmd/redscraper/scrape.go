package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"redscraper/pkg/config"
	"redscraper/pkg/errors"
	"redscraper/pkg/logger"
	"redscraper/pkg/scraper"
)

var (
	// Scrape command flags
	period           string
	minScore         int
	maxSubmissions   int
	downloadLocation string
	requestsPerMin   int
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape <subreddit>",
	Short: "Download images from a subreddit's top posts",
	Long: `Download the images behind a subreddit's top posts.

Only posts at or above the score threshold are considered, and posts
whose images already exist in the download location are skipped, so the
command can be re-run or scheduled without duplicating files. Individual
posts that fail to resolve or download are logged and skipped; only a
nonexistent or private subreddit fails the run.`,
	Example: `  # Download today's top images from r/earthporn
  redscraper scrape earthporn

  # This month's top posts with at least 1000 points
  redscraper scrape earthporn --period month --score 1000

  # Up to 50 posts into a specific directory
  redscraper scrape wallpapers --max 50 --download-location ~/Pictures/wallpapers`,
	Args: cobra.ExactArgs(1),
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().StringVarP(&period, "period", "p", config.PeriodDay, "ranking window (day, week, month)")
	scrapeCmd.Flags().IntVarP(&minScore, "score", "s", 500, "minimum score for a post to be considered")
	scrapeCmd.Flags().IntVarP(&maxSubmissions, "max", "m", 25, "maximum number of posts to inspect")
	scrapeCmd.Flags().StringVarP(&downloadLocation, "download-location", "d", "", "directory to save images to (default: current directory)")
	scrapeCmd.Flags().IntVar(&requestsPerMin, "requests-per-minute", 30, "request pacing for probes and downloads")
}

func runScrape(cmd *cobra.Command, args []string) error {
	subreddit := strings.TrimSpace(args[0])

	flags := make(map[string]interface{})
	if cmd.Flags().Changed("period") {
		flags["period"] = period
	}
	if cmd.Flags().Changed("score") {
		flags["score"] = minScore
	}
	if cmd.Flags().Changed("max") {
		flags["max"] = maxSubmissions
	}
	if downloadLocation != "" {
		flags["download-location"] = downloadLocation
	}
	if cmd.Flags().Changed("requests-per-minute") {
		flags["requests-per-minute"] = requestsPerMin
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}
	if logFile != "" {
		flags["logfile"] = logFile
	}
	if quiet {
		flags["quiet"] = true
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	logger.WithField("version", version).Info("redscraper starting")

	s, err := scraper.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize scraper: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := s.Run(ctx, subreddit)
	if err != nil {
		if errors.IsFatal(err) {
			fmt.Fprintf(os.Stderr, "subreddit %q does not exist or cannot be accessed\n", subreddit)
			os.Exit(1)
		}
		// Transient failures leave the run incomplete but usable
		logger.WithError(err).Error("scrape run ended early")
		return nil
	}

	if !cfg.Logging.Quiet {
		fmt.Printf("Done: %d downloaded, %d skipped, %d failed (%d posts inspected)\n",
			result.Downloaded, result.Skipped, result.Failed, result.Submissions)
	}

	return nil
}
