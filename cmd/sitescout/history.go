package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitescout/internal/config"
	"github.com/nao1215/sitescout/internal/database"
	"github.com/nao1215/sitescout/internal/model"
	"github.com/nao1215/sitescout/internal/report"
)

// errNoResults is returned when the database holds nothing matching
// the request.
var errNoResults = errors.New("no stored results")

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [url]",
		Short: "Browse stored crawl results",
		Long: `History reads the results saved by previous crawls.

Only the latest result of each site is kept; crawling a site again
replaces it.

Examples:
  # List stored results, newest first
  sitescout history --list

  # Show the second page of 50 results
  sitescout history --list --page 2 --page-size 50

  # Find results by company name, description or URL
  sitescout history --search rockets

  # Show the stored report of a site
  sitescout history https://acme.io

  # Show a stored report by ID as Markdown
  sitescout history --id 3 --markdown

  # Delete a stored result
  sitescout history --delete 3`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list", "l", false,
		"List stored results, newest first")
	cmd.Flags().Int("page", 1, "Page of the listing")
	cmd.Flags().Int("page-size", database.DefaultPageSize, "Results per page of the listing")
	cmd.Flags().StringP("search", "s", "",
		"List results whose company name, description or URL contains the text")
	cmd.Flags().Int64P("id", "i", 0,
		"Show the stored result with this ID")
	cmd.Flags().Int64("delete", 0,
		"Delete the stored result with this ID")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the results database")

	cmd.Flags().BoolP("json", "j", false,
		"Output the stored result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output the stored result in Markdown format")

	cmd.MarkFlagsMutuallyExclusive("json", "markdown")
	cmd.MarkFlagsMutuallyExclusive("list", "search", "id", "delete")

	return cmd
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	listResults, err := flags.GetBool("list")
	if err != nil {
		return err
	}
	query, err := flags.GetString("search")
	if err != nil {
		return err
	}
	id, err := flags.GetInt64("id")
	if err != nil {
		return err
	}
	deleteID, err := flags.GetInt64("delete")
	if err != nil {
		return err
	}

	// Validate before opening the database.
	var seedURL string
	if len(args) == 1 {
		if listResults || query != "" || id != 0 || deleteID != 0 {
			return errors.New("a url cannot be combined with --list, --search, --id or --delete")
		}
		seed, err := model.NewSeedRequest(args[0], 1)
		if err != nil {
			return fmt.Errorf("invalid url: %w", err)
		}
		seedURL = seed.URL
	}

	dbDir, err := flags.GetString("db-dir")
	if err != nil {
		return err
	}
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	switch {
	case deleteID != 0:
		if err := db.DeleteResult(ctx, deleteID); err != nil {
			return fmt.Errorf("failed to delete result %d: %w", deleteID, err)
		}
		fmt.Fprintf(out, "Deleted result %d\n", deleteID)
		return nil
	case query != "":
		summaries, err := db.SearchResults(ctx, query, database.MaxPageSize)
		if err != nil {
			return err
		}
		if len(summaries) == 0 {
			return fmt.Errorf("%w matching %q", errNoResults, query)
		}
		return printSummaries(out, summaries)
	case id != 0:
		record, err := db.GetResultByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get result %d: %w", id, err)
		}
		return printStoredResult(cmd, record.Result)
	case seedURL != "":
		record, err := db.GetResultByURL(ctx, seedURL)
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("%w for %s (run 'sitescout crawl %s' first)", errNoResults, seedURL, seedURL)
		}
		if err != nil {
			return err
		}
		return printStoredResult(cmd, record.Result)
	default:
		page, err := flags.GetInt("page")
		if err != nil {
			return err
		}
		pageSize, err := flags.GetInt("page-size")
		if err != nil {
			return err
		}
		summaries, total, err := db.ListResults(ctx, page, pageSize)
		if err != nil {
			return err
		}
		if total == 0 {
			return errNoResults
		}
		if err := printSummaries(out, summaries); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nShowing %d of %d results (page %d)\n", len(summaries), total, max(page, 1))
		return nil
	}
}

// printSummaries writes one aligned row per stored result.
func printSummaries(out io.Writer, summaries []database.Summary) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSCRAPED AT\tPAGES\tCOMPANY\tURL")
	for _, s := range summaries {
		pages := strconv.Itoa(s.PageCount)
		if s.Partial {
			pages += "*"
		}
		company := s.CompanyName
		if company == "" {
			company = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			s.ID, s.ScrapedAt.Local().Format("2006-01-02 15:04"), pages, company, s.URL)
	}
	return tw.Flush()
}

func printStoredResult(cmd *cobra.Command, result *model.ScrapeResult) error {
	format := report.FormatText
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		format = report.FormatJSON
	} else if asMarkdown, _ := cmd.Flags().GetBool("markdown"); asMarkdown {
		format = report.FormatMarkdown
	}
	_, err := report.NewWriter(cmd.OutOrStdout(), format, getVersion()).Write(result)
	return err
}
