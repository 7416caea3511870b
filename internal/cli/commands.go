package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/pfrederiksen/dira-lottery/internal/columns"
	"github.com/pfrederiksen/dira-lottery/internal/config"
	"github.com/pfrederiksen/dira-lottery/internal/dira"
	"github.com/pfrederiksen/dira-lottery/internal/logger"
	"github.com/pfrederiksen/dira-lottery/internal/lottery"
	"github.com/pfrederiksen/dira-lottery/internal/odds"
	"github.com/pfrederiksen/dira-lottery/internal/storage"
	"github.com/spf13/cobra"
)

func addCityFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagCity, "city", "", "Only include records with this city code")
}

func addFetchFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagBaseURL, "base-url", dira.DefaultBaseURL, "Dira API invoker URL")
	cmd.Flags().StringVar(&flagPolicy, "failure-policy", string(dira.FailFast), "On a failed fetch: fail_fast or collect")
	cmd.Flags().IntVar(&flagRetries, "retries", 0, "Retries per fetch for transient failures")
	cmd.Flags().DurationVar(&flagCacheTTL, "cache-ttl", 0, "Reuse registrant counts fetched within this duration (0 disables)")
	cmd.Flags().StringVar(&flagCache, "cache", config.DefaultCache, "Registrant count cache file")
}

func newCitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cities",
		Short: "List the distinct cities of the lottery records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}

			records, err := e.loadRecords()
			if err != nil {
				return err
			}

			return WriteCities(e.out, lottery.ExtractCities(records), e.format)
		},
	}
}

func newEnrichCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Attach local-housing quotas to the lottery records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			order, err := ParseSortOrder(flagSort)
			if err != nil {
				return err
			}

			records, err := e.loadRecords()
			if err != nil {
				return err
			}
			enriched, err := e.enrich(records)
			if err != nil {
				return err
			}

			// Rows without registrant counts render the same columns as a report.
			rows := lottery.Merge(enriched, nil)
			sortRows(rows, order)
			return WriteRows(e.out, rows, e.format)
		},
	}
	addCityFlag(cmd)
	cmd.Flags().StringVar(&flagSort, "sort", "", "Sort rows by: lottery, city or registrants")
	return cmd
}

func newSubscribersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscribers [project lottery]",
		Short: "Fetch registrant counts from the Dira API",
		Long: `Fetch registrant counts for every lottery record, or for a single
project and lottery number given as arguments.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("expected no arguments or <project> <lottery>, got %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}

			var refs []lottery.Ref
			if len(args) == 2 {
				refs = []lottery.Ref{{ProjectNumber: args[0], LotteryNumber: args[1]}}
			} else {
				records, err := e.loadRecords()
				if err != nil {
					return err
				}
				refs = lottery.Refs(records)
			}

			subs, err := e.aggregate(cmd.Context(), refs)
			if subs == nil {
				return err
			}
			if writeErr := WriteSubscribers(e.out, subs, e.format); writeErr != nil {
				return writeErr
			}
			finish()
			return err
		},
	}
	addCityFlag(cmd)
	addFetchFlags(cmd)
	return cmd
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build the lottery grid: enrich, fetch registrants and merge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			order, err := ParseSortOrder(flagSort)
			if err != nil {
				return err
			}

			records, err := e.loadRecords()
			if err != nil {
				return err
			}
			enriched, err := e.enrich(records)
			if err != nil {
				return err
			}

			subs, aggErr := e.aggregate(cmd.Context(), lottery.Refs(records))
			if subs == nil {
				return aggErr
			}

			rows := lottery.Merge(enriched, subs)
			sortRows(rows, order)

			if e.cfg.Data.Export != "" {
				if err := e.logChanges(rows); err != nil {
					return err
				}
				export := &storage.Export{
					Columns: columns.Build(),
					Cities:  lottery.ExtractCities(records),
					Rows:    rows,
				}
				if err := e.store.SaveExport(e.cfg.Data.Export, export); err != nil {
					return fmt.Errorf("saving export: %w", err)
				}
				logger.Info("Wrote export", logger.Fields{
					"path": e.store.Path(e.cfg.Data.Export),
					"rows": len(rows),
				})
			}

			if err := WriteRows(e.out, rows, e.format); err != nil {
				return err
			}
			finish()
			return aggErr
		},
	}
	addCityFlag(cmd)
	addFetchFlags(cmd)
	cmd.Flags().StringVar(&flagSort, "sort", "", "Sort rows by: lottery, city or registrants")
	cmd.Flags().StringVar(&flagExport, "export", "", "Write rows, columns and cities to this JSON file")
	return cmd
}

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [export]",
		Short: "Print the rows of a previously written export",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			order, err := ParseSortOrder(flagSort)
			if err != nil {
				return err
			}

			name := e.cfg.Data.Export
			if len(args) == 1 {
				name = args[0]
			}
			if name == "" {
				return fmt.Errorf("no export file given and data.export is not configured")
			}

			export, err := e.store.LoadExport(name)
			if err != nil {
				return err
			}
			if err := columns.Validate(export.Columns); err != nil {
				return fmt.Errorf("export %s: %w", name, err)
			}
			if !slices.Equal(columns.Fields(export.Columns), columns.Fields(columns.Build())) {
				logger.Warn("Export was written with a different column schema", logger.Fields{
					"export": name,
					"fields": columns.Fields(export.Columns),
				})
			}

			logger.Debug("Loaded export", logger.Fields{
				"updated_at": export.UpdatedAt,
				"rows":       len(export.Rows),
			})

			sortRows(export.Rows, order)
			return WriteRows(e.out, export.Rows, e.format)
		},
	}
	cmd.Flags().StringVar(&flagSort, "sort", "", "Sort rows by: lottery, city or registrants")
	return cmd
}

func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <previous-export> <current-export>",
		Short: "List lotteries added, removed or changed between two exports",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}

			previous, err := e.store.LoadExport(args[0])
			if err != nil {
				return err
			}
			current, err := e.store.LoadExport(args[1])
			if err != nil {
				return err
			}

			return WriteChanges(e.out, lottery.Diff(previous.Rows, current.Rows), e.format)
		},
	}
}

func newColumnsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "columns",
		Short: "Print the lottery grid column schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := ParseFormat(flagFormat)
			if err != nil {
				return err
			}
			return WriteColumns(cmd.OutOrStdout(), columns.Build(), format)
		},
	}
}

func newOddsCmd() *cobra.Command {
	model := odds.Project1943

	cmd := &cobra.Command{
		Use:   "odds",
		Short: "Estimate winning odds for local and general registrants",
		Long: `Estimate winning odds in a two-stage lottery. Defaults to the
published example, project #1943.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := ParseFormat(flagFormat)
			if err != nil {
				return err
			}
			if err := model.Validate(); err != nil {
				return err
			}
			return WriteOdds(cmd.OutOrStdout(), newOddsResult(model), format)
		},
	}

	cmd.Flags().IntVar(&model.Apartments, "apartments", model.Apartments, "Apartments in the lottery")
	cmd.Flags().IntVar(&model.LocalApartments, "local-apartments", model.LocalApartments, "Apartments reserved for local residents")
	cmd.Flags().IntVar(&model.DisabledApartments, "disabled-apartments", model.DisabledApartments, "Disabled-access apartments")
	cmd.Flags().IntVar(&model.TotalRegistrants, "registrants", model.TotalRegistrants, "Total registrants")
	cmd.Flags().IntVar(&model.LocalRegistrants, "local-registrants", model.LocalRegistrants, "Local registrants")

	return cmd
}

func (e *env) loadRecords() ([]lottery.Record, error) {
	records, err := e.store.LoadRecords(e.cfg.Data.Records)
	if err != nil {
		return nil, fmt.Errorf("loading records: %w", err)
	}
	if flagCity != "" {
		records = lottery.FilterByCity(records, flagCity)
	}
	logger.Debug("Loaded records", logger.Fields{
		"path":    e.store.Path(e.cfg.Data.Records),
		"records": len(records),
		"city":    flagCity,
	})
	return records, nil
}

func (e *env) enrich(records []lottery.Record) ([]lottery.EnrichedRecord, error) {
	table, err := e.store.LoadLocalHousing(e.cfg.Data.LocalHousing)
	if err != nil {
		return nil, fmt.Errorf("loading local housing: %w", err)
	}

	enriched := lottery.Enrich(records, table)
	for _, r := range enriched {
		if _, err := lottery.ParseLotteryNumber(r.LotteryNumber); err != nil {
			logger.Warn("Lottery number has no numeric prefix", logger.Fields{
				"lottery": r.LotteryNumber,
				"project": r.ProjectNumber,
			})
		}
	}
	return enriched, nil
}

// aggregate fetches registrant counts for refs. Under the collect policy the
// map may be non-nil alongside an *dira.AggregateError.
func (e *env) aggregate(ctx context.Context, refs []lottery.Ref) (lottery.SubscriberMap, error) {
	var fetcher dira.Fetcher = dira.NewClient(
		dira.WithBaseURL(e.cfg.API.BaseURL),
		dira.WithTimeout(e.cfg.API.Timeout),
	)

	var cache *dira.Cache
	if e.cfg.API.CacheTTL > 0 {
		var err error
		if cache, err = e.store.LoadCache(e.cfg.Data.Cache, e.cfg.API.CacheTTL); err != nil {
			return nil, err
		}
		logger.Debug("Loaded subscriber cache", logger.Fields{
			"path":    e.store.Path(e.cfg.Data.Cache),
			"entries": cache.Size(),
		})
		fetcher = dira.NewCachingFetcher(fetcher, cache)
	}

	agg, err := newAggregator(e.cfg, fetcher)
	if err != nil {
		return nil, err
	}
	subs, aggErr := agg.Aggregate(ctx, refs)

	if cache != nil {
		if err := e.store.SaveCache(e.cfg.Data.Cache, cache); err != nil {
			logger.Warn("Could not save subscriber cache", logger.Fields{"error": err.Error()})
		}
	}
	return subs, aggErr
}

// logChanges reports what changed since the export being replaced.
func (e *env) logChanges(rows []lottery.Row) error {
	previous, err := e.store.LoadPreviousExport(e.cfg.Data.Export)
	if err != nil {
		return fmt.Errorf("loading previous export: %w", err)
	}
	if previous == nil {
		logger.Info("No previous export, every lottery is new", logger.Fields{"rows": len(rows)})
		return nil
	}

	changes := lottery.Diff(previous.Rows, rows)
	counts := make(map[lottery.ChangeType]int)
	for _, c := range changes {
		counts[c.ChangeType]++
		logger.Debug("Lottery changed", logger.Fields{
			"lottery": c.LotteryNumber,
			"change":  string(c.ChangeType),
			"old":     c.OldValue,
			"new":     c.NewValue,
		})
	}

	logger.Info("Changes since previous export", logger.Fields{
		"since":   previous.UpdatedAt,
		"changes": len(changes),
		"by_type": counts,
	})
	return nil
}

func newAggregator(cfg *config.Config, fetcher dira.Fetcher) (*dira.Aggregator, error) {
	policy, err := dira.ParseFailurePolicy(cfg.Aggregate.FailurePolicy)
	if err != nil {
		return nil, err
	}

	return dira.NewAggregator(fetcher,
		dira.WithFailurePolicy(policy),
		dira.WithCallTimeout(cfg.API.CallTimeout),
		dira.WithRetries(cfg.API.Retries, cfg.API.RetryBackoff),
	), nil
}
