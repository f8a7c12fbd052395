package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hubofallthings/hat-cli/internal/api"
	"github.com/hubofallthings/hat-cli/internal/dryrun"
	"github.com/hubofallthings/hat-cli/internal/validation"
)

func newDataCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Read and write HAT data records",
		Long:  "Work with records stored under <namespace>/<endpoint> on the HAT.",
	}

	cmd.AddCommand(newDataGetCmd())
	cmd.AddCommand(newDataCreateCmd())
	cmd.AddCommand(newDataUpdateCmd())
	cmd.AddCommand(newDataDeleteCmd())

	return cmd
}

func newDataGetCmd() *cobra.Command {
	var (
		take        string
		skip        string
		orderBy     string
		descending  bool
		concurrency int64
	)

	cmd := &cobra.Command{
		Use:   "get <namespace> <endpoint>...",
		Short: "List records of one or more endpoints",
		Long: strings.TrimSpace(`
List records of one or more endpoints in a namespace. Several endpoints are
fetched concurrently; JSON output is then an object keyed by endpoint.
`),
		Example: strings.TrimSpace(`
  hat data get rumpel locations --take 10 --order-by dateCreated --descending
  hat data get rumpel locations notes --json
`),
		Args: cobra.MinimumNArgs(2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			query := api.DataQuery{OrderBy: strings.TrimSpace(orderBy)}
			var err error
			if take != "" {
				if query.Take, err = validation.ParseNonNegativeInt(take, "--take"); err != nil {
					return err
				}
			}
			if skip != "" {
				if query.Skip, err = validation.ParseNonNegativeInt(skip, "--skip"); err != nil {
					return err
				}
			}
			if descending {
				if query.OrderBy == "" {
					return fmt.Errorf("--descending requires --order-by")
				}
				query.Ordering = "descending"
			}
			namespace, endpoints := args[0], dedupe(args[1:])
			if len(endpoints) == 0 {
				return fmt.Errorf("at least one endpoint is required")
			}

			s, err := getSession()
			if err != nil {
				return err
			}
			fetch := func(ctx context.Context, endpoint string) ([]api.DataRecord, error) {
				return do(ctx, s, func(ctx context.Context, onSuccess func([]api.DataRecord, *string), onFailure func(*api.StructuredError)) {
					s.client.Data().Get(ctx, s.domain(), s.token(), namespace, endpoint, query.Params(), onSuccess, onFailure)
				})
			}

			if len(endpoints) == 1 {
				records, err := fetch(cmd.Context(), endpoints[0])
				if err != nil {
					return err
				}
				if isJSON(cmd) {
					return printJSON(cmd, records)
				}
				return printRecords(cmd, records)
			}

			results := runBulkOperation(cmd.Context(), endpoints, concurrency, fetch)
			byEndpoint := make(map[string][]api.DataRecord, len(results))
			var all []api.DataRecord
			var firstErr error
			for _, r := range results {
				if !r.Success {
					if firstErr == nil {
						firstErr = fmt.Errorf("endpoint %s: %w", r.Key, r.Error)
					}
					continue
				}
				byEndpoint[r.Key] = r.Data
				all = append(all, r.Data...)
			}

			if isJSON(cmd) {
				if err := printJSON(cmd, byEndpoint); err != nil {
					return err
				}
			} else if err := printRecords(cmd, all); err != nil {
				return err
			}
			if _, failed := countResults(results); failed > 0 {
				return fmt.Errorf("%d of %d endpoints failed; first: %w", failed, len(results), firstErr)
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&take, "take", "", "Maximum number of records per endpoint")
	cmd.Flags().StringVar(&skip, "skip", "", "Number of records to skip")
	cmd.Flags().StringVar(&orderBy, "order-by", "", "Field to order records by")
	cmd.Flags().BoolVar(&descending, "descending", false, "Order descending (requires --order-by)")
	cmd.Flags().Int64Var(&concurrency, "concurrency", DefaultConcurrency, "Endpoints fetched at once")
	return cmd
}

func newDataCreateCmd() *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "create <namespace> <endpoint>",
		Short: "Create a record",
		Example: strings.TrimSpace(`
  hat data create myapp notes --data '{"text":"hello"}'
  hat data create myapp notes --data @note.json
  echo '{"text":"hello"}' | hat data create myapp notes --data -
`),
		Args: cobra.ExactArgs(2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(cmd, data)
			if err != nil {
				return err
			}
			if ok, err := maybeDryRun(cmd, &dryrun.Preview{
				Operation: "create",
				Resource:  "a record in " + args[0] + "/" + strings.Trim(args[1], "/"),
				Method:    "POST",
				Path:      "/data/" + args[0] + "/" + strings.Trim(args[1], "/"),
				Details:   map[string]any{"data": string(payload)},
			}); ok {
				return err
			}
			s, err := getSession()
			if err != nil {
				return err
			}
			record, err := do(cmd.Context(), s, func(ctx context.Context, onSuccess func(api.DataRecord, *string), onFailure func(*api.StructuredError)) {
				s.client.Data().Create(ctx, s.domain(), s.token(), args[0], args[1], json.RawMessage(payload), onSuccess, onFailure)
			})
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, record)
			}
			printText(cmd, "Created record %s in %s\n", record.RecordID, record.Endpoint)
			return nil
		}),
	}

	cmd.Flags().StringVar(&data, "data", "", "Record JSON, @file or - for stdin (required)")
	return cmd
}

func newDataUpdateCmd() *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Replace the data of existing records",
		Long: strings.TrimSpace(`
Replace the data of existing records. --data is a JSON array of records as
returned by 'hat data get', each with endpoint, recordId and data.
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			payload, err := readPayload(cmd, data)
			if err != nil {
				return err
			}
			var records []api.DataRecord
			if err := json.Unmarshal(payload, &records); err != nil {
				return fmt.Errorf("invalid --data: expected a JSON array of records: %w", err)
			}
			for i, r := range records {
				if r.RecordID == "" || r.Endpoint == "" {
					return fmt.Errorf("invalid --data: record %d must have endpoint and recordId", i)
				}
			}
			if ok, err := maybeDryRun(cmd, &dryrun.Preview{
				Operation: "update",
				Resource:  fmt.Sprintf("%d record(s)", len(records)),
				Method:    "PUT",
				Path:      "/data",
				Details:   map[string]any{"records": recordIDs(records)},
			}); ok {
				return err
			}

			s, err := getSession()
			if err != nil {
				return err
			}
			updated, err := do(cmd.Context(), s, func(ctx context.Context, onSuccess func([]api.DataRecord, *string), onFailure func(*api.StructuredError)) {
				s.client.Data().Update(ctx, s.domain(), s.token(), records, onSuccess, onFailure)
			})
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, updated)
			}
			printText(cmd, "Updated %d record(s)\n", len(updated))
			return nil
		}),
	}

	cmd.Flags().StringVar(&data, "data", "", "JSON array of records, @file or - for stdin (required)")
	return cmd
}

func newDataDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <record-id>...",
		Short: "Delete records by ID",
		Args:  cobra.MinimumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			ids := dedupe(args)
			if ok, err := maybeDryRun(cmd, &dryrun.Preview{
				Operation: "delete",
				Resource:  fmt.Sprintf("%d record(s)", len(ids)),
				Method:    "DELETE",
				Path:      "/data",
				Details:   map[string]any{"records": ids},
				Warnings:  []string{"Deleted records cannot be restored"},
			}); ok {
				return err
			}
			s, err := getSession()
			if err != nil {
				return err
			}
			ack, err := do(cmd.Context(), s, func(ctx context.Context, onSuccess func(api.Ack, *string), onFailure func(*api.StructuredError)) {
				s.client.Data().Delete(ctx, s.domain(), s.token(), ids, onSuccess, onFailure)
			})
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"deleted": ids, "message": ack.Message})
			}
			printText(cmd, "Deleted %d record(s)\n", len(ids))
			return nil
		}),
	}
}

func printRecords(cmd *cobra.Command, records []api.DataRecord) error {
	f := newFormatter(cmd)
	if len(records) == 0 {
		f.Empty("No records found")
		return nil
	}
	f.StartTable([]string{"ENDPOINT", "RECORD ID", "DATA"})
	for _, r := range records {
		f.Row(r.Endpoint, r.RecordID, truncate(string(r.Data), 80))
	}
	return f.EndTable()
}

func recordIDs(records []api.DataRecord) []string {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.RecordID
	}
	return ids
}

// dedupe drops blank and repeated arguments, keeping first occurrences.
func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
