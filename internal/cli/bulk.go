package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nebulab/shopify-toolkit/internal/bulk"
	"github.com/nebulab/shopify-toolkit/internal/graphql"
	"github.com/nebulab/shopify-toolkit/internal/jsonl"
)

var (
	bulkGroupObjects     bool
	bulkClientIdentifier string
	bulkWatch            bool
	bulkVarsFile         string
	bulkInterval         time.Duration
	bulkTimeout          time.Duration
	bulkDownloadRaw      bool
	bulkDownloadOut      string
	bulkListLimit        int
)

var bulkCmd = &cobra.Command{
	Use:   "bulk",
	Short: "Run and manage Admin API bulk operations",
	Long: `Submit bulk queries and mutations, inspect their status, wait for
completion, cancel them, and download their results.

Examples:
  shopify-toolkit bulk query query.graphql --watch
  shopify-toolkit bulk mutate mutation.graphql --vars variables.jsonl
  shopify-toolkit bulk status
  shopify-toolkit bulk wait gid://shopify/BulkOperation/123
  shopify-toolkit bulk download gid://shopify/BulkOperation/123 -o results.jsonl`,
}

var bulkQueryCmd = &cobra.Command{
	Use:   "query <document|file.graphql>",
	Short: "Submit a bulk query",
	Args:  cobra.ExactArgs(1),
	RunE:  runBulkQuery,
}

var bulkMutateCmd = &cobra.Command{
	Use:   "mutate <document|file.graphql> --vars <variables.jsonl>",
	Short: "Submit a bulk mutation with staged variable upload",
	Args:  cobra.ExactArgs(1),
	RunE:  runBulkMutate,
}

var bulkStatusCmd = &cobra.Command{
	Use:   "status [id]",
	Short: "Show a bulk operation's status (the shop's current one if no id)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBulkStatus,
}

var bulkWaitCmd = &cobra.Command{
	Use:   "wait <id>",
	Short: "Poll a bulk operation until it reaches a terminal state",
	Args:  cobra.ExactArgs(1),
	RunE:  runBulkWait,
}

var bulkWatchCmd = &cobra.Command{
	Use:   "watch <id>",
	Short: "Watch a bulk operation with a live status display",
	Args:  cobra.ExactArgs(1),
	RunE:  runBulkWatch,
}

var bulkCancelCmd = &cobra.Command{
	Use:   "cancel <id>",
	Short: "Request cancellation of a running bulk operation",
	Args:  cobra.ExactArgs(1),
	RunE:  runBulkCancel,
}

var bulkDownloadCmd = &cobra.Command{
	Use:   "download <id|url>",
	Short: "Download a completed bulk operation's results",
	Args:  cobra.ExactArgs(1),
	RunE:  runBulkDownload,
}

var bulkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List locally journaled bulk operations",
	RunE:  runBulkList,
}

func init() {
	bulkQueryCmd.Flags().BoolVar(&bulkGroupObjects, "group-objects", false, "group child objects with their parents in the result file")
	bulkQueryCmd.Flags().BoolVarP(&bulkWatch, "watch", "w", false, "watch the operation until it finishes")

	bulkMutateCmd.Flags().StringVar(&bulkVarsFile, "vars", "", "JSONL file with one variable set per line (required)")
	bulkMutateCmd.Flags().BoolVar(&bulkGroupObjects, "group-objects", false, "group child objects with their parents in the result file")
	bulkMutateCmd.Flags().StringVar(&bulkClientIdentifier, "client-identifier", "", "idempotency identifier (default: random UUID)")
	bulkMutateCmd.Flags().BoolVarP(&bulkWatch, "watch", "w", false, "watch the operation until it finishes")
	bulkMutateCmd.MarkFlagRequired("vars")

	bulkWaitCmd.Flags().DurationVar(&bulkInterval, "interval", 0, "poll interval (default from config)")
	bulkWaitCmd.Flags().DurationVar(&bulkTimeout, "timeout", 0, "poll timeout (default from config)")
	bulkWatchCmd.Flags().DurationVar(&bulkInterval, "interval", 0, "poll interval (default from config)")
	bulkWatchCmd.Flags().DurationVar(&bulkTimeout, "timeout", 0, "poll timeout (default from config)")

	bulkDownloadCmd.Flags().BoolVar(&bulkDownloadRaw, "raw", false, "write the result file byte-for-byte instead of parsing it")
	bulkDownloadCmd.Flags().StringVarP(&bulkDownloadOut, "out", "o", "", "output file (default: stdout)")

	bulkListCmd.Flags().IntVarP(&bulkListLimit, "limit", "n", 20, "max operations to list")

	bulkCmd.AddCommand(bulkQueryCmd)
	bulkCmd.AddCommand(bulkMutateCmd)
	bulkCmd.AddCommand(bulkStatusCmd)
	bulkCmd.AddCommand(bulkWaitCmd)
	bulkCmd.AddCommand(bulkWatchCmd)
	bulkCmd.AddCommand(bulkCancelCmd)
	bulkCmd.AddCommand(bulkDownloadCmd)
	bulkCmd.AddCommand(bulkListCmd)
}

// loadDocument treats the argument as a file path when such a file exists,
// otherwise as an inline GraphQL document, and syntax-checks it before any
// network round trip.
func loadDocument(arg string) (string, error) {
	document := arg
	if data, err := os.ReadFile(arg); err == nil {
		document = string(data)
	}
	if err := graphql.CheckDocument(document); err != nil {
		return "", fmt.Errorf("invalid GraphQL document: %w", err)
	}
	return document, nil
}

func runBulkQuery(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	document, err := loadDocument(args[0])
	if err != nil {
		return err
	}

	client, err := getBulkClient()
	if err != nil {
		return err
	}

	op, err := client.SubmitQuery(ctx, document, bulk.SubmitOptions{
		GroupObjects: bulkGroupObjects,
	})
	if err != nil {
		return err
	}
	recordOperation(ctx, op)

	fmt.Printf("Submitted bulk query %s\n", op.ID)
	if bulkWatch {
		return watchOperation(ctx, op.ID)
	}
	printOperation(op)
	return nil
}

func runBulkMutate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	document, err := loadDocument(args[0])
	if err != nil {
		return err
	}

	variableSets, err := loadVariableSets(bulkVarsFile)
	if err != nil {
		return err
	}

	client, err := getBulkClient()
	if err != nil {
		return err
	}

	identifier := bulkClientIdentifier
	if identifier == "" {
		identifier = uuid.NewString()
	}

	op, err := client.SubmitMutation(ctx, document, variableSets, bulk.SubmitOptions{
		GroupObjects:     bulkGroupObjects,
		ClientIdentifier: identifier,
	})
	if err != nil {
		return err
	}
	recordOperation(ctx, op)

	fmt.Printf("Submitted bulk mutation %s (%d variable sets, client identifier %s)\n",
		op.ID, len(variableSets), identifier)
	if bulkWatch {
		return watchOperation(ctx, op.ID)
	}
	printOperation(op)
	return nil
}

// loadVariableSets reads a JSONL file of mutation variable sets. Unlike
// result downloads, a malformed input line is a hard error.
func loadVariableSets(path string) ([]jsonl.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read variables file: %w", err)
	}

	records, lineErrs := jsonl.Parse(data)
	if len(lineErrs) > 0 {
		first := lineErrs[0]
		return nil, fmt.Errorf("%s line %d: %w (%d malformed lines total)",
			path, first.Line, first.Err, len(lineErrs))
	}
	return records, nil
}

func runBulkStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	client, err := getBulkClient()
	if err != nil {
		return err
	}

	var op *bulk.Operation
	if len(args) == 1 {
		op, err = client.Get(ctx, args[0])
	} else {
		op, err = client.Current(ctx, nil)
	}
	if err != nil {
		return err
	}
	if op == nil {
		fmt.Println("No bulk operation found.")
		return nil
	}

	recordOperation(ctx, op)
	printOperation(op)
	return nil
}

func runBulkWait(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	client, err := getBulkClient()
	if err != nil {
		return err
	}

	op, err := waitForOperation(ctx, client, args[0], func(snapshot *bulk.Operation) {
		fmt.Printf("[%s] %d objects\n", snapshot.Status, int64(snapshot.ObjectCount))
	})
	if err != nil {
		return err
	}

	printOperation(op)
	return nil
}

// waitForOperation polls until the operation is terminal, journaling each
// snapshot along the way.
func waitForOperation(ctx context.Context, client *bulk.Client, id string, onUpdate func(*bulk.Operation)) (*bulk.Operation, error) {
	return client.PollUntilDone(ctx, id, bulk.PollOptions{
		Interval: pollInterval(),
		Timeout:  pollTimeout(),
		OnUpdate: func(snapshot *bulk.Operation) {
			recordOperation(ctx, snapshot)
			if onUpdate != nil {
				onUpdate(snapshot)
			}
		},
	})
}

func pollInterval() time.Duration {
	if bulkInterval > 0 {
		return bulkInterval
	}
	return cfg.PollInterval
}

func pollTimeout() time.Duration {
	if bulkTimeout > 0 {
		return bulkTimeout
	}
	return cfg.PollTimeout
}

func runBulkWatch(cmd *cobra.Command, args []string) error {
	return watchOperation(context.Background(), args[0])
}

func runBulkCancel(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	client, err := getBulkClient()
	if err != nil {
		return err
	}

	op, err := client.Cancel(ctx, args[0])
	if err != nil {
		return err
	}
	recordOperation(ctx, op)

	fmt.Printf("Cancellation requested for %s\n", op.ID)
	printOperation(op)
	return nil
}

func runBulkDownload(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	client, err := getBulkClient()
	if err != nil {
		return err
	}

	url := args[0]
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		op, err := client.Get(ctx, url)
		if err != nil {
			return err
		}
		if op == nil {
			return fmt.Errorf("bulk operation not found: %s", url)
		}
		recordOperation(ctx, op)
		if op.URL == "" {
			return fmt.Errorf("operation %s has no result file (status %s)", op.ID, op.Status)
		}
		url = op.URL
	}

	var output []byte
	if bulkDownloadRaw {
		output, err = client.DownloadRaw(ctx, url)
		if err != nil {
			return err
		}
	} else {
		records, err := client.DownloadURL(ctx, url)
		if err != nil {
			return err
		}
		output, err = jsonl.Marshal(records)
		if err != nil {
			return err
		}
		if len(output) > 0 {
			output = append(output, '\n')
		}
	}

	if bulkDownloadOut == "" {
		_, err = os.Stdout.Write(output)
		return err
	}
	if err := os.WriteFile(bulkDownloadOut, output, 0644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	fmt.Printf("Wrote %d bytes to %s\n", len(output), bulkDownloadOut)
	return nil
}

func runBulkList(cmd *cobra.Command, args []string) error {
	entries, err := st.ListOperations(context.Background(), bulkListLimit)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("No bulk operations journaled yet.")
		return nil
	}

	fmt.Printf("%-42s %-9s %-10s %-10s %s\n", "ID", "TYPE", "STATUS", "OBJECTS", "CREATED")
	fmt.Println(strings.Repeat("-", 88))
	for _, e := range entries {
		fmt.Printf("%-42s %-9s %-10s %-10d %s\n",
			e.ID, e.Kind, e.Status, e.ObjectCount, e.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

// recordOperation journals a snapshot; journaling is best effort and never
// fails the command.
func recordOperation(ctx context.Context, op *bulk.Operation) {
	if op == nil || st == nil {
		return
	}
	if err := st.RecordOperation(ctx, op); err != nil {
		logger.Warn("failed to journal operation", "id", op.ID, "error", err)
	}
}

func printOperation(op *bulk.Operation) {
	fmt.Printf("Operation: %s\n", op.ID)
	fmt.Printf("  Type: %s\n", op.Kind)
	fmt.Printf("  Status: %s\n", op.Status)
	fmt.Printf("  Objects: %d\n", int64(op.ObjectCount))
	if op.FileSize > 0 {
		fmt.Printf("  File size: %d bytes\n", int64(op.FileSize))
	}
	if !op.CreatedAt.IsZero() {
		fmt.Printf("  Created: %s\n", op.CreatedAt.Format(time.RFC3339))
	}
	if op.CompletedAt != nil {
		fmt.Printf("  Completed: %s\n", op.CompletedAt.Format(time.RFC3339))
		if !op.CreatedAt.IsZero() {
			fmt.Printf("  Duration: %s\n", op.CompletedAt.Sub(op.CreatedAt).Round(time.Second))
		}
	}
	if op.ErrorCode != "" {
		fmt.Printf("  Error code: %s\n", op.ErrorCode)
	}
	if op.URL != "" {
		fmt.Printf("  Result file: %s\n", op.URL)
	}
	if op.PartialDataURL != "" {
		fmt.Printf("  Partial data: %s\n", op.PartialDataURL)
	}
}
