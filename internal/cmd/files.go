package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hubofallthings/hat-cli/internal/api"
	"github.com/hubofallthings/hat-cli/internal/dryrun"
	"github.com/hubofallthings/hat-cli/internal/validation"
)

func newFilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Store files on the HAT",
	}
	cmd.AddCommand(newFilesUploadCmd())
	return cmd
}

func newFilesUploadCmd() *cobra.Command {
	var (
		name   string
		source string
		title  string
		tags   []string
	)

	cmd := &cobra.Command{
		Use:   "upload <path>",
		Short: "Register a file and upload its content",
		Long: strings.TrimSpace(`
Register a file with the HAT file store, then upload its bytes to the
content URL the HAT returns.
`),
		Example: "  hat files upload ./photo.jpg --source myapp --tag holiday --tag 2026",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			path := args[0]
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("invalid argument: %s is a directory", path)
			}
			if err := validation.ValidateUploadSize(info.Size()); err != nil {
				return err
			}
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			if name == "" {
				name = filepath.Base(path)
			}
			tags = dedupe(tags)
			if ok, err := maybeDryRun(cmd, &dryrun.Preview{
				Operation: "upload",
				Resource:  name,
				Method:    "POST",
				Path:      "/files/upload",
				Details: map[string]any{
					"size":   len(content),
					"source": source,
					"tags":   tags,
					"title":  title,
				},
			}); ok {
				return err
			}

			s, err := getSession()
			if err != nil {
				return err
			}
			meta := api.FileMeta{Name: name, Source: source, Title: title, Tags: tags}
			registered, err := do(cmd.Context(), s, func(ctx context.Context, onSuccess func(api.FileMeta, *string), onFailure func(*api.StructuredError)) {
				s.client.Files().Register(ctx, s.domain(), s.token(), meta, onSuccess, onFailure)
			})
			if err != nil {
				return err
			}
			if registered.ContentURL == "" {
				return fmt.Errorf("HAT did not return a content URL for %s", name)
			}

			if _, err := do(cmd.Context(), s, func(ctx context.Context, onSuccess func(api.Ack, *string), onFailure func(*api.StructuredError)) {
				s.client.Files().UploadContent(ctx, registered.ContentURL, name, content, onSuccess, onFailure)
			}); err != nil {
				return fmt.Errorf("file %s registered but upload failed: %w", registered.FileID, err)
			}

			if isJSON(cmd) {
				return printJSON(cmd, registered)
			}
			printText(cmd, "Uploaded %s (%d bytes) as file %s\n", name, len(content), registered.FileID)
			return nil
		}),
	}

	cmd.Flags().StringVar(&name, "name", "", "File name on the HAT (default: base name of path)")
	cmd.Flags().StringVar(&source, "source", "hat-cli", "Source application recorded with the file")
	cmd.Flags().StringVar(&title, "title", "", "File title")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "Tag to attach (repeatable)")
	return cmd
}
