package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hubofallthings/hat-cli/internal/api"
	"github.com/hubofallthings/hat-cli/internal/cli"
)

// now is swapped in tests.
var now = time.Now

func newFeedCmd() *cobra.Command {
	var (
		since  string
		until  string
		suffix string
	)

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show the she feed",
		Long: strings.TrimSpace(`
Fetch the she feed, the HAT's merged timeline of data from every source.

--since and --until accept unix seconds, "now", "today", "yesterday", a
weekday, a relative time such as 24h or "3d ago", a date (YYYY-MM-DD) or an
RFC 3339 time.
`),
		Example: strings.TrimSpace(`
  hat feed --since 7d
  hat feed --since 2026-01-01T00:00:00Z --until 2026-02-01T00:00:00Z --json
  hat feed --suffix /rumpel
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			var params api.Params
			for _, bound := range []struct{ key, value string }{{"since", since}, {"until", until}} {
				if strings.TrimSpace(bound.value) == "" {
					continue
				}
				ts, err := parseFeedTime(bound.value, now())
				if err != nil {
					return fmt.Errorf("invalid --%s: %w", bound.key, err)
				}
				params = append(params, api.Param{Key: bound.key, Value: strconv.FormatInt(ts, 10)})
			}
			if suffix != "" && !strings.HasPrefix(suffix, "/") {
				suffix = "/" + suffix
			}

			s, err := getSession()
			if err != nil {
				return err
			}
			items, err := do(cmd.Context(), s, func(ctx context.Context, onSuccess func([]api.FeedItem, *string), onFailure func(*api.StructuredError)) {
				s.client.Feed().GetFeed(ctx, s.domain(), s.token(), params, suffix, onSuccess, onFailure)
			})
			if err != nil {
				return err
			}

			if isJSON(cmd) {
				return printJSON(cmd, items)
			}
			f := newFormatter(cmd)
			if len(items) == 0 {
				f.Empty("No feed items found")
				return nil
			}
			f.StartTable([]string{"DATE", "SOURCE", "TITLE", "CONTENT"})
			for _, item := range items {
				f.Row(feedDate(item), orDash(item.Source), orDash(feedTitle(item)), orDash(feedContent(item)))
			}
			return f.EndTable()
		}),
	}

	cmd.Flags().StringVar(&since, "since", "", "Only items after this time")
	cmd.Flags().StringVar(&until, "until", "", "Only items before this time")
	cmd.Flags().StringVar(&suffix, "suffix", "", "Feed path suffix, e.g. /rumpel for one source")
	return cmd
}

// parseFeedTime turns a --since/--until value into unix seconds.
func parseFeedTime(value string, ref time.Time) (int64, error) {
	t, err := cli.ParsePastTime(value, ref)
	if err != nil {
		return 0, err
	}
	return t.Unix(), nil
}

func feedDate(item api.FeedItem) string {
	if item.Date == nil {
		return "-"
	}
	t := item.Date.Time()
	if t.IsZero() {
		return orDash(item.Date.ISO)
	}
	return t.Format("2006-01-02 15:04")
}

func feedTitle(item api.FeedItem) string {
	if item.Title != nil {
		return truncate(item.Title.Text, 40)
	}
	return item.ActionCode
}

func feedContent(item api.FeedItem) string {
	if item.Content != nil && item.Content.Text != "" {
		return truncate(item.Content.Text, 60)
	}
	if item.Message != nil {
		return truncate(*item.Message, 60)
	}
	return ""
}
