package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mindscape/internal/api"
	"mindscape/internal/journal"
)

func newLogEmotionCmd(a *app) *cobra.Command {
	var intensity int
	var note string
	var tags []string
	cmd := &cobra.Command{
		Use:   "log-emotion [mood]",
		Short: "Log how you are feeling",
		Long: `Log how you are feeling. Moods: happy, sad, anxious, angry, tired, calm,
loved, confused. Without a mood you are asked to pick one.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return a.logEmotion(cmd.Context(), name, intensity, note, tags)
		},
	}
	cmd.Flags().IntVarP(&intensity, "intensity", "i", 3, "intensity from 1 (very mild) to 5 (very strong)")
	cmd.Flags().StringVarP(&note, "note", "n", "", "what happened")
	cmd.Flags().StringSliceVarP(&tags, "tags", "t", nil, "comma separated tags, e.g. Work,Health")
	return cmd
}

func (a *app) logEmotion(ctx context.Context, name string, intensity int, note string, tags []string) error {
	if name == "" {
		for i, m := range journal.Moods {
			fmt.Fprintf(a.out, "  %d. %s %s\n", i+1, m.Emoji, m.Label)
		}
		answer, err := a.reader.PromptRequired("How are you feeling")
		if err != nil {
			return err
		}
		name = answer
		if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(journal.Moods) {
			name = journal.Moods[n-1].Value
		}
	}

	mood, ok := journal.LookupMood(name)
	if !ok {
		return fmt.Errorf("unknown mood %q", name)
	}
	if journal.IntensityLabel(intensity) == "" {
		return errors.New("intensity must be between 1 and 5")
	}

	err := a.client.CreateEmotion(ctx, api.CreateEmotionPayload{
		Emotion:     mood.Value,
		Intensity:   intensity,
		Description: strings.TrimSpace(note),
		Tags:        tags,
		Emoji:       mood.Emoji,
	})
	if err != nil {
		return errors.New(api.Detail(err, "Your emotion could not be saved. Please try again."))
	}

	a.display.PrintSuccess(fmt.Sprintf("Logged %s %s (%s)", mood.Emoji, mood.Label, journal.IntensityLabel(intensity)))
	return nil
}

func newJournalCmd(a *app) *cobra.Command {
	var filter journal.Filter
	var q api.EmotionQuery
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Browse your emotion journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			if q.EmotionType != "" {
				mood, ok := journal.LookupMood(q.EmotionType)
				if !ok {
					return fmt.Errorf("unknown mood %q", q.EmotionType)
				}
				q.EmotionType = mood.Value
			}

			list, err := a.client.ListEmotions(cmd.Context(), q)
			if err != nil {
				return err
			}
			entries := journal.FromRecords(list.Emotions)
			a.display.PrintJournal(filter.Apply(entries), journal.Tags(entries))
			if p := list.Pagination; p != nil && p.TotalPages > p.Page {
				a.display.PrintInfo(fmt.Sprintf("Page %d of %d. Use --page for more.", p.Page, p.TotalPages))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&filter.Tag, "tag", "", "only entries with this tag")
	cmd.Flags().StringVar(&filter.Query, "search", "", "search entry descriptions")
	cmd.Flags().StringVar(&q.EmotionType, "mood", "", "only entries with this mood")
	cmd.Flags().StringVar(&q.StartDate, "from", "", "first day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&q.EndDate, "to", "", "last day to include (YYYY-MM-DD)")
	cmd.Flags().IntVar(&q.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&q.Limit, "limit", 50, "entries per page")
	return cmd
}

func newTrendsCmd(a *app) *cobra.Command {
	var period string
	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Show emotion trends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			trends, err := a.client.Trends(cmd.Context(), period)
			if err != nil {
				return err
			}
			a.display.PrintTrends(trends)
			return nil
		},
	}
	cmd.Flags().StringVarP(&period, "period", "p", api.PeriodWeek, "week, month or year")
	return cmd
}
