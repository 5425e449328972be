package ui

import (
	"fmt"
	"strings"

	"mindscape/internal/api"
	"mindscape/internal/journal"
)

// PrintProfile renders the signed-in user
func (d *Display) PrintProfile(u *api.User) {
	if u == nil {
		d.PrintInfo("Not signed in")
		return
	}
	var b strings.Builder
	b.WriteString(d.styles.Title.Render(u.FullName) + "\n")
	b.WriteString(d.styles.Subtle.Render(u.Email) + "\n")
	d.write(b.String())
}

// PrintJournal renders journal entries followed by their summary
func (d *Display) PrintJournal(entries []journal.Entry, tags []string) {
	var b strings.Builder
	b.WriteString(d.styles.Title.Render("Emotion journal") + "\n")
	if len(tags) > 0 {
		b.WriteString(d.styles.Subtle.Render("Tags: "+strings.Join(tags, ", ")) + "\n")
	}

	if len(entries) == 0 {
		b.WriteString("\n" + d.styles.Subtle.Render("No entries match. Log one with `mindscape log-emotion`.") + "\n")
		d.write(b.String())
		return
	}

	for _, e := range entries {
		b.WriteString("\n")
		date := ""
		if !e.Date.IsZero() {
			date = e.Date.Local().Format("Mon Jan 2 2006 15:04")
		}
		b.WriteString(fmt.Sprintf("%s %s  %s  %s\n",
			e.Emoji,
			d.styles.Title.Render(e.Emotion),
			journal.IntensityBar(e.Intensity),
			d.styles.Subtle.Render(date)))
		if e.Description != "" {
			b.WriteString("   " + e.Description + "\n")
		}
		if len(e.Tags) > 0 {
			b.WriteString("   " + d.styles.Subtle.Render("#"+strings.Join(e.Tags, " #")) + "\n")
		}
	}

	s := journal.Summarize(entries)
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %d   %s %d/5   %s %d   %s %d\n",
		d.styles.Subtle.Render("Entries"), s.Count,
		d.styles.Subtle.Render("Average intensity"), s.AverageIntensity,
		d.styles.Subtle.Render("Mild days"), s.Low,
		d.styles.Subtle.Render("Intense days"), s.High))
	d.write(b.String())
}

// PrintTrends renders emotion shares, polarity totals and daily bars
func (d *Display) PrintTrends(t *api.Trends) {
	var b strings.Builder
	b.WriteString(d.styles.Title.Render("Emotion trends · "+t.Period) + "\n")

	if len(t.Emotions) == 0 && len(t.Daily) == 0 {
		b.WriteString(d.styles.Subtle.Render("Not enough data yet.") + "\n")
		d.write(b.String())
		return
	}

	for _, st := range t.Emotions {
		arrow := "→"
		switch {
		case st.Trend > 0:
			arrow = "↑"
		case st.Trend < 0:
			arrow = "↓"
		}
		bar := strings.Repeat("█", int(st.Percentage/5))
		b.WriteString(fmt.Sprintf("  %s %-10s %3d  %5.1f%% %s %s\n",
			st.Emoji, st.Emotion, st.Count, st.Percentage, arrow, bar))
	}

	counts := journal.PolarityCounts(t.Emotions)
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s  %s  %s\n",
		d.styles.Positive.Render(fmt.Sprintf("positive %d", counts[journal.Positive])),
		d.styles.Negative.Render(fmt.Sprintf("negative %d", counts[journal.Negative])),
		d.styles.Neutral.Render(fmt.Sprintf("neutral %d", counts[journal.Neutral]))))

	if len(t.Daily) > 0 {
		b.WriteString("\n")
		for _, day := range t.Daily {
			b.WriteString(fmt.Sprintf("  %-6s %s%s%s\n",
				day.Date,
				d.styles.Positive.Render(strings.Repeat("■", day.Positive)),
				d.styles.Neutral.Render(strings.Repeat("■", day.Neutral)),
				d.styles.Negative.Render(strings.Repeat("■", day.Negative))))
		}
	}
	d.write(b.String())
}

// PrintDashboard renders the greeting, stats and recent activity
func (d *Display) PrintDashboard(o *api.DashboardOverview) {
	var b strings.Builder
	if o.Greeting != "" {
		b.WriteString(d.styles.Title.Render(o.Greeting) + "\n\n")
	}
	today := o.Stats.TodayEmotion
	if today == "" {
		today = "not logged yet"
	}
	b.WriteString(fmt.Sprintf("  %-22s %s\n", "Today's emotion", today))
	b.WriteString(fmt.Sprintf("  %-22s %d\n", "Journal entries", o.Stats.JournalEntries))
	b.WriteString(fmt.Sprintf("  %-22s %d\n", "Good days this week", o.Stats.GoodDaysThisWeek))
	b.WriteString(fmt.Sprintf("  %-22s %d\n", "Chat sessions", o.Stats.ChatSessions))

	if len(o.Activities) > 0 {
		b.WriteString("\n" + d.styles.Title.Render("Recent activity") + "\n")
		for _, a := range o.Activities {
			b.WriteString(fmt.Sprintf("  • %s %s\n", a.Action, d.styles.Subtle.Render(a.Time)))
		}
	}
	d.write(b.String())
}

// PrintResources renders each resource group
func (d *Display) PrintResources(r *api.PersonalizedResources) {
	var b strings.Builder
	groups := []struct {
		title string
		items []api.SupportResource
	}{
		{"Articles", r.Articles},
		{"Techniques", r.Techniques},
		{"Support", r.Resources},
	}
	for _, g := range groups {
		if len(g.items) == 0 {
			continue
		}
		b.WriteString(d.styles.Title.Render(g.title) + "\n")
		for _, item := range g.items {
			meta := []string{}
			for _, v := range []string{item.Category, item.Duration, item.Difficulty} {
				if v != "" {
					meta = append(meta, v)
				}
			}
			line := "  " + strings.TrimSpace(item.Icon+" "+item.Title)
			if len(meta) > 0 {
				line += " " + d.styles.Subtle.Render("("+strings.Join(meta, " · ")+")")
			}
			b.WriteString(line + "\n")
			if desc := PlainText(item.Description); desc != "" {
				b.WriteString("    " + truncate(desc, d.width-6) + "\n")
			}
		}
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		b.WriteString(d.styles.Subtle.Render("No resources available right now.") + "\n")
	}
	d.write(b.String())
}

// PrintRelaxVideos renders the relaxation video list
func (d *Display) PrintRelaxVideos(v *api.RelaxVideos) {
	var b strings.Builder
	b.WriteString(d.styles.Title.Render("Relax") + "\n")
	if v.Message != "" {
		b.WriteString(d.styles.Subtle.Render(v.Message) + "\n")
	}
	for i, video := range v.Videos {
		b.WriteString(fmt.Sprintf("\n%2d. %s\n", i+1, video.Title))
		if desc := PlainText(video.Description); desc != "" {
			b.WriteString("    " + truncate(desc, d.width-6) + "\n")
		}
		if video.URL != "" {
			b.WriteString("    " + d.styles.Info.Render(video.URL) + "\n")
		}
	}
	d.write(b.String())
}
