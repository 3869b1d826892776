package slack

import (
	"fmt"
	"strings"

	"github.com/secmon-lab/scantrend/pkg/domain/model"
	"github.com/slack-go/slack"
)

// maxMismatchLines bounds the reconciliation details in one message
const maxMismatchLines = 5

// BuildSummaryBlocks renders a run summary as Block Kit blocks
func BuildSummaryBlocks(summary *model.RunSummary) []slack.Block {
	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType,
			"Security scan trend updated", false, false)),
		slack.NewSectionBlock(nil, []*slack.TextBlockObject{
			mrkdwn(fmt.Sprintf("*Commits*\n%d", summary.Commits)),
			mrkdwn(fmt.Sprintf("*Periods*\n%d", summary.Periods)),
			mrkdwn(fmt.Sprintf("*Columns*\n%d", summary.Columns)),
			mrkdwn(fmt.Sprintf("*Diagnostics*\n%d", summary.Diagnostics)),
		}, nil),
		slack.NewDividerBlock(),
	}

	for _, sc := range summary.Scanners {
		blocks = append(blocks, slack.NewSectionBlock(mrkdwn(formatScanner(sc)), nil, nil))
	}

	status := ":white_check_mark: declared totals reconcile"
	if !summary.Reconciles() {
		status = ":warning: declared totals do not reconcile"
	}
	blocks = append(blocks, slack.NewContextBlock("",
		mrkdwn(fmt.Sprintf("%s | run `%s`", status, summary.RunID))))

	return blocks
}

// SummaryText is the plain-text fallback of a summary message
func SummaryText(summary *model.RunSummary) string {
	return fmt.Sprintf("Security scan trend updated: %d commits in %d periods", summary.Commits, summary.Periods)
}

func formatScanner(sc model.ScannerSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*: %d findings in %d/%d reports", sc.Name, sc.Total, sc.Reports, sc.Rows)

	var parts []string
	for _, c := range sc.Categories {
		parts = append(parts, fmt.Sprintf("%s %d", c, sc.Totals.Get(c)))
	}
	if len(parts) > 0 {
		fmt.Fprintf(&b, "\n%s", strings.Join(parts, " · "))
	}

	if sc.HasDeclared {
		fmt.Fprintf(&b, "\ndeclared %d", sc.Declared)
		for i, m := range sc.Mismatches {
			if i == maxMismatchLines {
				fmt.Fprintf(&b, "\n…and %d more", len(sc.Mismatches)-maxMismatchLines)
				break
			}
			fmt.Fprintf(&b, "\n`%s` declared %d, counted %d", m.Commit.Short(), m.Declared, m.Sum)
		}
	}
	return b.String()
}

func mrkdwn(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.MarkdownType, text, false, false)
}
