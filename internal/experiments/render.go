package experiments

import (
	"fmt"
	"strings"

	"experiment-bot/internal/page"
	"experiment-bot/internal/paging"
)

// PageSize is the number of experiments shown per browser page.
const PageSize = 20

var markdownEscaper = strings.NewReplacer(
	"_", `\_`,
	"*", `\*`,
	"`", "\\`",
	"[", `\[`,
)

// EscapeMarkdown escapes the entity characters of legacy Telegram
// Markdown. Backslash itself cannot be escaped there and is left as is.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// BrowserRenderer renders one page of the experiment list.
type BrowserRenderer struct{}

func (BrowserRenderer) RenderPage(w paging.Window[Experiment]) (page.Page, error) {
	lines := make([]string, 0, len(w.Items))
	for _, e := range w.Items {
		lines = append(lines, fmt.Sprintf("- (%s) `%s`\n  - %s", KindTitle(e.Kind), e.ID, EscapeMarkdown(e.Label)))
	}
	desc := strings.Join(lines, "\n")
	if len(w.Items) == 0 {
		desc = "No experiments in this build."
	}
	return page.New(page.WithEmbed(page.Embed{
		Title:       fmt.Sprintf("Page %d/%d", w.Number, w.Count),
		Description: desc,
	}))
}

// NewBrowser sorts exps and wraps them in a pagination controller.
func NewBrowser(exps []Experiment, opts ...paging.Option) *paging.Controller[Experiment] {
	opts = append([]paging.Option{paging.WithPageSize(PageSize)}, opts...)
	return paging.NewController(SortForBrowsing(exps), BrowserRenderer{}, opts...)
}

// DetailPage renders a single experiment.
func DetailPage(e Experiment) (page.Page, error) {
	desc := []string{
		fmt.Sprintf("ID: `%s`", e.ID),
		fmt.Sprintf("Kind: %s", KindTitle(e.Kind)),
	}
	if e.File != "" {
		desc = append(desc, fmt.Sprintf("File: `%s`", e.File))
	}

	buckets := []string{"- Not Eligible", "- Control Bucket"}
	for _, t := range e.Treatments {
		buckets = append(buckets, fmt.Sprintf("- Treatment %d: %s", t.ID, EscapeMarkdown(t.Label)))
	}

	return page.New(page.WithEmbed(page.Embed{
		Title:       e.Label,
		Description: strings.Join(desc, "\n"),
		Fields:      []page.Field{{Name: "Treatments", Value: strings.Join(buckets, "\n")}},
	}))
}
