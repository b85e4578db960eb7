// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package digest

import (
	"bytes"
	"text/template"

	"github.com/pdiddy/trendcrawl/pkg/types"
)

// Category is one digest section.
type Category struct {
	Name  string
	Emoji string
	Color int
	Scope string
}

// Categories lists the digest sections in display order.
var Categories = []Category{
	{Name: "Tech/AI", Emoji: "🤖", Color: 0x00D4AA, Scope: "technology trends that affect everyday life, excluding programming-only posts"},
	{Name: "Science/Health", Emoji: "🔬", Color: 0x3498DB, Scope: "research results, health, psychology"},
	{Name: "World", Emoji: "🌍", Color: 0xE74C3C, Scope: "international news, economy, social change"},
	{Name: "Culture/Life", Emoji: "🎬", Color: 0xF39C12, Scope: "film, television, food, travel, viral stories"},
	{Name: "Curiosities", Emoji: "💡", Color: 0x9B59B6, Scope: "TIL posts, trivia, conversation starters"},
	{Name: "Tips", Emoji: "🛠️", Color: 0x2ECC71, Scope: "practical everyday advice"},
	{Name: "Hobbies", Emoji: "☕", Color: 0xE67E22, Scope: "coffee, tea, whisky, beer, fragrance, puzzles, DIY, crafts"},
	{Name: "Humor", Emoji: "😂", Color: 0xF1C40F, Scope: "jokes, funny mishaps, workplace stories, verdict threads, odd questions"},
}

const defaultColor = 0x95A5A6

// lookupCategory returns the named category, or a plain one with the
// default color for names the model invented.
func lookupCategory(name string) Category {
	for _, c := range Categories {
		if c.Name == name {
			return c
		}
	}
	return Category{Name: name, Emoji: "📌", Color: defaultColor}
}

var funcs = template.FuncMap{"trunc": truncate}

var classifyPromptTmpl = template.Must(template.New("classify").Funcs(funcs).Parse(`Below is a list of posts collected over one day from Hacker News, news feeds, and Reddit.

Goal: remove duplicates and keep as many posts as possible. Do not curate; drop only posts that are plainly meaningless.

Categories:
{{range .Categories}}- {{.Name}}: {{.Scope}}
{{end}}
Rules:
1. Exclude only posts about software development that a general reader cannot follow.
2. When several posts cover the same story, keep one and list the others in merged_indices.
3. There is no limit on the number of posts kept.
4. Keep a balance of Hacker News, feed, and Reddit posts.
5. Keep feed and Reddit posts with a score of 0 when the title is interesting.

Posts:
{{range $i, $r := .Records}}[{{$i}}] ({{$r.Source}}) {{$r.Title}} [score:{{$r.Score}}, comments:{{$r.CommentCount}}, seen:{{$r.SeenCount}}]
{{if $r.Hint}}    {{trunc $r.Hint 300}}
{{end}}{{end}}
Answer with a JSON array only, no other text:
[{"index": number, "category": "category name", "merged_indices": [numbers]}]
`))

var summaryPromptTmpl = template.Must(template.New("summary").Funcs(funcs).Parse(`Summarize each post in {{.Language}}:
1. headline: one catchy line of 15 to 25 characters with a concrete fact (a number or a proper noun).
2. detail: five to seven sentences of concrete facts: who, when, where, what, how, and why.
   Never write empty phrases such as "this provides important information".
   First sentence: what happened. Next two: the specifics. Last two: why it matters.
3. best_comments: translate up to two of the best comments as "name: text", keeping their tone. Use an empty array when there are none.

Use only the facts in the content and comments below; do not invent anything.
Inside JSON strings write backslashes as \\ and line breaks as \n.

{{range $i, $r := .Records}}[{{$i}}] Category: {{$r.Category}}
    Source: {{$r.Source}}
    Title: {{$r.Title}}
    URL: {{$r.URL}}
{{if $r.Hint}}    Content: {{trunc $r.Hint 500}}
{{end}}{{if $r.TopComments}}    Best comments:
{{range $r.TopComments}}      - u/{{.Author}} ({{.Score}}): {{trunc .Body 150}}
{{end}}{{end}}
{{end}}Answer with a JSON array only, no other text:
[{"index": number, "headline": "headline", "detail": "detail", "best_comments": ["comment"]}]
`))

// classified is a record with the category the model assigned to it.
type classified struct {
	types.Record
	Category string
}

func renderClassifyPrompt(records []types.Record) (string, error) {
	var buf bytes.Buffer
	err := classifyPromptTmpl.Execute(&buf, struct {
		Categories []Category
		Records    []types.Record
	}{Categories, records})
	return buf.String(), err
}

func renderSummaryPrompt(language string, batch []classified) (string, error) {
	var buf bytes.Buffer
	err := summaryPromptTmpl.Execute(&buf, struct {
		Language string
		Records  []classified
	}{language, batch})
	return buf.String(), err
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
