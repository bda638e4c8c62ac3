package client

import "fmt"

var ImageStyles = []string{
	"Realistic",
	"Ghibli style",
	"Anime style",
	"Cartoon style",
	"Fantasy style",
	"3D style",
	"Portrait style",
}

type ArticleLength struct {
	Tokens int
	Label  string
}

var ArticleLengths = []ArticleLength{
	{Tokens: 800, Label: "Short (500-800 words)"},
	{Tokens: 1200, Label: "Medium (800-1200 words)"},
	{Tokens: 1600, Label: "Long (1200+ words)"},
}

var BlogCategories = []string{
	"General",
	"Technology",
	"Business",
	"Health",
	"Lifestyle",
	"Education",
	"Travel",
	"Food",
}

func ImagePrompt(subject, style string) string {
	return fmt.Sprintf("Generate an image of %s in the Style %s", subject, style)
}

func ArticlePrompt(topic string, length ArticleLength) string {
	return fmt.Sprintf("Write an article about %s in %s", topic, length.Label)
}

func BlogTitlePrompt(keyword, category string) string {
	return fmt.Sprintf("Generate a blog title for the keyword %s in the category %s", keyword, category)
}

// LookupArticleLength matches a label or token count, defaulting to the shortest.
func LookupArticleLength(s string) ArticleLength {
	for _, l := range ArticleLengths {
		if s == l.Label || s == fmt.Sprint(l.Tokens) {
			return l
		}
	}
	return ArticleLengths[0]
}
