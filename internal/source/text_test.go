// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"testing"
)

func TestParseCount(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"17010", 17010},
		{"17.0k", 17000},
		{"1.5K", 1500},
		{"2.3m", 2300000},
		{"1,234", 1234},
		{"522 comments", 522},
		{"1,024 comments", 1024},
		{"•", 0},
		{"", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseCount(tt.in); got != tt.want {
				t.Errorf("parseCount(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 3, "hel"},
		{"한국어입니다", 3, "한국어"},
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		if got := truncateRunes(tt.in, tt.n); got != tt.want {
			t.Errorf("truncateRunes(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"<p>Hello <b>world</b></p>", "Hello world"},
		{"plain   text\n here", "plain text here"},
		{"fish &amp; chips", "fish & chips"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := stripHTML(tt.in); got != tt.want {
			t.Errorf("stripHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFirstImage(t *testing.T) {
	got := firstImage(`<table><tr><td><a href="x"><img src="https://i.redd.it/a.jpg" alt="t"/></a></td></tr></table>`)
	if got != "https://i.redd.it/a.jpg" {
		t.Errorf("firstImage = %q", got)
	}
	if got := firstImage("no images"); got != "" {
		t.Errorf("firstImage without img = %q", got)
	}
}

func TestIsImageURL(t *testing.T) {
	for _, u := range []string{"https://i.redd.it/a.jpg", "https://x/y.PNG", "https://x/y.webp"} {
		if !isImageURL(u) {
			t.Errorf("isImageURL(%q) = false", u)
		}
	}
	for _, u := range []string{"https://x/page", "https://x/y.jpg?w=1", ""} {
		if isImageURL(u) {
			t.Errorf("isImageURL(%q) = true", u)
		}
	}
}

func TestSubredditOf(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/r/science/comments/abc/title/", "science"},
		{"r/tea/comments/x/", "tea"},
		{"/user/bob", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := subredditOf(tt.in); got != tt.want {
			t.Errorf("subredditOf(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHashIDStable(t *testing.T) {
	a := hashID("https://example.com/story")
	b := hashID("https://example.com/story")
	if a != b {
		t.Errorf("hashID not stable: %q vs %q", a, b)
	}
	if len(a) != 16 {
		t.Errorf("len(hashID) = %d, want 16", len(a))
	}
	if a == hashID("https://example.com/other") {
		t.Error("different links share an id")
	}
}

func TestValidBase(t *testing.T) {
	got, err := validBase("https://api.example.com/reddit/")
	if err != nil || got != "https://api.example.com/reddit" {
		t.Errorf("validBase = %q, %v", got, err)
	}
	for _, bad := range []string{"", "ftp://x", "/relative", "://bad"} {
		if _, err := validBase(bad); err == nil {
			t.Errorf("validBase(%q) succeeded", bad)
		}
	}
}
