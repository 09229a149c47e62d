package telegram

import (
	"fmt"
	"strconv"

	"github.com/glintlabs/glint/internal/post"
)

// synthesize combines raw messages into unified posts. Members sharing a
// group id become one post; the group's text is the last non-empty text seen,
// and media links are collected from every attachment-bearing member no
// matter which member carries the caption. A group with no text never
// becomes a post — dropping media-only groups is policy, not an accident.
func synthesize(msgs []Message, source, alias string) []post.Post {
	type group struct {
		text    string
		main    Message
		members []Message
	}

	groups := make(map[int64]*group)
	var order []int64

	for _, m := range msgs {
		key := m.GroupID
		if key == 0 {
			key = int64(m.ID)
		}
		g, ok := groups[key]
		if !ok {
			g = &group{main: m}
			groups[key] = g
			order = append(order, key)
		}
		g.members = append(g.members, m)
		if m.Text != "" {
			g.text = m.Text
			g.main = m
		}
	}

	var posts []post.Post
	for _, key := range order {
		g := groups[key]
		if g.text == "" {
			continue
		}

		p := post.New(
			platformName,
			source,
			messageURL(alias, g.main.ID),
			g.text,
			g.main.Date,
		)
		for _, m := range g.members {
			if m.HasMedia {
				p.MediaURLs = append(p.MediaURLs, messageURL(alias, m.ID)+"?single")
			}
		}
		p.Metadata["message_id"] = strconv.Itoa(g.main.ID)
		if g.main.GroupID != 0 {
			p.Metadata["group_id"] = strconv.FormatInt(g.main.GroupID, 10)
		}

		posts = append(posts, p)
	}

	return posts
}

func messageURL(alias string, id int) string {
	return fmt.Sprintf("https://t.me/%s/%d", alias, id)
}
