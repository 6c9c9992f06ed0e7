// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package session

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

const (
	msgNoAlbums = "No Video Albums"
	msgAlbums   = "Video Albums (%d)"
)

var titles = func() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for _, e := range []struct {
		tag      language.Tag
		key, msg string
	}{
		{language.English, msgNoAlbums, msgNoAlbums},
		{language.English, msgAlbums, msgAlbums},
		{language.Japanese, msgNoAlbums, "ビデオアルバム無し"},
		{language.Japanese, msgAlbums, "ビデオアルバム (%d)"},
	} {
		if err := b.SetString(e.tag, e.key, e.msg); err != nil {
			panic(err)
		}
	}
	return b
}()

// NavigationTitle returns the album list title for n albums in lang.
func NavigationTitle(lang language.Tag, n int) string {
	p := message.NewPrinter(lang, message.Catalog(titles))
	if n == 0 {
		return p.Sprintf(msgNoAlbums)
	}
	return p.Sprintf(msgAlbums, n)
}
