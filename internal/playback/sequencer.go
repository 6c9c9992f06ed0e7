// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package playback

import (
	"github.com/ManuGH/albumplay/internal/media"
)

// Unset is the play index reported when no video is positioned.
const Unset = -1

// Sequencer owns the active album, its materialized play order and a cursor.
//
// A Sequencer is not safe for concurrent use. It must be owned by a single
// goroutine; in this repository that is the session event loop.
// No method fails: absence is reported as false, ok=false or Unset.
type Sequencer struct {
	album    *media.Album
	playList []media.Video
	index    int
}

// NewSequencer returns an empty sequencer with no album loaded.
func NewSequencer() *Sequencer {
	return &Sequencer{index: Unset}
}

// SetAlbum records album as the active album. The play order and cursor are
// left untouched until InitializePlayList is called.
func (s *Sequencer) SetAlbum(album media.Album) {
	a := album.Clone()
	s.album = &a
}

// Album returns the active album.
func (s *Sequencer) Album() (media.Album, bool) {
	if s.album == nil {
		return media.Album{}, false
	}
	return *s.album, true
}

// InitializePlayList recomputes the play order of the active album under
// policy and positions the cursor on the first video. Without an active album
// it does nothing. An album without videos leaves the cursor unset.
func (s *Sequencer) InitializePlayList(policy SortPolicy) {
	if s.album == nil {
		return
	}
	s.playList = Apply(s.album.Videos, policy)
	if len(s.playList) == 0 {
		s.index = Unset
		return
	}
	s.index = 0
}

// PlayList returns a copy of the current play order.
func (s *Sequencer) PlayList() []media.Video {
	out := make([]media.Video, len(s.playList))
	copy(out, s.playList)
	return out
}

// Len returns the length of the play order.
func (s *Sequencer) Len() int {
	return len(s.playList)
}

// PlayIndex returns the cursor, or Unset.
func (s *Sequencer) PlayIndex() int {
	if !s.positioned() {
		return Unset
	}
	return s.index
}

// CurrentVideo returns the video under the cursor.
func (s *Sequencer) CurrentVideo() (media.Video, bool) {
	if !s.positioned() {
		return media.Video{}, false
	}
	return s.playList[s.index], true
}

// Next advances the cursor. Past the last video the cursor stays on the last
// video and false is returned.
func (s *Sequencer) Next() bool {
	if len(s.playList) == 0 {
		return false
	}
	s.index++
	if s.index >= len(s.playList) {
		s.index = len(s.playList) - 1
		return false
	}
	return true
}

// Previous moves the cursor back. Before the first video the cursor stays on
// the first video and false is returned.
func (s *Sequencer) Previous() bool {
	if len(s.playList) == 0 {
		return false
	}
	s.index--
	if s.index < 0 {
		s.index = 0
		return false
	}
	return true
}

// EnablePrevious reports whether Previous would move the cursor.
func (s *Sequencer) EnablePrevious() bool {
	return s.album != nil && len(s.playList) > 0 && s.index > 0
}

func (s *Sequencer) positioned() bool {
	return s.index >= 0 && s.index < len(s.playList)
}
