// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package session drives album playback for one viewer. A Controller owns a
// playback.Sequencer and confines it to a single event-loop goroutine; every
// public method is a message to that loop.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ManuGH/albumplay/internal/log"
	"github.com/ManuGH/albumplay/internal/media"
	"github.com/ManuGH/albumplay/internal/metrics"
	"github.com/ManuGH/albumplay/internal/playback"
	"github.com/ManuGH/albumplay/internal/settings"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
)

var (
	// ErrClosed is returned once the event loop has stopped.
	ErrClosed = errors.New("session closed")
	// ErrAlbumNotFound is returned by OpenAlbum for unknown album IDs.
	ErrAlbumNotFound = errors.New("album not found")
	// ErrNoAlbumOpen is returned by playback commands while no album is open.
	ErrNoAlbumOpen = errors.New("no album open")
)

// Preferences supplies the user settings read when an album is opened.
type Preferences interface {
	Current() settings.Settings
}

// Config tunes a Controller.
type Config struct {
	HideNavDelay time.Duration // default 2s
	Language     language.Tag  // navigation title language
	EventBuffer  int           // per-subscriber buffer, default 32
}

// Controller is the playback session.
type Controller struct {
	cfg    Config
	prefs  Preferences
	id     string
	logger zerolog.Logger

	cmds    chan func()
	done    chan struct{}
	started sync.Once
	now     func() time.Time

	// Owned by the loop goroutine.
	seq          *playback.Sequencer
	albums       []media.Album
	accessDenied bool
	open         bool
	paused       bool
	navHidden    bool
	rotation     settings.Rotation
	sort         playback.SortPolicy
	hideTimer    *time.Timer
	subs         map[int]chan Event
	nextSub      int
}

// New creates a controller. Run must be called to start its loop.
func New(cfg Config, prefs Preferences) *Controller {
	if cfg.HideNavDelay <= 0 {
		cfg.HideNavDelay = 2 * time.Second
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = 32
	}
	if cfg.Language == language.Und {
		cfg.Language = language.English
	}
	id := uuid.NewString()
	return &Controller{
		cfg:    cfg,
		prefs:  prefs,
		id:     id,
		logger: log.WithComponent("session").With().Str(log.FieldSessionID, id).Logger(),
		cmds:   make(chan func()),
		done:   make(chan struct{}),
		now:    time.Now,
		seq:    playback.NewSequencer(),
		sort:   playback.DefaultSortPolicy,
		subs:   map[int]chan Event{},
	}
}

// ID returns the session identifier.
func (c *Controller) ID() string { return c.id }

// Run processes commands until ctx is cancelled. It may be called once.
func (c *Controller) Run(ctx context.Context) error {
	ran := false
	c.started.Do(func() { ran = true })
	if !ran {
		return errors.New("session: Run called twice")
	}
	defer c.shutdown()

	c.hideTimer = time.NewTimer(time.Hour)
	c.hideTimer.Stop()

	c.logger.Info().Str(log.FieldEvent, "session.started").Msg("session loop started")
	for {
		select {
		case <-ctx.Done():
			c.logger.Info().Str(log.FieldEvent, "session.stopped").Msg("session loop stopped")
			return nil
		case fn := <-c.cmds:
			fn()
		case <-c.hideTimer.C:
			c.hideNavigation()
		}
	}
}

func (c *Controller) shutdown() {
	c.hideTimer.Stop()
	close(c.done)
	for id, ch := range c.subs {
		close(ch)
		delete(c.subs, id)
	}
}

// exec runs fn on the loop goroutine and waits for it to finish.
func (c *Controller) exec(fn func()) error {
	reply := make(chan struct{})
	select {
	case c.cmds <- func() { fn(); close(reply) }:
	case <-c.done:
		return ErrClosed
	}
	<-reply
	return nil
}

// SetAlbums replaces the album list. It is the single entry point for
// library load completions.
func (c *Controller) SetAlbums(albums []media.Album) error {
	list := make([]media.Album, 0, len(albums))
	for _, a := range albums {
		list = append(list, a.Clone())
	}
	return c.exec(func() {
		c.albums = list
		metrics.SetAlbums(len(list))
		c.publish(Event{Kind: EventAlbumsChanged, Index: len(list)})
		c.logger.Info().
			Str(log.FieldEvent, "session.albums_loaded").
			Int("albums", len(list)).
			Msg("album list replaced")
	})
}

// SetLibraryAccess records whether the library could not be read.
func (c *Controller) SetLibraryAccess(denied bool) error {
	return c.exec(func() { c.accessDenied = denied })
}

// Albums returns summaries of the album list.
func (c *Controller) Albums() ([]media.Summary, error) {
	var out []media.Summary
	err := c.exec(func() { out = media.Summarize(c.albums) })
	return out, err
}

// NavigationTitle returns the localized album list title.
func (c *Controller) NavigationTitle() (string, error) {
	var title string
	err := c.exec(func() { title = NavigationTitle(c.cfg.Language, len(c.albums)) })
	return title, err
}

// OpenAlbum loads the album, orders it with the stored sort policy and starts
// playback of the first video. displayPortrait describes the current display
// and selects the surface rotation.
func (c *Controller) OpenAlbum(id string, displayPortrait bool) (Snapshot, error) {
	prefs := settings.Default()
	if c.prefs != nil {
		prefs = c.prefs.Current()
	}

	var (
		snap Snapshot
		err  error
	)
	if execErr := c.exec(func() {
		album, ok := media.FindAlbum(c.albums, id)
		if !ok {
			err = fmt.Errorf("%w: %s", ErrAlbumNotFound, id)
			return
		}
		c.seq.SetAlbum(album)
		c.sort = prefs.Sort
		c.seq.InitializePlayList(prefs.Sort)
		c.rotation = settings.RotationFor(prefs.Orientation, displayPortrait)
		c.open = true
		c.paused = false

		c.logger.Info().
			Str(log.FieldEvent, "session.album_opened").
			Str(log.FieldAlbumID, album.ID).
			Str(log.FieldSortPolicy, prefs.Sort.String()).
			Int(log.FieldPlayListLen, c.seq.Len()).
			Int("rotation", int(c.rotation)).
			Msg("album opened")

		if _, ok := c.seq.CurrentVideo(); ok {
			metrics.RecordNavigation("open", "moved")
			c.startPlay()
		} else {
			metrics.RecordNavigation("open", "empty")
			c.closeAlbum()
		}
		snap = c.snapshot()
	}); execErr != nil {
		return Snapshot{}, execErr
	}
	return snap, err
}

// NextPlay advances to the next video, or closes the album at the end.
func (c *Controller) NextPlay() (Snapshot, error) {
	return c.withOpenAlbum(func() {
		if c.seq.Next() {
			metrics.RecordNavigation("next", "moved")
			c.startPlay()
			return
		}
		metrics.RecordNavigation("next", "boundary")
		c.closeAlbum()
	})
}

// PreviousPlay steps back one video. At the first video nothing happens.
func (c *Controller) PreviousPlay() (Snapshot, error) {
	return c.withOpenAlbum(func() {
		if c.seq.Previous() {
			metrics.RecordNavigation("previous", "moved")
			c.startPlay()
			return
		}
		metrics.RecordNavigation("previous", "boundary")
	})
}

// PausePlay pauses playback and shows the navigation bar.
func (c *Controller) PausePlay() (Snapshot, error) {
	return c.withOpenAlbum(c.pause)
}

// RestartPlay resumes a paused video. It does nothing unless paused.
func (c *Controller) RestartPlay() (Snapshot, error) {
	return c.withOpenAlbum(func() {
		if c.paused {
			c.restart()
		}
	})
}

// TogglePause pauses a playing video or resumes a paused one.
func (c *Controller) TogglePause() (Snapshot, error) {
	return c.withOpenAlbum(func() {
		if c.paused {
			c.restart()
		} else {
			c.pause()
		}
	})
}

// CloseAlbum stops playback and returns to the album list. The sequencer
// keeps its album and cursor.
func (c *Controller) CloseAlbum() (Snapshot, error) {
	var snap Snapshot
	err := c.exec(func() {
		if c.open {
			c.closeAlbum()
		}
		snap = c.snapshot()
	})
	return snap, err
}

// Snapshot returns the current session state.
func (c *Controller) Snapshot() (Snapshot, error) {
	var snap Snapshot
	err := c.exec(func() { snap = c.snapshot() })
	return snap, err
}

// Subscribe returns a channel of session events and a function that ends the
// subscription. Events are dropped for a subscriber whose buffer is full.
func (c *Controller) Subscribe() (<-chan Event, func(), error) {
	var (
		id int
		ch = make(chan Event, c.cfg.EventBuffer)
	)
	if err := c.exec(func() {
		id = c.nextSub
		c.nextSub++
		c.subs[id] = ch
	}); err != nil {
		return nil, nil, err
	}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			_ = c.exec(func() {
				if sub, ok := c.subs[id]; ok {
					close(sub)
					delete(c.subs, id)
				}
			})
		})
	}
	return ch, cancel, nil
}

func (c *Controller) withOpenAlbum(fn func()) (Snapshot, error) {
	var (
		snap Snapshot
		err  error
	)
	if execErr := c.exec(func() {
		if !c.open {
			err = ErrNoAlbumOpen
			return
		}
		fn()
		snap = c.snapshot()
	}); execErr != nil {
		return Snapshot{}, execErr
	}
	return snap, err
}

// The methods below run on the loop goroutine only.

func (c *Controller) startPlay() {
	c.paused = false
	c.navHidden = false
	c.resetHideTimer()
	c.publishCurrent(EventPlayStart)
}

func (c *Controller) pause() {
	c.paused = true
	c.navHidden = false
	c.hideTimer.Stop()
	c.publishCurrent(EventPause)
}

func (c *Controller) restart() {
	c.paused = false
	c.resetHideTimer()
	c.publishCurrent(EventRestart)
}

func (c *Controller) closeAlbum() {
	c.publishCurrent(EventCloseAlbum)
	c.open = false
	c.paused = false
	c.navHidden = false
	c.hideTimer.Stop()
	c.logger.Info().Str(log.FieldEvent, "session.album_closed").Msg("album closed")
}

func (c *Controller) hideNavigation() {
	if !c.open || c.paused || c.navHidden {
		return
	}
	c.navHidden = true
	c.publishCurrent(EventNavHidden)
}

func (c *Controller) resetHideTimer() {
	c.hideTimer.Stop()
	c.hideTimer.Reset(c.cfg.HideNavDelay)
}

func (c *Controller) snapshot() Snapshot {
	snap := Snapshot{
		AlbumOpen:           c.open,
		PlayIndex:           playback.Unset,
		Paused:              c.paused,
		NavigationHidden:    c.navHidden,
		Sort:                c.sort,
		LibraryAccessDenied: c.accessDenied,
	}
	if !c.open {
		return snap
	}
	if album, ok := c.seq.Album(); ok {
		snap.AlbumID = album.ID
		snap.AlbumTitle = album.Title
	}
	if v, ok := c.seq.CurrentVideo(); ok {
		snap.Video = &v
	}
	snap.PlayIndex = c.seq.PlayIndex()
	snap.PlayListLen = c.seq.Len()
	snap.CanGoBack = c.seq.EnablePrevious()
	snap.Rotation = c.rotation
	snap.Surface = SurfaceFor(snap.PlayIndex)
	return snap
}

func (c *Controller) publishCurrent(kind EventKind) {
	ev := Event{Kind: kind, Index: c.seq.PlayIndex()}
	if album, ok := c.seq.Album(); ok {
		ev.AlbumID = album.ID
	}
	if v, ok := c.seq.CurrentVideo(); ok {
		ev.VideoID = v.ID
	}
	ev.Surface = SurfaceFor(ev.Index)
	c.publish(ev)
}

func (c *Controller) publish(ev Event) {
	ev.ID = uuid.New()
	ev.At = c.now()

	c.logger.Debug().
		Str(log.FieldEvent, "session."+string(ev.Kind)).
		Str(log.FieldEventID, ev.ID.String()).
		Str(log.FieldAlbumID, ev.AlbumID).
		Str(log.FieldVideoID, ev.VideoID).
		Int(log.FieldPlayIndex, ev.Index).
		Msg("session event")

	for id, ch := range c.subs {
		select {
		case ch <- ev:
		default:
			metrics.RecordEventDropped()
			c.logger.Warn().
				Int("subscriber", id).
				Str(log.FieldEvent, "session.event_dropped").
				Msg("subscriber buffer full, event dropped")
		}
	}
}
