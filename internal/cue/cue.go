// Package cue plays the short audible signal that accompanies a new
// notification toast. A configured audio asset is tried first; when it
// is missing or no system player is available, a synthesized terminal
// bell rings instead so the cue is never silently skipped.
package cue

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"go.uber.org/zap"
)

// Player produces a single audible cue.
type Player interface {
	Play() error
}

// players are the system audio commands tried in order.
var players = []string{"paplay", "aplay", "afplay", "play"}

// AssetPlayer plays an audio file through the first available system
// player command.
type AssetPlayer struct {
	asset string
}

// NewAssetPlayer creates a player for the given audio file path.
func NewAssetPlayer(asset string) *AssetPlayer {
	return &AssetPlayer{asset: asset}
}

// Play starts playback in the background. It returns an error when the
// asset is absent or no player command exists.
func (p *AssetPlayer) Play() error {
	if p.asset == "" {
		return errors.New("no audio asset configured")
	}
	if _, err := os.Stat(p.asset); err != nil {
		return fmt.Errorf("audio asset unavailable: %w", err)
	}

	for _, name := range players {
		bin, err := exec.LookPath(name)
		if err != nil {
			continue
		}
		cmd := exec.Command(bin, p.asset)
		if err := cmd.Start(); err != nil {
			continue
		}
		// Fire and forget; reap the process in the background.
		go func() { _ = cmd.Wait() }()
		return nil
	}

	return errors.New("no audio player available")
}

// BellPlayer writes the terminal bell character as a synthesized tone.
type BellPlayer struct {
	w io.Writer
}

// NewBellPlayer creates a bell player writing to w.
func NewBellPlayer(w io.Writer) *BellPlayer {
	return &BellPlayer{w: w}
}

// Play emits the bell character.
func (p *BellPlayer) Play() error {
	_, err := p.w.Write([]byte("\a"))
	return err
}

// Chime tries a primary player and falls back to a secondary one.
// Failure of both paths is swallowed: the notification is still
// delivered visually.
type Chime struct {
	primary  Player
	fallback Player
	logger   *zap.Logger
}

// New builds the standard chime: the configured asset backed by a
// terminal bell on stderr.
func New(asset string, logger *zap.Logger) *Chime {
	return NewChime(NewAssetPlayer(asset), NewBellPlayer(os.Stderr), logger)
}

// NewChime builds a chime from explicit players.
func NewChime(primary, fallback Player, logger *zap.Logger) *Chime {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chime{primary: primary, fallback: fallback, logger: logger}
}

// Ring plays the cue, falling back once, swallowing total failure.
func (c *Chime) Ring() {
	err := c.primary.Play()
	if err == nil {
		return
	}
	c.logger.Debug("primary cue failed, using fallback", zap.Error(err))

	if err := c.fallback.Play(); err != nil {
		c.logger.Warn("audio cue failed on both paths", zap.Error(err))
	}
}
