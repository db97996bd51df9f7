package speech

import (
	"context"
	"crypto/md5"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	htgotts "github.com/hegedustibor/htgo-tts"

	"hearth/internal/config"
	"hearth/internal/fileutil"
	"hearth/internal/logging"
	"hearth/internal/services"
	"hearth/internal/services/cast"
	"hearth/internal/textutil"
)

// Synthesizer produces a speech audio file for a text and returns its path.
// The file name is passed without extension.
type Synthesizer interface {
	CreateSpeechFile(text string, fileName string) (string, error)
}

// Caster plays a media URL on the announcement device.
type Caster interface {
	Play(ctx context.Context, mediaURL, contentType string) error
}

// CacheName derives the audio cache file name for a text. The same text
// always maps to the same file, so repeated announcements reuse the
// synthesized audio.
func CacheName(text string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(text)))
}

// Announcement reports what Announce did for one text.
type Announcement struct {
	Text       string
	Spoken     bool
	Suppressed bool
	AudioPath  string
	MediaURL   string
}

// Option configures the announcer.
type Option func(*Announcer)

// WithSynthesizer injects a synthesizer (primarily for tests).
func WithSynthesizer(synth Synthesizer) Option {
	return func(a *Announcer) {
		if synth != nil {
			a.synth = synth
		}
	}
}

// WithCaster injects a caster (primarily for tests).
func WithCaster(caster Caster) Option {
	return func(a *Announcer) {
		if caster != nil {
			a.caster = caster
		}
	}
}

// WithClock injects the time source used for quiet hour checks.
func WithClock(now func() time.Time) Option {
	return func(a *Announcer) {
		if now != nil {
			a.now = now
		}
	}
}

// Announcer speaks short texts on the household cast device. Audio is
// synthesized once per text into the audio directory, which an external
// web server exposes under the configured server URL.
type Announcer struct {
	cfg    *config.Config
	quiet  Window
	synth  Synthesizer
	caster Caster
	now    func() time.Time
	logger *slog.Logger
}

// NewAnnouncer builds an announcer from configuration.
func NewAnnouncer(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Announcer, error) {
	if err := cfg.RequireSpeech(); err != nil {
		return nil, err
	}
	quiet, err := ParseWindow(cfg.Speech.QuietStart, cfg.Speech.QuietEnd)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "speech", "quiet hours", err.Error(), nil)
	}

	announcer := &Announcer{
		cfg:   cfg,
		quiet: quiet,
		synth: &htgotts.Speech{
			Folder:   cfg.Speech.AudioDir,
			Language: cfg.Speech.Language,
		},
		now:    time.Now,
		logger: logging.NewComponentLogger(logger, "speech"),
	}
	for _, opt := range opts {
		opt(announcer)
	}

	if announcer.caster == nil {
		client, err := cast.New(cfg.Speech.DeviceAddr, cfg.Speech.DevicePort)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "speech", "cast device", err.Error(), nil)
		}
		announcer.caster = client
	}
	return announcer, nil
}

// QuietWindow returns the configured quiet period.
func (a *Announcer) QuietWindow() Window {
	return a.quiet
}

// Announce synthesizes the text and plays it on the cast device. During
// quiet hours the announcement is suppressed without error unless force is
// set.
func (a *Announcer) Announce(ctx context.Context, text string, force bool) (*Announcement, error) {
	text = textutil.CollapseSpaces(text)
	if text == "" {
		return nil, services.Wrap(services.ErrValidation, "speech", "announce", "nothing to say", nil)
	}

	result := &Announcement{Text: text}
	if a.quiet.Enabled() && a.quiet.Contains(a.now()) && !force {
		result.Suppressed = true
		a.logger.Info("announcement suppressed by quiet hours",
			"window", a.quiet.String(),
			"text", text)
		return result, nil
	}

	if err := fileutil.EnsureDir(a.cfg.Speech.AudioDir); err != nil {
		return nil, services.Wrap(services.ErrTransient, "speech", "audio directory", "", err)
	}

	audioPath, err := a.synth.CreateSpeechFile(text, CacheName(text))
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "speech", "synthesize", "", err)
	}
	result.AudioPath = audioPath
	result.MediaURL = a.cfg.Speech.ServerURL + "/" + filepath.Base(audioPath)

	if err := a.caster.Play(ctx, result.MediaURL, "audio/mp3"); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "speech", "cast", "", err)
	}

	result.Spoken = true
	a.logger.Info("announcement played",
		"device", a.cfg.Speech.DeviceAddr,
		"url", result.MediaURL)
	return result, nil
}
