// Package normalize rewrites each clip so every clip entering concatenation
// carries the same audio profile. Clips with audio get their audio re-encoded
// to the target profile while video is stream-copied; silent clips get a
// synthesized silent track. Divergence here surfaces later as a join failure,
// so both paths pin codec, sample rate, and channel count identically.
package normalize

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"stitch/internal/clip"
	"stitch/internal/engine"
	"stitch/internal/ledger"
	"stitch/internal/logging"
	"stitch/internal/names"
	"stitch/internal/services"
	"stitch/internal/store"
)

// Profile is the fixed audio target every normalized clip must share.
type Profile struct {
	SampleRate int
	Channels   int
	Bitrate    string
}

// ChannelLayout returns the lavfi layout name for the profile.
func (p Profile) ChannelLayout() string {
	if p.Channels == 1 {
		return "mono"
	}
	return "stereo"
}

// Normalizer produces clips guaranteed to carry the target audio profile.
type Normalizer struct {
	engine  engine.Runner
	store   *store.Store
	ledger  *ledger.Ledger
	scheme  names.Scheme
	profile Profile
	logger  *slog.Logger
}

// New constructs a normalizer.
func New(eng engine.Runner, st *store.Store, led *ledger.Ledger, scheme names.Scheme, profile Profile, logger *slog.Logger) *Normalizer {
	return &Normalizer{
		engine:  eng,
		store:   st,
		ledger:  led,
		scheme:  scheme,
		profile: profile,
		logger:  logging.NewComponentLogger(logger, "normalize"),
	}
}

// Normalize transforms one clip along the path selected by the probe
// outcome. The output name is derived from the clip index so reruns and
// out-of-order processing cannot collide. Unlike probing, any engine failure
// here is fatal: a clip that cannot be normalized cannot be joined.
func (n *Normalizer) Normalize(ctx context.Context, c clip.Handle, hasAudio bool, duration time.Duration, onProgress func(engine.ProgressUpdate)) (clip.Handle, error) {
	output := n.scheme.Normalized(c.Index)
	n.ledger.Track(output)

	var args []string
	if hasAudio {
		args = n.remuxArgs(c, output)
	} else {
		args = n.synthesisArgs(c, output)
	}

	opts := []engine.RunOption{engine.WithTotalDuration(duration)}
	if onProgress != nil {
		opts = append(opts, engine.WithProgress(onProgress))
	}

	logger := logging.WithContext(ctx, n.logger)
	logger.Debug("normalizing clip",
		logging.Int("clip", c.Index),
		logging.Bool("has_audio", hasAudio),
		logging.String("output", output),
	)

	if err := n.engine.Run(ctx, args, opts...); err != nil {
		path := "synthesize silence"
		if hasAudio {
			path = "remux audio"
		}
		return clip.Handle{}, services.Wrap(services.ErrExternalTool, "normalize", path,
			fmt.Sprintf("clip %d", c.Index+1), err)
	}
	return c.WithName(output), nil
}

// remuxArgs re-encodes only the audio stream to the target profile while
// stream-copying video, with fast-start layout so the result is immediately
// playable.
func (n *Normalizer) remuxArgs(c clip.Handle, output string) []string {
	return []string{
		"-i", n.store.Path(c.Name),
		"-map", "0:v:0",
		"-map", "0:a:0",
		"-c:v", "copy",
		"-c:a", "aac",
		"-ar", fmt.Sprintf("%d", n.profile.SampleRate),
		"-ac", fmt.Sprintf("%d", n.profile.Channels),
		"-b:a", n.profile.Bitrate,
		"-movflags", "+faststart",
		n.store.Path(output),
	}
}

// synthesisArgs maps the original video together with a silent synthetic
// source, truncated to the shorter of the two so silence never outlasts the
// picture.
func (n *Normalizer) synthesisArgs(c clip.Handle, output string) []string {
	silence := fmt.Sprintf("anullsrc=channel_layout=%s:sample_rate=%d", n.profile.ChannelLayout(), n.profile.SampleRate)
	return []string{
		"-i", n.store.Path(c.Name),
		"-f", "lavfi",
		"-i", silence,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", "aac",
		"-ar", fmt.Sprintf("%d", n.profile.SampleRate),
		"-ac", fmt.Sprintf("%d", n.profile.Channels),
		"-b:a", n.profile.Bitrate,
		"-shortest",
		"-movflags", "+faststart",
		n.store.Path(output),
	}
}
