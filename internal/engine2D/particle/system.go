package particle

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"parallax-banner/internal/utils"

	"github.com/ojrac/opensimplex-go"
)

var ErrNoSources = errors.New("particle: no sprite sources configured")

// New creates an idle simulation; nothing is loaded or drawn until Start.
func New(opts Options) *Simulation {
	r := opts.Rand
	if r == nil {
		r = rand.Float64
	}

	s := &Simulation{
		config: opts.Config,
		canvas: opts.Canvas,
		frames: opts.Frames,
		decode: opts.Decode,
		rand:   r,
	}
	s.width, s.height = opts.Canvas.Size()

	if s.config.Sway > 0 {
		s.noise = opensimplex.New(int64(r() * (1 << 31)))
	}
	return s
}

// Start preloads every sprite source and then begins the frame loop. The
// returned channel yields the preload error, or nil once the loop is
// running or the simulation was disposed while loading.
func (s *Simulation) Start(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	if len(s.config.Srcs) == 0 {
		done <- ErrNoSources
		return done
	}

	srcs := append([]string(nil), s.config.Srcs...)
	decode := s.decode
	frames := s.frames

	go func() {
		images, err := preload(ctx, decode, srcs)
		if err != nil {
			done <- err
			return
		}

		frames.Post(func() {
			if s.disposed {
				utils.Debug("Particle preload finished after dispose, not starting")
				done <- nil
				return
			}
			s.sprites = make([]Sprite, len(images))
			for i, img := range images {
				s.sprites[i] = s.canvas.Upload(img)
			}
			s.spawnAll()
			s.handle = s.frames.Request(s.frame)
			utils.Debug("Particle simulation started: %d particles, %d sprites", len(s.particles), len(s.sprites))
			done <- nil
		})
	}()

	return done
}

func (s *Simulation) frame(time.Duration) {
	if s.disposed {
		return
	}
	s.Update()
	s.Draw()
	s.handle = s.frames.Request(s.frame)
}

// Resize updates the canvas and pulls particles that are now beyond the
// right edge back into bounds.
func (s *Simulation) Resize(width, height float64) {
	if s.disposed {
		return
	}
	s.canvas.Resize(width, height)
	s.width, s.height = width, height

	for _, p := range s.particles {
		if p.X >= width {
			p.X = s.rand() * width
		}
	}
}

// Dispose stops the loop for good. It is safe while a preload is still
// running and safe to call repeatedly.
func (s *Simulation) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	s.frames.Cancel(s.handle)
	s.handle = 0
	s.canvas.Clear()
	for _, sp := range s.sprites {
		s.canvas.Free(sp)
	}
	s.sprites = nil
	s.particles = nil
}

func (s *Simulation) Disposed() bool { return s.disposed }

func (s *Simulation) Particles() []*Particle { return s.particles }

// Running reports whether a frame is scheduled.
func (s *Simulation) Running() bool { return s.handle != 0 && !s.disposed }
