package particle

import (
	"math"

	"parallax-banner/internal/banner"
)

var defaultRotationSpeed = banner.Range{-1, 1}

func (s *Simulation) sample(r banner.Range) float64 {
	return r.Lerp(s.rand())
}

func (s *Simulation) pickSprite() Sprite {
	i := int(s.rand() * float64(len(s.sprites)))
	if i >= len(s.sprites) {
		i = len(s.sprites) - 1
	}
	return s.sprites[i]
}

// initParticle draws every attribute independently from the configured
// ranges. Drift is derived from the angle once so the per-frame update
// never needs trigonometry.
func (s *Simulation) initParticle(p *Particle) {
	p.Speed = s.sample(s.config.SpeedRange)
	angle := s.sample(s.config.AngleRange)
	p.Drift = p.Speed * math.Tan(angle*math.Pi/180)
	p.Scale = s.sample(s.config.SizeRange)
	p.Opacity = s.sample(s.config.OpacityRange)

	p.Sprite = s.pickSprite()
	p.Width = p.Sprite.Width() * p.Scale
	p.Height = p.Sprite.Height() * p.Scale

	rotationSpeed := defaultRotationSpeed
	if s.config.RotationSpeedRange != nil {
		rotationSpeed = *s.config.RotationSpeedRange
	}
	p.Rotation = s.rand() * 360
	p.RotationSpeed = s.sample(rotationSpeed)
	p.SwayPhase = s.rand() * 1000
}
