package particle

// Update advances every particle by one frame.
func (s *Simulation) Update() {
	s.ticks++
	for _, p := range s.particles {
		p.Y += p.Speed
		p.X += p.Drift + s.sway(p)
		p.Rotation += p.RotationSpeed

		// Horizontal wrap keeps drifting particles in play.
		if p.X > s.width {
			p.X = -p.Width
		} else if p.X < -p.Width {
			p.X = s.width
		}

		if p.Y > s.height {
			s.recycle(p)
		}
	}
}

func (s *Simulation) sway(p *Particle) float64 {
	if s.noise == nil {
		return 0
	}
	return s.noise.Eval2(p.SwayPhase, float64(s.ticks)*0.01) * s.config.Sway
}
