package particle

import "math"

// spawnAll builds the initial population. Particles start above the top
// edge at staggered heights so they do not all enter at once.
func (s *Simulation) spawnAll() {
	s.particles = make([]*Particle, s.config.Count)
	for i := range s.particles {
		p := &Particle{}
		s.initParticle(p)
		p.X = s.rand() * s.width
		p.Y = -s.rand()*s.height - p.Height
		s.particles[i] = p
	}
}

// recycle puts a particle that fell out of view back above the top edge.
func (s *Simulation) recycle(p *Particle) {
	p.X = s.rand() * s.width
	p.Y = -math.Max(p.Height, 1)
}
