package particle

// Draw repaints the whole canvas from the current particle state.
func (s *Simulation) Draw() {
	s.canvas.Clear()
	for _, p := range s.particles {
		s.canvas.DrawSprite(p.Sprite, p.X, p.Y, p.Width, p.Height, p.Rotation, p.Opacity)
	}
}
