package cloth

// maxStretch is the Provot limit on spring elongation per step.
const maxStretch = 1.1

// relax shortens every spring stretched past maxStretch of its rest length,
// in build order. Free ends share the correction; a pinned end never moves.
//
// Reads and writes Position.
func (c *Cloth) relax(*stepContext) {
	for _, sp := range c.springs {
		a, b := &c.points[sp.A], &c.points[sp.B]
		if a.Pinned && b.Pinned {
			continue
		}
		d := b.Position.Sub(a.Position)
		length := d.Len()
		limit := sp.RestLength * maxStretch
		if length <= limit {
			continue
		}
		excess := length - limit
		dir := unit(d)
		switch {
		case !a.Pinned && !b.Pinned:
			a.Position = a.Position.Add(dir.Mul(excess / 2))
			b.Position = b.Position.Sub(dir.Mul(excess / 2))
		case !a.Pinned:
			a.Position = a.Position.Add(dir.Mul(excess))
		default:
			b.Position = b.Position.Sub(dir.Mul(excess))
		}
	}
}

// Relax runs only the constraint phase.
func (c *Cloth) Relax() { c.relax(nil) }
