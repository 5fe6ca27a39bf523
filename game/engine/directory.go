package engine

// Entity is a tank: where it is and which way it faces.
type Entity struct {
	Role   Role      `json:"role"`
	Pos    Position  `json:"pos"`
	Facing Direction `json:"facing"`
}

// Directory tracks both tanks. Facing is kept here explicitly; the tank
// glyph on the grid is a projection of it.
type Directory struct {
	Player Entity `json:"player"`
	Enemy  Entity `json:"enemy"`
}

// NewDirectory places both tanks on g and returns their directory.
func NewDirectory(g *Grid, player, enemy Entity) *Directory {
	player.Role = Player
	enemy.Role = Enemy
	d := &Directory{Player: player, Enemy: enemy}
	d.Project(g)
	return d
}

// Get returns a pointer to the entity with the given role.
func (d *Directory) Get(r Role) *Entity {
	if r == Enemy {
		return &d.Enemy
	}
	return &d.Player
}

// Other returns the entity opposing r.
func (d *Directory) Other(r Role) *Entity {
	return d.Get(r.Other())
}

// OccupiedBy reports which tank, if any, stands on p.
func (d *Directory) OccupiedBy(p Position) (Role, bool) {
	switch p {
	case d.Player.Pos:
		return Player, true
	case d.Enemy.Pos:
		return Enemy, true
	}
	return Player, false
}

// Project writes both tank glyphs onto g.
func (d *Directory) Project(g *Grid) {
	for _, e := range []*Entity{&d.Player, &d.Enemy} {
		g.Set(e.Pos, TankCell(e.Facing))
	}
}

// Sync re-reads each tank's facing from the glyph at its position. It is
// needed when something other than the movement engine rewrote a tank cell.
func (d *Directory) Sync(g *Grid) {
	for _, e := range []*Entity{&d.Player, &d.Enemy} {
		if !g.InBounds(e.Pos) {
			violate("Directory.Sync", "%s at %s outside grid", e.Role, e.Pos)
		}
		e.Facing = g.At(e.Pos).Facing()
	}
}
