package engine

// InLineOfSight reports whether an enemy at enemy facing enemyFacing is
// aligned with the player and pointing toward it. Nothing between the two
// tanks is considered.
func InLineOfSight(player, enemy Position, enemyFacing Direction) bool {
	switch {
	case player.Row == enemy.Row:
		return (enemyFacing == Right && enemy.Col < player.Col) ||
			(enemyFacing == Left && player.Col < enemy.Col)
	case player.Col == enemy.Col:
		return (enemyFacing == Up && player.Row < enemy.Row) ||
			(enemyFacing == Down && enemy.Row < player.Row)
	}
	return false
}

// EnemyHasShot applies InLineOfSight to the tanks in d.
func EnemyHasShot(d *Directory) bool {
	return InLineOfSight(d.Player.Pos, d.Enemy.Pos, d.Enemy.Facing)
}
