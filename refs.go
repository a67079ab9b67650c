package main

import (
	"strconv"

	"apex-arena/sim/logging"
)

func playerRef() logging.EntityRef {
	return logging.EntityRef{ID: "player", Kind: logging.EntityKindPlayer}
}

func enemyRef(id uint64) logging.EntityRef {
	return logging.EntityRef{ID: strconv.FormatUint(id, 10), Kind: logging.EntityKindEnemy}
}

func formationRef(id uint64) logging.EntityRef {
	return logging.EntityRef{ID: strconv.FormatUint(id, 10), Kind: logging.EntityKindFormation}
}
