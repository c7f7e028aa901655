//go:build !cgo

package window

import (
	"errors"

	"github.com/ivlev/scrollseq/internal/config"
	"github.com/ivlev/scrollseq/internal/player"
)

func Run(_ *config.Config, _ *player.Player) error {
	return errors.New("window mode requires cgo (build/run with CGO_ENABLED=1); use -headless")
}
