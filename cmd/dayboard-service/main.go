package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/dayboard/dayboard/dayboardservice"
)

func main() {
	if err := dayboardservice.Run(); err != nil {
		log.Error().Err(err).Msg("dayboard-service exited with error")
		os.Exit(1)
	}
}
