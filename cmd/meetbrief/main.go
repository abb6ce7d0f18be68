package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/meetbrief/meetbrief/summaryservice"
)

func main() {
	if err := summaryservice.Run(); err != nil {
		log.Error().Err(err).Msg("meetbrief exited with error")
		os.Exit(1)
	}
}
