package main

import (
	"github.com/akmonengine/hlbvh/log"
	"github.com/urfave/cli"
)

var logger = log.New("hlbvh-cli")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
