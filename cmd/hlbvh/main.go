package main

import (
	"os"

	"github.com/akmonengine/hlbvh"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "hlbvh"
	app.Usage = "detect collisions between animated triangle meshes"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "list-devices",
			Usage:  "list the detected compute device and its sort strategy",
			Action: ListDevices,
		},
		{
			Name:  "simulate",
			Usage: "run the collision pipeline on a procedural scene",
			Description: `
Lay out a row of pulsating spheres and cubes, alternately touching and
separating, and run the broad and narrow phases for a number of frames.
A table with the colliding bodies and stage timings is printed per frame.`,
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "bodies, n",
					Value: 6,
					Usage: "number of bodies",
				},
				cli.IntFlag{
					Name:  "frames, f",
					Value: 8,
					Usage: "number of frames to simulate",
				},
				cli.IntFlag{
					Name:  "detail",
					Value: 16,
					Usage: "sphere rings and segments",
				},
				cli.IntFlag{
					Name:  "workers, w",
					Value: hlbvh.DEFAULT_WORKERS,
					Usage: "number of worker goroutines",
				},
				cli.IntFlag{
					Name:  "max-triangles",
					Value: hlbvh.MAX_TRIANGLES,
					Usage: "triangle ceiling per body",
				},
				cli.StringFlag{
					Name:  "sort",
					Value: "auto",
					Usage: "radix sort strategy: auto, legacy or onesweep",
				},
				cli.BoolFlag{
					Name:  "visualize",
					Usage: "count contacts per triangle and vertex",
				},
				cli.BoolFlag{
					Name:  "debug",
					Usage: "validate every tree after it is built",
				},
			},
			Action: Simulate,
		},
	}

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}
