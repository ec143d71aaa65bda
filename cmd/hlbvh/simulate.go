package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/akmonengine/hlbvh"
	"github.com/akmonengine/hlbvh/actor"
	"github.com/akmonengine/hlbvh/device"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/urfave/cli"
)

// Keyframe steps between two keyframes.
const stepsPerKeyframe = 4

// Simulate runs the collision pipeline on a row of pulsating bodies.
func Simulate(ctx *cli.Context) error {
	setupLogging(ctx)

	pref, err := device.ParsePreference(ctx.String("sort"))
	if err != nil {
		logger.Error(err)
		return err
	}

	config := hlbvh.DefaultConfig()
	config.Workers = ctx.Int("workers")
	config.MaxTriangles = ctx.Int("max-triangles")
	config.Sort = pref
	config.Visualize = ctx.Bool("visualize")
	config.Debug = ctx.Bool("debug")

	world, err := hlbvh.NewWorld(config)
	if err != nil {
		logger.Error(err)
		return err
	}

	bodies, err := buildScene(ctx.Int("bodies"), ctx.Int("detail"))
	if err != nil {
		logger.Error(err)
		return err
	}
	if err := world.AddBodies(bodies...); err != nil {
		// Rejected bodies are logged by the world and simply left out.
		logger.Warningf("%d bodies rejected", len(bodies)-len(world.Bodies))
	}

	world.Events.Subscribe(hlbvh.COLLISION_ENTER, logEvent)
	world.Events.Subscribe(hlbvh.COLLISION_EXIT, logEvent)

	for frame := 0; frame < ctx.Int("frames"); frame++ {
		current := frame / stepsPerKeyframe
		factor := float32(frame%stepsPerKeyframe) / stepsPerKeyframe

		if err := world.Step(current, current+1, factor); err != nil {
			logger.Error(err)
			return err
		}
		displayFrameStats(world)
	}
	return nil
}

// buildScene lays out count bodies along x, one unit apart. Each body
// alternates between a small and a large keyframe, so neighbours touch on
// every other keyframe.
func buildScene(count, detail int) ([]*actor.Body, error) {
	bodies := make([]*actor.Body, 0, count)
	for i := 0; i < count; i++ {
		var mesh actor.Mesh
		if i%2 == 0 {
			mesh = actor.Sphere(0.4, detail, detail)
		} else {
			mesh = actor.Cube(0.7)
		}
		small, large := mesh, mesh.Scaled(1.6)
		if i%2 == 1 {
			small, large = large, small
		}

		transform := actor.Translation(mgl32.Vec3{float32(i), 0, 0})
		body, err := actor.NewMeshBody(fmt.Sprintf("body-%02d", i), transform, small, large)
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, body)
	}
	return bodies, nil
}

func logEvent(event hlbvh.Event) {
	switch e := event.(type) {
	case hlbvh.CollisionEnterEvent:
		logger.Infof("%s: %s, %s", e.Type(), e.BodyA.Name, e.BodyB.Name)
	case hlbvh.CollisionExitEvent:
		logger.Infof("%s: %s, %s", e.Type(), e.BodyA.Name, e.BodyB.Name)
	}
}

func displayFrameStats(world *hlbvh.World) {
	stats := world.Stats()
	colliding := lo.FilterMap(world.Bodies, func(body *actor.Body, _ int) (string, bool) {
		return body.Name, world.Collided(body)
	})

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Frame", "Candidates", "Built", "Colliding", "Broad phase", "Build", "Narrow phase"})
	table.Append([]string{
		fmt.Sprintf("%d", stats.Frame),
		fmt.Sprintf("%d", stats.CandidatePairs),
		fmt.Sprintf("%d", stats.BodiesBuilt),
		fmt.Sprintf("%d", stats.CollidingPairs),
		stats.BroadPhase.String(),
		stats.Build.String(),
		stats.NarrowPhase.String(),
	})
	table.SetFooter([]string{"", "", "", "", "", "TOTAL", stats.Total().String()})
	table.Render()

	logger.Noticef("frame statistics (colliding: %s)\n%s", strings.Join(colliding, " "), buf.String())
}
