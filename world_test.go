package hlbvh

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/akmonengine/hlbvh/actor"
	"github.com/akmonengine/hlbvh/device"
	"github.com/akmonengine/hlbvh/log"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Corner i of the unit cube has x = bit 0, y = bit 1, z = bit 2.
var cubeIndices = []uint32{
	0, 4, 6, 0, 6, 2, // -x
	1, 3, 7, 1, 7, 5, // +x
	0, 1, 5, 0, 5, 4, // -y
	2, 6, 7, 2, 7, 3, // +y
	0, 2, 3, 0, 3, 1, // -z
	4, 5, 7, 4, 7, 6, // +z
}

func cubeCorner(i uint32) mgl32.Vec3 {
	return mgl32.Vec3{float32(i & 1), float32(i >> 1 & 1), float32(i >> 2 & 1)}
}

func createCube(t *testing.T, name string, position mgl32.Vec3) *actor.Body {
	t.Helper()
	triangles := make([]mgl32.Vec3, len(cubeIndices))
	for i, idx := range cubeIndices {
		triangles[i] = cubeCorner(idx)
	}
	body, err := actor.NewStaticBody(name, triangles, actor.Translation(position))
	if err != nil {
		t.Fatal(err)
	}
	if err := body.SetIndices(cubeIndices, 8); err != nil {
		t.Fatal(err)
	}
	return body
}

func createTriangle(t *testing.T, name string, position mgl32.Vec3) *actor.Body {
	t.Helper()
	body, err := actor.NewStaticBody(name, []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, actor.Translation(position))
	if err != nil {
		t.Fatal(err)
	}
	return body
}

var testDevices = map[string]device.Device{
	"onesweep": {Name: "onesweep", ComputeUnits: 4, SubgroupSize: 32, LocalAtomics: true, SubgroupOps: true, ScatterCompaction: true},
	"shuffle":  {Name: "shuffle", ComputeUnits: 4, SubgroupSize: 32, SubgroupOps: true, ScatterCompaction: true},
	"legacy":   {Name: "legacy", ComputeUnits: 4, SubgroupSize: 32, LocalAtomics: true},
}

func createWorld(t *testing.T, dev device.Device, visualize bool) *World {
	t.Helper()
	config := DefaultConfig()
	config.Workers = 4
	config.Visualize = visualize
	config.Debug = true
	world, err := NewWorldOn(dev, config)
	if err != nil {
		t.Fatal(err)
	}
	return world
}

func TestWorld_IdenticalTriangles(t *testing.T) {
	for name, dev := range testDevices {
		for _, visualize := range []bool{false, true} {
			t.Run(name, func(t *testing.T) {
				world := createWorld(t, dev, visualize)
				bodyA := createTriangle(t, "A", mgl32.Vec3{})
				bodyB := createTriangle(t, "B", mgl32.Vec3{})
				if err := world.AddBodies(bodyA, bodyB); err != nil {
					t.Fatal(err)
				}

				if err := world.Step(0, 0, 0); err != nil {
					t.Fatal(err)
				}

				stats := world.Stats()
				if stats.CandidatePairs != 1 {
					t.Errorf("Expected 1 candidate pair, got %d", stats.CandidatePairs)
				}
				if !world.Collided(bodyA) || !world.Collided(bodyB) {
					t.Errorf("Expected both bodies to collide, got %t and %t", world.Collided(bodyA), world.Collided(bodyB))
				}
				if stats.CollidingPairs != 1 {
					t.Errorf("Expected 1 colliding pair, got %d", stats.CollidingPairs)
				}
			})
		}
	}
}

func TestWorld_SeparatedTriangles(t *testing.T) {
	world := createWorld(t, testDevices["onesweep"], false)
	bodyA := createTriangle(t, "A", mgl32.Vec3{})
	bodyB := createTriangle(t, "B", mgl32.Vec3{1000, 0, 0})
	if err := world.AddBodies(bodyA, bodyB); err != nil {
		t.Fatal(err)
	}

	if err := world.Step(0, 0, 0); err != nil {
		t.Fatal(err)
	}

	stats := world.Stats()
	if stats.CandidatePairs != 0 {
		t.Errorf("Expected no candidate pair, got %d", stats.CandidatePairs)
	}
	if stats.BodiesBuilt != 0 {
		t.Errorf("Expected no body to be built, got %d", stats.BodiesBuilt)
	}
	if world.Collided(bodyA) || world.Collided(bodyB) {
		t.Error("Expected no collision")
	}
}

func TestWorld_CubeContacts(t *testing.T) {
	for name, dev := range testDevices {
		t.Run(name, func(t *testing.T) {
			world := createWorld(t, dev, true)
			bodyA := createCube(t, "A", mgl32.Vec3{})
			bodyB := createCube(t, "B", mgl32.Vec3{0.5, 0.25, 0.125})
			far := createCube(t, "far", mgl32.Vec3{50, 0, 0})
			if err := world.AddBodies(bodyA, bodyB, far); err != nil {
				t.Fatal(err)
			}

			if err := world.Step(0, 0, 0); err != nil {
				t.Fatal(err)
			}

			if stats := world.Stats(); stats.BodiesBuilt != 2 {
				t.Errorf("Expected 2 bodies built, got %d", stats.BodiesBuilt)
			}

			contactsA, err := world.Contacts(bodyA)
			if err != nil {
				t.Fatal(err)
			}
			contactsB, err := world.Contacts(bodyB)
			if err != nil {
				t.Fatal(err)
			}
			contactsFar, err := world.Contacts(far)
			if err != nil {
				t.Fatal(err)
			}

			if !contactsA.Collided || !contactsB.Collided {
				t.Fatal("Expected both overlapping cubes to collide")
			}
			if contactsFar.Collided {
				t.Error("Expected the far cube not to collide")
			}

			// A's +x face lies inside B, its -x face is half a unit away.
			if contactsA.Triangles[2]+contactsA.Triangles[3] == 0 {
				t.Errorf("Expected contacts on A's +x face, got %v", contactsA.Triangles)
			}
			if contactsA.Triangles[0] != 0 || contactsA.Triangles[1] != 0 {
				t.Errorf("Expected no contact on A's -x face, got %v", contactsA.Triangles[:2])
			}
			if contactsB.Triangles[2] != 0 || contactsB.Triangles[3] != 0 {
				t.Errorf("Expected no contact on B's +x face, got %v", contactsB.Triangles[2:4])
			}

			// Every contacting pair counts once on each side.
			var sumA, sumB uint32
			for i := range contactsA.Triangles {
				sumA += contactsA.Triangles[i]
				sumB += contactsB.Triangles[i]
			}
			if sumA != sumB {
				t.Errorf("Expected matching contact totals, got %d and %d", sumA, sumB)
			}

			// Corner 0 of A and corner 7 of B only belong to untouched faces.
			if contactsA.Vertices[0] != 0 {
				t.Errorf("Expected A's corner 0 untouched, got %d", contactsA.Vertices[0])
			}
			if contactsB.Vertices[7] != 0 {
				t.Errorf("Expected B's corner 7 untouched, got %d", contactsB.Vertices[7])
			}
			var touched uint32
			for _, v := range contactsA.Vertices {
				touched += v
			}
			if touched == 0 {
				t.Error("Expected touched vertices on A")
			}
		})
	}
}

func TestWorld_ContactsReset(t *testing.T) {
	world := createWorld(t, testDevices["legacy"], true)
	bodyA := createCube(t, "A", mgl32.Vec3{})
	bodyB := createCube(t, "B", mgl32.Vec3{0.5, 0.25, 0.125})
	if err := world.AddBodies(bodyA, bodyB); err != nil {
		t.Fatal(err)
	}
	if err := world.Step(0, 0, 0); err != nil {
		t.Fatal(err)
	}
	if !world.Collided(bodyA) {
		t.Fatal("Expected a collision on the first frame")
	}

	bodyB.Transform = actor.Translation(mgl32.Vec3{10, 0, 0})
	if err := world.Step(0, 0, 0); err != nil {
		t.Fatal(err)
	}
	if world.Collided(bodyA) || world.Collided(bodyB) {
		t.Error("Expected no collision once the cubes are apart")
	}
	contacts, err := world.Contacts(bodyA)
	if err != nil {
		t.Fatal(err)
	}
	for i, count := range contacts.Triangles {
		if count != 0 {
			t.Errorf("Expected triangle %d to be reset, got %d", i, count)
		}
	}
}

func TestWorld_AnimatedBody(t *testing.T) {
	world := createWorld(t, testDevices["onesweep"], false)

	// The moving triangle starts 10 units away and ends on top of the static one.
	animation, err := actor.NewAnimation(
		[]mgl32.Vec3{{10, 0, 0}, {11, 0, 0}, {10, 1, 0}},
		[]mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
	)
	if err != nil {
		t.Fatal(err)
	}
	moving := actor.NewBody("moving", animation, actor.NewTransform())
	static := createTriangle(t, "static", mgl32.Vec3{})
	if err := world.AddBodies(moving, static); err != nil {
		t.Fatal(err)
	}

	if err := world.Step(0, 1, 0); err != nil {
		t.Fatal(err)
	}
	if world.Collided(moving) {
		t.Error("Expected no collision on the first keyframe")
	}

	if err := world.Step(0, 1, 1); err != nil {
		t.Fatal(err)
	}
	if !world.Collided(moving) || !world.Collided(static) {
		t.Error("Expected a collision on the second keyframe")
	}
}

func TestWorld_CoarseModeCountsEveryPair(t *testing.T) {
	for name, dev := range testDevices {
		t.Run(name, func(t *testing.T) {
			world := createWorld(t, dev, false)
			bodies := []*actor.Body{
				createCube(t, "A", mgl32.Vec3{}),
				createCube(t, "B", mgl32.Vec3{0.5, 0.25, 0.125}),
				createCube(t, "C", mgl32.Vec3{0.25, 0.5, 0.375}),
			}
			if err := world.AddBodies(bodies...); err != nil {
				t.Fatal(err)
			}

			for frame := 0; frame < 2; frame++ {
				if err := world.Step(0, 0, 0); err != nil {
					t.Fatal(err)
				}
				stats := world.Stats()
				if stats.CandidatePairs != 3 || stats.CollidingPairs != 3 {
					t.Errorf("frame %d: Expected 3 candidate and 3 colliding pairs, got %d and %d",
						frame, stats.CandidatePairs, stats.CollidingPairs)
				}
				for _, body := range bodies {
					if !world.Collided(body) {
						t.Errorf("frame %d: Expected %s to collide", frame, body.Name)
					}
				}
			}
		})
	}
}

func TestWorld_SortFallbackWarning(t *testing.T) {
	var buf bytes.Buffer
	log.SetSink(&buf)
	defer log.SetSink(os.Stdout)

	tests := []struct {
		name     string
		device   device.Device
		pref     device.Preference
		wantWarn bool
	}{
		{"auto on limited device", testDevices["legacy"], device.Auto, true},
		{"forced onesweep on limited device", testDevices["legacy"], device.OneSweep, true},
		{"legacy requested", testDevices["legacy"], device.Legacy, false},
		{"auto on capable device", testDevices["onesweep"], device.Auto, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			config := DefaultConfig()
			config.Sort = tt.pref
			if _, err := NewWorldOn(tt.device, config); err != nil {
				t.Fatal(err)
			}
			if got := strings.Contains(buf.String(), "falling back"); got != tt.wantWarn {
				t.Errorf("Expected fallback warning %t, got log %q", tt.wantWarn, buf.String())
			}
		})
	}
}

func TestWorld_Configuration(t *testing.T) {
	t.Run("triangle ceiling", func(t *testing.T) {
		config := DefaultConfig()
		config.MaxTriangles = MAX_TRIANGLES + 1
		if _, err := NewWorld(config); errors.Cause(err) != ErrTriangleCeiling {
			t.Errorf("Expected ErrTriangleCeiling, got %v", err)
		}
	})

	t.Run("sort preference", func(t *testing.T) {
		config := DefaultConfig()
		config.Sort = device.Preference(9)
		if _, err := NewWorld(config); errors.Cause(err) != ErrSortPreference {
			t.Errorf("Expected ErrSortPreference, got %v", err)
		}
	})

	t.Run("downgrade", func(t *testing.T) {
		config := DefaultConfig()
		config.Sort = device.OneSweep
		world, err := NewWorldOn(testDevices["legacy"], config)
		if err != nil {
			t.Fatal(err)
		}
		if world.Strategy().String() != "legacy" {
			t.Errorf("Expected the legacy sort, got %s", world.Strategy())
		}
	})

	t.Run("rejected bodies", func(t *testing.T) {
		config := DefaultConfig()
		config.MaxTriangles = 4
		world, err := NewWorldOn(testDevices["onesweep"], config)
		if err != nil {
			t.Fatal(err)
		}

		triangle := createTriangle(t, "triangle", mgl32.Vec3{})
		cube := createCube(t, "cube", mgl32.Vec3{})
		err = world.AddBodies(triangle, cube, triangle)

		errs := multierr.Errors(err)
		if len(errs) != 2 {
			t.Fatalf("Expected 2 errors, got %v", err)
		}
		if errors.Cause(errs[0]) != ErrTooManyTriangles {
			t.Errorf("Expected ErrTooManyTriangles, got %v", errs[0])
		}
		if errors.Cause(errs[1]) != ErrDuplicateBody {
			t.Errorf("Expected ErrDuplicateBody, got %v", errs[1])
		}
		if len(world.Bodies) != 1 {
			t.Errorf("Expected 1 body, got %d", len(world.Bodies))
		}
	})

	t.Run("remove", func(t *testing.T) {
		world := createWorld(t, testDevices["onesweep"], false)
		body := createTriangle(t, "triangle", mgl32.Vec3{})
		if err := world.AddBody(body); err != nil {
			t.Fatal(err)
		}
		if err := world.RemoveBody(body); err != nil {
			t.Fatal(err)
		}
		if err := world.RemoveBody(body); errors.Cause(err) != ErrUnknownBody {
			t.Errorf("Expected ErrUnknownBody, got %v", err)
		}
		if _, err := world.Contacts(body); errors.Cause(err) != ErrUnknownBody {
			t.Errorf("Expected ErrUnknownBody, got %v", err)
		}
	})
}
