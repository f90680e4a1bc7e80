// Command voxelcored is a minimal bootstrap demonstrating the engine core
// end to end: it opens a window and reads input with glfw (device setup,
// descriptor pools, command-buffer recording, and pipeline creation stay
// out of scope per the Non-goals), drives the chunk manager's load/mesh
// pipeline around the player every frame, and resolves player movement and
// block picking through the physics package. It has no GPU renderer
// attached; internal/rendersink is the seam a real one would plug into.
package main

import (
	"flag"
	"math"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"voxelcore/internal/ao"
	"voxelcore/internal/assetwatch"
	"voxelcore/internal/config"
	"voxelcore/internal/drawtable"
	"voxelcore/internal/mesh"
	"voxelcore/internal/meshconvert"
	"voxelcore/internal/physics"
	"voxelcore/internal/registry"
	"voxelcore/internal/rendersink"
	"voxelcore/internal/terrain"
	"voxelcore/internal/texturearray"
	"voxelcore/internal/threadpool"
	"voxelcore/internal/voxel"
	"voxelcore/internal/world"
	"voxelcore/pkg/blockmodel"
)

func init() { runtime.LockOSThread() }

const (
	winW, winH   = 960, 600
	playerWidth  = 0.6
	playerHeight = 1.8
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file (defaults baked in if empty)")
	flag.Parse()

	logger := log.Default()
	logger.SetLevel(log.InfoLevel)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logger.Warn("failed to load config, using defaults", "path", *configPath, "err", err)
		} else {
			cfg = loaded
		}
	}
	config.Apply(cfg)

	loader := blockmodel.NewLoader(cfg.AssetsPath)
	reg := registry.New(loader, logger)
	reg.InitDefaults()

	gen := terrain.New(cfg.WorldSeed, reg)
	tex := texturearray.New(logger)
	sampler := ao.NewSampler()
	sampler.Debug = cfg.DebugAO
	sampler.Multiplier = cfg.AOMultiplier
	conv := meshconvert.New(reg, tex, sampler)

	pool := threadpool.New(cfg.ThreadPoolSize)
	defer pool.Shutdown()

	manager := world.NewManager(reg, gen, conv, pool)
	table := drawtable.New()
	var sink rendersink.Sink = &logSink{log: logger}

	watcher, err := assetwatch.New(cfg.AssetsPath, loader, reg, manager, logger)
	if err != nil {
		logger.Warn("asset watcher unavailable, model edits need a restart", "err", err)
	} else {
		defer watcher.Close()
	}

	if err := glfw.Init(); err != nil {
		logger.Fatal("glfw init failed", "err", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 2)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(winW, winH, "voxelcore", nil, nil)
	if err != nil {
		logger.Fatal("window creation failed", "err", err)
	}
	window.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		logger.Fatal("gl init failed", "err", err)
	}
	glfw.SwapInterval(1)

	camYaw, camPitch := -90.0, -20.0
	lastX, lastY := float64(winW)/2, float64(winH)/2
	firstMouse := true
	window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	window.SetCursorPosCallback(func(_ *glfw.Window, xpos, ypos float64) {
		if firstMouse {
			lastX, lastY = xpos, ypos
			firstMouse = false
		}
		xoffset := (xpos - lastX) * 0.1
		yoffset := (lastY - ypos) * 0.1
		lastX, lastY = xpos, ypos
		camYaw += xoffset
		camPitch += yoffset
		if camPitch > 89 {
			camPitch = 89
		}
		if camPitch < -89 {
			camPitch = -89
		}
	})

	playerPos := mgl32.Vec3{0, float32(terrain.SeaLevel) + 4, 0}

	window.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		eye := playerPos.Add(mgl32.Vec3{0, playerHeight - 0.2, 0})
		front := frontVector(camYaw, camPitch)
		hit := physics.Raycast(reg, manager, eye, front, physics.MinReachDistance, physics.MaxReachDistance)
		if !hit.Hit {
			return
		}
		switch button {
		case glfw.MouseButtonLeft:
			manager.SetBlock(hit.HitPosition[0], hit.HitPosition[1], hit.HitPosition[2], registry.Air, 0)
		case glfw.MouseButtonRight:
			stone, _ := reg.ByName("stone")
			manager.SetBlock(hit.AdjacentPosition[0], hit.AdjacentPosition[1], hit.AdjacentPosition[2], stone, 0)
		}
	})

	lastTime := time.Now()
	var frame int

	for !window.ShouldClose() {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now
		frame++

		center := voxel.WorldToChunk(int(math.Floor(float64(playerPos.X()))), int(math.Floor(float64(playerPos.Y()))), int(math.Floor(float64(playerPos.Z()))))
		manager.UpdateLoadedChunks(center, config.GetRenderDistance())
		loaded, meshed := manager.ProcessCompleted(256)

		playerPos = stepPlayer(reg, manager, playerPos, dt, camYaw, camPitch, window)

		if frame%30 == 0 {
			table.Rebuild(manager, manager.Coords())
			sink.UpdateDrawBuffer(table.Faces())
			sink.UpdateDrawEntries(table.Entries())
			logger.Info("tick", "chunks", manager.Len(), "faces", table.TotalFaceCount(), "loaded", loaded, "meshed", meshed)
		}

		gl.ClearColor(0.53, 0.81, 0.92, 1.0)
		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
		window.SwapBuffers()
		glfw.PollEvents()
	}
}

func stepPlayer(reg *registry.Registry, src physics.BlockSource, pos mgl32.Vec3, dt float64, yaw, pitch float64, window *glfw.Window) mgl32.Vec3 {
	const speed = float32(5.0)
	front := frontVector(yaw, pitch)
	right := front.Cross(mgl32.Vec3{0, 1, 0}).Normalize()

	move := mgl32.Vec3{}
	if window.GetKey(glfw.KeyW) == glfw.Press {
		move = move.Add(front)
	}
	if window.GetKey(glfw.KeyS) == glfw.Press {
		move = move.Sub(front)
	}
	if window.GetKey(glfw.KeyA) == glfw.Press {
		move = move.Sub(right)
	}
	if window.GetKey(glfw.KeyD) == glfw.Press {
		move = move.Add(right)
	}
	move = mgl32.Vec3{move.X(), 0, move.Z()}
	if move.Len() > 0 {
		move = move.Normalize().Mul(speed * float32(dt))
	}

	box := physics.PlayerAABB(pos, playerWidth, playerHeight)
	_, newBox := physics.ResolveAxis(reg, src, box, move)
	return mgl32.Vec3{newBox.Min.X() + playerWidth/2, newBox.Min.Y(), newBox.Min.Z() + playerWidth/2}
}

// logSink is a placeholder rendersink.Sink that only logs buffer sizes; a
// real renderer would upload faces/entries to a GPU buffer instead.
type logSink struct {
	log    *log.Logger
	frames int
}

func (s *logSink) UpdateDrawBuffer(faces []mesh.FaceInstance) {
	s.frames++
	s.log.Debug("draw buffer updated", "faces", len(faces))
}

func (s *logSink) UpdateDrawEntries(entries []mesh.IndirectDrawEntry) {
	s.log.Debug("draw entries updated", "entries", len(entries))
}

func frontVector(yaw, pitch float64) mgl32.Vec3 {
	y := mgl32.DegToRad(float32(yaw))
	p := mgl32.DegToRad(float32(pitch))
	fx := float32(math.Cos(float64(y)) * math.Cos(float64(p)))
	fy := float32(math.Sin(float64(p)))
	fz := float32(math.Sin(float64(y)) * math.Cos(float64(p)))
	return mgl32.Vec3{fx, fy, fz}.Normalize()
}
