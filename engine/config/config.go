package config

import (
	"bytes"
	"os"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

// ErrInvalidConfig is returned when a configuration file cannot be decoded or
// holds values the engine cannot start with.
var ErrInvalidConfig = errors.New("invalid configuration")

type WindowConfig struct {
	// The application name used in windowing.
	Title string `toml:"title"`
	// Window starting width.
	Width uint32 `toml:"width"`
	// Window starting height.
	Height uint32 `toml:"height"`
	// Window starting position x axis.
	X int32 `toml:"x"`
	// Window starting position y axis.
	Y int32 `toml:"y"`
}

type ShadersConfig struct {
	// Path of the compiled vertex shader binary.
	Vertex string `toml:"vertex"`
	// Path of the compiled fragment shader binary.
	Fragment string `toml:"fragment"`
	// Drop trailing bytes instead of rejecting binaries whose size is not a
	// multiple of 4.
	Permissive bool `toml:"permissive"`
	// Reject binaries that do not start with the SPIR-V magic number.
	CheckMagic bool `toml:"check_magic"`
	// Restart the renderer when one of the binaries changes on disk.
	Watch bool `toml:"watch"`
}

type DrawConfig struct {
	VertexCount   uint32 `toml:"vertex_count"`
	InstanceCount uint32 `toml:"instance_count"`
	FirstVertex   uint32 `toml:"first_vertex"`
	FirstInstance uint32 `toml:"first_instance"`
}

type RenderConfig struct {
	ClearColor [4]float32 `toml:"clear_color"`
	// Validation turns on the Vulkan validation layer when it is installed.
	Validation bool `toml:"validation"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type Config struct {
	Window  WindowConfig  `toml:"window"`
	Shaders ShadersConfig `toml:"shaders"`
	Draw    DrawConfig    `toml:"draw"`
	Render  RenderConfig  `toml:"render"`
	Log     LogConfig     `toml:"log"`
}

// Default is the configuration used when no file is given. Values missing
// from a file keep these defaults.
func Default() *Config {
	draw := metadata.DefaultDrawParams()
	return &Config{
		Window: WindowConfig{
			Title:  "Lumen",
			Width:  800,
			Height: 600,
			X:      100,
			Y:      100,
		},
		Shaders: ShadersConfig{
			Vertex:     "shaders/simple.vert.spv",
			Fragment:   "shaders/simple.frag.spv",
			CheckMagic: true,
		},
		Draw: DrawConfig{
			VertexCount:   draw.VertexCount,
			InstanceCount: draw.InstanceCount,
			FirstVertex:   draw.FirstVertex,
			FirstInstance: draw.FirstInstance,
		},
		Render: RenderConfig{
			ClearColor: [4]float32{0.1, 0.1, 0.1, 1.0},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads and validates the TOML file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.Mark(err, core.ErrIO, "failed to read config file %q", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config file %q", path)
	}
	return cfg, nil
}

// Parse decodes TOML on top of Default and validates the result. Unknown keys
// are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, core.Mark(err, ErrInvalidConfig, "line %d, column %d", row, col)
		}
		return nil, core.Mark(err, ErrInvalidConfig, "failed to decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Window.Width == 0 || c.Window.Height == 0 {
		return core.Fail(ErrInvalidConfig, "window size %dx%d must not be zero", c.Window.Width, c.Window.Height)
	}
	if c.Shaders.Vertex == "" || c.Shaders.Fragment == "" {
		return core.Fail(ErrInvalidConfig, "both vertex and fragment shader paths are required")
	}
	if c.Draw.VertexCount == 0 || c.Draw.InstanceCount == 0 {
		return core.Fail(ErrInvalidConfig, "draw needs at least one vertex and one instance")
	}
	for i, v := range c.Render.ClearColor {
		if v < 0 || v > 1 {
			return core.Fail(ErrInvalidConfig, "clear_color[%d] = %v is outside [0, 1]", i, v)
		}
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return core.Mark(err, ErrInvalidConfig, "log level %q", c.Log.Level)
	}
	return nil
}

// Extent is the window size as a render target extent.
func (c *Config) Extent() metadata.Extent2D {
	return metadata.Extent2D{Width: c.Window.Width, Height: c.Window.Height}
}

func (c *Config) ClearColor() mgl32.Vec4 {
	return mgl32.Vec4(c.Render.ClearColor)
}

func (c *Config) DrawParams() metadata.DrawParams {
	return metadata.DrawParams{
		VertexCount:   c.Draw.VertexCount,
		InstanceCount: c.Draw.InstanceCount,
		FirstVertex:   c.Draw.FirstVertex,
		FirstInstance: c.Draw.FirstInstance,
	}
}

func (c *Config) ShaderOptions() renderer.ShaderOptions {
	return renderer.ShaderOptions{
		Permissive: c.Shaders.Permissive,
		CheckMagic: c.Shaders.CheckMagic,
	}
}
