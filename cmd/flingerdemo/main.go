// Command flingerdemo renders a shaded disc through a generated scanline
// routine and writes the framebuffer as an image.
//
// Usage:
//
//	flingerdemo -blend alpha -depth -stencil -o disc.png
//	flingerdemo -blend premul -o - > disc.bmp
package main

import (
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/bmp"
	"golang.org/x/image/math/f32"
	"golang.org/x/term"

	"github.com/gogpu/flinger"
	"github.com/gogpu/flinger/internal/parallel"
	"github.com/gogpu/flinger/shader"
)

// pipeName is the output name that selects stdout.
const pipeName = "-"

// GL blend enums accepted by -blend add.
const (
	glOne     = 1
	glFuncAdd = 0x8006
)

// Stencil tile size in pixels.
const tile = 16

func main() {
	var (
		width   = flag.Int("width", 512, "image width")
		height  = flag.Int("height", 512, "image height")
		mode    = flag.String("blend", "alpha", "blend mode: off, alpha, premul or add")
		src     = flag.String("src", "ff8000c0", "disc color as RRGGBBAA")
		dst     = flag.String("dst", "203060ff", "background color as RRGGBBAA")
		depth   = flag.Bool("depth", false, "enable the depth test against a plane at z=0.5")
		stencil = flag.Bool("stencil", false, "enable the stencil test against a checkerboard")
		verify  = flag.Bool("verify", false, "check every row against the reference pipeline")
		dump    = flag.Bool("dump", false, "print the generated routine to stderr")
		verbose = flag.Bool("v", false, "debug logging")
		workers = flag.Int("workers", runtime.NumCPU(), "number of rows rendered concurrently")
		output  = flag.String("o", "disc.png", "output file (.png or .bmp), or - for stdout")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	flinger.SetLogger(log)

	d := &demo{
		width:   *width,
		height:  *height,
		depth:   *depth,
		stencil: *stencil,
		verify:  *verify,
		log:     log,
	}
	if err := d.setup(*mode, *src, *dst, *dump); err != nil {
		log.Error("setup failed", "err", err)
		os.Exit(2)
	}

	pool := parallel.NewPool(*workers)
	defer pool.Close()
	if err := pool.Rows(d.height, d.row); err != nil {
		log.Error("render failed", "err", err)
		os.Exit(1)
	}
	if err := d.save(*output); err != nil {
		log.Error("save failed", "err", err)
		os.Exit(1)
	}
	log.Info("rendered", "output", *output, "width", d.width, "height", d.height,
		"workers", pool.Workers(), "instructions", d.routine.Instructions())
}

type demo struct {
	width, height  int
	depth, stencil bool
	verify         bool
	log            *slog.Logger

	cfg     flinger.PipelineConfig
	info    shader.Info
	routine *flinger.Routine
	left    f32.Vec4
	right   f32.Vec4

	frame []uint32
	zbuf  []int32
	sbuf  []uint8
}

func (d *demo) setup(mode, src, dst string, dump bool) error {
	if d.width <= 0 || d.height <= 0 {
		return fmt.Errorf("bad size %dx%d", d.width, d.height)
	}
	left, err := parseColor(src)
	if err != nil {
		return fmt.Errorf("-src: %w", err)
	}
	bg, err := parseColor(dst)
	if err != nil {
		return fmt.Errorf("-dst: %w", err)
	}
	d.left = left
	d.right = f32.Vec4{left[2], left[1], left[0], left[3]}

	if d.cfg.Blend, err = blendMode(mode); err != nil {
		return err
	}
	d.cfg.Buffer = flinger.BufferState{DepthTest: d.depth, DepthFunc: flinger.Less, StencilTest: d.stencil}
	d.cfg.SetStencil(flinger.StencilFace{
		Func:      flinger.Equal,
		Ref:       1,
		Mask:      0xff,
		Fail:      flinger.StencilKeep,
		DepthFail: flinger.StencilKeep,
		DepthPass: flinger.StencilIncr,
	})

	reg := flinger.NewRegistry()
	prog, err := reg.VaryingColorShader("gradient", 0)
	if err != nil {
		return err
	}
	d.info = prog.Info
	var opts []flinger.GenerateOption
	if dump {
		opts = append(opts, flinger.WithDump(os.Stderr))
	}
	if d.routine, err = flinger.Generate(reg, prog, d.cfg, "scanline_"+mode, opts...); err != nil {
		return err
	}

	n := d.width * d.height
	d.frame = make([]uint32, n)
	fill := packColor(bg)
	for i := range d.frame {
		d.frame[i] = fill
	}
	if d.depth {
		d.zbuf = make([]int32, n)
		plane := flinger.DepthKey(0.5)
		for i := range d.zbuf {
			d.zbuf[i] = plane
		}
	}
	if d.stencil {
		d.sbuf = make([]uint8, n)
		for y := 0; y < d.height; y++ {
			for x := 0; x < d.width; x++ {
				d.sbuf[y*d.width+x] = uint8((x/tile + y/tile) & 1)
			}
		}
	}
	return nil
}

// row rasterizes the disc's span on row y.
func (d *demo) row(y int) error {
	cx, cy := float64(d.width)/2, float64(d.height)/2
	r := math.Min(cx, cy) * 0.8
	dy := float64(y) + 0.5 - cy
	if math.Abs(dy) >= r {
		return nil
	}
	half := math.Sqrt(r*r - dy*dy)
	x0 := max(int(math.Ceil(cx-half-0.5)), 0)
	x1 := min(int(math.Ceil(cx+half-0.5)), d.width)
	if x1 <= x0 {
		return nil
	}

	// Color runs from left to right across the full diameter; depth runs
	// from 0 to 1.
	start, step := make([]f32.Vec4, d.info.BlockLen()), make([]f32.Vec4, d.info.BlockLen())
	t0 := float32((float64(x0) + 0.5 - (cx - r)) / (2 * r))
	dt := float32(1 / (2 * r))
	for l := range 4 {
		span := d.right[l] - d.left[l]
		start[shader.SlotVaryings][l] = d.left[l] + span*t0
		step[shader.SlotVaryings][l] = span * dt
	}
	start[shader.SlotFragCoord] = f32.Vec4{float32(x0) + 0.5, float32(y) + 0.5, t0, 1}
	step[shader.SlotFragCoord] = f32.Vec4{1, 0, dt, 0}

	off, n := y*d.width+x0, x1-x0
	frame := d.frame[off : off+n]
	var zbuf []int32
	var sbuf []uint8
	if d.depth {
		zbuf = d.zbuf[off : off+n]
	}
	if d.stencil {
		sbuf = d.sbuf[off : off+n]
	}
	state := d.cfg.ForFace(true)

	if !d.verify {
		return d.routine.Run(start, step, frame, zbuf, sbuf, state, n)
	}

	wantStart, wantFrame := slices.Clone(start), slices.Clone(frame)
	wantZ, wantS := slices.Clone(zbuf), slices.Clone(sbuf)
	flinger.ReferenceScanline(d.cfg, d.info, copyVarying, wantStart, step, wantFrame, wantZ, wantS, state, n)
	if err := d.routine.Run(start, step, frame, zbuf, sbuf, state, n); err != nil {
		return err
	}
	if !slices.Equal(frame, wantFrame) || !slices.Equal(zbuf, wantZ) || !slices.Equal(sbuf, wantS) {
		return fmt.Errorf("row %d differs from the reference pipeline", y)
	}
	return nil
}

// copyVarying is the Go model of the gradient shader.
func copyVarying(block []f32.Vec4) {
	block[shader.SlotFragColor] = block[shader.SlotVaryings]
}

func blendMode(mode string) (flinger.BlendState, error) {
	switch mode {
	case "off":
		return flinger.BlendState{}, nil
	case "premul":
		return flinger.BlendStateFromGPU(gputypes.BlendStatePremultiplied(), [4]uint8{})
	case "alpha":
		over := gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorSrcAlpha,
			DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
			Operation: gputypes.BlendOperationAdd,
		}
		return flinger.BlendStateFromGPU(gputypes.BlendState{Color: over, Alpha: over}, [4]uint8{})
	case "add":
		one, err := flinger.BlendFactorFromGL(glOne)
		if err != nil {
			return flinger.BlendState{}, err
		}
		eq, err := flinger.BlendEquationFromGL(glFuncAdd)
		if err != nil {
			return flinger.BlendState{}, err
		}
		return flinger.BlendState{
			Enable:   true,
			SrcColor: one, DstColor: one,
			SrcAlpha: one, DstAlpha: one,
			ColorEquation: eq, AlphaEquation: eq,
		}, nil
	}
	return flinger.BlendState{}, fmt.Errorf("unknown blend mode %q", mode)
}

// parseColor parses RRGGBB or RRGGBBAA into [0,1] components.
func parseColor(s string) (f32.Vec4, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) == 6 {
		s += "ff"
	}
	if len(s) != 8 {
		return f32.Vec4{}, fmt.Errorf("color %q: want RRGGBB or RRGGBBAA", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return f32.Vec4{}, fmt.Errorf("color %q: %w", s, err)
	}
	var c f32.Vec4
	for i := range c {
		c[i] = float32(v>>(24-8*i)&0xff) / 255
	}
	return c, nil
}

func packColor(c f32.Vec4) uint32 {
	var w uint32
	for i, v := range c {
		w |= uint32(v*255+0.5) << (8 * i)
	}
	return w
}

func (d *demo) image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, d.width, d.height))
	for i, px := range d.frame {
		binary.LittleEndian.PutUint32(img.Pix[i*4:], px)
	}
	return img
}

func (d *demo) save(path string) error {
	if path == pipeName {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return errors.New("refusing to write image data to a terminal")
		}
		return bmp.Encode(os.Stdout, d.image())
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f, filepath.Ext(path), d.image()); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func encode(w io.Writer, ext string, img image.Image) error {
	switch strings.ToLower(ext) {
	case ".png":
		return png.Encode(w, img)
	case ".bmp":
		return bmp.Encode(w, img)
	}
	return fmt.Errorf("unsupported output format %q", ext)
}
