// Package flinger generates specialized scanline routines for a software
// rasterizer.
//
// # Overview
//
// A scanline routine shades one contiguous run of fragments: for every
// fragment it runs the stencil and depth tests, calls the fragment shader,
// blends the result into the framebuffer and steps the interpolated
// attributes. Generate builds one routine per (shader, configuration)
// pair. Every fixed-function choice in the PipelineConfig is resolved
// while the routine is built, so the routine itself never branches on
// configuration; only per-primitive stencil state that differs between
// front and back faces is read at run time.
//
// # Quick Start
//
//	reg := flinger.NewRegistry()
//	prog, _ := reg.ConstantColorShader("red", [4]float32{1, 0, 0, 1})
//
//	var cfg flinger.PipelineConfig
//	r, err := flinger.Generate(reg, prog, cfg, "scanline_red")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	start := make([]f32.Vec4, prog.Info.BlockLen())
//	step := make([]f32.Vec4, prog.Info.BlockLen())
//	frame := make([]uint32, 64)
//	_ = r.Run(start, step, frame, nil, nil, flinger.StencilState{}, len(frame))
//
// # Framebuffer formats
//
// Color pixels are packed RGBA8 words with red in the low byte. Depth
// values are DepthKey of the float depth. Stencil values are bytes.
//
// # Registries
//
// A Registry holds shaders and routines and is owned by the caller.
// Generation is idempotent by name and must be serialized per Registry;
// generated routines are safe to run concurrently on disjoint buffers.
//
// # Logging
//
// flinger logs nothing by default. See SetLogger.
package flinger
