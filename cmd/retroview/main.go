package main

import (
	"bytes"
	"flag"
	"io/ioutil"
	"log"
	"os"
	"sync"
	"time"

	"github.com/bodgit/retro"
	"github.com/bodgit/retro/raster"
	"github.com/bodgit/retro/tile"
	"github.com/veandco/go-sdl2/sdl"
	"golang.org/x/image/draw"
)

var (
	file    = flag.String("image", "", "Path to image to view")
	preset  = flag.String("preset", retro.DefaultPreset, "Color map preset to convert with")
	db      = flag.String("db", "retro.db", "Path to database")
	scale   = flag.Int("scale", 2, "Window scale")
	speed   = flag.Float64("speed", 1.0, "Pixels scrolled per frame by the top half")
	cycle   = flag.Int("cycle", 0, "If non-zero cycle the colors of piece 0 every this many frames")
	verbose = flag.Bool("verbose", false, "Log conversion progress")
)

var window *sdl.Window
var surface *sdl.Surface

func main() {
	flag.Parse()

	logger := log.New(ioutil.Discard, "", 0)
	if *verbose {
		logger.SetOutput(os.Stderr)
	}

	r, err := retro.New(*db, logger)
	if err != nil {
		log.Fatalf("Can't open database: %v", err)
	}
	defer r.Close()

	b, err := r.Normalize(*file, *preset)
	if err != nil {
		log.Fatalf("Can't convert image: %v", err)
	}
	sheet, err := tile.Decode(bytes.NewReader(b))
	if err != nil {
		log.Fatalf("Can't decode sheet: %v", err)
	}

	scene, err := r.Scene(sheet, retro.RenderOptions{})
	if err != nil {
		log.Fatalf("Can't build scene: %v", err)
	}
	l := scene.Layers[0]
	width, height := l.Grid.Width, l.Grid.Height

	// The bottom half scrolls twice as fast as the top
	var frame int
	scene.Interrupts = append(scene.Interrupts, raster.Interrupt{
		Line: height / 2,
		Func: func(int) {
			l.ScrollX = float64(frame) * *speed * 2
		},
	})

	c := raster.New(raster.Config{})
	if err := c.Attach(scene); err != nil {
		log.Fatalf("Can't attach scene: %v", err)
	}

	sdl.Main(func() {
		var wg sync.WaitGroup
		wg.Add(1)
		sdl.Do(func() {
			if err := sdl.Init(sdl.INIT_EVERYTHING); err != nil {
				log.Fatalf("Can't init SDL: %v", err)
			}

			var err error
			window, err = sdl.CreateWindow("retroview", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, int32(width**scale), int32(height**scale), sdl.WINDOW_SHOWN)
			if err != nil {
				log.Fatalf("Can't create window: %v", err)
			}
			surface, err = window.GetSurface()
			if err != nil {
				log.Fatalf("Can't get window surface: %v", err)
			}
			wg.Done()
		})
		wg.Wait()
		defer func() {
			sdl.Do(func() {
				window.Destroy()
				sdl.Quit()
			})
		}()

		ticker := time.NewTicker(time.Second / 60)
		defer ticker.Stop()

		for ; ; frame++ {
			l.ScrollX = float64(frame) * *speed
			if *cycle > 0 && frame%*cycle == 0 {
				sheet.Palette.Cycle(0, 1)
			}

			surfaces, err := c.Render()
			if err != nil {
				log.Fatalf("Render error: %v", err)
			}
			m := surfaces[0].Image()

			quit := false
			sdl.Do(func() {
				for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
					if _, ok := event.(*sdl.QuitEvent); ok {
						quit = true
					}
				}
				draw.NearestNeighbor.Scale(surface, surface.Bounds(), m, m.Bounds(), draw.Src, nil)
				window.UpdateSurface()
			})
			if quit {
				return
			}

			<-ticker.C
		}
	})
}
