package main

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bodgit/retro"
	"github.com/bodgit/retro/colormap"
	"github.com/urfave/cli/v2"
)

const defaultDB = "retro.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newRetro(c *cli.Context) (*retro.Retro, error) {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}

	return retro.New(c.String("db"), logger)
}

// parseSplit parses LINE:DX
func parseSplit(s string) (retro.Split, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return retro.Split{}, fmt.Errorf("invalid split \"%s\", expected LINE:DX", s)
	}
	line, err := strconv.Atoi(parts[0])
	if err != nil {
		return retro.Split{}, fmt.Errorf("invalid split \"%s\": %w", s, err)
	}
	dx, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return retro.Split{}, fmt.Errorf("invalid split \"%s\": %w", s, err)
	}
	return retro.Split{Line: line, ScrollX: dx}, nil
}

func newApp(cwd string) *cli.App {
	app := cli.NewApp()

	app.Name = "retro"
	app.Usage = "Palette constrained tile sheet conversion and rendering utility"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"RETRO_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to database",
		},
		&cli.StringFlag{
			Name:    "preset",
			EnvVars: []string{"RETRO_PRESET"},
			Value:   retro.DefaultPreset,
			Usage:   fmt.Sprintf("color map preset, one of %s", strings.Join(colormap.Presets(), ", ")),
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "normalize",
			Usage:       "Convert an image to a tile sheet",
			Description: "",
			ArgsUsage:   "FILE",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					Usage:   "write the sheet to `FILE` rather than next to the image",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				r, err := newRetro(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer r.Close()

				file := c.Args().First()
				b, err := r.Normalize(file, c.String("preset"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				output := c.String("output")
				if output == "" {
					output = strings.TrimSuffix(file, filepath.Ext(file)) + retro.SheetExt
				}
				if err := ioutil.WriteFile(output, b, 0666); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "render",
			Usage:       "Convert and render an image to a PNG",
			Description: "",
			ArgsUsage:   "FILE",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "output",
					Aliases:  []string{"o"},
					Usage:    "write the PNG to `FILE`",
					Required: true,
				},
				&cli.Float64Flag{
					Name:  "scroll-x",
					Usage: "horizontal scroll in pixels",
				},
				&cli.Float64Flag{
					Name:  "scroll-y",
					Usage: "vertical scroll in pixels",
				},
				&cli.IntFlag{
					Name:  "width",
					Usage: "output width before scaling",
				},
				&cli.IntFlag{
					Name:  "height",
					Usage: "output height before scaling",
				},
				&cli.Float64Flag{
					Name:  "scale",
					Value: 1.0,
					Usage: "output scale",
				},
				&cli.StringSliceFlag{
					Name:  "split",
					Usage: "change the horizontal scroll to DX from scanline LINE, as LINE:DX",
				},
				&cli.BoolFlag{
					Name:  "attributes",
					Usage: "render through an attribute grid",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				opts := retro.RenderOptions{
					Preset:     c.String("preset"),
					ScrollX:    c.Float64("scroll-x"),
					ScrollY:    c.Float64("scroll-y"),
					Width:      c.Int("width"),
					Height:     c.Int("height"),
					Scale:      c.Float64("scale"),
					Attributes: c.Bool("attributes"),
				}
				for _, s := range c.StringSlice("split") {
					split, err := parseSplit(s)
					if err != nil {
						return cli.NewExitError(err, 1)
					}
					opts.Splits = append(opts.Splits, split)
				}

				r, err := newRetro(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer r.Close()

				f, err := os.Create(c.String("output"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer f.Close()

				if err := r.Render(c.Args().First(), f, opts); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "batch",
			Usage:       "Convert every image under a directory",
			Description: "",
			ArgsUsage:   "DIRECTORY",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				r, err := newRetro(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer r.Close()

				if err := r.Batch(c.Args().First(), c.String("preset")); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
	}

	return app
}

func main() {
	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	if err := newApp(cwd).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
