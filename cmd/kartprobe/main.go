package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/ttacon/chalk"
	"github.com/urfave/cli"

	"kartrush/internal/collision"
	"kartrush/internal/shared/types"
	"kartrush/internal/track"
)

func main() {
	app := makeapp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, chalk.Red.Color(err.Error()))
		os.Exit(1)
	}
}

func makeapp() *cli.App {
	app := cli.NewApp()
	app.Name = "kartprobe"
	app.Usage = "Run collision probes against a track"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "track", Value: "", Usage: "Track JSON file; the built-in practice yard when empty"},
		cli.BoolFlag{Name: "json", Usage: "Print results as JSON"},
	}

	app.Commands = []cli.Command{
		{
			Name:    "boundaries",
			Aliases: []string{"b"},
			Usage:   "List the ground and wall surfaces of the track",
			Action:  withTrack(boundariesAction),
		},
		{
			Name:    "probe",
			Aliases: []string{"p"},
			Usage:   "Probe ahead of a kart for walls, ground and track edges",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "pos", Value: "0,0.3,0", Usage: "Kart position x,y,z"},
				cli.StringFlag{Name: "vel", Value: "1,0,0", Usage: "Kart velocity x,y,z"},
				cli.Float64Flag{Name: "look-ahead", Value: collision.DefaultConfig().LookAhead, Usage: "Probe distance"},
			},
			Action: withTrack(probeAction),
		},
		{
			Name:    "multi",
			Aliases: []string{"m"},
			Usage:   "Probe forward and at ±45°",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "pos", Value: "0,0.3,0", Usage: "Kart position x,y,z"},
				cli.StringFlag{Name: "vel", Value: "1,0,0", Usage: "Kart velocity x,y,z"},
			},
			Action: withTrack(multiAction),
		},
		{
			Name:  "bounce",
			Usage: "Compute the bounce off a surface",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "normal", Value: "-1,0,0", Usage: "Surface normal x,y,z"},
				cli.StringFlag{Name: "vel", Value: "10,0,0", Usage: "Incoming velocity x,y,z"},
				cli.Float64Flag{Name: "strength", Value: collision.DefaultConfig().BounceStrength, Usage: "Restitution factor"},
				cli.Float64Flag{Name: "min-speed", Value: collision.DefaultConfig().MinBounceSpeed, Usage: "Minimum outgoing speed"},
			},
			Action: bounceAction,
		},
		{
			Name:    "wheel",
			Aliases: []string{"w"},
			Usage:   "Resolve a wheel onto the ground below a mount point",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "mount", Value: "0,1,0", Usage: "Wheel mount x,y,z"},
			},
			Action: withTrack(wheelAction),
		},
		{
			Name:  "ontrack",
			Usage: "Check whether a position is over the track",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "pos", Value: "0,0.3,0", Usage: "Position x,y,z"},
				cli.Float64Flag{Name: "max-distance", Value: collision.DefaultConfig().OnTrackDistance, Usage: "Vertical tolerance"},
			},
			Action: withTrack(onTrackAction),
		},
	}

	return app
}

type trackAction func(c *cli.Context, tr *track.Track, p *collision.Prober) error

func withTrack(fn trackAction) func(c *cli.Context) error {
	return func(c *cli.Context) error {
		tr, err := loadTrack(c.GlobalString("track"))
		if err != nil {
			return err
		}
		return fn(c, tr, collision.NewProber(collision.DefaultConfig()))
	}
}

func loadTrack(path string) (*track.Track, error) {
	if path == "" {
		return track.Default(), nil
	}
	return track.LoadFile(path)
}

func boundariesAction(c *cli.Context, tr *track.Track, _ *collision.Prober) error {
	bs := collision.GetTrackBoundaries(tr.Scene)
	if c.GlobalBool("json") {
		out := make([]map[string]string, 0, len(bs))
		for _, b := range bs {
			out = append(out, map[string]string{"id": b.Object.ID, "kind": b.Kind.String(), "name": b.Name})
		}
		return writeJSON(c.App.Writer, out)
	}
	fmt.Fprintf(c.App.Writer, "%s: %d boundary surfaces of %d objects\n", tr.Name, len(bs), tr.Scene.Len())
	for _, b := range bs {
		fmt.Fprintf(c.App.Writer, "  %-12s %-7s %s\n", b.Object.ID, b.Kind, b.Name)
	}
	return nil
}

func probeAction(c *cli.Context, tr *track.Track, p *collision.Prober) error {
	pos, vel, err := posVel(c)
	if err != nil {
		return err
	}
	hit, ok := p.CheckBoundaryCollisionWithin(tr.Scene, pos, vel, c.Float64("look-ahead"))
	return printHit(c, hit, ok)
}

func multiAction(c *cli.Context, tr *track.Track, p *collision.Prober) error {
	pos, vel, err := posVel(c)
	if err != nil {
		return err
	}
	mh, ok := p.CheckMultiDirectionalCollision(tr.Scene, pos, vel)
	if c.GlobalBool("json") {
		if !ok {
			return writeJSON(c.App.Writer, nil)
		}
		return writeJSON(c.App.Writer, mh)
	}
	if ok {
		fmt.Fprintf(c.App.Writer, "direction %d: ", mh.DirectionIndex)
	}
	return printHit(c, mh.Hit, ok)
}

func bounceAction(c *cli.Context) error {
	normal, err := parseVec(c.String("normal"))
	if err != nil {
		return errors.Wrap(err, "--normal")
	}
	vel, err := parseVec(c.String("vel"))
	if err != nil {
		return errors.Wrap(err, "--vel")
	}
	resp := collision.CalculateBounceResponse(mgl64.Vec3{}, normal.Normalize(), vel, c.Float64("strength"), c.Float64("min-speed"))
	if c.GlobalBool("json") {
		return writeJSON(c.App.Writer, resp)
	}
	fmt.Fprintf(c.App.Writer, "velocity %s force %.3f\n", fmtVec(resp.Velocity), resp.Force)
	return nil
}

func wheelAction(c *cli.Context, tr *track.Track, p *collision.Prober) error {
	mount, err := parseVec(c.String("mount"))
	if err != nil {
		return errors.Wrap(err, "--mount")
	}
	wheel := types.WheelState{Y: mount.Y()}
	_, grounded := p.ResolveWheelContact(tr.Scene, mount, &wheel)
	if c.GlobalBool("json") {
		return writeJSON(c.App.Writer, map[string]interface{}{"wheel": wheel, "grounded": grounded})
	}
	if !grounded {
		fmt.Fprintln(c.App.Writer, chalk.Yellow.Color("no ground below"))
		return nil
	}
	surface := "track"
	if wheel.OnDirt {
		surface = chalk.Yellow.Color("dirt")
	}
	fmt.Fprintf(c.App.Writer, "wheel y=%.3f on %s\n", wheel.Y, surface)
	return nil
}

func onTrackAction(c *cli.Context, tr *track.Track, p *collision.Prober) error {
	pos, err := parseVec(c.String("pos"))
	if err != nil {
		return errors.Wrap(err, "--pos")
	}
	on := p.IsPositionOnTrackWithin(tr.Scene, pos, c.Float64("max-distance"))
	if c.GlobalBool("json") {
		return writeJSON(c.App.Writer, map[string]bool{"on_track": on})
	}
	if on {
		fmt.Fprintln(c.App.Writer, chalk.Green.Color("on track"))
	} else {
		fmt.Fprintln(c.App.Writer, chalk.Red.Color("off track"))
	}
	return nil
}

func posVel(c *cli.Context) (mgl64.Vec3, mgl64.Vec3, error) {
	pos, err := parseVec(c.String("pos"))
	if err != nil {
		return pos, mgl64.Vec3{}, errors.Wrap(err, "--pos")
	}
	vel, err := parseVec(c.String("vel"))
	if err != nil {
		return pos, vel, errors.Wrap(err, "--vel")
	}
	return pos, vel, nil
}

func printHit(c *cli.Context, hit collision.Hit, ok bool) error {
	if c.GlobalBool("json") {
		if !ok {
			return writeJSON(c.App.Writer, nil)
		}
		return writeJSON(c.App.Writer, hit)
	}
	if !ok {
		fmt.Fprintln(c.App.Writer, chalk.Green.Color("clear"))
		return nil
	}
	color := chalk.Red
	if hit.Kind == collision.HitTrackSurface {
		color = chalk.Cyan
	}
	fmt.Fprintf(c.App.Writer, "%s at %s normal %s distance %.3f %s\n",
		color.Color(hit.Kind.String()), fmtVec(hit.Point), fmtVec(hit.Normal), hit.Distance, hit.Surface)
	return nil
}

// parseVec reads "x,y,z".
func parseVec(s string) (mgl64.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return mgl64.Vec3{}, errors.Errorf("expected x,y,z, got %q", s)
	}
	var v mgl64.Vec3
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return mgl64.Vec3{}, errors.Wrapf(err, "component %d", i)
		}
		v[i] = f
	}
	return v, nil
}

func fmtVec(v mgl64.Vec3) string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v[0], v[1], v[2])
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
