package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/cespare/loglux/claim"
	"github.com/cespare/loglux/controller"
	"github.com/cespare/subcmd"
)

// This is tuned to give 9-10% steps near the top of the range and very small
// ones near the bottom.
const defaultNumSteps = 75

var cmds = []subcmd.Command{
	{
		Name:        "up",
		Description: "increase the backlight brightness by one step",
		Do:          func(args []string) { cmdStep("up", args) },
	},
	{
		Name:        "down",
		Description: "decrease the backlight brightness by one step",
		Do:          func(args []string) { cmdStep("down", args) },
	},
	{
		Name:        "get",
		Description: "print the selected controller's brightness",
		Do:          cmdGet,
	},
	{
		Name:        "list",
		Description: "list the available backlight controllers",
		Do:          cmdList,
	},
}

func main() {
	log.SetFlags(0)
	subcmd.Run(cmds)
}

type options struct {
	path     string
	numSteps uint64
}

func (o *options) register(fs *flag.FlagSet) {
	const pathUsage = "Controller directory, or a directory of controllers"
	const stepsUsage = "Number of steps from zero to maximum brightness"
	fs.StringVar(&o.path, "path", controller.DefaultRoot, pathUsage)
	fs.StringVar(&o.path, "p", controller.DefaultRoot, pathUsage+" (shorthand)")
	fs.Uint64Var(&o.numSteps, "num-steps", defaultNumSteps, stepsUsage)
	fs.Uint64Var(&o.numSteps, "n", defaultNumSteps, stepsUsage+" (shorthand)")
}

func (o *options) find() controller.Controller {
	if o.numSteps == 0 {
		log.Fatal("-num-steps must be positive")
	}
	c, err := controller.Find(o.path, o.numSteps)
	if err != nil {
		log.Fatalln("Error selecting controller:", err)
	}
	return c
}

const pathHelp = `
If -path names a controller directory (one containing max_brightness and
brightness files), that controller is used. Otherwise every subdirectory is
considered and the one with the largest max_brightness is used.
`

func cmdStep(dir string, args []string) {
	fs := flag.NewFlagSet(dir, flag.ExitOnError)
	var opts options
	opts.register(fs)
	notify := fs.Bool("notify", true, "Show a desktop notification (via notify-send)")
	verbose := fs.Bool("v", false, "Verbose mode")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage:

  loglux %s [flags...]

where the flags are:
`, dir)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
The %s command moves the backlight brightness one step %s on a
logarithmic scale, so that every step looks like roughly the same change.
`+pathHelp, dir, dir)
	}
	fs.Parse(args)
	if fs.NArg() > 0 {
		fs.Usage()
		os.Exit(1)
	}

	c := opts.find()

	// Only the first of several concurrent invocations (say, from a held
	// key) shows a notification.
	lock, err := claim.Acquire(claim.DefaultPath())
	claimed := err == nil
	if claimed {
		defer lock.Release()
	} else if !errors.Is(err, claim.ErrClaimed) {
		log.Println("Error claiming notification lock:", err)
	}

	var newB uint64
	if dir == "up" {
		newB = c.StepUp()
	} else {
		newB = c.StepDown()
	}
	if *verbose {
		log.Printf("%s: changing %d -> %d (max: %d)", c.Name(), c.Current(), newB, c.Max())
	}
	err = c.Apply(context.Background(), newB, claimed && *notify)
	if errors.Is(err, controller.ErrNotify) {
		log.Println("Error:", err)
	} else if err != nil {
		log.Fatalln("Error:", err)
	}
}

func cmdGet(args []string) {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	var opts options
	opts.register(fs)
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, `Usage:

  loglux get [flags...]

where the flags are:
`)
		fs.PrintDefaults()
		fmt.Fprint(os.Stderr, `
The get command prints the current and maximum brightness of the selected
controller.
`+pathHelp)
	}
	fs.Parse(args)

	c := opts.find()
	fmt.Printf("%s: max: %d, current: %d (%d%%)\n", c.Name(), c.Max(), c.Current(), c.Percent(c.Current()))
}

func cmdList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	root := fs.String("path", controller.DefaultRoot, "Controller directory, or a directory of controllers")
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, `Usage:

  loglux list [-path dir]

The list command prints every controller under -path, largest
max_brightness first. The one that up and down would use is marked with a
'*'. If -path is itself a controller, only that controller is printed.
`)
	}
	fs.Parse(args)

	cs, err := controller.Candidates(*root)
	if err != nil {
		log.Fatalln("Error listing controllers:", err)
	}
	if len(cs) == 0 {
		log.Fatalf("No controllers in %s", *root)
	}
	var selected string
	if c, err := controller.Find(*root, defaultNumSteps); err == nil {
		selected = c.Path
	}
	for _, c := range cs {
		mark := " "
		if c.Path == selected {
			mark = "*"
		}
		cur := "?"
		if c.HasBrightness {
			cur = fmt.Sprint(c.Brightness)
		}
		fmt.Printf("%s %s max: %d, current: %s\n", mark, c.Path, c.MaxBrightness, cur)
	}
}
