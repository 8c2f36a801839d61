// Command mountctl is a reference CLI harness for the mount driver: an
// interactive numeric menu driving the public mount.MountController
// operations, modeled on cmd/radar's flag-heavy entrypoint style. It is not
// part of the core — it is a caller of it, exactly like the admin HTTP
// surface.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/kneo/indi-bresserexos2/internal/mount"
	"github.com/kneo/indi-bresserexos2/internal/mountconfig"
	"github.com/kneo/indi-bresserexos2/internal/version"
)

var (
	serialDevice = flag.String("serial-device", "", "Serial device path (e.g. /dev/ttyUSB0); required unless -config supplies one")
	configFile   = flag.String("config", "", "Path to JSON mount configuration file")
	debugListen  = flag.String("debug-listen", "", "HTTP listen address for the debug/admin surface; overrides the config value, which defaults to localhost:8787")
	fake         = flag.Bool("fake", false, "Run against an in-memory fake serial port instead of real hardware")
	versionFlag  = flag.Bool("version", false, "Print version information and exit")
	versionShort = flag.Bool("v", false, "Print version information and exit (shorthand)")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if *versionFlag || *versionShort {
		fmt.Printf("mountctl %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	cfg := mountconfig.Defaults()
	if *configFile != "" {
		loaded, err := mountconfig.LoadMountConfig(*configFile)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		cfg = loaded
	}

	var devicePath string
	if *configFile != "" {
		devicePath = *cfg.SerialDevice
	}
	if *serialDevice != "" {
		devicePath = *serialDevice
	}
	if devicePath == "" && !*fake {
		fmt.Fprintln(os.Stderr, "mountctl: --serial-device is required (or pass --fake to run without hardware)")
		os.Exit(2)
	}

	listenAddr := *cfg.DebugListen
	if *debugListen != "" {
		listenAddr = *debugListen
	}

	var port mount.SerialPort
	if *fake {
		port = mount.NewLoopbackFake()
	} else {
		port = mount.NewRealSerialPort(devicePath)
	}

	controller := mount.NewController(port)

	if listenAddr != "" {
		mux := http.NewServeMux()
		controller.AttachAdminRoutes(mux)
		go func() {
			log.Printf("mountctl: debug surface listening on %s", listenAddr)
			if err := http.ListenAndServe(listenAddr, mux); err != nil {
				log.Printf("error: debug listener exited: %v", err)
			}
		}()
	}

	if err := controller.Start(); err != nil {
		log.Fatalf("failed to start mount controller: %v", err)
	}
	defer controller.Stop()

	runMenu(controller)
}

func runMenu(c *mount.MountController) {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println(menuText)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "quit", "q", "exit":
			return
		case "help", "h":
			fmt.Println(menuText)
		case "state":
			fmt.Printf("state=%s pointing=%+v site=%+v\n", c.GetTelescopeState(), c.GetPointingCoordinates(), c.GetSiteLocation())
		case "park":
			reportErr(c.ParkPosition())
		case "stop":
			reportErr(c.StopMotion())
		case "goto":
			ra, dec, err := parseTwoFloats(fields)
			if err != nil {
				fmt.Println(err)
				continue
			}
			reportErr(c.GoTo(ra, dec))
		case "sync":
			ra, dec, err := parseTwoFloats(fields)
			if err != nil {
				fmt.Println(err)
				continue
			}
			reportErr(c.Sync(ra, dec))
		case "site":
			lat, lon, err := parseTwoFloats(fields)
			if err != nil {
				fmt.Println(err)
				continue
			}
			reportErr(c.SetSiteLocation(lat, lon))
		case "move":
			if len(fields) < 3 {
				fmt.Println("usage: move <north|south|east|west> <rate>")
				continue
			}
			dir, err := parseDirection(fields[1])
			if err != nil {
				fmt.Println(err)
				continue
			}
			rate, err := strconv.Atoi(fields[2])
			if err != nil {
				fmt.Println("invalid rate:", err)
				continue
			}
			reportErr(c.StartMotionToDirection(dir, rate))
		case "stopmove":
			reportErr(c.StopMotionToDirection())
		default:
			fmt.Printf("unknown command %q (type help)\n", fields[0])
		}
	}
}

const menuText = `mountctl commands:
  state                    show current state, pointing, and site location
  park                     send PARK
  stop                     send STOP_MOTION
  goto <ra> <dec>          send GOTO
  sync <ra> <dec>          send SYNC (requires Tracking)
  site <lat> <lon>         send SET_SITE_LOCATION
  move <dir> <rate>        start directional pulse motion (requires Tracking)
  stopmove                 stop directional pulse motion
  help                     show this text
  quit                     stop the mount and exit`

func reportErr(err error) {
	if err != nil {
		fmt.Println("error:", err)
	}
}

func parseTwoFloats(fields []string) (float32, float32, error) {
	if len(fields) < 3 {
		return 0, 0, fmt.Errorf("usage: %s <a> <b>", fields[0])
	}
	a, err := strconv.ParseFloat(fields[1], 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid first argument: %w", err)
	}
	b, err := strconv.ParseFloat(fields[2], 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid second argument: %w", err)
	}
	return float32(a), float32(b), nil
}

func parseDirection(s string) (mount.Direction, error) {
	switch strings.ToLower(s) {
	case "north", "n":
		return mount.DirectionNorth, nil
	case "south", "s":
		return mount.DirectionSouth, nil
	case "east", "e":
		return mount.DirectionEast, nil
	case "west", "w":
		return mount.DirectionWest, nil
	default:
		return mount.DirectionNone, fmt.Errorf("unknown direction %q", s)
	}
}
