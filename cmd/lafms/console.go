package main

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/Guliveer/lafms/internal/app"
	"github.com/Guliveer/lafms/internal/hotkey"
	"github.com/Guliveer/lafms/internal/scheduler"
)

// controller is the part of app.App the console drives.
type controller interface {
	RunOnce()
	TogglePeriodic() bool
	Rebind(slot hotkey.SlotID) bool
	SetInterval(d time.Duration) error
	Status() app.Status
}

const consoleHelp = `commands:
  once               collect now
  auto               start/stop periodic collection
  bind manual|auto   capture a new hotkey (click to cancel)
  interval <d>       set the periodic interval (e.g. 15m, 3h)
  status             show state and bindings
  quit               exit`

// runConsole reads commands from r until "quit" or EOF. It reports whether
// the user asked to quit.
func runConsole(r io.Reader, w io.Writer, c controller) bool {
	scanner := bufio.NewScanner(r)
	fmt.Fprintln(w, consoleHelp)
	for scanner.Scan() {
		fields := strings.Fields(strings.ToLower(scanner.Text()))
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "once":
			c.RunOnce()
			fmt.Fprintln(w, "collection requested")
		case "auto":
			if c.TogglePeriodic() {
				fmt.Fprintln(w, "periodic collection started")
			} else {
				fmt.Fprintln(w, "periodic collection stopped")
			}
		case "bind":
			slot, ok := parseSlot(fields[1:])
			if !ok {
				fmt.Fprintln(w, "usage: bind manual|auto")
				continue
			}
			if c.Rebind(slot) {
				fmt.Fprintf(w, "press a key combination for %s, click to cancel\n", slot)
			} else {
				fmt.Fprintln(w, "a capture is already in progress")
			}
		case "interval":
			if len(fields) != 2 {
				fmt.Fprintln(w, "usage: interval <duration>")
				continue
			}
			d, err := time.ParseDuration(fields[1])
			if err == nil {
				err = c.SetInterval(d)
			}
			if err != nil {
				fmt.Fprintf(w, "interval: %v (allowed: %s)\n", err, allowedIntervals())
				continue
			}
			fmt.Fprintf(w, "interval set to %s\n", scheduler.HumanizeInterval(d))
		case "status":
			printStatus(w, c.Status())
		case "quit", "exit":
			return true
		case "help", "?":
			fmt.Fprintln(w, consoleHelp)
		default:
			fmt.Fprintf(w, "unknown command %q, type help\n", fields[0])
		}
	}
	return false
}

func parseSlot(args []string) (hotkey.SlotID, bool) {
	if len(args) != 1 {
		return "", false
	}
	switch args[0] {
	case "manual", "once":
		return hotkey.SlotManual, true
	case "auto", "auto-toggle":
		return hotkey.SlotAutoToggle, true
	}
	return "", false
}

func printStatus(w io.Writer, st app.Status) {
	state := "stopped"
	if st.Scheduler.Armed {
		state = "running"
	}
	busy := ""
	if st.Scheduler.Busy {
		busy = ", collecting"
	}
	fmt.Fprintf(w, "periodic: %s every %s%s\n", state, scheduler.HumanizeInterval(st.Scheduler.Interval), busy)

	slots := make([]string, 0, len(st.Bindings))
	for id := range st.Bindings {
		slots = append(slots, string(id))
	}
	sort.Strings(slots)
	for _, id := range slots {
		label := st.Bindings[hotkey.SlotID(id)]
		if hotkey.SlotID(id) == st.Capturing {
			label = hotkey.PromptLabel
		}
		fmt.Fprintf(w, "hotkey %-12s %s\n", id+":", label)
	}
}

func allowedIntervals() string {
	out := make([]string, len(scheduler.AllowedIntervals))
	for i, d := range scheduler.AllowedIntervals {
		out[i] = scheduler.HumanizeInterval(d)
	}
	return strings.Join(out, ", ")
}
