package main

import (
	"fmt"

	"github.com/google/shlex"

	"freetribe/x/strconvx"
)

// command is one parsed REPL line: a verb plus its positional arguments.
// The panel wire format spec leaves unspecified (it only defines the
// CPU<->DSP framed protocol), so simctl's own commands and byte encoding
// below are this tool's invention, kept deliberately minimal rather than
// an attempt to reconstruct an unspecified format.
type command struct {
	verb string
	args []string
}

// parseCommand tokenizes line the way a shell would (quoting, escaping),
// so a button label or module name containing spaces can be passed as one
// argument.
func parseCommand(line string) (command, error) {
	toks, err := shlex.Split(line)
	if err != nil {
		return command{}, fmt.Errorf("simctl: parsing command: %w", err)
	}
	if len(toks) == 0 {
		return command{}, nil
	}
	return command{verb: toks[0], args: toks[1:]}, nil
}

// dispatch runs one parsed command against console, printing usage errors
// to stdout rather than failing the whole REPL.
func dispatch(c console, cmd command) {
	if cmd.verb == "" {
		return
	}
	switch cmd.verb {
	case "button":
		runArgs(cmd.args, 2, func(a []int) { c.Button(uint8(a[0]), a[1] != 0) })
	case "encoder":
		runArgs(cmd.args, 1, func(a []int) { c.Encoder(int8(a[0])) })
	case "knob":
		runArgs(cmd.args, 2, func(a []int) { c.Knob(uint8(a[0]), uint16(a[1])) })
	case "param":
		runArgs(cmd.args, 2, func(a []int) { c.Param(uint16(a[0]), int32(a[1])) })
	case "quit", "exit":
		c.Quit()
	case "help":
		printHelp()
	default:
		fmt.Printf("simctl: unknown command %q (try \"help\")\n", cmd.verb)
	}
}

// console is the set of actions a parsed command can trigger; main.go's
// replState implements it against the live pty/bus/dispatcher.
type console interface {
	Button(index uint8, down bool)
	Encoder(delta int8)
	Knob(index uint8, value uint16)
	Param(index uint16, value int32)
	Quit()
}

func runArgs(args []string, n int, fn func([]int)) {
	if len(args) != n {
		fmt.Printf("simctl: expected %d argument(s), got %d\n", n, len(args))
		return
	}
	vals := make([]int, n)
	for i, a := range args {
		v, err := strconvx.Atoi(a)
		if err != nil {
			fmt.Printf("simctl: %q is not an integer\n", a)
			return
		}
		vals[i] = v
	}
	fn(vals)
}

func printHelp() {
	fmt.Print(`commands:
  button <index> <0|1>   simulate a panel button press/release
  encoder <delta>        simulate a relative encoder turn
  knob <index> <value>   simulate an absolute knob position
  param <index> <value>  publish a module parameter set on the bus (not sent to a DSP)
  quit                   exit simctl
`)
}
