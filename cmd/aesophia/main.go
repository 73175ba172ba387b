package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"

	aesophia "github.com/KCHENPENGFEI/aesophia"
)

func main() {
	os.Exit(mainAux(os.Args[1:]))
}

func mainAux(args []string) int {
	if handled, status := dispatchSubcommand(args); handled {
		return status
	}
	printRootUsage()
	return 1
}

// doREPL reads one declaration per line, wraps it in a scratch contract and
// prints the resulting ACI. Empty lines and lines starting with ':' quit.
func doREPL() int {
	rl, err := readline.New("aci> ")
	if err != nil {
		fmt.Println(err.Error())
		return 1
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			return 0
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			return 0
		}
		src := "contract Scratch =\n  " + line + "\n"
		aci, err := aesophia.EncodeContractInterface([]byte(src), "<repl>")
		if err != nil {
			fmt.Println(err.Error())
			continue
		}
		fmt.Println(string(aci))
	}
}
