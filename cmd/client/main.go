// cmd/client/main.go sends queries to a baccarat server, one connection per query.
//
//	client -addr localhost:12345 new-user
//	client -addr localhost:12345 new-game user-id <id> bet-money 500
//
// With no query arguments every non-empty stdin line is sent as a query.
package main

import (
	"bufio"
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/jason-s-yu/baccarat/internal/client"
	"github.com/pterm/pterm"
)

func main() {
	addr := flag.String("addr", "localhost:12345", "server address")
	timeout := flag.Duration("timeout", client.DefaultTimeout, "per-query timeout")
	plain := flag.Bool("plain", false, "print raw responses without styling")
	flag.Parse()

	if *plain {
		pterm.DisableStyling()
	}

	if flag.NArg() > 0 {
		if !send(*addr, strings.Join(flag.Args(), " "), *timeout) {
			os.Exit(1)
		}
		return
	}

	ok := true
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		ok = send(*addr, line, *timeout) && ok
	}
	if err := scanner.Err(); err != nil {
		pterm.Error.Printfln("reading stdin: %v", err)
		os.Exit(1)
	}
	if !ok {
		os.Exit(1)
	}
}

func send(addr, query string, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := client.Query(ctx, addr, query)
	if err != nil {
		pterm.Error.Println(err)
		return false
	}
	pterm.DefaultBox.WithTitle(pterm.LightYellow(query)).Println(style(resp))
	return true
}

// style highlights the outcome line of a round report.
func style(resp string) string {
	lines := strings.Split(resp, "\n")
	for i, l := range lines {
		switch {
		case strings.HasPrefix(l, "You won!"):
			lines[i] = pterm.LightGreen(l)
		case strings.HasPrefix(l, "You lost!"), strings.HasPrefix(l, "You've lost all"):
			lines[i] = pterm.LightRed(l)
		case strings.HasPrefix(l, "Draw!"):
			lines[i] = pterm.LightCyan(l)
		}
	}
	return strings.Join(lines, "\n")
}
