package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/lox/headsup/internal/client"
	"github.com/lox/headsup/internal/deck"
)

var CLI struct {
	Server   string `short:"s" long:"server" default:"http://localhost:9050" help:"Server URL"`
	Name     string `short:"n" long:"name" default:"" help:"Player name"`
	LogLevel string `short:"l" long:"log-level" default:"warn" help:"Log level"`
}

func main() {
	kctx := kong.Parse(&CLI)

	logger := log.New(os.Stderr)
	switch CLI.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.WarnLevel)
	}

	name := CLI.Name
	if name == "" {
		name = os.Getenv("USER")
	}

	c := client.NewClient(CLI.Server, name, logger)
	if err := c.Connect(); err != nil {
		fmt.Printf("Error connecting: %v\n", err)
		kctx.Exit(1)
	}
	defer func() { _ = c.Disconnect() }()

	session := c.Session()

	fmt.Println("Connected. Commands: chip <amount>, clear, bet, call, fold, status, quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "chip":
			if len(fields) != 2 {
				fmt.Println("usage: chip <amount>")
				continue
			}
			worth, err := strconv.Atoi(fields[1])
			if err != nil || worth <= 0 {
				fmt.Println("chip amount must be a positive number")
				continue
			}
			session.AddChip(worth)

		case "clear":
			session.ClearBet()

		case "bet":
			session.ConfirmBet()

		case "call":
			session.Call()

		case "fold":
			session.Fold()

		case "status":
			printStatus(session)

		case "quit", "exit":
			return

		default:
			fmt.Printf("unknown command: %s\n", fields[0])
		}
	}
}

func printStatus(session *client.Session) {
	user := session.User()
	if user == nil {
		fmt.Println("waiting for a seat...")
		return
	}
	opponent := session.Opponent()
	table := session.Table()

	fmt.Printf("%s  cash=$%d  bet=$%d  hand=%s\n",
		user.Name, user.Cash, user.TotalBet(), renderCards(user.HoleCards))
	if opponent.Name != "" {
		fmt.Printf("%s  cash=$%d  bet=$%d  hand=%s\n",
			opponent.Name, opponent.Cash, opponent.TotalBet(), renderCards(opponent.HoleCards))
	}
	fmt.Printf("board=%s  pot=$%d\n", renderCards(table.Cards), table.Pot)

	switch {
	case user.HasFolded:
		fmt.Println("you folded")
	case user.HasBetted:
		fmt.Println("bet confirmed, waiting for the round")
	case opponent.HasBetted:
		fmt.Printf("opponent has bet $%d\n", opponent.TotalBet())
	}
}

func renderCards(cards []deck.Card) string {
	if len(cards) == 0 {
		return "--"
	}
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
