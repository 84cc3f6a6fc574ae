package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"

	"chat-room/domain"
	"chat-room/wire"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function manages the OS exit code based on run()'s return.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

// run handles the connection lifecycle: handshake, a receive goroutine
// rendering frames, and the interactive send loop.
func run() (int, error) {
	// 1. Load configuration from environment variables.
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Setup context to handle termination signals (Ctrl+C).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stdin := bufio.NewScanner(os.Stdin)
	name := strings.TrimSpace(config.Username)
	if name == "" {
		color.Cyan.Print("Pick a username >> ")
		if !stdin.Scan() {
			return exitOK, nil
		}
		name = strings.TrimSpace(stdin.Text())
	}

	// 3. Connect and claim the identity: the first frame is the bare name.
	conn, err := net.Dial("tcp", config.ServerAddress)
	if err != nil {
		return exitRuntime, fmt.Errorf("could not connect to server at %s: %w", config.ServerAddress, err)
	}
	defer func() {
		log.Debug("Closing connection...")
		_ = conn.Close()
	}()

	if _, err := io.WriteString(conn, name+"\n"); err != nil {
		return exitRuntime, fmt.Errorf("handshake failed: %w", err)
	}
	color.Green.Printf("Connected to %s as %s. /list shows who is online, /exit leaves, @name sends privately.\n",
		config.ServerAddress, name)

	// 4. Receive loop in the background, rendering every frame.
	recvDone := make(chan error, 1)
	go func() {
		recvDone <- receive(conn)
	}()

	// 5. Interactive send loop.
	enc := wire.NewEncoder(conn)
	inputs := make(chan string)
	go func() {
		defer close(inputs)
		for stdin.Scan() {
			inputs <- stdin.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			_ = enc.Encode(domain.NewExit())
			color.Green.Println("Bye!")
			return exitOK, nil
		case err := <-recvDone:
			if err != nil && ctx.Err() == nil {
				return exitRuntime, err
			}
			return exitOK, nil
		case line, ok := <-inputs:
			if !ok {
				_ = enc.Encode(domain.NewExit())
				return exitOK, nil
			}
			quit, err := send(enc, name, strings.TrimSpace(line))
			if err != nil {
				return exitRuntime, fmt.Errorf("send failed: %w", err)
			}
			if quit {
				color.Green.Println("Bye!")
				return exitOK, nil
			}
		}
	}
}

// send maps one input line onto a wire message. Reports quit on /exit.
func send(enc *wire.Encoder, name, line string) (bool, error) {
	switch {
	case line == "":
		return false, nil
	case line == "/exit":
		return true, enc.Encode(domain.NewExit())
	case line == "/list":
		return false, enc.Encode(domain.NewRosterRequest())
	case strings.HasPrefix(line, "@"):
		parts := strings.SplitN(strings.TrimPrefix(line, "@"), " ", 2)
		if len(parts) < 2 || parts[0] == "" || strings.TrimSpace(parts[1]) == "" {
			color.Yellow.Println("Usage: @name message")
			return false, nil
		}
		return false, enc.Encode(domain.NewChat(name, parts[0], strings.TrimSpace(parts[1])))
	default:
		return false, enc.Encode(domain.NewChat(name, "", line))
	}
}

func receive(conn net.Conn) error {
	dec := wire.NewDecoder(conn)
	for {
		m, err := dec.Decode()
		if err != nil {
			if err == io.EOF {
				color.Red.Println("Server closed the connection")
				return nil
			}
			return fmt.Errorf("read failed: %w", err)
		}
		render(m)
	}
}

func render(m domain.Message) {
	switch m.Type {
	case domain.TypeChat:
		fmt.Printf("[%s] %s: %s\n",
			color.Gray.Render(m.At),
			color.Cyan.Render(m.From),
			color.Yellow.Render(m.Body))
	case domain.TypeSystem:
		color.Magenta.Printf("[%s] %s\n", m.At, m.Body)
	case domain.TypeRosterReply:
		renderRoster(m.Entries)
	}
}

func renderRoster(entries []string) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{fmt.Sprintf("Online Users (%d)", len(entries))})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	for _, name := range entries {
		table.Append([]string{name})
	}
	table.Render()
}
