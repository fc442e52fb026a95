package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/blackhat-coder/TcpChat/internal/client"
)

func main() {
	addr := flag.String("addr", "localhost:6000", "chat server address")
	name := flag.String("name", "", "display name (prompted when empty)")
	flag.Parse()

	// One buffered reader shared between the prompts and the chat loop so
	// no typed input is lost between them.
	stdin := bufio.NewReader(os.Stdin)

	candidate := strings.TrimSpace(*name)
	for candidate == "" {
		fmt.Print("Enter your name: ")
		line, err := readLine(stdin)
		if err != nil {
			return
		}
		candidate = line
	}

	m, err := client.Dial(*addr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	for {
		err := m.Negotiate(candidate)
		if err == nil {
			break
		}
		if !errors.Is(err, client.ErrNameRejected) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("Name %q is taken. Enter another name: ", candidate)
		candidate, err = readLine(stdin)
		if err != nil {
			return
		}
	}

	if err := m.Register(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := m.Run(stdin); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" && err == io.EOF {
		return "", io.EOF
	}
	return line, nil
}
