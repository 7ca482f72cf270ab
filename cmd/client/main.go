// Command client is a minimal interactive client for the chat server. It
// reads commands from stdin, encodes them onto the wire and prints every
// decoded server frame.
//
// Commands:
//
//	register <username> <password>
//	login <username> <password>
//	msg <text>
//	pm <user-id> <text>
//	name <new-name>
//	logout
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strings"

	"github.com/L3n44nd/OnlineChatServer/pkg/protocol"
)

func main() {
	addr := flag.String("addr", "localhost:1402", "Server address")
	flag.Parse()

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		log.Fatalf("Failed to connect to %s: %v", *addr, err)
	}
	defer conn.Close()

	fmt.Printf("Connected to %s\n", *addr)

	// Print server frames as they arrive
	go func() {
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			printResponse(protocol.ParseResponse(scanner.Text()))
		}
		fmt.Println("Disconnected from server")
		os.Exit(0)
	}()

	stdin := bufio.NewScanner(os.Stdin)
	for stdin.Scan() {
		line, ok := encodeInput(stdin.Text())
		if !ok {
			continue
		}
		if _, err := conn.Write(append([]byte(line), '\n')); err != nil {
			log.Fatalf("Write failed: %v", err)
		}
	}
}

// encodeInput turns one stdin line into a wire frame.
func encodeInput(input string) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}

	verb := input
	rest := ""
	if idx := strings.IndexByte(input, ' '); idx >= 0 {
		verb = input[:idx]
		rest = strings.TrimSpace(input[idx+1:])
	}

	switch verb {
	case "register":
		return protocol.EncodeCommand(protocol.CmdRegister, rest), true
	case "login":
		return protocol.EncodeCommand(protocol.CmdLogin, rest), true
	case "msg":
		return protocol.EncodeCommand(protocol.CmdMessage, rest), true
	case "pm":
		return protocol.EncodeCommand(protocol.CmdPrivateMessage, rest), true
	case "name":
		return protocol.EncodeCommand(protocol.CmdNameChange, rest), true
	case "logout", "quit":
		return protocol.EncodeCommand(protocol.CmdLogout, ""), true
	default:
		fmt.Printf("Unknown command %q (register, login, msg, pm, name, logout)\n", verb)
		return "", false
	}
}

func printResponse(resp protocol.Response) {
	switch resp.Code {
	case protocol.RespRegistered:
		fmt.Printf("Registered: %s\n", resp.Payload)
	case protocol.RespLoginOK:
		fmt.Printf("Logged in: %s\n", resp.Payload)
	case protocol.RespUsernameExists:
		fmt.Println("Username already exists")
	case protocol.RespWrongPassword:
		fmt.Println("Wrong password")
	case protocol.RespUserNotFound:
		fmt.Println("User not found")
	case protocol.RespSuccessful:
		fmt.Printf("Name changed to %s\n", resp.Payload)
	case protocol.RespNameTooLong:
		fmt.Println("Name too long")
	case protocol.RespMessage:
		fmt.Printf("[chat] %s\n", resp.Payload)
	case protocol.RespPrivateMessage:
		fmt.Printf("[private] %s\n", resp.Payload)
	case protocol.RespUpdateOnline:
		fmt.Printf("[online] %s\n", resp.Payload)
	default:
		fmt.Printf("[server %d] %s\n", resp.Code, resp.Payload)
	}
}
