package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/medassist-ai/medassist/chatmodel"
	"github.com/medassist-ai/medassist/triage"
)

// ChatCmd chats with the assistant from the terminal: one-shot when an
// input is given, otherwise a REPL.
type ChatCmd struct {
	Input []string `arg:"" optional:"" help:"Question to ask. Starts a REPL when omitted."`

	Tenant  string `help:"Tenant of the session." default:"default"`
	ChatID  string `name:"chat-id" help:"Chat session to continue, a new one is created when omitted."`
	Patient string `help:"Patient the session is about."`
	Mode    string `help:"Triage mode: scripted, agentic or auto." default:"auto"`
}

func (c *ChatCmd) Run(cli *CLI) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := LoadConfig(cli.Cfg)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	mode, err := triage.ParseMode(c.Mode)
	if err != nil {
		return err
	}

	chatCtx := chatmodel.NewChatContext(c.Tenant, c.ChatID, c.Patient, nil)
	ctx = chatmodel.WithChatContext(ctx, chatCtx)

	ask := func(input string) {
		res, err := a.router.Respond(ctx, mode, input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
			return
		}
		fmt.Printf("\n%s\n", res.Advice)
		fmt.Printf("\n[urgency: %s", res.Urgency)
		if res.EscalateToClinician {
			fmt.Print(", escalated to a clinician")
		}
		fmt.Println("]")
		for _, citation := range res.Citations {
			fmt.Printf("  - %s\n", citation)
		}
	}

	if len(c.Input) > 0 {
		ask(strings.Join(c.Input, " "))
		return nil
	}

	fmt.Printf("chat %s (mode %s), /quit to exit\n", chatCtx.GetChatID(), mode)
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println()
			return nil
		}
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case line == "/quit" || line == "/exit":
			return nil
		default:
			ask(line)
		}
	}
}
