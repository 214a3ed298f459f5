package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rileyhilliard/storelens/internal/chat"
	"github.com/rileyhilliard/storelens/internal/config"
	"github.com/rileyhilliard/storelens/internal/logger"
	"github.com/rileyhilliard/storelens/internal/viewmodel"
)

// chatOptions holds flags for the chat command.
type chatOptions struct {
	User string
	Once string
}

// newChatClient builds a chat client from config, honoring --user.
func newChatClient(cfg *config.Config, user string, log logger.Logger) *chat.Client {
	opts := []chat.Option{chat.WithLogger(log)}
	if user != "" {
		opts = append(opts, chat.WithUserID(user))
	}
	return chat.NewFromConfig(cfg, opts...)
}

// chatCommand opens the chat UI, answers a single --once question, or reads
// questions line by line when stdin is not a terminal.
func chatCommand(ctx context.Context, opts chatOptions) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	f := viewmodel.Formatter{Currency: cfg.Output.Currency}

	if opts.Once != "" {
		client := newChatClient(cfg, opts.User, defaultLogger())
		reply, err := client.Query(ctx, opts.Once)
		if err != nil {
			return err
		}
		if machineMode {
			return WriteJSONSuccess(os.Stdout, reply)
		}
		fmt.Println(chat.RenderReply(reply, f))
		return nil
	}

	if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
		client := newChatClient(cfg, opts.User, defaultLogger())
		return runChatLines(ctx, os.Stdin, os.Stdout, client, f, defaultLogger())
	}

	client := newChatClient(cfg, opts.User, logger.Noop())
	return chat.Run(ctx, client, chat.WithCurrency(cfg.Output.Currency))
}

// runChatLines sends each non-blank input line as a message and prints the
// reply. A failed message prints the fallback text and the loop goes on.
func runChatLines(ctx context.Context, in io.Reader, out io.Writer, asker chat.Asker, f viewmodel.Formatter, log logger.Logger) error {
	fmt.Fprintln(out, chat.Greeting)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		reply, err := asker.Query(ctx, text)
		if err != nil {
			log.Warn("chat query failed: %v", err)
			fmt.Fprintln(out, chat.FallbackText)
			continue
		}
		fmt.Fprintln(out, chat.RenderReply(reply, f))
	}
	return scanner.Err()
}
