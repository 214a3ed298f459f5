package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rileyhilliard/storelens/internal/chat"
	"github.com/rileyhilliard/storelens/internal/doctor"
	"github.com/rileyhilliard/storelens/internal/viewmodel"
)

// searchCommand queries the product catalog.
func searchCommand(ctx context.Context, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	client := newChatClient(cfg, "", defaultLogger())
	return runSearch(ctx, os.Stdout, client, strings.Join(args, " "), viewmodel.Formatter{Currency: cfg.Output.Currency})
}

func runSearch(ctx context.Context, w io.Writer, s doctor.Searcher, query string, f viewmodel.Formatter) error {
	products, err := s.Search(ctx, query)
	if err != nil {
		return err
	}

	if machineMode {
		return WriteJSONSuccess(w, products)
	}

	fmt.Fprintln(w, chat.RenderProductTable(products, f))
	return nil
}
