package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"pollchat/internal/client"
	"pollchat/internal/config"
	"pollchat/internal/model"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.LoadClient()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	server := flag.String("server", cfg.ServerURL, "chat server base URL")
	name := flag.String("name", "", "your name (chat view)")
	admin := flag.Bool("admin", false, "open the admin view")
	watch := flag.Bool("watch", false, "also refresh on server push events")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: config.ParseLevel(cfg.LogLevel)}))
	api := client.NewAPI(*server, nil).WithOrigin(cfg.Origin)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *admin {
		runAdmin(ctx, api, logger, cfg, *watch)
		return
	}
	if strings.TrimSpace(*name) == "" {
		log.Fatal("-name is required for the chat view")
	}
	runChat(ctx, api, logger, cfg, *name, *watch)
}

// screen serializes writes to stdout and skips redraws of an unchanged list
type screen struct {
	mu   sync.Mutex
	out  io.Writer
	last []model.Message
}

func (s *screen) draw(msgs []model.Message, force bool, render func(io.Writer, []model.Message)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !force && s.last != nil && client.SameMessages(s.last, msgs) {
		return
	}
	s.last = msgs
	fmt.Fprint(s.out, "\033[H\033[2J")
	render(s.out, msgs)
}

func runChat(ctx context.Context, api *client.API, logger *slog.Logger, cfg config.ClientConfig, name string, watch bool) {
	scr := &screen{out: os.Stdout}
	render := func(w io.Writer, msgs []model.Message) {
		client.RenderChat(w, msgs)
		fmt.Fprintf(w, "[%s] type a message and press enter (refreshes every %s)\n", name, cfg.PollInterval)
	}
	poller := client.NewPoller(api, logger, cfg.PollInterval, func(msgs []model.Message) {
		scr.draw(msgs, false, render)
	})

	go poller.Run(ctx)
	if watch {
		go watchFeed(ctx, poller, logger)
	}

	readLines(ctx, func(line string) bool {
		if err := poller.Send(ctx, name, line); err != nil {
			logger.Warn("send failed", "error", err)
		}
		return true
	})
}

func runAdmin(ctx context.Context, api *client.API, logger *slog.Logger, cfg config.ClientConfig, watch bool) {
	scr := &screen{out: os.Stdout}
	var view *client.AdminView
	render := func(w io.Writer, msgs []model.Message) {
		client.RenderAdmin(w, msgs, view.Status)
		fmt.Fprintln(w, "commands: rm <#>, r (refresh), q (quit)")
	}
	// redraw on every tick so expired row errors disappear
	poller := client.NewPoller(api, logger, cfg.PollInterval, func(msgs []model.Message) {
		scr.draw(msgs, true, render)
	})
	view = client.NewAdminView(api, logger, poller)

	go poller.Run(ctx)
	if watch {
		go watchFeed(ctx, poller, logger)
	}

	readLines(ctx, func(line string) bool {
		fields := strings.Fields(line)
		switch {
		case len(fields) == 1 && fields[0] == "q":
			return false
		case len(fields) == 1 && fields[0] == "r":
			_ = view.Refresh(ctx)
		case len(fields) == 2 && fields[0] == "rm":
			msgs := view.Messages()
			n, err := strconv.Atoi(fields[1])
			if err != nil || n < 1 || n > len(msgs) {
				fmt.Println("no such row")
				return true
			}
			_ = view.Delete(ctx, msgs[n-1].ID)
		}
		scr.draw(view.Messages(), true, render)
		return true
	})
}

func watchFeed(ctx context.Context, poller *client.Poller, logger *slog.Logger) {
	if err := poller.Watch(ctx); err != nil {
		logger.Warn("change feed closed, continuing with polling only", "error", err)
	}
}

// readLines feeds stdin lines to handle until ctx is done or handle returns false
func readLines(ctx context.Context, handle func(string) bool) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				<-ctx.Done()
				return
			}
			if strings.TrimSpace(line) != "" && !handle(line) {
				return
			}
		}
	}
}
