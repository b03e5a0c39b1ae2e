package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/utafrali/StorefrontGo/internal/api"
	"github.com/utafrali/StorefrontGo/internal/config"
	"github.com/utafrali/StorefrontGo/internal/domain"
	"github.com/utafrali/StorefrontGo/internal/service"
	"github.com/utafrali/StorefrontGo/internal/session"
	"github.com/utafrali/StorefrontGo/pkg/httpclient"
	"github.com/utafrali/StorefrontGo/pkg/logger"
	"github.com/utafrali/StorefrontGo/pkg/tracing"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.NewWithWriter("storefront", cfg.LogLevel, os.Stderr)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "storefront",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer shutdownCancel()
		_ = tracerShutdown(shutdownCtx)
	}()

	store, err := session.OpenFileStore(cfg.SessionFile)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	sess := session.New(store)

	baseClient := httpclient.New(httpclient.Config{
		Timeout:         time.Duration(cfg.HTTPTimeoutSeconds) * time.Second,
		MaxRetries:      cfg.HTTPMaxRetries,
		RetryWaitMin:    500 * time.Millisecond,
		RetryWaitMax:    5 * time.Second,
		MaxConnsPerHost: 10,
	})
	cbClient := httpclient.NewCircuitBreakerClient(baseClient, httpclient.CircuitBreakerConfig{
		Name:         "storefront-backend",
		MaxRequests:  cfg.CBMaxRequests,
		Interval:     time.Duration(cfg.CBIntervalSecs) * time.Second,
		Timeout:      time.Duration(cfg.CBTimeoutSecs) * time.Second,
		FailureRatio: cfg.CBFailureRatio,
		MinRequests:  cfg.CBMinRequests,
	}, log)

	gateway := api.New(cbClient, cfg.APIBaseURL, log)
	storefront := service.New(gateway, sess, log)
	searcher := service.NewSearcher(gateway, log, time.Duration(cfg.SearchDebounceMs)*time.Millisecond)
	defer searcher.Close()

	return repl(ctx, storefront, searcher)
}

// repl is the thin presentation collaborator: it parses commands, calls into
// the core, and prints whatever comes back.
func repl(ctx context.Context, sf *service.Storefront, searcher *service.Searcher) error {
	book := domain.AddressBook{}
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("storefront — type 'help' for commands")
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "help":
			fmt.Println(`products | search <text> | cart | add <productId> | qty <productId> <n>
addresses | addaddr <text...> | deladdr <id> | select <id> | checkout
register <user> <pass> <confirm> | login <user> <pass> | logout | balance | quit`)
		case "quit", "exit":
			return nil
		case "products":
			products, err := sf.Catalog(ctx)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			printProducts(products)
		case "search":
			searcher.Query(ctx, strings.Join(args, " "))
			select {
			case res := <-searcher.Results():
				if res.Err != nil {
					fmt.Println("error:", res.Err)
					continue
				}
				printProducts(res.Products)
			case <-ctx.Done():
				return nil
			}
		case "cart":
			items, err := sf.CartView(ctx)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			for _, item := range items {
				fmt.Printf("  %s x%d  $%.2f\n", item.Name, item.Qty, item.Cost*float64(item.Qty))
			}
			fmt.Printf("  total: $%.2f (%d items)\n", domain.TotalValue(items), domain.TotalQuantity(items))
		case "add":
			if len(args) != 1 {
				fmt.Println("usage: add <productId>")
				continue
			}
			raw, err := sf.AddToCart(ctx, args[0])
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Printf("cart has %d entries\n", len(raw))
		case "qty":
			if len(args) != 2 {
				fmt.Println("usage: qty <productId> <n>")
				continue
			}
			n, err := strconv.Atoi(args[1])
			if err != nil {
				fmt.Println("quantity must be a number")
				continue
			}
			raw, err := sf.UpdateQuantity(ctx, args[0], n)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Printf("cart has %d entries\n", len(raw))
		case "addresses":
			fresh, err := sf.Addresses(ctx)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			book.Replace(fresh.Entries)
			for _, a := range book.Entries {
				marker := " "
				if a.ID == book.SelectedID {
					marker = "*"
				}
				fmt.Printf("  %s %s  %s\n", marker, a.ID, a.Text)
			}
		case "addaddr":
			if err := sf.AddAddress(ctx, &book, strings.Join(args, " ")); err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Printf("%d addresses on file\n", len(book.Entries))
		case "deladdr":
			if len(args) != 1 {
				fmt.Println("usage: deladdr <id>")
				continue
			}
			if err := sf.DeleteAddress(ctx, &book, args[0]); err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Printf("%d addresses on file\n", len(book.Entries))
		case "select":
			if len(args) != 1 || !book.Select(args[0]) {
				fmt.Println("no such address; run 'addresses' first")
				continue
			}
			fmt.Println("selected", args[0])
		case "checkout":
			items, err := sf.CartView(ctx)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			outcome, err := sf.PerformCheckout(ctx, items, book)
			switch {
			case err != nil:
				fmt.Println("error:", err)
			case !outcome.Placed:
				fmt.Println(outcome.Reason.Message())
			default:
				fmt.Printf("Order placed successfully ($%.2f). Balance: $%.2f\n", outcome.Total, sf.Session().Balance())
			}
		case "register":
			if len(args) != 3 {
				fmt.Println("usage: register <user> <pass> <confirm>")
				continue
			}
			in := domain.RegisterInput{Username: args[0], Password: args[1], ConfirmPassword: args[2]}
			if err := sf.Register(ctx, in); err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Println("Registered successfully")
		case "login":
			if len(args) != 2 {
				fmt.Println("usage: login <user> <pass>")
				continue
			}
			if err := sf.Login(ctx, args[0], args[1]); err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Printf("logged in as %s, balance $%.2f\n", sf.Session().Username(), sf.Session().Balance())
		case "logout":
			if err := sf.Logout(); err != nil {
				fmt.Println("error:", err)
				continue
			}
			book = domain.AddressBook{}
			fmt.Println("logged out")
		case "balance":
			fmt.Printf("$%.2f\n", sf.Session().Balance())
		default:
			fmt.Println("unknown command; type 'help'")
		}
	}
}

func printProducts(products []domain.Product) {
	if len(products) == 0 {
		fmt.Println("No products found")
		return
	}
	for _, p := range products {
		fmt.Printf("  %s  %-35s %-14s $%.2f  %d/5\n", p.ID, p.Name, p.Category, p.Cost, p.Rating)
	}
}
