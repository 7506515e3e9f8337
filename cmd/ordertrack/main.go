package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/stellarsoil/stellarsoil-api/client"
)

func main() {
	baseURL := flag.String("api", "http://localhost:8080", "API base URL")
	token := flag.String("token", "", "bearer token")
	orderId := flag.Uint("order", 0, "order id to track")
	interval := flag.Duration("interval", client.DefaultPollInterval, "poll interval")
	flag.Parse()

	if *orderId == 0 {
		log.Fatal("order id is required")
	}
	if *token == "" {
		*token = os.Getenv("STELLARSOIL_TOKEN")
	}

	c := client.New(*baseURL, *token)
	c.OnSessionInvalid = func() {
		log.Fatal("session expired, please log in again")
	}

	poller := client.NewPoller(c, *orderId, *interval)
	poller.OnUpdate = func(update client.Update) {
		order := update.Snapshot.Order
		line := fmt.Sprintf("order #%d  status=%s (step %d)  payment=%s",
			order.ID, order.OrderStatus, update.Snapshot.Step, order.PaymentStatus)
		if update.Remaining != nil {
			line += "  delivery in " + client.FormatRemaining(*update.Remaining)
		}
		log.Println(line)
	}
	poller.OnError = func(err error) {
		log.Println("poll failed:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Printf("tracking order %d every %s", *orderId, interval.String())
	poller.Run(ctx)
}
