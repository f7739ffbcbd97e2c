// display-board is a headless display client: it follows the event
// stream over the raw websocket endpoint and logs every called and
// issued number. A real board renders the same events on screen.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/heryandp/antrian/internal/hub"
	"github.com/heryandp/antrian/internal/realtime"
)

func main() {
	url := flag.String("url", "ws://localhost:8080/realtime/websocket", "queue service websocket URL")
	interval := flag.Duration("reconnect-interval", 5*time.Second, "delay between reconnect attempts")
	flag.Parse()

	client := realtime.NewClient(*url, *interval, func(event hub.Event) {
		switch event.Type {
		case hub.EventTicketCalled:
			log.Printf("called number=%s counter=%s", event.Number, event.CounterName)
		case hub.EventNewTicket:
			log.Printf("issued number=%s service=%s", event.Number, event.ServiceCode)
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	go client.Run(ctx)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	cancel()
}
