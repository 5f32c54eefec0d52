// Package main: explorer service.
//
// The explorer follows the transactions that the educertify service asks it to watch through the message broker and
// publishes their outcome once they are committed.
package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tarancss/educertify/explorer"
	"github.com/tarancss/educertify/lib/block"
	"github.com/tarancss/educertify/lib/config"
	"github.com/tarancss/educertify/lib/msg"
	"github.com/tarancss/educertify/lib/msg/amqp"
)

func main() {
	// get command line flags
	confPath := flag.String("c", "", "flag to get configuration from json or toml file")
	monitor := flag.Bool("m", false, "flag to monitor the server with Prometheus at http://localhost:9100/metrics")
	flag.Parse()

	// extract configuration
	var err error

	var conf config.ServiceConfig

	if conf, err = config.ExtractConfiguration(*confPath); err != nil {
		panic(err)
	}

	log.Printf("Configuration:%+v", conf)

	// load all blockchains
	var blocks map[string]block.Chain

	if blocks, err = block.Init(conf.Bc); err != nil {
		panic(err)
	}
	defer block.End(blocks)

	log.Print("Blockchain clients loaded")

	// load Prometheus monitor
	if *monitor {
		go func() {
			log.Println("Serving metrics API")

			h := http.NewServeMux()

			h.Handle("/metrics", promhttp.Handler())
			log.Printf("Metrics server: %v", http.ListenAndServe(":9100", h))
		}()
	}

	// load message broker
	var mb msg.MsgBroker

	switch conf.MbType {
	case "amqp":
		var r *amqp.Amqp
		if r, err = amqp.New(conf.MbConn); err != nil {
			time.Sleep(10 * time.Second) // wait 10s for AMQP to be ready and try to reconnect

			if r, err = amqp.New(conf.MbConn); err != nil {
				panic(err)
			}
		}

		if err = r.Setup(nil); err != nil {
			panic(err)
		}

		mb = r

		defer func() {
			err := mb.Close()
			log.Printf("Closing messageBroker: %v", err)
		}()
	default:
		log.Fatalf("Unknown message broker type: %s\n", conf.MbType)
	}

	// create explorer service
	e := explorer.New(mb, blocks)

	// capture CTRL+C or docker's SIGTERM for gracious exit
	go func() {
		sigchan := make(chan os.Signal, 10)
		signal.Notify(sigchan, os.Interrupt, syscall.SIGTERM)
		<-sigchan
		log.Println("Program killed !")
		// do last actions and wait for all watchers to end
		e.StopExplorer()
	}()

	// launch explorer (for each network) creating a waiting channel for each
	log.Printf("Explore: %s\n", <-e.Explore())
}
