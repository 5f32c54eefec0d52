// Package main: educertify service.
//
// The service holds a single wallet session and exposes the teacher and student dashboards over a RESTful API. The
// wallet itself is reached through the bridge url of the configuration. Submitted transactions are followed either by
// an in-process watcher (watch = true) or by the explorer service through the message broker.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tarancss/educertify/bridge"
	"github.com/tarancss/educertify/bridge/remote"
	"github.com/tarancss/educertify/dashboard"
	"github.com/tarancss/educertify/explorer"
	"github.com/tarancss/educertify/lib/block"
	"github.com/tarancss/educertify/lib/block/types"
	"github.com/tarancss/educertify/lib/config"
	"github.com/tarancss/educertify/lib/metrics"
	"github.com/tarancss/educertify/lib/msg"
	"github.com/tarancss/educertify/lib/msg/amqp"
	"github.com/tarancss/educertify/lib/store"
	"github.com/tarancss/educertify/lib/store/db"
	"github.com/tarancss/educertify/notify"
)

func main() {
	// get command line flags
	confPath := flag.String("c", "", "flag to get configuration from json or toml file")
	monitor := flag.Bool("m", false, "flag to monitor the server with Prometheus at http://localhost:9100/metrics")
	flag.Parse()

	// extract configuration
	conf, err := config.ExtractConfiguration(*confPath)
	if err != nil {
		panic(err)
	}

	log.Printf("Configuration:%+v", conf)

	// connect to database
	var dbConn store.DB

	if conf.DBConn != "" {
		if dbConn, err = db.New(conf.DBType, conf.DBConn); err != nil {
			panic(err)
		}

		log.Printf("Connecting to database:%+v\n", conf.DBConn)

		defer func() {
			errClose := db.Close(conf.DBType, dbConn)
			log.Printf("Disconnecting %v database, err:%v\n", conf.DBType, errClose)
		}()
	}

	// load all blockchains
	if _, err = conf.Node(); err != nil {
		panic(err)
	}

	blocks, err := block.Init(conf.Bc)
	if err != nil {
		panic(err)
	}
	defer block.End(blocks)

	log.Print("Blockchain clients loaded")
	if blocks[conf.Network] == nil {
		log.Printf("No blockchain client for network %s, certificates cannot be fetched", conf.Network)
	}

	// load Prometheus monitor
	m := metrics.New("educertify")

	if *monitor {
		go func() {
			log.Println("Serving metrics API")

			h := http.NewServeMux()

			h.Handle("/metrics", m.Handler())
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
			errClose := mb.Close()
			log.Printf("Closing messageBroker: %v", errClose)
		}()
	default:
		log.Printf("No message broker of type: %s\n", conf.MbType)
	}

	// load wallet bridge
	var b bridge.Bridge

	if conf.Bridge != "" {
		r := remote.New(conf.Bridge)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err = r.Available(ctx); err != nil {
			log.Printf("Wallet bridge at %s not available yet:%v", conf.Bridge, err)
		}
		cancel()

		b = r
	}

	// notifications are logged and published if there is a broker
	var sink notify.Sink = notify.LogSink{}
	if mb != nil {
		sink = notify.Multi{notify.LogSink{}, notify.BrokerSink{P: mb}}
	}

	// create educertify service
	var a *dashboard.App

	var tracker dashboard.Tracker

	var watcher *explorer.Watcher

	switch {
	case conf.Watch:
		if watcher, err = explorer.NewWatcher(conf.Network, blocks[conf.Network], func(tx types.Trans) {
			a.OnCommitted(tx)
		}); err != nil {
			log.Fatalf("Cannot watch transactions on %s:%v", conf.Network, err)
		}

		tracker = watcher
	case mb != nil:
		tracker = dashboard.BrokerTracker{Net: conf.Network, MB: mb}
	}

	a = dashboard.New(dashboard.Options{
		Net:      conf.Network,
		Module:   conf.Module,
		Bridge:   b,
		Chain:    blocks[conf.Network],
		Links:    explorer.NewLinks(conf.Explorer, conf.Network),
		Sink:     sink,
		Recorder: dbConn,
		Tracker:  tracker,
		Metrics:  m,
	})

	if watcher != nil {
		go watcher.Run()
	}

	// capture CTRL+C or docker's SIGTERM for gracious exit
	finish := make(chan int)

	go func() {
		sigchan := make(chan os.Signal, 10)
		signal.Notify(sigchan, os.Interrupt, syscall.SIGTERM)
		<-sigchan
		log.Println("Program killed !")
		// do last actions and wait for all write operations to end
		if watcher != nil {
			watcher.Stop()
		}
		a.Stop()
		close(finish)
	}()

	// manage explorer events
	if mb != nil && !conf.Watch {
		if err := a.ManageEvents(mb); err != nil {
			log.Printf("Error setting up broker readers for events:%v", err)
		}
	}

	// init RESTful API, wait for its return and log response
	log.Printf("EduCertify: %s\n", a.Init(conf.RestfulEndpoint, conf.Port, conf.SSLPort, conf.SSLCert, conf.SSLKey))

	<-finish
}
