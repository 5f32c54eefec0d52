// Package amqp implements the message broker interface for AMQP compliant brokers (ie RabbitMQ)
package amqp

import (
	"encoding/json"
	"log"
	"strconv"
	"sync"

	"github.com/streadway/amqp"

	"github.com/tarancss/educertify/lib/block/types"
	"github.com/tarancss/educertify/lib/msg"
	"github.com/tarancss/educertify/notify"
)

// Exchanges declared by Setup.
const (
	ExWatch  = "wr" // watch requests
	ExEvents = "ee" // explorer events
	ExNotify = "nt" // notifications
)

var _ msg.MsgBroker = (*Amqp)(nil)

// Amqp implements a connection to a broker and a channel for reuse.
type Amqp struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	mu   sync.Mutex // guards ch, publishing happens from several goroutines
}

// New instantiates a new amqp broker.
func New(uri string) (*Amqp, error) {
	r := Amqp{}
	var err error

	if r.conn, err = amqp.Dial(uri); err != nil {
		return &r, err
	}
	log.Printf("Connected to %s", uri)

	return &r, err
}

// Setup obtains an amqp channel and declares the message broker exchanges:
//
// - wr ("watch requests"): the educertify service publishes requests to this exchange
//
// - ee ("explorer events"): the explorer service publishes events to this exchange
//
// - nt ("notifications"): the educertify service publishes user notifications to this exchange
func (r *Amqp) Setup(x interface{}) error {
	// obtain a one-use channel
	channel, err := r.conn.Channel()
	if err != nil {
		return err
	}
	defer channel.Close()
	// declare exchanges
	for _, ex := range []string{ExWatch, ExEvents, ExNotify} {
		if err = channel.ExchangeDeclare(ex, "topic", true, false, false, false, nil); err != nil {
			return err
		}
	}
	return nil
}

// Close terminages gracefully the connection to the AMQP message broker
func (r *Amqp) Close() error {
	r.mu.Lock()
	if r.ch != nil {
		if err := r.ch.Close(); err != nil {
			log.Printf("Error closing amqp.Channel:%v", err)
		}
		r.ch = nil
		log.Printf("amqp.Channel closed!")
	}
	r.mu.Unlock()
	return r.conn.Close()
}

// channel returns the shared channel, obtaining it if not present.
func (r *Amqp) channel() (*amqp.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ch == nil {
		var err error
		if r.ch, err = r.conn.Channel(); err != nil {
			return nil, err
		}
	}
	return r.ch, nil
}

// publish marshals v to JSON and publishes it to exchange ex with routing key key.
func (r *Amqp) publish(ex, key, header, name string, v interface{}) error {
	// marshal to JSON
	jsonDoc, err := json.Marshal(v)
	if err != nil {
		return err
	}
	ch, err := r.channel()
	if err != nil {
		return err
	}
	// build body
	m := amqp.Publishing{
		Headers:     amqp.Table{header: name},
		Body:        jsonDoc,
		ContentType: "application/json",
	}
	return ch.Publish(ex, key, false, false, m)
}

// SendTrans publishes transaction events to the "ee" exchange
func (r *Amqp) SendTrans(net string, txs []types.Trans) (err error) {
	for _, t := range txs {
		if err = r.publish(ExEvents, net+".trans."+t.Hash, "x-trans-name", net+"."+t.Hash, t); err != nil {
			log.Printf("[%s] Error sending transaction event to message broker %v", net, err)
			return
		}
	}
	return
}

// SendRequest publishes a new watch request to the "wr" exchange
func (r *Amqp) SendRequest(net string, wr msg.WatchReq) (err error) {
	if err = r.publish(ExWatch, net+"."+strconv.Itoa(wr.Act)+"."+wr.Hash, "x-wreq-name", net+"."+wr.Hash, wr); err != nil {
		log.Printf("[%s] Error sending request to message broker %v", net, err)
	}
	return
}

// SendNotification publishes a notification to the "nt" exchange, routed by kind and id.
func (r *Amqp) SendNotification(n notify.Notification) (err error) {
	if err = r.publish(ExNotify, string(n.Kind)+"."+n.ID, "x-notif-name", n.ID, n); err != nil {
		log.Printf("Error sending notification to message broker %v", err)
	}
	return
}

// consume declares the durable queue q bound to exchange ex for the network and returns its deliveries.
func (r *Amqp) consume(ex, net string) (<-chan amqp.Delivery, error) {
	ch, err := r.channel()
	if err != nil {
		return nil, err
	}
	// declare queue
	if _, err = ch.QueueDeclare(ex+net, true, false, false, false, nil); err != nil {
		return nil, err
	}
	// bind queue to exchange
	if err = ch.QueueBind(ex+net, net+".*.*", ex, false, nil); err != nil {
		return nil, err
	}
	// create channel for receiving messages
	return ch.Consume(ex+net, ex+"-"+net, false, false, false, false, nil)
}

// GetEvents consumes events from the "ee" exchange pushing them to the returned channel. The Mutex pointer is provided
// to ensure the consumed message has been fully dealt with by the management function, so the message consumed is only
// acknowledged when the mutex is unlocked.
func (r *Amqp) GetEvents(net string, mut *sync.Mutex) (<-chan types.Trans, <-chan error, error) {
	msgs, err := r.consume(ExEvents, net)
	if err != nil {
		return nil, nil, err
	}
	// define channels to return
	eves := make(chan types.Trans)
	errs := make(chan error)
	// start routine to consume messages from broker
	go func() {
		defer close(eves)
		defer close(errs)
		for m := range msgs {
			var tx types.Trans
			if err := json.Unmarshal(m.Body, &tx); err != nil {
				_ = m.Nack(false, false)
				errs <- err
				continue
			}
			eves <- tx
			mut.Lock() // wait for the service to finish processing the event
			_ = m.Ack(false)
		}
	}()
	return eves, errs, nil
}

// GetReqs consumes requests from the "wr" exchange for the specified network pushing them to the returned channel. The
// Mutex pointer is provided to ensure the consumed message has been fully dealt with by the management function, so
// the message consumed is only acknowledged when the mutex is unlocked.
func (r *Amqp) GetReqs(net string, mut *sync.Mutex) (<-chan msg.WatchReq, <-chan error, error) {
	msgs, err := r.consume(ExWatch, net)
	if err != nil {
		return nil, nil, err
	}
	// define channels to return
	reqs := make(chan msg.WatchReq)
	errs := make(chan error)
	// start routine to consume messages from broker
	go func() {
		defer close(reqs)
		defer close(errs)
		for m := range msgs {
			var req msg.WatchReq
			if err := json.Unmarshal(m.Body, &req); err != nil {
				_ = m.Nack(false, false)
				errs <- err
				continue
			}
			reqs <- req
			mut.Lock() // wait for explorer to finish processing the request
			_ = m.Ack(false)
		}
	}()
	return reqs, errs, nil
}
