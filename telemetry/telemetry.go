// Package telemetry publishes holder poses to an MQTT broker so that
// OR dashboards and recorders can follow the scope without polling the
// HTTP API.
package telemetry

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/opensurg/pivotctl/pivot"
)

// Publisher periodically reads a controller's pose and publishes it
type Publisher struct {
	client   mqtt.Client
	topic    string
	interval time.Duration
	done     chan struct{}
}

// NewPublisher connects to the broker and returns a Publisher which
// will emit on topic + "/pose" every interval once started
func NewPublisher(broker, clientID, topic string, interval time.Duration) (*Publisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("MQTT connect: %w", token.Error())
	}
	return newPublisher(client, topic, interval), nil
}

func newPublisher(client mqtt.Client, topic string, interval time.Duration) *Publisher {
	return &Publisher{
		client:   client,
		topic:    topic,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// poseMessage is the wire format on the pose topic
type poseMessage struct {
	pivot.DOFPose
	Timestamp time.Time `json:"timestamp"`
}

// Start polls c in a goroutine until Stop is called.  Poll and publish
// errors are logged, not fatal; a holder that is not ready yet simply
// produces no messages.
func (p *Publisher) Start(c pivot.Controller) {
	go func() {
		tick := time.NewTicker(p.interval)
		defer tick.Stop()
		for {
			select {
			case <-p.done:
				return
			case <-tick.C:
				p.publishOnce(c)
			}
		}
	}()
}

func (p *Publisher) publishOnce(c pivot.Controller) {
	pose, err := c.CurrentDOFPose()
	if err != nil {
		log.Printf("telemetry: pose read error: %v", err)
		return
	}
	payload, err := json.Marshal(poseMessage{DOFPose: pose, Timestamp: time.Now().UTC()})
	if err != nil {
		log.Printf("telemetry: marshal error: %v", err)
		return
	}
	if token := p.client.Publish(p.topic+"/pose", 0, true, payload); token.Wait() && token.Error() != nil {
		log.Printf("telemetry: publish error: %v", token.Error())
	}
}

// Stop halts polling and disconnects from the broker
func (p *Publisher) Stop() {
	close(p.done)
	p.client.Disconnect(250)
}
