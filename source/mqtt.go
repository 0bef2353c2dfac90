package source

import (
	"fmt"
	"log"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTClient subscribes to a broker topic carrying telemetry log lines.
// Message payloads use the same semicolon line format as the file and telnet
// sources; a single payload may carry several newline-separated lines.
type MQTTClient struct {
	broker   string
	port     int
	topic    string
	client   mqtt.Client
	lineChan chan string
	shutdown chan struct{}
}

// NewMQTTClient creates an MQTT line source.
func NewMQTTClient(broker string, port int, topic string) *MQTTClient {
	return &MQTTClient{
		broker:   broker,
		port:     port,
		topic:    topic,
		lineChan: make(chan string, 1000),
		shutdown: make(chan struct{}),
	}
}

// Connect establishes the broker connection. Reconnects are handled by the
// MQTT library; subscription is re-established from the onConnect handler.
func (c *MQTTClient) Connect() error {
	opts := mqtt.NewClientOptions()
	brokerURL := fmt.Sprintf("tcp://%s:%d", c.broker, c.port)
	opts.AddBroker(brokerURL)
	opts.SetClientID(fmt.Sprintf("sensormon-%d", time.Now().Unix()))
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetConnectTimeout(10 * time.Second)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(1 * time.Minute)
	opts.SetOnConnectHandler(c.onConnect)
	opts.SetConnectionLostHandler(c.onConnectionLost)

	c.client = mqtt.NewClient(opts)

	log.Printf("Connecting to MQTT broker at %s...", brokerURL)
	token := c.client.Connect()
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	log.Println("Connected to MQTT broker")
	return nil
}

func (c *MQTTClient) onConnect(client mqtt.Client) {
	log.Printf("MQTT: connected, subscribing to topic: %s", c.topic)
	token := client.Subscribe(c.topic, 0, c.messageHandler)
	if token.Wait() && token.Error() != nil {
		log.Printf("MQTT: failed to subscribe: %v", token.Error())
		return
	}
	log.Println("MQTT: subscribed, receiving telemetry lines")
}

func (c *MQTTClient) onConnectionLost(client mqtt.Client, err error) {
	log.Printf("MQTT: connection lost: %v", err)
	log.Println("MQTT: will attempt to reconnect...")
}

// messageHandler splits the payload into lines and forwards each non-empty
// one without blocking the MQTT callback goroutine.
func (c *MQTTClient) messageHandler(client mqtt.Client, msg mqtt.Message) {
	for _, line := range strings.Split(string(msg.Payload()), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		select {
		case c.lineChan <- line:
		default:
			log.Println("MQTT: line channel full, dropping line")
		}
	}
}

// Lines returns the channel delivering raw telemetry lines.
func (c *MQTTClient) Lines() <-chan string {
	return c.lineChan
}

// Stop disconnects from the broker.
func (c *MQTTClient) Stop() {
	select {
	case <-c.shutdown:
		return
	default:
		close(c.shutdown)
	}
	if c.client != nil && c.client.IsConnected() {
		c.client.Disconnect(250)
	}
}
