package source

import "testing"

type fakeMessage struct {
	payload []byte
}

func (m *fakeMessage) Duplicate() bool   { return false }
func (m *fakeMessage) Qos() byte         { return 0 }
func (m *fakeMessage) Retained() bool    { return false }
func (m *fakeMessage) Topic() string     { return "telemetry/lines" }
func (m *fakeMessage) MessageID() uint16 { return 0 }
func (m *fakeMessage) Payload() []byte   { return m.payload }
func (m *fakeMessage) Ack()              {}

func TestMessageHandlerSplitsPayloadIntoLines(t *testing.T) {
	c := NewMQTTClient("broker.example.net", 1883, "telemetry/lines")
	payload := "> BIG;x;ab;x;x;x;12;x;x;x;x;x;x;x;x;03;x;02;x\n\n> BIG;x;cd;x;x;x;7;x;x;x;x;x;x;x;x;9;x;DD;x\n"
	c.messageHandler(nil, &fakeMessage{payload: []byte(payload)})

	var got []string
	for len(c.lineChan) > 0 {
		got = append(got, <-c.lineChan)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 lines, got %d: %v", len(got), got)
	}
	if got[0] != "> BIG;x;ab;x;x;x;12;x;x;x;x;x;x;x;x;03;x;02;x" {
		t.Fatalf("unexpected first line: %q", got[0])
	}
}

func TestMessageHandlerDropsWhenChannelFull(t *testing.T) {
	c := NewMQTTClient("broker.example.net", 1883, "telemetry/lines")
	c.lineChan = make(chan string, 1)
	c.messageHandler(nil, &fakeMessage{payload: []byte("one\ntwo\nthree")})
	if len(c.lineChan) != 1 {
		t.Fatalf("expected overflow lines to be dropped, channel depth %d", len(c.lineChan))
	}
}
