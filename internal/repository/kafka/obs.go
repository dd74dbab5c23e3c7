package kafka

import "github.com/segmentio/kafka-go"

// outboundCarrier collects propagation headers for a message about to be
// published.
type outboundCarrier map[string]string

func (c outboundCarrier) Get(k string) string { return c[k] }
func (c outboundCarrier) Set(k, v string)     { c[k] = v }

func (c outboundCarrier) Keys() []string {
	out := make([]string, 0, len(c))
	for k := range c {
		out = append(out, k)
	}
	return out
}

func (c outboundCarrier) headers() []kafka.Header {
	out := make([]kafka.Header, 0, len(c))
	for k, v := range c {
		out = append(out, kafka.Header{Key: k, Value: []byte(v)})
	}
	return out
}

// inboundCarrier reads propagation headers off a fetched message. It is
// read-only, Set is a no-op.
type inboundCarrier []kafka.Header

func (c inboundCarrier) Get(k string) string {
	for _, h := range c {
		if h.Key == k {
			return string(h.Value)
		}
	}
	return ""
}

func (c inboundCarrier) Set(string, string) {}

func (c inboundCarrier) Keys() []string {
	out := make([]string, 0, len(c))
	for _, h := range c {
		out = append(out, h.Key)
	}
	return out
}
